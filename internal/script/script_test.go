package script_test

import (
	"strings"
	"testing"

	"shelves/internal/script"
	"shelves/internal/tags"
	"shelves/internal/workflow"
)

func TestShelf(t *testing.T) {
	enabled := workflow.NewEngine(workflow.Config{Enabled: true, Stage1: "Incoming", Stage2: "Standard"}, nil)
	disabled := workflow.NewEngine(workflow.Config{Stage1: "Incoming", Stage2: "Standard"}, nil)

	cases := []struct {
		name   string
		engine *workflow.Engine
		tag    string
		want   string
	}{
		{"unset", enabled, "", ""},
		{"transition", enabled, "Incoming", "Standard"},
		{"manual marker stripped", enabled, "Incoming; manual", "Standard"},
		{"other shelf", enabled, "Christmas", "Christmas"},
		{"disabled", disabled, "Incoming", "Incoming"},
		{"nil engine", nil, "Soundtrack; manual", "Soundtrack"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			md := tags.NewMetadata(map[string]string{tags.KeyShelf: tc.tag})
			if got := script.Shelf(tc.engine, md); got != tc.want {
				t.Fatalf("Shelf = %q, want %q", got, tc.want)
			}
		})
	}
	if script.Shelf(enabled, nil) != "" {
		t.Fatal("nil store should yield empty shelf")
	}
}

func TestPath(t *testing.T) {
	engine := workflow.NewEngine(workflow.Config{Enabled: true, Stage1: "Incoming", Stage2: "Standard"}, nil)
	md := tags.NewMetadata(map[string]string{tags.KeyShelf: "Incoming"})
	if got := script.Path(engine, md, "Artist/Album/Title"); got != "Standard/Artist/Album/Title" {
		t.Fatalf("unexpected path %q", got)
	}
	if got := script.Path(engine, tags.NewMetadata(nil), "Artist/Album/Title"); got != "Artist/Album/Title" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestRenameSnippetUsesShelfFunction(t *testing.T) {
	snippet := script.RenameSnippet()
	if !strings.Contains(snippet, "$"+script.FunctionName+"()") {
		t.Fatalf("snippet does not call $%s(): %s", script.FunctionName, snippet)
	}
	if !strings.HasSuffix(snippet, "%album%/%title%") {
		t.Fatalf("unexpected snippet tail: %s", snippet)
	}
}
