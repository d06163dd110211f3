package shelf

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"shelves/internal/services"
)

// invalidNameChars cannot appear in a shelf name: they are path separators or
// characters rejected by common filesystems.
const invalidNameChars = `<>|:*?"/\'`

// Normalize trims surrounding whitespace and composes the name to NFC so that
// folder names read from decomposing filesystems compare equal to typed ones.
func Normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Key returns the comparison key for a shelf name: normalized and case folded.
func Key(name string) string {
	return cases.Fold().String(Normalize(name))
}

// SameName reports whether a and b name the same shelf.
func SameName(a, b string) bool {
	return Key(a) == Key(b)
}

// ValidateName checks that name is usable as a shelf. It returns a non-empty
// warning for names that are allowed but may cause trouble on some systems.
func ValidateName(name string) (string, error) {
	trimmed := Normalize(name)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "shelf", "validate name", "shelf name cannot be empty", nil)
	}
	if trimmed == "." || trimmed == ".." {
		return "", services.Wrap(services.ErrValidation, "shelf", "validate name", "cannot use '.' or '..'", nil)
	}
	if bad := invalidCharsIn(trimmed); len(bad) > 0 {
		return "", services.Wrap(services.ErrValidation, "shelf", "validate name",
			fmt.Sprintf("%q contains invalid characters: %s", trimmed, strings.Join(bad, ", ")), nil)
	}
	if strings.HasPrefix(trimmed, ".") || strings.HasSuffix(trimmed, ".") {
		return "shelf name may cause issues due to leading/trailing dot", nil
	}
	return "", nil
}

func invalidCharsIn(name string) []string {
	seen := make(map[rune]struct{})
	for _, r := range name {
		if strings.ContainsRune(invalidNameChars, r) {
			seen[r] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}
