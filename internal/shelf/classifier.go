package shelf

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HeuristicNoFolder is reported when a file has no top-level folder.
const HeuristicNoFolder = "no_folder"

// Heuristic is one suspicion rule. Match returns a reason when the name looks
// like an artist or album folder rather than a shelf.
type Heuristic struct {
	Name  string
	Match func(name string) (reason string, suspicious bool)
}

// Policy holds the tuning values of the heuristic chain. Zero or negative
// thresholds disable the corresponding rule.
type Policy struct {
	MaxNameLength   int
	MaxWordCount    int
	AlbumIndicators []string
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MaxNameLength:   30,
		MaxWordCount:    3,
		AlbumIndicators: []string{"vol", "volume", "disc", "cd", "part"},
	}
}

// Classifier decides whether a candidate folder name is a shelf.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	chain []Heuristic
}

// NewClassifier builds the heuristic chain for policy. The order is fixed:
// artist/album separator, length, word count, album indicator, invalid
// characters. The first match wins and supplies the reported reason.
func NewClassifier(policy Policy) *Classifier {
	indicators := make([]string, 0, len(policy.AlbumIndicators))
	for _, token := range policy.AlbumIndicators {
		token = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(token)), ".")
		if token != "" {
			indicators = append(indicators, token)
		}
	}

	chain := []Heuristic{
		{Name: "artist_album_separator", Match: func(name string) (string, bool) {
			if strings.Contains(name, " - ") {
				return "contains ' - ' (typical for 'Artist - Album' format)", true
			}
			return "", false
		}},
		{Name: "name_too_long", Match: func(name string) (string, bool) {
			if policy.MaxNameLength <= 0 {
				return "", false
			}
			if n := utf8.RuneCountInString(name); n > policy.MaxNameLength {
				return fmt.Sprintf("too long (%d chars, limit %d)", n, policy.MaxNameLength), true
			}
			return "", false
		}},
		{Name: "too_many_words", Match: func(name string) (string, bool) {
			if policy.MaxWordCount <= 0 {
				return "", false
			}
			if n := len(strings.Fields(name)); n > policy.MaxWordCount {
				return fmt.Sprintf("too many words (%d, limit %d)", n, policy.MaxWordCount), true
			}
			return "", false
		}},
		{Name: "album_indicator", Match: func(name string) (string, bool) {
			if word, ok := findAlbumIndicator(name, indicators); ok {
				return fmt.Sprintf("contains album indicator %q", word), true
			}
			return "", false
		}},
		{Name: "invalid_characters", Match: func(name string) (string, bool) {
			if bad := invalidCharsIn(name); len(bad) > 0 {
				return "contains characters not allowed in shelf names: " + strings.Join(bad, " "), true
			}
			if name == "." || name == ".." {
				return "is a relative path marker", true
			}
			return "", false
		}},
	}
	return &Classifier{chain: chain}
}

// Heuristics returns the chain in evaluation order.
func (c *Classifier) Heuristics() []Heuristic {
	out := make([]Heuristic, len(c.chain))
	copy(out, c.chain)
	return out
}

// Suspicion runs the heuristic chain alone, without a registry lookup.
func (c *Classifier) Suspicion(name string) (heuristic, reason string, suspicious bool) {
	normalized := Normalize(name)
	for _, h := range c.chain {
		if why, ok := h.Match(normalized); ok {
			return h.Name, why, true
		}
	}
	return "", "", false
}

// Classify decides what candidate is, given the shelves known right now.
// Registry membership is checked before any heuristic, so a registered shelf
// is never reported as suspicious. Classify never fails; a nil known behaves
// like an empty registry without a default.
func (c *Classifier) Classify(candidate string, known Lookup) Verdict {
	fallback := ""
	if known != nil {
		fallback = known.Default()
	}
	normalized := Normalize(candidate)
	if normalized == "" {
		return Verdict{
			Kind:      VerdictRejectedSuspicious,
			Candidate: candidate,
			Shelf:     fallback,
			Heuristic: HeuristicNoFolder,
			Reason:    "no top-level folder",
		}
	}
	if known != nil {
		if canonical, ok := known.Lookup(normalized); ok {
			return Verdict{Kind: VerdictKnown, Candidate: candidate, Shelf: canonical}
		}
	}
	if heuristic, reason, ok := c.Suspicion(normalized); ok {
		return Verdict{
			Kind:      VerdictRejectedSuspicious,
			Candidate: candidate,
			Shelf:     fallback,
			Heuristic: heuristic,
			Reason:    reason,
		}
	}
	return Verdict{Kind: VerdictAcceptedNew, Candidate: candidate, Shelf: normalized}
}

// findAlbumIndicator matches whole words ("Disc", "vol") and an indicator
// directly followed by digits ("CD2", "Disc1"), ignoring case.
func findAlbumIndicator(name string, indicators []string) (string, bool) {
	if len(indicators) == 0 {
		return "", false
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		lower := strings.ToLower(word)
		for _, indicator := range indicators {
			if lower == indicator {
				return word, true
			}
			if rest, ok := strings.CutPrefix(lower, indicator); ok && rest != "" && allDigits(rest) {
				return word, true
			}
		}
	}
	return "", false
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
