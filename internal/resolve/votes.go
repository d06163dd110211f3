package resolve

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"shelves/internal/logging"
	"shelves/internal/shelf"
)

// Vote is one shelf's tally for an album.
type Vote struct {
	Shelf string
	Count int
}

type tally struct {
	votes  []Vote
	winner string
}

// Votes tracks per-album shelf votes. It is safe for concurrent use.
type Votes struct {
	mu     sync.Mutex
	albums map[string]*tally
	logger *slog.Logger
}

// NewVotes returns an empty tally.
func NewVotes(logger *slog.Logger) *Votes {
	return &Votes{
		albums: make(map[string]*tally),
		logger: logging.NewComponentLogger(logger, "votes"),
	}
}

// Cast records a vote of shelfName for albumID and returns the album's
// current winner: the shelf with the most votes, ties going to the shelf
// seen first. Empty ids or shelf names are ignored.
func (v *Votes) Cast(albumID, shelfName string) string {
	albumID = strings.TrimSpace(albumID)
	shelfName = shelf.Normalize(shelfName)
	if albumID == "" || shelfName == "" {
		winner, _ := v.Winner(albumID)
		return winner
	}

	v.mu.Lock()
	t, ok := v.albums[albumID]
	if !ok {
		t = &tally{}
		v.albums[albumID] = t
	}
	counted := false
	for i := range t.votes {
		if shelf.SameName(t.votes[i].Shelf, shelfName) {
			t.votes[i].Count++
			counted = true
			break
		}
	}
	if !counted {
		t.votes = append(t.votes, Vote{Shelf: shelfName, Count: 1})
	}
	best := t.votes[0]
	for _, vote := range t.votes[1:] {
		if vote.Count > best.Count {
			best = vote
		}
	}
	t.winner = best.Shelf
	var conflict []Vote
	if len(t.votes) > 1 {
		conflict = append([]Vote(nil), t.votes...)
	}
	v.mu.Unlock()

	if conflict != nil {
		logging.WarnWithContext(v.logger, "album has files on different shelves", "album_shelf_conflict",
			logging.String(logging.FieldAlbumID, albumID),
			logging.String("votes", formatVotes(conflict)),
			logging.String(logging.FieldShelf, best.Shelf),
			logging.String(logging.FieldErrorHint, "move the album's files into one shelf folder"),
			logging.String(logging.FieldImpact, "album tagged with the majority shelf"),
		)
	}
	return best.Shelf
}

// Winner returns the current winner for albumID.
func (v *Votes) Winner(albumID string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.albums[strings.TrimSpace(albumID)]
	if !ok {
		return "", false
	}
	return t.winner, true
}

// Tally returns a copy of the votes for albumID in first-seen order.
func (v *Votes) Tally(albumID string) []Vote {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.albums[strings.TrimSpace(albumID)]
	if !ok {
		return nil
	}
	return append([]Vote(nil), t.votes...)
}

// Clear forgets all votes for albumID.
func (v *Votes) Clear(albumID string) {
	v.mu.Lock()
	delete(v.albums, strings.TrimSpace(albumID))
	v.mu.Unlock()
}

// Len returns the number of albums with votes.
func (v *Votes) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.albums)
}

func formatVotes(votes []Vote) string {
	parts := make([]string, len(votes))
	for i, vote := range votes {
		parts[i] = fmt.Sprintf("%s=%d", vote.Shelf, vote.Count)
	}
	return strings.Join(parts, ", ")
}
