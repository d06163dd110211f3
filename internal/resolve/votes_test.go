package resolve_test

import (
	"sync"
	"testing"

	"shelves/internal/logging"
	"shelves/internal/resolve"
)

func TestVotesMajorityWins(t *testing.T) {
	votes := resolve.NewVotes(logging.NewNop())
	votes.Cast("album-1", "Standard")
	votes.Cast("album-1", "Incoming")
	if winner := votes.Cast("album-1", "Incoming"); winner != "Incoming" {
		t.Fatalf("expected Incoming, got %q", winner)
	}
	tally := votes.Tally("album-1")
	if len(tally) != 2 || tally[0].Shelf != "Standard" || tally[1].Count != 2 {
		t.Fatalf("unexpected tally %+v", tally)
	}
}

func TestVotesTieGoesToFirstSeen(t *testing.T) {
	votes := resolve.NewVotes(nil)
	votes.Cast("album-1", "Christmas")
	if winner := votes.Cast("album-1", "Standard"); winner != "Christmas" {
		t.Fatalf("expected first-seen shelf, got %q", winner)
	}
}

func TestVotesMergeCase(t *testing.T) {
	votes := resolve.NewVotes(nil)
	votes.Cast("album-1", "Standard")
	votes.Cast("album-1", "standard")
	if tally := votes.Tally("album-1"); len(tally) != 1 || tally[0].Count != 2 {
		t.Fatalf("unexpected tally %+v", tally)
	}
}

func TestVotesIgnoreEmptyAndClear(t *testing.T) {
	votes := resolve.NewVotes(nil)
	if winner := votes.Cast("album-1", " "); winner != "" {
		t.Fatalf("unexpected winner %q", winner)
	}
	if votes.Len() != 0 {
		t.Fatal("empty shelf should not create a tally")
	}
	votes.Cast("album-1", "Standard")
	votes.Clear("album-1")
	if _, ok := votes.Winner("album-1"); ok {
		t.Fatal("expected votes to be cleared")
	}
}

func TestVotesConcurrentCasts(t *testing.T) {
	votes := resolve.NewVotes(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			votes.Cast("album-1", "Standard")
		}()
	}
	wg.Wait()
	if tally := votes.Tally("album-1"); len(tally) != 1 || tally[0].Count != 50 {
		t.Fatalf("lost votes: %+v", tally)
	}
}
