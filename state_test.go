package codereview

import (
	"sync"
	"testing"

	"github.com/ant-lat/code-review-sub000/session"
)

func TestStateLoopAppliesInDispatchOrder(t *testing.T) {
	loop := newStateLoop()
	defer loop.Close()

	for i := 0; i < 100; i++ {
		path := string(rune('a' + i%26))
		if !loop.Apply(func(s *appState) { s.returnPath = path }) {
			t.Fatal("Apply reported closed loop")
		}
		var got string
		loop.Apply(func(s *appState) { got = s.returnPath })
		if got != path {
			t.Fatalf("caller must read its own write: got %q want %q", got, path)
		}
	}
}

func TestStateLoopSingleWriterUnderConcurrency(t *testing.T) {
	loop := newStateLoop()
	defer loop.Close()

	// Concurrent counters through the loop: the single consumer serializes
	// them, so no increment is lost.
	var wg sync.WaitGroup
	const workers = 16
	const perWorker = 50
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				loop.Apply(func(s *appState) {
					if s.session == nil {
						s.session = &session.Session{AccessToken: "tok"}
					}
					s.session = &session.Session{
						AccessToken: s.session.AccessToken,
						User:        session.User{ID: s.session.User.ID + 1},
					}
				})
			}
		}()
	}
	wg.Wait()

	var total int64
	loop.Apply(func(s *appState) { total = s.session.User.ID })
	if total != workers*perWorker {
		t.Fatalf("lost updates: got %d want %d", total, workers*perWorker)
	}
}

func TestStateLoopClosedApplyIsNoOp(t *testing.T) {
	loop := newStateLoop()
	loop.Apply(func(s *appState) { s.returnPath = "/projects" })
	loop.Close()

	ran := false
	if loop.Apply(func(s *appState) { ran = true }) {
		t.Fatal("Apply on closed loop must report false")
	}
	if ran {
		t.Fatal("action must not run after close")
	}
}
