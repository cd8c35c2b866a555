package codereview

import (
	"sync"

	"github.com/ant-lat/code-review-sub000/menu"
	"github.com/ant-lat/code-review-sub000/session"
)

// appState is the client's shared mutable state. It is owned by the state
// loop's consumer goroutine and touched only from applied actions, which
// preserves the single-writer invariant and dispatch-order application.
type appState struct {
	session *session.Session
	tree    menu.Tree
	// returnPath is the path recorded by a redirect-login decision, consumed
	// once by the post-login flow.
	returnPath string
	// pendingRedirect is a navigation forced outside the authorizer, e.g.
	// the login path after a 401. Consumed once.
	pendingRedirect string
}

type stateAction func(*appState)

// stateLoop serializes every state mutation through one consumer goroutine.
// Apply is synchronous: it returns after the action has run, so callers read
// their own writes.
type stateLoop struct {
	actions   chan stateAction
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	state appState
}

func newStateLoop() *stateLoop {
	l := &stateLoop{
		actions: make(chan stateAction),
		done:    make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *stateLoop) run() {
	defer l.wg.Done()
	for {
		select {
		case action := <-l.actions:
			action(&l.state)
		case <-l.done:
			return
		}
	}
}

// Apply runs action on the owning goroutine and waits for it. After Close,
// Apply reports false and the action does not run.
func (l *stateLoop) Apply(action stateAction) bool {
	applied := make(chan struct{})
	wrapped := func(s *appState) {
		action(s)
		close(applied)
	}
	select {
	case l.actions <- wrapped:
		<-applied
		return true
	case <-l.done:
		return false
	}
}

func (l *stateLoop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.wg.Wait()
	})
}
