package desktop

import (
	"sync"

	"github.com/xob0t/textmark/pkg/session"
)

// syncSession serialises access to a session. Button callbacks and driver
// layout passes may arrive on different goroutines.
type syncSession struct {
	mu sync.Mutex
	s  *session.Session
}

func newSyncSession(s *session.Session) *syncSession {
	return &syncSession{s: s}
}

// Dispatch runs cmd while holding the lock. Callers must not hold it.
func (ss *syncSession) Dispatch(cmd session.Command) (session.Result, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.Dispatch(cmd)
}

// Watermarks returns a copy of the accumulated watermark list.
func (ss *syncSession) Watermarks() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.s.Watermarks()
}
