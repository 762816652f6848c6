package session

import (
	"sync"
	"time"
)

// Supervisor owns one cancellable watchdog timer per active provider. A
// watchdog that is not cancelled before its delay elapses invokes its
// callback once; cancelling a fired or unknown id is a no-op.
type Supervisor struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewSupervisor creates an empty supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{timers: make(map[string]*time.Timer)}
}

// Schedule arms a watchdog for id, replacing any previous one.
func (s *Supervisor) Schedule(id string, delay time.Duration, onFire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[id]; ok {
		prev.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[id] == t {
			delete(s.timers, id)
		}
		s.mu.Unlock()
		onFire()
	})
	s.timers[id] = t
}

// Cancel stops the watchdog for id, if one is armed.
func (s *Supervisor) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// CancelAll stops every armed watchdog. No timer outlives a CancelAll.
func (s *Supervisor) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Active returns the number of armed watchdogs.
func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
