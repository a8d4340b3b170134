package session

import (
	"sync"
	"time"
)

// Throttle defaults: five failed verifications inside the window block the
// caller for the block duration.
const (
	DefaultMaxFailures   = 5
	DefaultFailureWindow = 15 * time.Minute
	DefaultBlockFor      = 15 * time.Minute
)

type attemptState struct {
	failures    int
	windowStart time.Time
	blockedTill time.Time
}

// Throttle tracks failed PIN verifications per caller key (the client IP)
// and temporarily blocks callers that keep failing. A successful
// verification clears the caller's state.
type Throttle struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	blockFor    time.Duration
	state       map[string]*attemptState
	now         func() time.Time
}

// NewThrottle creates a throttle with the default limits.
func NewThrottle() *Throttle {
	return &Throttle{
		maxFailures: DefaultMaxFailures,
		window:      DefaultFailureWindow,
		blockFor:    DefaultBlockFor,
		state:       make(map[string]*attemptState),
		now:         time.Now,
	}
}

// Allow reports whether the caller may attempt a verification right now.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.state[key]
	if !ok {
		return true
	}
	now := t.now()
	if !st.blockedTill.IsZero() && now.Before(st.blockedTill) {
		return false
	}
	if !st.blockedTill.IsZero() {
		// Block elapsed; start the caller fresh.
		delete(t.state, key)
	}
	return true
}

// Fail records a failed verification and blocks the caller once the failure
// count inside the window reaches the limit.
func (t *Throttle) Fail(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	st, ok := t.state[key]
	if !ok || now.Sub(st.windowStart) > t.window {
		st = &attemptState{windowStart: now}
		t.state[key] = st
	}
	st.failures++
	if st.failures >= t.maxFailures {
		st.blockedTill = now.Add(t.blockFor)
	}
}

// Succeed clears the caller's failure state.
func (t *Throttle) Succeed(key string) {
	t.mu.Lock()
	delete(t.state, key)
	t.mu.Unlock()
}
