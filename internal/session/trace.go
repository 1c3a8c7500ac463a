package session

import (
	"context"
	"sync"
)

type traceKey struct{}

// Trace collects the session outcome of one request so it can be logged by
// middleware that runs outside the handler.
type Trace struct {
	mu      sync.Mutex
	outcome Outcome
	ok      bool
}

// WithTrace attaches an empty Trace to ctx.
func WithTrace(ctx context.Context) (context.Context, *Trace) {
	t := &Trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

// Record stores o in the request's Trace. Without a Trace it does nothing.
func Record(ctx context.Context, o Outcome) {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	if t == nil {
		return
	}
	t.mu.Lock()
	t.outcome, t.ok = o, true
	t.mu.Unlock()
}

// Outcome returns the recorded outcome; ok is false when no session was resolved.
func (t *Trace) Outcome() (o Outcome, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome, t.ok
}
