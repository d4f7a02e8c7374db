package tracker

import (
	"context"
	"sync"
)

// Level grades a Notice.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-visible message about a degraded operation.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

// Notifier receives notices. Each failure is delivered once.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Collector buffers notices until drained.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func (c *Collector) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Drain returns and clears the buffered notices.
func (c *Collector) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

type notifierKey struct{}

// WithNotifier returns a context whose notices go to n instead of the
// Tracker's own Notifier. It scopes warnings to one caller, such as one
// HTTP request.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

func notifierFrom(ctx context.Context) (Notifier, bool) {
	n, ok := ctx.Value(notifierKey{}).(Notifier)
	return n, ok && n != nil
}

type discard struct{}

func (discard) Notify(Notice) {}
