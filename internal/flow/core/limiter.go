package core

import "context"

const DefaultMaxConcurrentRuns = 40

// Limiter bounds how many runs execute at once.
type Limiter struct {
	slots chan struct{}
}

func NewLimiter(n int) *Limiter {
	if n <= 0 {
		n = DefaultMaxConcurrentRuns
	}
	return &Limiter{slots: make(chan struct{}, n)}
}

// Run waits for a free slot and executes fn. The slot is released even if
// fn panics.
func (l *Limiter) Run(ctx context.Context, fn func() error) error {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.slots }()

	return fn()
}

// InUse reports how many slots are taken.
func (l *Limiter) InUse() int {
	return len(l.slots)
}
