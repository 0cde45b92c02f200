package lock

import (
	"context"
	"sync"
)

// RunLock lets at most one run of a job proceed at a time.
// TryLock never waits: ok is false when another run holds the lock.
type RunLock interface {
	TryLock(ctx context.Context) (release func(), ok bool, err error)
}

// LocalRunLock is a RunLock for a single process
type LocalRunLock struct {
	mu sync.Mutex
}

var _ RunLock = (*LocalRunLock)(nil)

// NewLocalRunLock creates a process-local run lock
func NewLocalRunLock() *LocalRunLock {
	return &LocalRunLock{}
}

func (l *LocalRunLock) TryLock(ctx context.Context) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if !l.mu.TryLock() {
		return nil, false, nil
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, true, nil
}
