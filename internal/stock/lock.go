package stock

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/bufferstock-backend/pkg/errors"
)

// KeyedLock serializes writers per part code. Different keys proceed in
// parallel; waiters on the same key are granted the lock in FIFO-ish channel
// order with a bounded wait.
type KeyedLock struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewKeyedLock returns an empty keyed lock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{slots: make(map[string]chan struct{})}
}

func (l *KeyedLock) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	return slot
}

// Acquire blocks until the lock for key is held, the wait times out, or ctx is
// cancelled. The returned release function must be called exactly once.
func (l *KeyedLock) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	slot := l.slot(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-slot })
		}, nil
	case <-timer.C:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "timed out waiting for part lock").
			WithDetails(map[string]any{"part_code": key, "wait": wait.String()})
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ctx.Err(), "cancelled waiting for part lock")
	}
}
