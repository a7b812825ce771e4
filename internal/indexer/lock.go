package indexer

import "sync/atomic"

// IndexLock prevents concurrent indexing runs for the same project within a
// single process. It is advisory only; two processes pointed at the same
// database still race at the SQLite level.
type IndexLock struct {
	held atomic.Bool
}

// TryAcquire attempts to take the lock without blocking. It returns false
// when an indexing run already holds it.
func (l *IndexLock) TryAcquire() bool {
	return l.held.CompareAndSwap(false, true)
}

// Release frees the lock for the next run
func (l *IndexLock) Release() {
	l.held.Store(false)
}

// IsHeld reports whether an indexing run currently holds the lock
func (l *IndexLock) IsHeld() bool {
	return l.held.Load()
}
