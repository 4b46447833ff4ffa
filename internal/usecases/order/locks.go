package order

import (
	"sync"

	"github.com/google/uuid"
)

// LockTable serializes work per order id. Confirmation events and
// user-triggered retries for the same order can arrive concurrently; only the
// affected order is serialized, other orders proceed independently.
type LockTable struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*orderLock
}

type orderLock struct {
	mu   sync.Mutex
	refs int
}

func NewLockTable() *LockTable {
	return &LockTable{
		locks: make(map[uuid.UUID]*orderLock),
	}
}

// Lock acquires the lock for one order and returns the unlock function.
// Entries are reference counted so the table does not grow with order count.
func (t *LockTable) Lock(id uuid.UUID) func() {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &orderLock{}
		t.locks[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, id)
		}
		t.mu.Unlock()
	}
}
