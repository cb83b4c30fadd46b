package coordinator

import (
	"sync"
)

// actionLocks hands out one mutex per action id, so witness recording and
// the threshold check-and-transition are serialized per action while
// different actions proceed independently. Locks are never released for
// the lifetime of the process; the set is bounded by the number of actions
// seen, which are retained for audit anyway.
type actionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newActionLocks() *actionLocks {
	return &actionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

func (a *actionLocks) forAction(actionID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[actionID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[actionID] = lock
	}
	return lock
}
