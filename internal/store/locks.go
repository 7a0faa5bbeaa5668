package store

import (
	"fmt"
	"slices"
	"sync"
)

// rowLocks serialises work on individual rows inside the process. Entries
// are reference counted and dropped when the last holder unlocks.
type rowLocks struct {
	mu    sync.Mutex
	locks map[string]*rowLock
}

type rowLock struct {
	sync.Mutex
	refs int
}

func newRowLocks() *rowLocks {
	return &rowLocks{locks: make(map[string]*rowLock)}
}

func rowKey(table string, id int64) string {
	return fmt.Sprintf("%s/%d", table, id)
}

// lock blocks until the row is free and returns the unlock function.
func (r *rowLocks) lock(key string) func() {
	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		l = &rowLock{}
		r.locks[key] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, key)
		}
		r.mu.Unlock()
	}
}

// lockAll takes several row locks in sorted key order so two callers
// locking overlapping sets cannot deadlock.
func (r *rowLocks) lockAll(keys []string) func() {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	unlocks := make([]func(), 0, len(sorted))
	for _, k := range sorted {
		unlocks = append(unlocks, r.lock(k))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}
