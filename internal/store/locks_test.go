package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// held reports how many keys currently have holders or waiters.
func (r *rowLocks) held() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

func TestRowLocksSerialiseOneKey(t *testing.T) {
	locks := newRowLocks()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(rowKey("products", 1))
			defer unlock()
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locks.held())
}

func TestRowLocksIndependentKeys(t *testing.T) {
	locks := newRowLocks()
	unlockA := locks.lock(rowKey("products", 1))
	unlockB := locks.lock(rowKey("products", 2))
	assert.Equal(t, 2, locks.held())
	unlockA()
	unlockB()
	assert.Equal(t, 0, locks.held())
}

func TestRowLocksLockAllDeduplicates(t *testing.T) {
	locks := newRowLocks()
	unlock := locks.lockAll([]string{"products/2", "products/1", "products/2"})
	assert.Equal(t, 2, locks.held())
	unlock()
	assert.Equal(t, 0, locks.held())
}
