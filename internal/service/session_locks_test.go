package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionLocks_ReleasesEntries(t *testing.T) {
	locks := newSessionLocks()
	id := uuid.New()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(id)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Zero(t, locks.size())
}

func TestSessionLocks_IndependentSessions(t *testing.T) {
	locks := newSessionLocks()
	unlockA := locks.lock(uuid.New())
	// Другая сессия не ждет освобождения первой.
	unlockB := locks.lock(uuid.New())
	assert.Equal(t, 2, locks.size())
	unlockB()
	unlockA()
	assert.Zero(t, locks.size())
}
