package guildlock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameGuild(t *testing.T) {
	l := New()
	var mu sync.Mutex
	counter, maxSeen, inside := 0, 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.Lock(7)
			defer release()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)
			counter++

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, l.Len(), "entries are dropped after release")
}

func TestLockIndependentGuilds(t *testing.T) {
	l := New()
	releaseA := l.Lock(1)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		release := l.Lock(2)
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("locking another guild blocked")
	}
	assert.Equal(t, 1, l.Len())
}
