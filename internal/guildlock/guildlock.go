// Package guildlock serializes work per guild.
package guildlock

import "sync"

// Locker is a keyed mutex. Entries are reference counted and dropped once
// nobody holds or waits for them.
type Locker struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{locks: make(map[int64]*entry)}
}

// Lock blocks until the guild's lock is held and returns its release func.
func (l *Locker) Lock(guildID int64) func() {
	l.mu.Lock()
	e, ok := l.locks[guildID]
	if !ok {
		e = &entry{}
		l.locks[guildID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, guildID)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of guilds currently locked or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
