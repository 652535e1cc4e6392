package store

// Guard is a scoped hold on the store's reader/writer lock.
//
// Acquire with LockRead or LockWrite, release on every exit path:
//
//	g := s.LockRead()
//	defer g.Release()
//
// Guards are not reentrant. A logical operation acquires exactly one
// guard and performs all of its reads and writes under it; data methods
// never lock internally, so nested calls are safe by construction.
type Guard struct {
	release func()
}

// Release releases the guard. Safe to call more than once.
func (g *Guard) Release() {
	if g.release != nil {
		g.release()
		g.release = nil
	}
}

// LockRead acquires the store's shared lock. Concurrent readers do not
// block each other.
func (s *Store) LockRead() *Guard {
	s.mu.RLock()
	return &Guard{release: s.mu.RUnlock}
}

// LockWrite acquires the store's exclusive lock, excluding all
// concurrent readers and writers for the guard's duration.
func (s *Store) LockWrite() *Guard {
	s.mu.Lock()
	return &Guard{release: s.mu.Unlock}
}
