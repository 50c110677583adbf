package service

import "sync"

// PostLocker serialises attachment changes per post. Different posts never
// share a mutex; entries are dropped once nobody holds or waits for them.
type PostLocker struct {
	mu    sync.Mutex
	locks map[int32]*postLock
}

type postLock struct {
	mu   sync.Mutex
	refs int
}

func NewPostLocker() *PostLocker {
	return &PostLocker{locks: make(map[int32]*postLock)}
}

func (l *PostLocker) Lock(postID int32) (unlock func()) {
	l.mu.Lock()
	pl, ok := l.locks[postID]
	if !ok {
		pl = &postLock{}
		l.locks[postID] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			pl.mu.Unlock()

			l.mu.Lock()
			pl.refs--
			if pl.refs == 0 {
				delete(l.locks, postID)
			}
			l.mu.Unlock()
		})
	}
}

func (l *PostLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
