package remote

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/evtracker/internal/filex"
)

// Coordinator runs fn with exclusive, coherent access to path. Errors from
// fn are returned unchanged.
type Coordinator interface {
	Coordinate(ctx context.Context, path string, fn func(ctx context.Context) error) error
}

// KeyedMutex is an in-process Coordinator: calls for the same path run one
// at a time, calls for different paths run freely. Waiting honours ctx.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

func (k *KeyedMutex) Coordinate(ctx context.Context, path string, fn func(ctx context.Context) error) error {
	l := k.acquireRef(path)
	defer k.releaseRef(path, l)

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.ch }()

	return fn(ctx)
}

func (k *KeyedMutex) acquireRef(path string) *keyLock {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[path]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[path] = l
	}
	l.refs++
	return l
}

func (k *KeyedMutex) releaseRef(path string, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, path)
	}
}

// Coordinated wraps a FileSystem so every call runs inside c.
type Coordinated struct {
	fs filex.FileSystem
	c  Coordinator
}

var _ filex.FileSystem = (*Coordinated)(nil)

func NewCoordinated(fs filex.FileSystem, c Coordinator) *Coordinated {
	return &Coordinated{fs: fs, c: c}
}

func (w *Coordinated) ReadFile(ctx context.Context, path string) (data []byte, err error) {
	err = w.c.Coordinate(ctx, path, func(ctx context.Context) error {
		data, err = w.fs.ReadFile(ctx, path)
		return err
	})
	return data, err
}

func (w *Coordinated) WriteFile(ctx context.Context, path string, data []byte) error {
	return w.c.Coordinate(ctx, path, func(ctx context.Context) error {
		return w.fs.WriteFile(ctx, path, data)
	})
}

func (w *Coordinated) ListDirectory(ctx context.Context, dir string) (list []filex.FileInfo, err error) {
	err = w.c.Coordinate(ctx, dir, func(ctx context.Context) error {
		list, err = w.fs.ListDirectory(ctx, dir)
		return err
	})
	return list, err
}

func (w *Coordinated) Delete(ctx context.Context, path string) error {
	return w.c.Coordinate(ctx, path, func(ctx context.Context) error {
		return w.fs.Delete(ctx, path)
	})
}
