package bitbrik

import "context"

// Future is a value produced once. Editor reads complete their futures
// before returning, so Await only blocks on futures built elsewhere.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolved returns a completed future.
func resolved[T any](v T, err error) *Future[T] {
	f := newFuture[T]()
	f.complete(v, err)
	return f
}

// complete must be called exactly once.
func (f *Future[T]) complete(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed once the value is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await returns the value, or ctx's error if ctx ends first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
