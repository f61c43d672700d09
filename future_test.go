package bitbrik

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestFuture_ResolvedReturnsValue(t *testing.T) {
	f := resolved("x", nil)
	select {
	case <-f.Done():
	default:
		t.Fatalf("resolved future not done")
	}
	got, err := f.Await(context.Background())
	if err != nil || got != "x" {
		t.Fatalf("Await: got %q, %v, want %q, nil", got, err, "x")
	}
}

func TestFuture_CarriesError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := resolved(0, boom).Await(context.Background()); err != boom {
		t.Fatalf("Await error: got %v, want %v", err, boom)
	}
}

func TestFuture_AwaitHonorsContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Await: got %v, want deadline exceeded", err)
	}

	go f.complete(7, nil)
	got, err := f.Await(context.Background())
	if err != nil || got != 7 {
		t.Fatalf("Await after complete: got %d, %v, want 7, nil", got, err)
	}
}
