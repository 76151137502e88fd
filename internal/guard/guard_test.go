package guard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMemory_Exclusive(t *testing.T) {
	g := NewMemory()
	ctx := context.Background()

	release, ok, err := g.TryAcquire(ctx, "certificate:a1")
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	if _, ok, _ := g.TryAcquire(ctx, "certificate:a1"); ok {
		t.Fatal("second acquire of held key should fail")
	}
	if rel, ok, _ := g.TryAcquire(ctx, "certificate:a2"); !ok {
		t.Fatal("other key should be free")
	} else {
		rel()
	}

	release()
	release() // idempotent

	rel, ok, _ := g.TryAcquire(ctx, "certificate:a1")
	if !ok {
		t.Fatal("key should be free after release")
	}
	rel()
}

func TestMemory_Concurrent(t *testing.T) {
	g := NewMemory()
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := g.TryAcquire(context.Background(), "k"); ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins.Load())
	}
}
