package resilience

import (
	"context"
	"testing"
	"time"
)

func TestBulkheadRejectsWhenQueueFull(t *testing.T) {
	b := newBulkhead(1, 1, time.Second)

	release1, err := b.acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	done := make(chan struct{})
	go func() {
		release2, err := b.acquire(context.Background())
		if err == nil {
			release2()
		}
		close(done)
	}()
	time.Sleep(20 * time.Millisecond) // let the second caller join the queue

	if _, err := b.acquire(context.Background()); err != errQueueFull {
		t.Fatalf("expected errQueueFull for a third caller, got %v", err)
	}

	release1()
	<-done
}

func TestBulkheadQueueTimeoutExpires(t *testing.T) {
	b := newBulkhead(1, 4, 20*time.Millisecond)
	release, err := b.acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer release()

	if _, err := b.acquire(context.Background()); err == nil {
		t.Fatal("expected queue timeout error")
	}
}
