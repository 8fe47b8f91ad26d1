package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(4, 8)
	var ran atomic.Int64
	for i := 0; i < 20; i++ {
		if err := p.Submit(context.Background(), func() { ran.Add(1) }); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	p.Close()
	if ran.Load() != 20 {
		t.Fatalf("expected 20 tasks run, got %d", ran.Load())
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := New(1, 0)
	p.Close()
	if err := p.Submit(context.Background(), func() {}); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestPoolSubmitRacingCloseNeverPanics(t *testing.T) {
	for round := 0; round < 50; round++ {
		p := New(2, 1)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					if err := p.Submit(context.Background(), func() {}); err != nil {
						if err != ErrClosed {
							t.Errorf("expected ErrClosed, got %v", err)
						}
						return
					}
				}
			}()
		}
		p.Close()
		wg.Wait()
	}
}

func TestPoolSubmitHonorsContext(t *testing.T) {
	p := New(1, 0)
	defer p.Close()

	block := make(chan struct{})
	if err := p.Submit(context.Background(), func() { <-block }); err != nil {
		t.Fatalf("submit blocker: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, func() {})
	close(block)
	if err == nil {
		t.Fatalf("expected context error on full queue")
	}
}
