package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{err: nil}
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{workers: 5, want: 5},
		{workers: 0, want: 1},
		{workers: -1, want: 1},
	}
	for _, tt := range tests {
		if p := NewPool(context.Background(), tt.workers); p.workers != tt.want {
			t.Errorf("NewPool(%d) workers = %d, want %d", tt.workers, p.workers, tt.want)
		}
	}
}

func TestPool_ManyMoreJobsThanBuffer(t *testing.T) {
	var executed int32
	pool := NewPool(context.Background(), 2)
	pool.Start()

	const jobs = 50
	for i := 0; i < jobs; i++ {
		pool.Submit(&mockJob{executed: &executed, shouldErr: i%10 == 0})
	}

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != jobs {
			t.Fatalf("got %d results, want %d", len(results), jobs)
		}
		failed := 0
		for _, r := range results {
			if r.GetError() != nil {
				failed++
			}
		}
		if failed != 5 {
			t.Errorf("failed = %d, want 5", failed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool deadlocked")
	}

	if atomic.LoadInt32(&executed) != jobs {
		t.Errorf("executed = %d, want %d", executed, jobs)
	}
}

func TestPool_RunsConcurrently(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	start := time.Now()
	for i := 0; i < 4; i++ {
		pool.Submit(&mockJob{duration: 50 * time.Millisecond})
	}
	pool.Wait()

	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("4 jobs on 4 workers took %s", elapsed)
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()
	pool.Submit(&mockJob{duration: time.Minute})

	done := make(chan []Result)
	go func() { done <- pool.Shutdown() }()

	select {
	case results := <-done:
		for _, r := range results {
			if !errors.Is(r.GetError(), context.Canceled) {
				t.Errorf("result err = %v, want context.Canceled", r.GetError())
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown did not return")
	}

	if pool.Submit(&mockJob{}) {
		t.Error("Submit after Shutdown should report false")
	}
}

func TestPool_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	if pool.Submit(&mockJob{}) {
		t.Error("Submit on a cancelled pool should report false")
	}
	pool.Wait()
}
