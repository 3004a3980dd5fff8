package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestOperationGate_EnterLeave(t *testing.T) {
	gate := NewOperationGate()

	if gate.Status().Busy {
		t.Error("new gate reports busy")
	}

	if err := gate.TryEnter("import"); err != nil {
		t.Fatalf("TryEnter: %v", err)
	}
	st := gate.Status()
	if !st.Busy || st.Operation != "import" {
		t.Errorf("Status = %+v, want busy import", st)
	}

	if err := gate.TryEnter("restore"); !errors.Is(err, ErrOperationInProgress) {
		t.Errorf("second TryEnter = %v, want ErrOperationInProgress", err)
	}

	gate.Leave()
	if gate.Status().Busy {
		t.Error("gate busy after Leave")
	}
	if err := gate.TryEnter("update"); err != nil {
		t.Errorf("TryEnter after Leave: %v", err)
	}
	gate.Leave()
}

func TestOperationGate_ConcurrentTryEnter(t *testing.T) {
	gate := NewOperationGate()

	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
		start    = make(chan struct{})
		hold     = make(chan struct{})
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if gate.TryEnter("import") == nil {
				admitted.Add(1)
				<-hold
				gate.Leave()
			}
		}()
	}

	close(start)
	time.Sleep(50 * time.Millisecond)
	close(hold)
	wg.Wait()

	if got := admitted.Load(); got != 1 {
		t.Errorf("admitted = %d, want 1", got)
	}
}

func TestOperationGate_WaitIdle(t *testing.T) {
	gate := NewOperationGate()
	if err := gate.WaitIdle(context.Background()); err != nil {
		t.Fatalf("WaitIdle on open gate: %v", err)
	}

	if err := gate.TryEnter("import"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := gate.WaitIdle(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitIdle while busy = %v, want deadline exceeded", err)
	}

	done := make(chan error, 1)
	go func() { done <- gate.WaitIdle(context.Background()) }()
	gate.Leave()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitIdle after Leave: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitIdle did not return after Leave")
	}
}
