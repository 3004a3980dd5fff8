package core

// operation_gate.go serializes mutating operations.
//
// Import, update and restore all rewrite the store file, so at most one of
// them may run at a time. The gate is a one-slot semaphore: TryEnter fails
// immediately when the slot is held, which callers surface as
// ErrOperationInProgress.

import (
	"context"
	"sync"
	"time"
)

// OperationGate admits one mutating operation at a time.
type OperationGate struct {
	slot chan struct{}

	mu      sync.RWMutex
	current string
	since   time.Time
}

// NewOperationGate creates an open gate.
func NewOperationGate() *OperationGate {
	return &OperationGate{slot: make(chan struct{}, 1)}
}

// TryEnter claims the gate for the named operation without blocking.
// Returns ErrOperationInProgress if another operation holds it.
// The caller MUST call Leave when done (use defer).
func (g *OperationGate) TryEnter(op string) error {
	select {
	case g.slot <- struct{}{}:
		g.mu.Lock()
		g.current = op
		g.since = time.Now()
		g.mu.Unlock()
		return nil
	default:
		return ErrOperationInProgress
	}
}

// Leave releases the gate. Must be called exactly once per successful
// TryEnter.
func (g *OperationGate) Leave() {
	g.mu.Lock()
	g.current = ""
	g.since = time.Time{}
	g.mu.Unlock()

	<-g.slot
}

// WaitIdle blocks until no operation holds the gate or ctx is done.
// Used during shutdown so an import is not cut off mid-transaction.
func (g *OperationGate) WaitIdle(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		<-g.slot
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GateStatus is a snapshot of the gate.
type GateStatus struct {
	Busy      bool      `json:"busy"`
	Operation string    `json:"operation,omitempty"`
	Since     time.Time `json:"since,omitempty"`
}

// Status returns the current gate state.
func (g *OperationGate) Status() GateStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return GateStatus{
		Busy:      g.current != "",
		Operation: g.current,
		Since:     g.since,
	}
}
