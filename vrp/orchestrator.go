package vrp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SolveState is the orchestrator's lifecycle state.
type SolveState int

const (
	StateIdle SolveState = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s SolveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Orchestrator drives the solve request cycle: pre-flight validation, the
// HTTP call against a scenario snapshot, and mapping the three outcomes
// (pending, success, failure) onto store updates. At most one request is
// in flight; re-entrant triggers are rejected while Pending.
type Orchestrator struct {
	store     *Store
	client    *SolverClient
	publisher *Publisher // optional; nil disables publishing
	timeout   time.Duration

	mu    sync.Mutex
	state SolveState
}

// NewOrchestrator wires an orchestrator to its store and solver client.
// The publisher may be nil.
func NewOrchestrator(store *Store, client *SolverClient, publisher *Publisher) *Orchestrator {
	return &Orchestrator{
		store:     store,
		client:    client,
		publisher: publisher,
		timeout:   DefaultSolveTimeout,
		state:     StateIdle,
	}
}

// SetTimeout overrides the per-solve deadline.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	if d > 0 {
		o.timeout = d
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() SolveState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Solve runs one full solve cycle against a snapshot of the current
// scenario. Validation failures never reach the network: they set a
// status message and return a *ValidationError with the store otherwise
// untouched. While a request is outstanding, further calls return
// ErrSolvePending.
func (o *Orchestrator) Solve(ctx context.Context) error {
	snapshot := o.store.Snapshot()

	if err := ValidateForSolve(snapshot); err != nil {
		o.store.setStatus(err.Error())
		return err
	}

	o.mu.Lock()
	if o.state == StatePending {
		o.mu.Unlock()
		return ErrSolvePending
	}
	o.state = StatePending
	o.mu.Unlock()

	o.store.beginSolve()

	runID := uuid.NewString()[:8]
	log.Printf("[SOLVE] %s: submitting scenario (%d nodes, %d vehicles)",
		runID, len(snapshot.Nodes), snapshot.NumVehicles)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := o.client.Solve(ctx, snapshot)
	if err != nil {
		msg := failureMessage(err)
		log.Printf("[SOLVE] %s: failed: %v", runID, err)
		o.store.failSolve(msg)
		o.setState(StateFailed)
		o.publishOutcome(runID, snapshot, StatusError, nil, msg)
		return fmt.Errorf("solve %s: %w", runID, err)
	}

	if result.Status == StatusSuccess && result.Routes != nil {
		status := successMessage(result)
		o.store.adoptRoutes(result.Routes, result.MaxDistance, result.TotalDistance, status)
		o.setState(StateSucceeded)
		log.Printf("[SOLVE] %s: solved, %d routes", runID, len(result.Routes))
		o.publishOutcome(runID, snapshot, StatusSuccess, result, status)
		return nil
	}

	// Soft success: the solver answered but produced no routes. Clear the
	// route view and surface the solver's message verbatim.
	msg := result.Message
	if msg == "" {
		msg = "Solver returned no routes."
	}
	o.store.failSolve(msg)
	o.setState(StateSucceeded)
	log.Printf("[SOLVE] %s: no routes: %s", runID, msg)
	o.publishOutcome(runID, snapshot, result.Status, result, msg)
	return nil
}

func (o *Orchestrator) setState(s SolveState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) publishOutcome(runID string, snapshot Scenario, status string, result *SolverResult, msg string) {
	if o.publisher == nil {
		return
	}
	ev := SolveEvent{
		CorrelationID: runID,
		Nodes:         len(snapshot.Nodes),
		Vehicles:      snapshot.NumVehicles,
		Status:        status,
		Message:       msg,
		Timestamp:     time.Now().Unix(),
	}
	if result != nil {
		ev.Routes = len(result.Routes)
		ev.MaxDistance = result.MaxDistance
		ev.TotalDistance = result.TotalDistance
	}
	if err := o.publisher.PublishSolveEvent(ev); err != nil {
		log.Printf("[SOLVE] %s: publish outcome: %v", runID, err)
	}
}

// successMessage composes the user-facing line for a solved scenario from
// the response's distance and optional message.
func successMessage(result *SolverResult) string {
	msg := "Solved."
	if result.MaxDistance != nil {
		msg = fmt.Sprintf("Solved. Max route distance: %.1f", *result.MaxDistance)
	}
	if result.Message != "" {
		msg = fmt.Sprintf("%s (%s)", msg, result.Message)
	}
	return msg
}

// failureMessage prefers the solver's structured error message over the
// generic transport error text.
func failureMessage(err error) string {
	var se *SolverStatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Solve request timed out."
	}
	return fmt.Sprintf("Solve failed: %v", err)
}
