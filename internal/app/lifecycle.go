package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/storytext/internal/domain"
	"github.com/bft-labs/storytext/internal/ports"
)

// ShutdownTimeout is how long Stop waits for an in-flight job.
const ShutdownTimeout = 30 * time.Second

// State is the lifecycle state of the spool.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// allowed lists the legal transitions out of each state.
var allowed = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// StateObserver is notified after every successful transition.
type StateObserver interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the spool state machine and tracks its workers.
type Lifecycle struct {
	mu       sync.RWMutex
	state    State
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   ports.Logger
	observer StateObserver
}

// NewLifecycle creates a lifecycle in StateStopped. observer may be nil.
func NewLifecycle(logger ports.Logger, observer StateObserver) *Lifecycle {
	return &Lifecycle{
		state:    StateStopped,
		logger:   orNoop(logger),
		observer: observer,
	}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to next if the transition is legal. Leaving a stopped
// or crashed spool for anything but StateStarting yields ErrNotRunning;
// other illegal moves yield ErrAlreadyRunning.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !canMove(prev, next) {
		l.mu.Unlock()
		if prev == StateStopped || prev == StateCrashed {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	l.mu.Unlock()

	if l.observer != nil {
		l.observer.OnStateChange(prev, next, reason)
	}
	l.logger.Info("spool state changed",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)
	return nil
}

func canMove(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart reports whether the spool may be started.
func (l *Lifecycle) CanStart() bool {
	s := l.State()
	return s == StateStopped || s == StateCrashed
}

// CanStop reports whether the spool may be stopped.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == StateRunning || s == StateStarting
}

// SetCancel stores the function that stops the spool loop.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel stops the spool loop, if one is running.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// AddWorker registers a running worker goroutine.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone marks a worker goroutine as finished.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers. It returns ErrShutdownTimeout if
// they are still running after timeout.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
		l.logger.Warn("workers still running at shutdown",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
