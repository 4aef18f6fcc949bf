package signup

import (
	"log/slog"
	"sync"
)

// Observer receives change notifications from a Workflow.
//
// Callbacks run on the goroutine that made the change, after the workflow's
// lock is released, so they may call back into the workflow.
type Observer interface {
	// OnStateChanged is called after every field edit and status transition.
	OnStateChanged(state State)

	// OnNavigateToLogin is called once per acknowledged success.
	OnNavigateToLogin()
}

// NoopObserver ignores every notification
type NoopObserver struct{}

func (NoopObserver) OnStateChanged(state State) {}
func (NoopObserver) OnNavigateToLogin()         {}

// ObserverFuncs adapts optional functions to the Observer interface
type ObserverFuncs struct {
	StateChanged    func(state State)
	NavigateToLogin func()
}

func (o ObserverFuncs) OnStateChanged(state State) {
	if o.StateChanged != nil {
		o.StateChanged(state)
	}
}

func (o ObserverFuncs) OnNavigateToLogin() {
	if o.NavigateToLogin != nil {
		o.NavigateToLogin()
	}
}

// CompositeObserver fans notifications out to several observers
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards to each non-nil
// observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnStateChanged(state State) {
	for _, o := range c.observers {
		o.OnStateChanged(state)
	}
}

func (c *CompositeObserver) OnNavigateToLogin() {
	for _, o := range c.observers {
		o.OnNavigateToLogin()
	}
}

// LoggingObserver logs status transitions. Field edits are not logged and
// passwords never are.
type LoggingObserver struct {
	Logger *slog.Logger

	mu   sync.Mutex
	last StatusKind
}

// NewLoggingObserver creates a LoggingObserver. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnStateChanged(state State) {
	o.mu.Lock()
	changed := state.Status.Kind != o.last
	o.last = state.Status.Kind
	o.mu.Unlock()
	if !changed {
		return
	}
	o.Logger.Info("signup status changed",
		slog.String("status", state.Status.Kind.String()),
		slog.String("email", state.Email),
		slog.Bool("requires_email_confirmation", state.RequiresEmailConfirmation),
	)
}

func (o *LoggingObserver) OnNavigateToLogin() {
	o.Logger.Info("signup navigate to login")
}
