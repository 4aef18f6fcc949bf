package login

import "log/slog"

// Observer receives state snapshots after every change
type Observer interface {
	OnStateChanged(state State)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(state State)

func (f ObserverFunc) OnStateChanged(state State) { f(state) }

// LoggingObserver logs status transitions
type LoggingObserver struct {
	Logger *slog.Logger
}

func (o LoggingObserver) OnStateChanged(state State) {
	if state.Status.Kind == StatusIdle {
		return
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("login status", "status", state.Status.Kind.String(), "email", state.Email)
}
