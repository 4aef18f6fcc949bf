package login

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tendant/skycast-auth/pkg/authprovider"
	"github.com/tendant/skycast-auth/pkg/feedback"
)

// Workflow owns the sign-in form and the session it produces
type Workflow struct {
	mu        sync.Mutex
	form      Form
	status    Status
	session   *authprovider.Session
	observers []Observer

	auth     authprovider.Authenticator
	feedback feedback.Notifier
	dispatch func(func())
	logger   *slog.Logger

	inflight sync.WaitGroup
}

// Option configures a Workflow
type Option func(*Workflow)

func WithFeedback(n feedback.Notifier) Option {
	return func(w *Workflow) {
		if n != nil {
			w.feedback = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(w *Workflow) {
		if o != nil {
			w.observers = append(w.observers, o)
		}
	}
}

// WithDispatcher sets the function that runs sign-in completions
func WithDispatcher(dispatch func(fn func())) Option {
	return func(w *Workflow) {
		if dispatch != nil {
			w.dispatch = dispatch
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorkflow creates a sign-in workflow backed by auth
func NewWorkflow(auth authprovider.Authenticator, opts ...Option) *Workflow {
	w := &Workflow{
		auth:     auth,
		feedback: feedback.Noop{},
		dispatch: func(fn func()) { fn() },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) IsFormValid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.IsValid()
}

// Session returns the session from the last successful sign-in, or nil
func (w *Workflow) Session() *authprovider.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *Workflow) SetEmail(v string)    { w.update(func() { w.form.Email = v }) }
func (w *Workflow) SetPassword(v string) { w.update(func() { w.form.Password = v }) }

// Submit starts the sign-in call and reports whether it did. It is a no-op
// while a call is in flight or when the form is invalid.
func (w *Workflow) Submit(ctx context.Context) bool {
	w.mu.Lock()
	if w.status.Kind == StatusSubmitting || !w.form.IsValid() {
		w.mu.Unlock()
		return false
	}
	email, password := w.form.Email, w.form.Password
	w.status = Status{Kind: StatusSubmitting}
	w.inflight.Add(1)
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	w.logger.Info("Signing in", "email", email)
	notify(observers, state)

	go func() {
		session, err := w.auth.SignIn(ctx, email, password)
		w.dispatch(func() {
			defer w.inflight.Done()
			w.complete(ctx, email, session, err)
		})
	}()
	return true
}

// Wait blocks until every submitted call has settled
func (w *Workflow) Wait() {
	w.inflight.Wait()
}

func (w *Workflow) complete(ctx context.Context, email string, session *authprovider.Session, err error) {
	if err == nil && session == nil {
		err = authprovider.NewError("No session returned")
	}
	if err != nil {
		w.logger.Error("Sign in failed", "email", email, "error", err)
		w.feedback.Notify(ctx, feedback.Failure)
		w.update(func() {
			w.status = Status{Kind: StatusFailed, Message: authprovider.Describe(err)}
		})
		return
	}

	w.logger.Info("Signed in", "email", email)
	w.feedback.Notify(ctx, feedback.Success)
	w.update(func() {
		w.session = session
		w.status = Status{Kind: StatusSignedIn}
	})
}

// AcknowledgeError returns a Failed workflow to Idle
func (w *Workflow) AcknowledgeError() bool {
	w.mu.Lock()
	if w.status.Kind != StatusFailed {
		w.mu.Unlock()
		return false
	}
	w.status = Status{Kind: StatusIdle}
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	notify(observers, state)
	return true
}

// SignOut drops the session and returns to Idle. The provider session is
// not revoked.
func (w *Workflow) SignOut() {
	w.update(func() {
		w.session = nil
		if w.status.Kind == StatusSignedIn {
			w.status = Status{Kind: StatusIdle}
		}
	})
}

func (w *Workflow) update(fn func()) {
	w.mu.Lock()
	fn()
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	notify(observers, state)
}

func (w *Workflow) snapshotLocked() State {
	state := State{
		Email:       w.form.Email,
		Password:    w.form.Password,
		Status:      w.status,
		IsSigningIn: w.status.Kind == StatusSubmitting,
		IsFormValid: w.form.IsValid(),
		Session:     w.session,
	}
	if w.status.Kind == StatusFailed {
		state.ErrorMessage = w.status.Message
	}
	return state
}

func (w *Workflow) observersLocked() []Observer {
	out := make([]Observer, len(w.observers))
	copy(out, w.observers)
	return out
}

func notify(observers []Observer, state State) {
	for _, o := range observers {
		o.OnStateChanged(state)
	}
}
