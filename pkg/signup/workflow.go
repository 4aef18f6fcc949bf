package signup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tendant/skycast-auth/pkg/authprovider"
	"github.com/tendant/skycast-auth/pkg/feedback"
)

// Workflow owns the signup form, derives its validity and runs the
// create-account call against the provider.
//
// A Workflow has a single owner: commands are expected from one goroutine
// (the host's UI loop). The provider call runs on its own goroutine and its
// completion is handed to the dispatcher, which should marshal it back onto
// the owner's context.
type Workflow struct {
	mu              sync.Mutex
	form            Form
	status          Status
	navigateToLogin bool
	observers       []Observer

	provider authprovider.Provider
	feedback feedback.Notifier
	dispatch func(func())
	messages Messages
	logger   *slog.Logger

	inflight sync.WaitGroup
}

// Option configures a Workflow
type Option func(*Workflow)

// WithFeedback sets the notifier for success and failure signals
func WithFeedback(n feedback.Notifier) Option {
	return func(w *Workflow) {
		if n != nil {
			w.feedback = n
		}
	}
}

// WithObserver registers an observer
func WithObserver(o Observer) Option {
	return func(w *Workflow) {
		if o != nil {
			w.observers = append(w.observers, o)
		}
	}
}

// WithDispatcher sets the function that runs provider completions on the
// owner's execution context. The dispatcher must eventually call fn.
func WithDispatcher(dispatch func(fn func())) Option {
	return func(w *Workflow) {
		if dispatch != nil {
			w.dispatch = dispatch
		}
	}
}

// WithMessages overrides the success texts
func WithMessages(m Messages) Option {
	return func(w *Workflow) {
		w.messages = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWorkflow creates an idle workflow with an empty form
func NewWorkflow(provider authprovider.Provider, opts ...Option) *Workflow {
	w := &Workflow{
		provider: provider,
		feedback: feedback.Noop{},
		dispatch: func(fn func()) { fn() },
		messages: DefaultMessages(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// AddObserver registers an observer after construction
func (w *Workflow) AddObserver(o Observer) {
	if o == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, o)
}

// State returns a snapshot of the form and status
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Form returns a copy of the current form
func (w *Workflow) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Status returns the current status
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// IsFormValid reports whether Submit would start a request, ignoring the
// in-flight guard
func (w *Workflow) IsFormValid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form.IsValid()
}

// IsSigningUp reports whether a create-account call is in flight
func (w *Workflow) IsSigningUp() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status.Kind == StatusSubmitting
}

// SetField sets the named form field. String fields take a string;
// FieldAgreeToTerms takes a bool or a string accepted by strconv.ParseBool.
// Editing never changes the status and never cancels an in-flight request.
func (w *Workflow) SetField(field Field, value any) error {
	w.mu.Lock()
	if err := w.form.set(field, value); err != nil {
		w.mu.Unlock()
		return err
	}
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	notifyState(observers, state)
	return nil
}

func (w *Workflow) SetFullName(v string)        { w.edit(func(f *Form) { f.FullName = v }) }
func (w *Workflow) SetEmail(v string)           { w.edit(func(f *Form) { f.Email = v }) }
func (w *Workflow) SetPassword(v string)        { w.edit(func(f *Form) { f.Password = v }) }
func (w *Workflow) SetConfirmPassword(v string) { w.edit(func(f *Form) { f.ConfirmPassword = v }) }
func (w *Workflow) SetAgreeToTerms(v bool)      { w.edit(func(f *Form) { f.AgreeToTerms = v }) }

func (w *Workflow) edit(fn func(f *Form)) {
	w.mu.Lock()
	fn(&w.form)
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	notifyState(observers, state)
}

// Submit starts the create-account call and reports whether it did.
// It is a no-op when the form is invalid or a call is already in flight.
// The email, password and full name are captured now; later edits do not
// reach the request. ctx is handed to the provider unchanged.
func (w *Workflow) Submit(ctx context.Context) bool {
	w.mu.Lock()
	if w.status.Kind == StatusSubmitting || !w.form.IsValid() {
		w.mu.Unlock()
		return false
	}
	fullName := w.form.FullName
	email := w.form.Email
	password := w.form.Password
	w.status = Status{Kind: StatusSubmitting}
	w.inflight.Add(1)
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	w.logger.Info("Submitting signup", "email", email)
	notifyState(observers, state)

	metadata := map[string]string{authprovider.MetadataFullName: fullName}
	go func() {
		outcome, err := w.provider.CreateAccount(ctx, email, password, metadata)
		w.dispatch(func() {
			defer w.inflight.Done()
			w.complete(ctx, email, outcome, err)
		})
	}()

	return true
}

// Wait blocks until every submitted call has settled and its completion
// has run.
func (w *Workflow) Wait() {
	w.inflight.Wait()
}

func (w *Workflow) complete(ctx context.Context, email string, outcome *authprovider.Outcome, err error) {
	if err != nil {
		w.logger.Error("Signup failed", "email", email, "error", err)
		w.feedback.Notify(ctx, feedback.Failure)
		w.setStatus(Status{Kind: StatusFailed, Message: authprovider.Describe(err)})
		return
	}

	w.feedback.Notify(ctx, feedback.Success)
	if !outcome.HasSession() {
		w.logger.Info("Signup succeeded, email confirmation required", "email", email)
		w.setStatus(Status{
			Kind:                      StatusSucceeded,
			Message:                   w.messages.confirmationSent(email),
			RequiresEmailConfirmation: true,
		})
		return
	}

	w.logger.Info("Signup succeeded, session issued", "email", email)
	w.setStatus(Status{Kind: StatusSucceeded, Message: w.messages.SuccessMessage})
}

// AcknowledgeSuccess dismisses a success message, returns to Idle and
// raises the navigate-to-login signal. It is a no-op unless the status is
// Succeeded.
func (w *Workflow) AcknowledgeSuccess() bool {
	w.mu.Lock()
	if w.status.Kind != StatusSucceeded {
		w.mu.Unlock()
		return false
	}
	w.status = Status{Kind: StatusIdle}
	w.navigateToLogin = true
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	notifyState(observers, state)
	for _, o := range observers {
		o.OnNavigateToLogin()
	}
	return true
}

// ConsumeNavigateToLogin returns the navigate-to-login flag and clears it
func (w *Workflow) ConsumeNavigateToLogin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	navigate := w.navigateToLogin
	w.navigateToLogin = false
	return navigate
}

func (w *Workflow) setStatus(status Status) {
	w.mu.Lock()
	w.status = status
	state, observers := w.snapshotLocked(), w.observersLocked()
	w.mu.Unlock()

	notifyState(observers, state)
}

func (w *Workflow) snapshotLocked() State {
	state := State{
		FullName:        w.form.FullName,
		Email:           w.form.Email,
		Password:        w.form.Password,
		ConfirmPassword: w.form.ConfirmPassword,
		AgreeToTerms:    w.form.AgreeToTerms,
		Status:          w.status,
		IsSigningUp:     w.status.Kind == StatusSubmitting,
		IsFormValid:     w.form.IsValid(),
		NavigateToLogin: w.navigateToLogin,
	}
	switch w.status.Kind {
	case StatusSucceeded:
		state.SuccessMessage = w.status.Message
		state.RequiresEmailConfirmation = w.status.RequiresEmailConfirmation
	case StatusFailed:
		state.ErrorMessage = w.status.Message
	}
	return state
}

func (w *Workflow) observersLocked() []Observer {
	if len(w.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(w.observers))
	copy(out, w.observers)
	return out
}

func notifyState(observers []Observer, state State) {
	for _, o := range observers {
		o.OnStateChanged(state)
	}
}
