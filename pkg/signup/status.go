package signup

// StatusKind is the state of a signup attempt
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the current signup status. Message is set for Succeeded and
// Failed; RequiresEmailConfirmation only for Succeeded.
type Status struct {
	Kind                      StatusKind
	Message                   string
	RequiresEmailConfirmation bool
}

// Messages are the user-facing texts for a successful signup
type Messages struct {
	EmailSentPrefix string
	EmailSentSuffix string
	SuccessMessage  string
}

// DefaultMessages returns the texts shipped with the app
func DefaultMessages() Messages {
	return Messages{
		EmailSentPrefix: "We've sent a confirmation link to ",
		EmailSentSuffix: ". Please check your inbox to activate your account.",
		SuccessMessage:  "Account created successfully!",
	}
}

func (m Messages) confirmationSent(email string) string {
	return m.EmailSentPrefix + email + m.EmailSentSuffix
}

// State is a read-only snapshot of everything the signup screen renders
type State struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeToTerms    bool

	Status                    Status
	IsSigningUp               bool
	IsFormValid               bool
	ErrorMessage              string // set only while Failed
	SuccessMessage            string // set only while Succeeded
	RequiresEmailConfirmation bool
	NavigateToLogin           bool
}
