package login

import "github.com/tendant/skycast-auth/pkg/authprovider"

// StatusKind is the state of a sign-in attempt
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusSubmitting
	StatusSignedIn
	StatusFailed
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSignedIn:
		return "signed_in"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the current sign-in status. Message is set only for Failed.
type Status struct {
	Kind    StatusKind
	Message string
}

// State is a read-only snapshot of the sign-in screen
type State struct {
	Email    string
	Password string

	Status       Status
	IsSigningIn  bool
	IsFormValid  bool
	ErrorMessage string
	Session      *authprovider.Session
}
