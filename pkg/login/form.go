package login

import (
	"github.com/tendant/skycast-auth/pkg/signup"
)

// Form holds the sign-in fields
type Form struct {
	Email    string
	Password string
}

// IsValid reports whether the form can be submitted. The email rule is the
// same one the signup screen uses.
func (f Form) IsValid() bool {
	return signup.IsEmailValid(f.Email) && f.Password != ""
}
