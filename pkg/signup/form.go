package signup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field names a signup form field
type Field string

const (
	FieldFullName        Field = "full_name"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirm_password"
	FieldAgreeToTerms    Field = "agree_to_terms"
)

var (
	// ErrUnknownField is returned by SetField for a name that is not a form field
	ErrUnknownField = errors.New("unknown signup field")

	// ErrFieldType is returned by SetField when the value has the wrong type
	ErrFieldType = errors.New("invalid value type for signup field")
)

// Form holds the values the user typed into the signup screen
type Form struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeToTerms    bool
}

// IsEmailValid reports whether email contains both '@' and '.'.
// Other screens accept exactly the same strings, so the rule must not
// tighten.
func IsEmailValid(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// IsPasswordMatch reports whether password is set and equals confirm
func IsPasswordMatch(password, confirm string) bool {
	return password != "" && password == confirm
}

// IsEmailValid reports whether the form's email passes IsEmailValid
func (f Form) IsEmailValid() bool {
	return IsEmailValid(f.Email)
}

// IsPasswordMatch reports whether the form's passwords match
func (f Form) IsPasswordMatch() bool {
	return IsPasswordMatch(f.Password, f.ConfirmPassword)
}

// IsValid reports whether the form can be submitted
func (f Form) IsValid() bool {
	return strings.TrimSpace(f.FullName) != "" &&
		f.IsEmailValid() &&
		f.IsPasswordMatch() &&
		f.AgreeToTerms
}

func (f *Form) set(field Field, value any) error {
	switch field {
	case FieldFullName, FieldEmail, FieldPassword, FieldConfirmPassword:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants a string, got %T", ErrFieldType, field, value)
		}
		switch field {
		case FieldFullName:
			f.FullName = s
		case FieldEmail:
			f.Email = s
		case FieldPassword:
			f.Password = s
		case FieldConfirmPassword:
			f.ConfirmPassword = s
		}
		return nil
	case FieldAgreeToTerms:
		switch v := value.(type) {
		case bool:
			f.AgreeToTerms = v
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s wants a boolean, got %q", ErrFieldType, field, v)
			}
			f.AgreeToTerms = b
		default:
			return fmt.Errorf("%w: %s wants a boolean, got %T", ErrFieldType, field, value)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, field)
}
