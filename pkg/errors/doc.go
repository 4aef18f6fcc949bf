// Package errors provides structured errors for the dev auth backend.
//
// Each Error carries an ErrorCode whose value is the error_code string a
// GoTrue client expects, plus the HTTP status it maps to:
//
//	if exists {
//		return nil, errors.New(errors.ErrCodeUserAlreadyExists, "User already registered")
//	}
//
// Handlers hand any error to Write, which renders
//
//	{"code": 422, "error_code": "user_already_exists", "msg": "User already registered"}
//
// Errors that are not structured are reported as unexpected_failure with a
// 500 status; the cause is logged and not sent to the client.
package errors
