package authclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/skycast-auth/pkg/authprovider"
)

// signupResponse covers both shapes /signup returns: a session with a
// nested user, or the bare user when confirmation is pending.
type signupResponse struct {
	authprovider.Session
	authprovider.User
	NestedUser *authprovider.User `json:"user"`
}

func decodeSignup(body []byte) (*authprovider.Outcome, error) {
	var resp signupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		session := resp.Session
		session.User = resp.NestedUser
		fillExpiry(&session)
		return &authprovider.Outcome{User: resp.NestedUser, Session: &session}, nil
	}

	if resp.User.Email == "" && resp.NestedUser != nil {
		return &authprovider.Outcome{User: resp.NestedUser}, nil
	}
	user := resp.User
	return &authprovider.Outcome{User: &user}, nil
}

// fillExpiry sets ExpiresAt when the server left it out, preferring the
// access token's exp claim and then expires_in.
func fillExpiry(s *authprovider.Session) {
	if s.ExpiresAt != 0 {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Unix()
			return
		}
	}
	if s.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second).Unix()
	}
}

type errorResponse struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func decodeError(status int, body []byte) *authprovider.Error {
	perr := &authprovider.Error{StatusCode: status}

	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		perr.Message = fmt.Sprintf("Request failed: %s", http.StatusText(status))
		perr.Err = err
		return perr
	}

	perr.Code = resp.ErrorCode
	if perr.Code == "" {
		if code, ok := resp.Code.(string); ok {
			perr.Code = code
		} else if resp.Error != "" {
			perr.Code = resp.Error
		}
	}

	for _, msg := range []string{resp.Msg, resp.Message, resp.ErrorDescription, resp.Error} {
		if msg != "" {
			perr.Message = msg
			break
		}
	}
	if perr.Message == "" {
		perr.Message = fmt.Sprintf("Request failed: %s", http.StatusText(status))
	}
	return perr
}
