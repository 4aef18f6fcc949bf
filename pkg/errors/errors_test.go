package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeUserAlreadyExists, http.StatusUnprocessableEntity},
		{ErrCodeWeakPassword, http.StatusUnprocessableEntity},
		{ErrCodeInvalidCredentials, http.StatusBadRequest},
		{ErrCodeEmailNotConfirmed, http.StatusBadRequest},
		{ErrCodeBadJWT, http.StatusUnauthorized},
		{ErrCodeOTPExpired, http.StatusForbidden},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestWrapAndIsCode(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))

	cause := fmt.Errorf("disk full")
	err := fmt.Errorf("create account: %w", Wrap(cause, ErrCodeInternal, "failed"))
	assert.True(t, IsCode(err, ErrCodeInternal))
	assert.False(t, IsCode(err, ErrCodeBadJWT))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("plain")))
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody Response
	}{
		{
			name:     "structured",
			err:      New(ErrCodeUserAlreadyExists, "User already registered"),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: Response{Code: 422, ErrorCode: ErrCodeUserAlreadyExists, Msg: "User already registered"},
		},
		{
			name:     "wrapped structured",
			err:      fmt.Errorf("sign in: %w", New(ErrCodeInvalidCredentials, "Invalid login credentials")),
			wantCode: http.StatusBadRequest,
			wantBody: Response{Code: 400, ErrorCode: ErrCodeInvalidCredentials, Msg: "Invalid login credentials"},
		},
		{
			name:     "plain error hides cause",
			err:      fmt.Errorf("connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: Response{Code: 500, ErrorCode: ErrCodeInternal, Msg: "Unexpected failure, please check server logs for more information"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/signup", nil)

			Write(rec, req, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRateLimited(t *testing.T) {
	err := RateLimited("60")
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatusCode())
	assert.Equal(t, "60", err.Details["retry_after"])
}
