package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// Response is the JSON error body, shaped like GoTrue's
type Response struct {
	Code      int                    `json:"code"`
	ErrorCode ErrorCode              `json:"error_code"`
	Msg       string                 `json:"msg"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Render implements render.Renderer
func (resp *Response) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, resp.Code)
	return nil
}

// NewResponse converts err into a response body. Errors that are not
// structured Errors are reported as unexpected failures.
func NewResponse(err error) *Response {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err)
	}
	return &Response{
		Code:      e.HTTPStatusCode(),
		ErrorCode: e.Code,
		Msg:       e.Message,
		Details:   e.Details,
	}
}

// Write renders err as a JSON error response
func Write(w http.ResponseWriter, r *http.Request, err error) {
	resp := NewResponse(err)
	if resp.Code >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
	}
	if rerr := render.Render(w, r, resp); rerr != nil {
		slog.Error("Failed to render error response", "error", rerr)
	}
}
