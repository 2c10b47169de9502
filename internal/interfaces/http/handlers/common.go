package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/turtacn/patent2rag/pkg/errors"
)

// writeJSON writes data with the given status. Non-ASCII text is emitted
// unescaped; pretty indents with two spaces.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps err to its HTTP status. Server-side failures are masked.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code), Message: err.Error()}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	if status >= http.StatusInternalServerError {
		resp = ErrorResponse{Code: string(code), Message: errors.DefaultMessageForCode(code)}
	}
	if resp.Code == "" {
		resp.Code = string(errors.ErrCodeInternal)
	}
	writeJSON(w, status, resp, false)
}

// queryInt reads an optional positive-or-zero integer query parameter.
func queryInt(r *http.Request, name string) (int, bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false, errors.Newf(errors.ErrCodeInvalidOptions, "%s must be a non-negative integer, got %q", name, v)
	}
	return n, true, nil
}

// queryBool reads an optional boolean query parameter; absent means false.
func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

//Personal.AI order the ending
