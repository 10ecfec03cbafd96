package httputil

import (
	"encoding/json"
	"net/http"
)

const problemContentType = "application/problem+json"

// RespondJSON marshals data before touching the response so an encoding
// failure can still become a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// Problem is an RFC 7807 body. Fields carries per-field validation messages.
type Problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewProblem fills in type and title for status.
func NewProblem(status int, detail string) Problem {
	return Problem{
		Type:   problemType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// RespondError writes a problem response without field details.
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondProblem(w, NewProblem(status, detail))
}

// RespondValidationError writes a 400 problem listing the rejected fields.
func RespondValidationError(w http.ResponseWriter, detail string, fields map[string]string) {
	p := NewProblem(http.StatusBadRequest, detail)
	p.Fields = fields
	RespondProblem(w, p)
}

func RespondProblem(w http.ResponseWriter, p Problem) {
	payload, err := json.Marshal(p)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://www.rfc-editor.org/rfc/rfc9110#name-400-bad-request",
	http.StatusUnauthorized:        "https://www.rfc-editor.org/rfc/rfc9110#name-401-unauthorized",
	http.StatusForbidden:           "https://www.rfc-editor.org/rfc/rfc9110#name-403-forbidden",
	http.StatusNotFound:            "https://www.rfc-editor.org/rfc/rfc9110#name-404-not-found",
	http.StatusConflict:            "https://www.rfc-editor.org/rfc/rfc9110#name-409-conflict",
	http.StatusInternalServerError: "https://www.rfc-editor.org/rfc/rfc9110#name-500-internal-server-error",
	http.StatusServiceUnavailable:  "https://www.rfc-editor.org/rfc/rfc9110#name-503-service-unavailable",
}

func problemType(status int) string {
	if t, ok := problemTypes[status]; ok {
		return t
	}
	return "about:blank"
}
