package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/softmembers/soft-members/pkg/proto"
)

// errorBody is the body of every failed response.
type errorBody struct {
	Error errorMessage `json:"error"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// object is a JSON object response.
type object map[string]interface{}

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

func renderJSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).Error("error encoding json", "err", err)
	}
}

func renderMessage(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	renderJSON(w, r, statusCode, errorBody{Error: errorMessage{Message: message}})
}

// statusCode returns the HTTP status of a domain error kind. Conflicts are
// reported as bad requests.
func statusCode(err error) int {
	switch {
	case errors.Is(err, proto.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, proto.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, proto.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, proto.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, proto.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// renderError renders err as a JSON error. Errors outside the domain
// taxonomy are logged and rendered with a generic message.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *proto.Error
	if !errors.As(err, &perr) {
		log.FromContext(r.Context()).Error("internal error", "err", err)
		renderMessage(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	renderMessage(w, r, statusCode(perr), perr.Error())
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	renderMessage(w, r, http.StatusNotFound, "Not found")
}

func renderMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	renderMessage(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

// maxBodySize is the largest request body accepted by JSON handlers.
const maxBodySize = 1 << 20

// decodeJSON decodes the request body into v. An empty body leaves v
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return proto.Validationf("Invalid request body")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, proto.Validationf("%s must be a number", name)
	}
	return n, nil
}

// queryOptionalInt parses an optional integer query parameter. It returns
// nil when the parameter is absent or empty.
func queryOptionalInt(r *http.Request, name string) (*int, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	n, err := queryInt(r, name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// queryBool parses an optional boolean query parameter. Any value other
// than "true" is false.
func queryBool(r *http.Request, name string) *bool {
	q := r.URL.Query()
	if !q.Has(name) {
		return nil
	}
	b := q.Get(name) == "true"
	return &b
}
