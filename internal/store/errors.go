package store

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("whiteboard not found")

// RequestError is a non-success response from the store. Body is the raw
// response text.
type RequestError struct {
	Op     string
	Status int
	Body   string

	notFound bool
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: store returned status %d: %s", e.Op, e.Status, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match a failed whiteboard lookup.
func (e *RequestError) Is(target error) bool {
	return target == ErrNotFound && e.notFound
}

func newRequestError(op string, status int, body []byte) *RequestError {
	return &RequestError{
		Op:       op,
		Status:   status,
		Body:     string(body),
		notFound: status == http.StatusNotFound,
	}
}
