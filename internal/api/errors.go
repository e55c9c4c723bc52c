package api

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is the only failure kind the client reports. Every
// transport error, non-2xx status or malformed body matches it via errors.Is.
var ErrRequestFailed = errors.New("request failed")

// RequestError describes one failed call.
type RequestError struct {
	Op      string // list, create, update, delete
	Method  string
	URL     string
	Status  int    // 0 when no response arrived
	Message string // literal response body or failure text
	Err     error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 && (e.Status < 200 || e.Status > 299) {
		return fmt.Sprintf("%s: %s %s: API returned %d: %s", e.Op, e.Method, e.URL, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s %s: %s", e.Op, e.Method, e.URL, msg)
}

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

func (e *RequestError) Unwrap() error { return e.Err }
