package service

import (
	"errors"
	"fmt"
)

// TransportError reports a request that never got an HTTP answer.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError reports a non-2xx answer from the server.
type RejectedError struct {
	Code    int
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rejected with status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("rejected with status %d", e.Code)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the HTTP status of a rejection, and false if err is
// not an HTTP-level rejection.
func StatusCode(err error) (int, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return 0, false
}
