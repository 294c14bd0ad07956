package tasks

import (
	"errors"
	"fmt"
	"net/http"

	"tasktrack/internal/service"
)

// Kind categorizes the outcome of a manager operation.
type Kind int

const (
	// KindOK is a successful outcome.
	KindOK Kind = iota

	// KindValidation means the input was rejected locally; nothing was sent.
	KindValidation

	// KindNoSession means the operation needs a session and none exists.
	KindNoSession

	// KindRejected means the server answered with a non-2xx status
	// (other than 401 on an authenticated call).
	KindRejected

	// KindUnauthorized means the server refused the session token.
	KindUnauthorized

	// KindTransport means no answer was received.
	KindTransport

	// KindStale means the session that made the call ended before the
	// answer arrived. Nothing was applied or reported.
	KindStale
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidation:
		return "validation"
	case KindNoSession:
		return "no-session"
	case KindRejected:
		return "rejected"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransport:
		return "transport"
	case KindStale:
		return "stale"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Op names a manager operation.
type Op string

// Manager operations.
const (
	OpLogin    Op = "login"
	OpRegister Op = "register"
	OpLogout   Op = "logout"
	OpRefresh  Op = "refresh"
	OpAdd      Op = "add"
	OpUpdate   Op = "update"
	OpToggle   Op = "toggle"
	OpDelete   Op = "delete"
)

// ErrTitleRequired is the validation error for an empty task title.
var ErrTitleRequired = errors.New("title required")

// ErrNoSession is returned in results of operations that need a session.
var ErrNoSession = errors.New("not logged in")

// ErrSessionEnded is carried by stale results.
var ErrSessionEnded = errors.New("session ended before the response arrived")

// ErrTaskNotFound is returned when an ID is not in the local collection.
var ErrTaskNotFound = errors.New("task not found")

// Result is the outcome of one operation.
type Result struct {
	Op   Op
	Kind Kind
	Err  error

	// Task is the affected task after a successful add, update or toggle.
	Task *service.Task
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Kind == KindOK }

func succeeded(op Op) Result { return Result{Op: op, Kind: KindOK} }

func failed(op Op, kind Kind, err error) Result {
	return Result{Op: op, Kind: kind, Err: err}
}

// classify maps a backend error to a result kind. authenticated marks
// calls that carried the session token; only those can be unauthorized.
func classify(err error, authenticated bool) Kind {
	if err == nil {
		return KindOK
	}
	if service.IsTransport(err) {
		return KindTransport
	}
	if code, ok := service.StatusCode(err); ok && code == http.StatusUnauthorized && authenticated {
		return KindUnauthorized
	}
	return KindRejected
}
