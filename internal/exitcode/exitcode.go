// Package exitcode defines exit codes for the CLI.
package exitcode

import "tasktrack/internal/tasks"

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, validation).
	UserError = 1

	// AuthError indicates a missing, rejected, expired or ended session.
	AuthError = 2

	// BackendError indicates a server rejection or a network failure.
	BackendError = 3
)

// FromKind maps a manager result kind to an exit code.
func FromKind(k tasks.Kind) int {
	switch k {
	case tasks.KindOK:
		return Success
	case tasks.KindValidation:
		return UserError
	case tasks.KindNoSession, tasks.KindUnauthorized, tasks.KindStale:
		return AuthError
	default:
		return BackendError
	}
}
