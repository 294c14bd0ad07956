// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for the task API.
// The session manager only talks to the backend through this interface;
// it never builds HTTP requests itself.
//
// Errors fall in two groups: HTTP-level rejections (the server answered
// with a non-2xx status) and transport failures (no answer at all).
// Implementations must let callers tell them apart.
type Service interface {
	// Register creates an account. It does not log in.
	Register(ctx context.Context, reg Registration) error

	// Login exchanges credentials for a bearer token and display name.
	Login(ctx context.Context, creds Credentials) (LoginResult, error)

	// ListTasks returns every task owned by the token's user.
	ListTasks(ctx context.Context, token string) ([]Task, error)

	// CreateTask creates a task and returns it with its server-assigned
	// ID and creation time.
	CreateTask(ctx context.Context, token, title, description string) (Task, error)

	// UpdateTask applies a partial update and returns the stored task.
	UpdateTask(ctx context.Context, token, id string, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, token, id string) error

	// Health returns the server's reported status ("ok" when healthy).
	Health(ctx context.Context) (string, error)
}
