// Package store persists users and their tasks for the API server.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktrack/internal/config"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email twice.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is a registered account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Task is a stored task. UserID is the owner.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
}

// TaskUpdate holds the fields to change; nil fields are left alone.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Store is the persistence layer behind the API. Emails are stored in
// lower case and looked up case-insensitively.
type Store interface {
	// CreateUser stores u, filling in ID and CreatedAt when unset.
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)

	// ListTasks returns the user's tasks, newest first.
	ListTasks(ctx context.Context, userID string) ([]Task, error)
	CreateTask(ctx context.Context, t Task) (Task, error)
	UpdateTask(ctx context.Context, userID, id string, upd TaskUpdate) (Task, error)
	DeleteTask(ctx context.Context, userID, id string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the store selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverSQLite:
		return OpenSQLite(cfg.URI)
	case config.DriverNeo4j:
		return OpenNeo4j(ctx, cfg.URI, cfg.User, cfg.Password)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u TaskUpdate) apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
}
