// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"tasktrack/internal/service"
)

// Account is a registered fake user.
type Account struct {
	Email    string
	Password string
	Name     string
}

// FakeService is an in-memory implementation of service.Service for testing.
// It behaves like the real API: tokens identify accounts, tasks are per
// account and returned newest first, unknown tokens get 401.
type FakeService struct {
	mu       sync.Mutex
	accounts map[string]Account        // email -> account
	tokens   map[string]string         // token -> email
	tasks    map[string][]service.Task // email -> tasks, newest first
	nextID   int
	now      func() time.Time

	// Calls records every method invocation, e.g. "ListTasks".
	Calls []string

	// Error injection for testing
	RegisterErr   error
	LoginErr      error
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	HealthErr     error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		accounts: make(map[string]Account),
		tokens:   make(map[string]string),
		tasks:    make(map[string][]service.Task),
		now:      func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) },
	}
}

// Rejected builds an HTTP-level rejection error.
func Rejected(code int) error {
	return &service.RejectedError{Code: code, Message: http.StatusText(code)}
}

// Unreachable builds a transport failure error.
func Unreachable() error {
	return &service.TransportError{Op: "fake", Err: fmt.Errorf("connection refused")}
}

// AddAccount registers an account and returns a valid token for it.
func (f *FakeService) AddAccount(email, password, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = Account{Email: email, Password: password, Name: name}
	token := "token-" + email
	f.tokens[token] = email
	return token
}

// AddTask stores a task for the account behind email. It is placed at the
// end of the list so tests can build a collection in display order.
func (f *FakeService) AddTask(email, id, title string) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{ID: id, Title: title, CreatedAt: f.now()}
	f.tasks[email] = append(f.tasks[email], task)
	return task
}

// StoredTasks returns the server-side tasks for email.
func (f *FakeService) StoredTasks(email string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks[email]))
	copy(out, f.tasks[email])
	return out
}

// AddToken makes token valid for the account behind email.
func (f *FakeService) AddToken(token, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = email
}

// RevokeToken makes token unknown, so calls with it get 401.
func (f *FakeService) RevokeToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

func (f *FakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

// owner resolves a token; callers must hold f.mu.
func (f *FakeService) owner(token string) (string, error) {
	email, ok := f.tokens[token]
	if !ok {
		return "", Rejected(http.StatusUnauthorized)
	}
	return email, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) error {
	f.record("Register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(reg.Email)
	if _, exists := f.accounts[email]; exists {
		return Rejected(http.StatusConflict)
	}
	f.accounts[email] = Account{Email: email, Password: reg.Password, Name: reg.Name}
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.LoginResult, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.LoginResult{}, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[strings.ToLower(creds.Email)]
	if !ok || acct.Password != creds.Password {
		return service.LoginResult{}, Rejected(http.StatusUnauthorized)
	}
	token := "token-" + acct.Email
	f.tokens[token] = acct.Email
	return service.LoginResult{Token: token, Name: acct.Name}, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, token string) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, err := f.owner(token)
	if err != nil {
		return nil, err
	}
	out := make([]service.Task, len(f.tasks[email]))
	copy(out, f.tasks[email])
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, token, title, description string) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, err := f.owner(token)
	if err != nil {
		return service.Task{}, err
	}
	f.nextID++
	task := service.Task{
		ID:          fmt.Sprintf("t%d", f.nextID),
		Title:       title,
		Description: description,
		CreatedAt:   f.now(),
	}
	f.tasks[email] = append([]service.Task{task}, f.tasks[email]...)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, token, id string, patch service.TaskPatch) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, err := f.owner(token)
	if err != nil {
		return service.Task{}, err
	}
	for i, t := range f.tasks[email] {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		f.tasks[email][i] = t
		return t, nil
	}
	return service.Task{}, Rejected(http.StatusNotFound)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, token, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, err := f.owner(token)
	if err != nil {
		return err
	}
	tasks := f.tasks[email]
	for i, t := range tasks {
		if t.ID == id {
			f.tasks[email] = append(tasks[:i], tasks[i+1:]...)
			return nil
		}
	}
	return Rejected(http.StatusNotFound)
}

// Health implements service.Service.
func (f *FakeService) Health(ctx context.Context) (string, error) {
	f.record("Health")
	if f.HealthErr != nil {
		return "", f.HealthErr
	}
	return "ok", nil
}
