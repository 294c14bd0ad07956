package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a Store held in process memory. Data is lost on exit.
type Memory struct {
	mu    sync.Mutex
	users map[string]User   // email -> user
	tasks map[string][]Task // user ID -> tasks, oldest first
	now   func() time.Time
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]User),
		tasks: make(map[string][]Task),
		now:   time.Now,
	}
}

func (m *Memory) CreateUser(ctx context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = normalizeEmail(u.Email)
	if _, exists := m.users[u.Email]; exists {
		return User{}, ErrDuplicateEmail
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now().UTC()
	}
	m.users[u.Email] = u
	return u, nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[normalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.tasks[userID]
	out := make([]Task, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

func (m *Memory) CreateTask(ctx context.Context, t Task) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now().UTC()
	}
	m.tasks[t.UserID] = append(m.tasks[t.UserID], t)
	return t, nil
}

func (m *Memory) UpdateTask(ctx context.Context, userID, id string, upd TaskUpdate) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tasks[userID] {
		if t.ID != id {
			continue
		}
		upd.apply(&t)
		m.tasks[userID][i] = t
		return t, nil
	}
	return Task{}, ErrNotFound
}

func (m *Memory) DeleteTask(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.tasks[userID]
	for i, t := range stored {
		if t.ID == id {
			m.tasks[userID] = append(stored[:i:i], stored[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close(ctx context.Context) error { return nil }
