// Package tasks owns the client session and the local mirror of the user's
// tasks, and keeps both in step with the server.
//
// Every operation returns a Result instead of an error. Outcomes are turned
// into notifications in one place (see report), so callers only need the
// Result to decide on exit codes or view changes.
package tasks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"tasktrack/internal/credentials"
	"tasktrack/internal/logger"
	"tasktrack/internal/service"
)

// Session is the authenticated identity of the current user.
type Session struct {
	Token string
	Name  string
}

// State is a snapshot of everything the manager owns.
type State struct {
	Session *Session
	Tasks   []service.Task
}

// Manager coordinates the session, the task collection, the API and the
// notification queue. It is safe for concurrent use. State is locked only
// while it is read or written, never across a network call, so two
// in-flight operations on the same task resolve in response order.
type Manager struct {
	svc   service.Service
	creds credentials.Store
	notes Notifier
	log   logrus.FieldLogger
	now   func() time.Time

	bootOnce   sync.Once
	bootResult Result

	mu      sync.Mutex
	session *Session
	tasks   []service.Task
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager with no session.
func NewManager(svc service.Service, creds credentials.Store, notes Notifier, opts ...Option) *Manager {
	m := &Manager{
		svc:   svc,
		creds: creds,
		notes: notes,
		log:   logger.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := State{Tasks: cloneTasks(m.tasks)}
	if m.session != nil {
		s := *m.session
		st.Session = &s
	}
	return st
}

// Session returns the current session, if any.
func (m *Manager) Session() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// Tasks returns a copy of the local task collection.
func (m *Manager) Tasks() []service.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTasks(m.tasks)
}

// TaskAt returns the task at 1-based position n in the local collection.
func (m *Manager) TaskAt(n int) (service.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 || n > len(m.tasks) {
		return service.Task{}, ErrTaskNotFound
	}
	return m.tasks[n-1], nil
}

// Bootstrap restores a persisted session and loads its tasks. Only the
// first call does anything; later calls return the first call's result.
// A stored JWT that has already expired is discarded.
func (m *Manager) Bootstrap(ctx context.Context) Result {
	m.bootOnce.Do(func() {
		c, ok := m.creds.Get()
		if !ok {
			m.bootResult = failed(OpRefresh, KindNoSession, ErrNoSession)
			return
		}
		if m.tokenExpired(c.Token) {
			m.log.Debug("stored token has expired; discarding session")
			if err := m.creds.Clear(); err != nil {
				m.log.WithError(err).Warn("failed to clear stored session")
			}
			m.bootResult = failed(OpRefresh, KindNoSession, ErrNoSession)
			return
		}

		m.mu.Lock()
		m.session = &Session{Token: c.Token, Name: c.Name}
		m.mu.Unlock()

		m.bootResult = m.RefreshTasks(ctx)
	})
	return m.bootResult
}

// Login authenticates, persists the session and loads the user's tasks.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	res, err := m.svc.Login(ctx, service.Credentials{Email: email, Password: password})
	if err != nil {
		return m.fail(OpLogin, "", err)
	}

	if err := m.creds.Set(res.Token, res.Name); err != nil {
		m.log.WithError(err).Warn("failed to persist session")
	}

	m.mu.Lock()
	m.session = &Session{Token: res.Token, Name: res.Name}
	m.tasks = nil
	m.mu.Unlock()

	r := succeeded(OpLogin)
	report(m.notes, r, false)

	m.RefreshTasks(ctx)
	return r
}

// Register creates an account. It never logs in; r.OK() tells the caller
// whether to switch to the login view.
func (m *Manager) Register(ctx context.Context, email, password, name string) Result {
	err := m.svc.Register(ctx, service.Registration{Email: email, Password: password, Name: name})
	if err != nil {
		return m.fail(OpRegister, "", err)
	}
	r := succeeded(OpRegister)
	report(m.notes, r, false)
	return r
}

// Logout forgets the session and the task collection. It always succeeds
// and makes no server call.
func (m *Manager) Logout() Result {
	if err := m.creds.Clear(); err != nil {
		m.log.WithError(err).Warn("failed to clear stored session")
	}
	m.endSession("")

	r := succeeded(OpLogout)
	report(m.notes, r, false)
	return r
}

// RefreshTasks replaces the local collection with the server's.
// On failure the local collection is left as it was.
func (m *Manager) RefreshTasks(ctx context.Context) Result {
	token, ok := m.token()
	if !ok {
		return failed(OpRefresh, KindNoSession, ErrNoSession)
	}

	list, err := m.svc.ListTasks(ctx, token)
	if err != nil {
		return m.fail(OpRefresh, token, err)
	}

	if !m.apply(token, func() { m.tasks = cloneTasks(list) }) {
		return m.stale(OpRefresh, nil)
	}
	return Result{Op: OpRefresh, Kind: KindOK}
}

// AddTask creates a task and puts the server's copy at the head of the
// local collection.
func (m *Manager) AddTask(ctx context.Context, title, description string) Result {
	if strings.TrimSpace(title) == "" {
		return failed(OpAdd, KindValidation, ErrTitleRequired)
	}
	token, ok := m.token()
	if !ok {
		return failed(OpAdd, KindNoSession, ErrNoSession)
	}

	task, err := m.svc.CreateTask(ctx, token, title, description)
	if err != nil {
		return m.fail(OpAdd, token, err)
	}

	if !m.apply(token, func() { m.tasks = append([]service.Task{task}, m.tasks...) }) {
		return m.stale(OpAdd, nil)
	}

	r := Result{Op: OpAdd, Kind: KindOK, Task: &task}
	report(m.notes, r, false)
	return r
}

// UpdateTask changes a task's title and description once the server
// confirms, merging the returned fields into the local copy.
func (m *Manager) UpdateTask(ctx context.Context, id, title, description string) Result {
	if strings.TrimSpace(title) == "" {
		return failed(OpUpdate, KindValidation, ErrTitleRequired)
	}
	token, ok := m.token()
	if !ok {
		return failed(OpUpdate, KindNoSession, ErrNoSession)
	}

	patch := service.TaskPatch{Title: &title, Description: &description}
	updated, err := m.svc.UpdateTask(ctx, token, id, patch)
	if err != nil {
		return m.fail(OpUpdate, token, err)
	}

	merged, ok := m.merge(token, id, updated)
	if !ok {
		return m.stale(OpUpdate, nil)
	}
	r := Result{Op: OpUpdate, Kind: KindOK, Task: &merged}
	report(m.notes, r, false)
	return r
}

// ToggleComplete sets a task's completed flag. The local copy is updated
// from the server's answer, like UpdateTask.
func (m *Manager) ToggleComplete(ctx context.Context, id string, completed bool) Result {
	token, ok := m.token()
	if !ok {
		return failed(OpToggle, KindNoSession, ErrNoSession)
	}

	updated, err := m.svc.UpdateTask(ctx, token, id, service.TaskPatch{Completed: &completed})
	if err != nil {
		return m.fail(OpToggle, token, err)
	}

	merged, ok := m.merge(token, id, updated)
	if !ok {
		return m.stale(OpToggle, nil)
	}
	r := Result{Op: OpToggle, Kind: KindOK, Task: &merged}
	report(m.notes, r, merged.Completed)
	return r
}

// DeleteTask deletes a task and drops it from the local collection.
func (m *Manager) DeleteTask(ctx context.Context, id string) Result {
	token, ok := m.token()
	if !ok {
		return failed(OpDelete, KindNoSession, ErrNoSession)
	}

	if err := m.svc.DeleteTask(ctx, token, id); err != nil {
		return m.fail(OpDelete, token, err)
	}

	applied := m.apply(token, func() {
		for i, t := range m.tasks {
			if t.ID == id {
				m.tasks = append(m.tasks[:i:i], m.tasks[i+1:]...)
				return
			}
		}
	})
	if !applied {
		return m.stale(OpDelete, nil)
	}

	r := succeeded(OpDelete)
	report(m.notes, r, false)
	return r
}

// Health asks the server for its status. It needs no session and
// reports nothing.
func (m *Manager) Health(ctx context.Context) (string, error) {
	return m.svc.Health(ctx)
}

// fail builds and reports a failed result. token is the session token the
// call carried, or "" for unauthenticated calls. A 401 on an authenticated
// call ends that session. Failures for a session that has already ended are
// stale and not reported.
func (m *Manager) fail(op Op, token string, err error) Result {
	kind := classify(err, token != "")
	m.log.WithError(err).WithFields(logrus.Fields{
		"op":   string(op),
		"kind": kind.String(),
	}).Debug("operation failed")

	switch {
	case kind == KindUnauthorized:
		if !m.endSession(token) {
			return m.stale(op, err)
		}
		if cerr := m.creds.Clear(); cerr != nil {
			m.log.WithError(cerr).Warn("failed to clear stored session")
		}
	case token != "" && !m.current(token):
		return m.stale(op, err)
	}

	r := failed(op, kind, err)
	report(m.notes, r, false)
	return r
}

// stale builds the result for an answer that arrived after its session
// ended. err is the call's error, if it failed.
func (m *Manager) stale(op Op, err error) Result {
	if err == nil {
		err = ErrSessionEnded
	}
	m.log.WithError(err).WithField("op", string(op)).Debug("dropping response for ended session")
	return failed(op, KindStale, err)
}

// current reports whether token belongs to the active session.
func (m *Manager) current(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.Token == token
}

func (m *Manager) token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return "", false
	}
	return m.session.Token, true
}

// apply runs fn under the lock if the session that issued the call is
// still current. Responses for a session that has since ended are dropped
// so that a cleared session always has an empty collection.
func (m *Manager) apply(token string, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.session.Token != token {
		return false
	}
	fn()
	return true
}

// endSession clears the session and the collection. A non-empty token
// restricts this to that session. It reports whether anything was cleared.
func (m *Manager) endSession(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != "" && (m.session == nil || m.session.Token != token) {
		return false
	}
	m.session = nil
	m.tasks = nil
	return true
}

// merge folds a server task into the local task with the given ID and
// returns the merged value. If the task is not held locally the server's
// copy is returned unchanged. It reports false when token's session has
// ended.
func (m *Manager) merge(token, id string, remote service.Task) (service.Task, bool) {
	merged := remote
	ok := m.apply(token, func() {
		for i, local := range m.tasks {
			if local.ID != id {
				continue
			}
			merged = mergeTask(local, remote)
			m.tasks[i] = merged
			return
		}
	})
	return merged, ok
}

func mergeTask(local, remote service.Task) service.Task {
	out := local
	if remote.Title != "" {
		out.Title = remote.Title
	}
	out.Description = remote.Description
	out.Completed = remote.Completed
	if !remote.CreatedAt.IsZero() {
		out.CreatedAt = remote.CreatedAt
	}
	return out
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Tokens that are not JWTs are treated as opaque and never expire here.
func (m *Manager) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(m.now())
}

func cloneTasks(in []service.Task) []service.Task {
	if in == nil {
		return nil
	}
	out := make([]service.Task, len(in))
	copy(out, in)
	return out
}
