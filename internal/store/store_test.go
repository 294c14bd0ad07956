package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tasktrack/internal/config"
)

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		u, err := s.CreateUser(ctx, User{Email: " Ada@Example.com ", Name: "Ada", PasswordHash: "hash"})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if u.ID == "" || u.CreatedAt.IsZero() {
			t.Errorf("expected generated ID and CreatedAt, got %+v", u)
		}
		if u.Email != "ada@example.com" {
			t.Errorf("expected lower-case email, got %q", u.Email)
		}

		got, err := s.UserByEmail(ctx, "ADA@example.com")
		if err != nil {
			t.Fatalf("UserByEmail: %v", err)
		}
		if got.ID != u.ID || got.Name != "Ada" || got.PasswordHash != "hash" {
			t.Errorf("unexpected user: %+v", got)
		}

		if _, err := s.CreateUser(ctx, User{Email: "ada@example.com", Name: "Other", PasswordHash: "x"}); !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("expected ErrDuplicateEmail, got %v", err)
		}
		if _, err := s.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("tasks", func(t *testing.T) {
		owner, err := s.CreateUser(ctx, User{Email: "owner@example.com", Name: "Owner", PasswordHash: "h"})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		other, err := s.CreateUser(ctx, User{Email: "other@example.com", Name: "Other", PasswordHash: "h"})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}

		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		first, err := s.CreateTask(ctx, Task{UserID: owner.ID, Title: "first", CreatedAt: base})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		second, err := s.CreateTask(ctx, Task{UserID: owner.ID, Title: "second", Description: "d", CreatedAt: base.Add(time.Minute)})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if first.ID == "" || first.ID == second.ID {
			t.Fatalf("expected distinct IDs, got %q and %q", first.ID, second.ID)
		}

		list, err := s.ListTasks(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
			t.Fatalf("expected newest first, got %+v", list)
		}
		if !list[0].CreatedAt.Equal(second.CreatedAt) || list[0].Description != "d" {
			t.Errorf("unexpected task: %+v", list[0])
		}

		if list, _ := s.ListTasks(ctx, other.ID); len(list) != 0 {
			t.Errorf("expected no tasks for other user, got %d", len(list))
		}

		done := true
		updated, err := s.UpdateTask(ctx, owner.ID, first.ID, TaskUpdate{Completed: &done})
		if err != nil {
			t.Fatalf("UpdateTask: %v", err)
		}
		if !updated.Completed || updated.Title != "first" {
			t.Errorf("expected only completed to change, got %+v", updated)
		}

		title := "renamed"
		if _, err := s.UpdateTask(ctx, other.ID, first.ID, TaskUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for foreign task, got %v", err)
		}
		if _, err := s.UpdateTask(ctx, owner.ID, "missing", TaskUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		if err := s.DeleteTask(ctx, other.ID, first.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for foreign delete, got %v", err)
		}
		if err := s.DeleteTask(ctx, owner.ID, first.ID); err != nil {
			t.Fatalf("DeleteTask: %v", err)
		}
		if err := s.DeleteTask(ctx, owner.ID, first.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}

		list, _ = s.ListTasks(ctx, owner.ID)
		if len(list) != 1 || list[0].ID != second.ID {
			t.Errorf("expected only second task left, got %+v", list)
		}
	})

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "tasks.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close(context.Background())
	testStore(t, s)
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close(context.Background())
	testStore(t, s)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	u, err := s.CreateUser(ctx, User{Email: "ada@example.com", Name: "Ada", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateTask(ctx, Task{UserID: u.ID, Title: "kept"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	s.Close(ctx)

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close(ctx)
	list, err := s.ListTasks(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "kept" {
		t.Errorf("expected persisted task, got %+v", list)
	}
}

// TestNeo4j needs a disposable database, e.g.
// NEO4J_TEST_URI=neo4j://localhost:7687 NEO4J_TEST_PASSWORD=secret.
func TestNeo4j(t *testing.T) {
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		t.Skip("NEO4J_TEST_URI not set")
	}
	ctx := context.Background()
	s, err := OpenNeo4j(ctx, uri, "neo4j", os.Getenv("NEO4J_TEST_PASSWORD"))
	if err != nil {
		t.Fatalf("OpenNeo4j: %v", err)
	}
	defer s.Close(ctx)
	if _, err := s.write(ctx, "MATCH (n) WHERE n:User OR n:Task DETACH DELETE n", nil); err != nil {
		t.Fatalf("reset: %v", err)
	}
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Driver: config.DriverMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("expected *Memory, got %T", s)
	}

	s, err = Open(ctx, config.StoreConfig{Driver: config.DriverSQLite, URI: filepath.Join(t.TempDir(), "t.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer s.Close(ctx)
	if _, ok := s.(*SQLite); !ok {
		t.Errorf("expected *SQLite, got %T", s)
	}

	if _, err := Open(ctx, config.StoreConfig{Driver: "mongo"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
