package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tasktrack/internal/service"
)

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token")
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var creds service.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "a@b.com" || creds.Password != "secret1" {
			t.Errorf("unexpected body %+v", creds)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "jwt", "name": "Ada"})
	}))
	defer srv.Close()

	res, err := New(srv.URL).Login(context.Background(), service.Credentials{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "jwt" || res.Name != "Ada" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestLogin_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), service.Credentials{Email: "a@b.com", Password: "nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	code, ok := service.StatusCode(err)
	if !ok || code != http.StatusUnauthorized {
		t.Errorf("expected 401 rejection, got %d %v", code, ok)
	}
	if service.IsTransport(err) {
		t.Error("rejection must not be a transport error")
	}
	if !strings.Contains(err.Error(), "Invalid credentials") {
		t.Errorf("expected server message in error, got %q", err.Error())
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).ListTasks(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if !service.IsTransport(err) {
		t.Errorf("expected transport error, got %T: %v", err, err)
	}
	if _, ok := service.StatusCode(err); ok {
		t.Error("transport failure must not carry a status code")
	}
}

func TestListTasks_AttachesBearer(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer header, got %q", got)
		}
		json.NewEncoder(w).Encode([]service.Task{{ID: "1", Title: "Buy milk", CreatedAt: created}})
	}))
	defer srv.Close()

	tasks, err := New(srv.URL).ListTasks(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" || !tasks[0].CreatedAt.Equal(created) {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestUpdateTask_SendsOnlyPatchedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tasks/abc" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 1 || body["completed"] != true {
			t.Errorf("expected only completed=true, got %v", body)
		}
		json.NewEncoder(w).Encode(service.Task{ID: "abc", Title: "t", Completed: true})
	}))
	defer srv.Close()

	done := true
	task, err := New(srv.URL).UpdateTask(context.Background(), "tok", "abc", service.TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !task.Completed {
		t.Error("expected completed task")
	}
}

func TestDeleteTask_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteTask(context.Background(), "tok", "abc")
	code, ok := service.StatusCode(err)
	if !ok || code != http.StatusInternalServerError {
		t.Errorf("expected 500 rejection, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	status, err := New(srv.URL + "/").Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "ok" {
		t.Errorf("expected ok, got %q", status)
	}
}

func TestCancelledContextIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(srv.URL).Register(ctx, service.Registration{Email: "a@b.com"})
	if !service.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
}
