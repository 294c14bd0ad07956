package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"tasktrack/internal/auth"
	"tasktrack/internal/service"
	"tasktrack/internal/store"
	"tasktrack/internal/validate"
)

const (
	internalMessage = "Something went wrong!"
	maxBodyBytes    = 1 << 20
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.WithError(err).Warn("store ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req service.Registration
	if !decode(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Form(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, err)
		return
	}
	_, err = s.store.CreateUser(r.Context(), store.User{Email: req.Email, Name: req.Name, PasswordHash: hash})
	if errors.Is(err, store.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req service.Credentials
	if !decode(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Form(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.LoginResult{Token: token, Name: user.Name})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListTasks(r.Context(), userID(r.Context()))
	if err != nil {
		s.internalError(w, err)
		return
	}
	out := make([]service.Task, 0, len(list))
	for _, t := range list {
		out = append(out, toWire(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Title(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.store.CreateTask(r.Context(), store.Task{
		UserID:      userID(r.Context()),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	})
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWire(task))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch service.TaskPatch
	if !decode(w, r, &patch) {
		return
	}
	if patch.Title != nil {
		if err := validate.Title(*patch.Title); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}

	upd := store.TaskUpdate{Title: patch.Title, Description: patch.Description, Completed: patch.Completed}
	task, err := s.store.UpdateTask(r.Context(), userID(r.Context()), mux.Vars(r)["id"], upd)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWire(task))
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteTask(r.Context(), userID(r.Context()), mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Task deleted"})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, internalMessage)
}

func toWire(t store.Task) service.Task {
	return service.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, messageResponse{Message: msg})
}
