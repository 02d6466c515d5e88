// Package api exposes the session manager over HTTP and WebSocket:
// REST routes for session lifecycle (mirroring the teacher's
// termsocket-adjacent endpoints) plus the two websocket handlers for
// raw PTY bytes and rendered screen snapshots.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vtcore/vterm/pkg/session"
	"github.com/vtcore/vterm/pkg/terminal"
	"github.com/vtcore/vterm/pkg/termsocket"
)

// Server wires the session and screen managers to a gorilla/mux router.
type Server struct {
	sessions *session.Manager
	screens  *termsocket.Manager
}

func NewServer(sessions *session.Manager, screens *termsocket.Manager) *Server {
	return &Server{sessions: sessions, screens: screens}
}

// Router builds the route table for this server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/sessions", s.handleListSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	r.HandleFunc("/api/sessions/{id}/resize", s.handleResize).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/input", s.handleInput).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/screen", s.handleScreenSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/screen.bin", s.handleScreenSnapshotBinary).Methods(http.MethodGet)

	r.Handle("/ws/raw", NewRawTerminalWebSocketHandler(s.sessions))
	r.Handle("/ws/screen", NewScreenWebSocketHandler(s.screens))

	return r
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.ListSessions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

type createSessionRequest struct {
	Cmd  []string `json:"cmd"`
	Cwd  string   `json:"cwd"`
	Env  []string `json:"env"`
	Name string   `json:"name"`
	Cols int      `json:"cols"`
	Rows int      `json:"rows"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Cmd) == 0 {
		http.Error(w, "cmd is required", http.StatusBadRequest)
		return
	}

	sess, err := s.sessions.CreateSession(session.Config{
		Cmd:  req.Cmd,
		Cwd:  req.Cwd,
		Env:  req.Env,
		Name: req.Name,
		Cols: req.Cols,
		Rows: req.Rows,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sess.GetInfo())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := s.sessions.GetSession(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sess.GetInfo())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.sessions.RemoveSession(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resizeRequest struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := s.sessions.GetSession(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if s.sessions.GetDoNotAllowColumnSet() {
		http.Error(w, "resizing is disabled", http.StatusForbidden)
		return
	}
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := sess.Resize(req.Cols, req.Rows); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := s.sessions.GetSession(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var req struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, err := sess.Write([]byte(req.Data)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScreenSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	snap, err := s.screens.GetSnapshot(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleScreenSnapshotBinary serves the same data as handleScreenSnapshot
// in the compact binary frame format, for clients that want to avoid
// per-cell JSON overhead.
func (s *Server) handleScreenSnapshotBinary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := s.sessions.GetSession(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	snap := terminal.NewSnapshot(sess.Screen())
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(snap.SerializeToBinary())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
