package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/vtcore/vterm/internal/vt"
)

// Status mirrors a session's lifecycle state, persisted in info.json
// alongside the rest of Info.
type Status string

const (
	StatusRunning Status = "running"
	StatusExited  Status = "exited"
)

// Config describes how to spawn a session's command.
type Config struct {
	Cmd       []string
	Cwd       string
	Env       []string
	Name      string
	Cols      int
	Rows      int
	IsSpawned bool
}

// Info is the subset of Session state persisted to info.json and
// returned by ListSessions, grounded on the teacher's manager.go use
// of session.info.{Status,Pid,StartedAt} and StatusExited.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cmd       []string  `json:"cmd"`
	Cwd       string    `json:"cwd"`
	Pid       int       `json:"pid"`
	Status    string    `json:"status"`
	ExitCode  *int      `json:"exitCode,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	Cols      int       `json:"cols"`
	Rows      int       `json:"rows"`
}

// Session owns one PTY-backed command, the vt.Screen it drives, and
// the on-disk record (info.json + an asciinema-format stream-out.jsonl)
// the teacher's Manager expects a session directory to contain.
type Session struct {
	ID   string
	Name string

	controlPath string
	manager     *Manager

	mu   sync.Mutex
	info *Info

	ptmx *os.File
	cmd  *exec.Cmd

	screen *vt.Screen
	parser *vt.Parser

	streamFile *os.File
	started    time.Time
	extraEnv   []string
}

func newSession(controlPath string, config Config, manager *Manager) (*Session, error) {
	return newSessionWithID(controlPath, uuid.NewString(), config, manager)
}

func newSessionWithID(controlPath string, id string, config Config, manager *Manager) (*Session, error) {
	cols, rows := config.Cols, config.Rows
	if cols == 0 {
		cols = 80
	}
	if rows == 0 {
		rows = 24
	}

	s := &Session{
		ID:          id,
		Name:        config.Name,
		controlPath: controlPath,
		manager:     manager,
		info: &Info{
			ID:     id,
			Name:   config.Name,
			Cmd:    config.Cmd,
			Cwd:    config.Cwd,
			Status: string(StatusRunning),
			Cols:   cols,
			Rows:   rows,
		},
		screen:   vt.NewScreen(cols, rows),
		extraEnv: config.Env,
	}
	s.parser = vt.NewParser(s.screen)
	s.screen.SetProcessInputWriter(func(b []byte) {
		if s.ptmx != nil {
			_, _ = s.ptmx.Write(b)
		}
	})

	if err := os.MkdirAll(s.Path(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := s.writeInfo(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadSession reconstructs a Session record from disk for a session
// that may have been started by a previous process. Its PTY and
// in-memory Screen are not restored — only Info is available until
// Start is called again.
func loadSession(controlPath string, id string, manager *Manager) (*Session, error) {
	path := filepath.Join(controlPath, id)
	raw, err := os.ReadFile(filepath.Join(path, "info.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read session info for %s: %w", id, err)
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to parse session info for %s: %w", id, err)
	}
	cols, rows := info.Cols, info.Rows
	if cols == 0 {
		cols = 80
	}
	if rows == 0 {
		rows = 24
	}
	s := &Session{
		ID:          id,
		Name:        info.Name,
		controlPath: controlPath,
		manager:     manager,
		info:        &info,
		screen:      vt.NewScreen(cols, rows),
	}
	s.parser = vt.NewParser(s.screen)
	return s, nil
}

// Path returns the session's on-disk directory.
func (s *Session) Path() string { return filepath.Join(s.controlPath, s.ID) }

// StreamOutPath is the asciinema-format output recording consumed by
// pkg/termsocket's polling fallback.
func (s *Session) StreamOutPath() string { return filepath.Join(s.Path(), "stream-out.jsonl") }

func (s *Session) infoPath() string { return filepath.Join(s.Path(), "info.json") }

func (s *Session) writeInfo() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.info, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(s.infoPath(), data, 0o644)
}

// Start spawns the command under a PTY and begins streaming its
// output through the Parser into the Screen, persisting an asciinema
// recording as it goes. Grounded on the teacher's PTY lifecycle
// (creack/pty) and its asciinema-cast stream-out convention (see
// pkg/termsocket's readStreamContent).
func (s *Session) Start() error {
	if len(s.info.Cmd) == 0 {
		return fmt.Errorf("session %s: no command configured", s.ID)
	}

	cmd := exec.Command(s.info.Cmd[0], s.info.Cmd[1:]...)
	cmd.Dir = s.info.Cwd
	cmd.Env = append(os.Environ(), s.extraEnv...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(s.info.Cols),
		Rows: uint16(s.info.Rows),
	})
	if err != nil {
		return fmt.Errorf("failed to start pty for session %s: %w", s.ID, err)
	}

	s.mu.Lock()
	s.ptmx = ptmx
	s.cmd = cmd
	s.started = time.Now()
	s.info.Pid = cmd.Process.Pid
	s.info.StartedAt = s.started
	s.info.Status = string(StatusRunning)
	s.mu.Unlock()

	if err := s.writeInfo(); err != nil {
		log.Printf("[WARN] session %s: failed to persist info: %v", s.ID, err)
	}

	streamFile, err := os.Create(s.StreamOutPath())
	if err != nil {
		log.Printf("[WARN] session %s: failed to open stream file: %v", s.ID, err)
	} else {
		s.streamFile = streamFile
		s.writeStreamHeader()
	}

	go s.readLoop()
	go s.waitLoop()
	return nil
}

func (s *Session) writeStreamHeader() {
	header := map[string]any{
		"version": 2,
		"width":   s.info.Cols,
		"height":  s.info.Rows,
		"command": s.info.Cmd,
	}
	line, err := json.Marshal(header)
	if err != nil {
		return
	}
	s.appendStreamLine(line)
}

func (s *Session) appendStreamLine(line []byte) {
	if s.streamFile == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamFile.Write(line)
	s.streamFile.Write([]byte("\n"))
}

// recordOutput appends one asciinema "o" event for data read from the PTY.
func (s *Session) recordOutput(data []byte) {
	event := []any{time.Since(s.started).Seconds(), "o", string(data)}
	line, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.appendStreamLine(line)
}

func (s *Session) readLoop() {
	buf := make([]byte, 16*1024)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			s.mu.Lock()
			s.parser.Feed(data)
			s.mu.Unlock()
			s.recordOutput(data)
			if s.manager != nil {
				s.manager.NotifyDirectOutput(s.ID, data)
				s.manager.NotifyRawPTY(s.ID, data)
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) waitLoop() {
	err := s.cmd.Wait()
	s.mu.Lock()
	s.info.Status = string(StatusExited)
	if s.cmd.ProcessState != nil {
		code := s.cmd.ProcessState.ExitCode()
		s.info.ExitCode = &code
	}
	s.mu.Unlock()
	if err != nil {
		log.Printf("[DEBUG] session %s process exited: %v", s.ID, err)
	}
	if err := s.writeInfo(); err != nil {
		log.Printf("[WARN] session %s: failed to persist final info: %v", s.ID, err)
	}
	if s.streamFile != nil {
		s.streamFile.Close()
	}
}

// Write sends input bytes to the PTY (keystrokes from an attached client).
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	ptmx := s.ptmx
	s.mu.Unlock()
	if ptmx == nil {
		return 0, fmt.Errorf("session %s is not running", s.ID)
	}
	return ptmx.Write(data)
}

// Resize changes both the PTY's window size and the Screen's geometry.
func (s *Session) Resize(cols, rows int) error {
	s.mu.Lock()
	s.screen.Resize(cols, rows)
	s.info.Cols, s.info.Rows = cols, rows
	ptmx := s.ptmx
	s.mu.Unlock()
	if ptmx == nil {
		return nil
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}); err != nil {
		return fmt.Errorf("failed to resize pty for session %s: %w", s.ID, err)
	}
	s.appendStreamLine(mustMarshal([]any{time.Since(s.started).Seconds(), "r", fmt.Sprintf("%dx%d", cols, rows)}))
	return nil
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// Screen returns the live terminal model a viewer should render.
func (s *Session) Screen() *vt.Screen {
	return s.screen
}

// GetInfo returns a copy of the session's persisted metadata.
func (s *Session) GetInfo() *Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := *s.info
	return &info
}

// IsAlive reports whether the session's process is still running, by
// sending signal 0 (no-op) to its PID. A cached exited status or a zero
// PID reports false without signaling.
func (s *Session) IsAlive() bool {
	s.mu.Lock()
	pid := s.info.Pid
	status := s.info.Status
	s.mu.Unlock()
	if status == string(StatusExited) || pid == 0 {
		return false
	}
	return syscall.Kill(pid, 0) == nil
}

// UpdateStatus refreshes Info.Status from the live process and
// persists it, matching the teacher's UpdateAllSessionStatuses flow.
func (s *Session) UpdateStatus() error {
	if !s.IsAlive() {
		s.mu.Lock()
		s.info.Status = string(StatusExited)
		s.mu.Unlock()
	}
	return s.writeInfo()
}
