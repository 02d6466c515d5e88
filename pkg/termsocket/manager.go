// Package termsocket fans a session's live vt.Screen out to any
// number of subscribers with the teacher's 50ms debounce, driven by
// the session manager's direct PTY-output callbacks. GetOrCreateScreen
// starts only the callback-driven monitor; the stream-out polling
// monitor (monitorSessionPolling) is not started by it, so a session
// whose PTY runs in another process produces no live notifications.
// Grounded on the teacher's pkg/termsocket manager.go, adapted from a
// terminal.TerminalBuffer of raw cells to a vt.Screen snapshot.
package termsocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/vtcore/vterm/internal/vt"
	"github.com/vtcore/vterm/pkg/session"
)

// Snapshot is a point-in-time render of a session's screen, the unit
// termsocket delivers to subscribers.
type Snapshot struct {
	Lines      []string
	Cursor     vt.Cursor
	SequenceID int64
}

// SessionScreen pairs a session with the last snapshot sent, which is
// compared against a fresh render to detect whether a debounced
// notification actually changed anything, and the sequence counter
// that numbers snapshots.
type SessionScreen struct {
	Session *session.Session

	mu           sync.RWMutex
	sequence     int64
	lastSnapshot *Snapshot
}

// Manager fans out screen snapshots to subscribers per session.
type Manager struct {
	sessionManager *session.Manager
	screens        map[string]*SessionScreen
	mu             sync.RWMutex
	subscribers    map[string][]chan *Snapshot
	subMu          sync.RWMutex
	shutdownCh     chan struct{}
	wg             sync.WaitGroup

	notificationTimers map[string]*time.Timer
	timerMu            sync.RWMutex
}

// NewManager creates a new terminal socket manager.
func NewManager(sessionManager *session.Manager) *Manager {
	return &Manager{
		sessionManager:     sessionManager,
		screens:            make(map[string]*SessionScreen),
		subscribers:        make(map[string][]chan *Snapshot),
		shutdownCh:         make(chan struct{}),
		notificationTimers: make(map[string]*time.Timer),
	}
}

// GetOrCreateScreen gets or creates the tracked screen for a session.
func (m *Manager) GetOrCreateScreen(sessionID string) (*SessionScreen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ss, exists := m.screens[sessionID]; exists {
		return ss, nil
	}

	sess, err := m.sessionManager.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	ss := &SessionScreen{Session: sess}
	m.screens[sessionID] = ss

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.monitorSession(sessionID, ss)
	}()

	return ss, nil
}

func (ss *SessionScreen) snapshot() *Snapshot {
	screen := ss.Session.Screen()
	ss.mu.Lock()
	ss.sequence++
	seq := ss.sequence
	ss.mu.Unlock()
	return &Snapshot{
		Lines:      screen.Display(),
		Cursor:     screen.Cursor(),
		SequenceID: seq,
	}
}

// GetSnapshot returns the current rendered screen for a session.
func (m *Manager) GetSnapshot(sessionID string) (*Snapshot, error) {
	ss, err := m.GetOrCreateScreen(sessionID)
	if err != nil {
		return nil, err
	}
	return ss.snapshot(), nil
}

// SubscribeToScreenChanges subscribes to screen changes for a session.
// The returned function unsubscribes.
func (m *Manager) SubscribeToScreenChanges(sessionID string, callback func(string, *Snapshot)) (func(), error) {
	if _, err := m.GetOrCreateScreen(sessionID); err != nil {
		return nil, err
	}

	ch := make(chan *Snapshot, 10)

	m.subMu.Lock()
	m.subscribers[sessionID] = append(m.subscribers[sessionID], ch)
	m.subMu.Unlock()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case snapshot := <-ch:
				callback(sessionID, snapshot)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		m.subMu.Lock()
		defer m.subMu.Unlock()

		subs := m.subscribers[sessionID]
		for i, sub := range subs {
			if sub == ch {
				m.subscribers[sessionID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
		if len(m.subscribers[sessionID]) == 0 {
			delete(m.subscribers, sessionID)
		}
	}, nil
}

// monitorSession watches a session's liveness and drives debounced
// notifications off the Session's own direct-output callback — the
// Session already feeds the Parser synchronously in its read loop, so
// this only needs to schedule a snapshot, not touch the Screen.
func (m *Manager) monitorSession(sessionID string, ss *SessionScreen) {
	if m.sessionManager != nil {
		m.sessionManager.RegisterDirectOutputCallback(sessionID, func(sid string, data []byte) {
			m.scheduleNotification(sessionID, ss)
		})
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !ss.Session.IsAlive() {
				m.cleanupSession(sessionID)
				return
			}
		case <-m.shutdownCh:
			m.cleanupSession(sessionID)
			return
		}
	}
}

func (m *Manager) cleanupSession(sessionID string) {
	if m.sessionManager != nil {
		m.sessionManager.UnregisterDirectOutputCallback(sessionID, nil)
	}
	m.timerMu.Lock()
	if timer, exists := m.notificationTimers[sessionID]; exists && timer != nil {
		timer.Stop()
		delete(m.notificationTimers, sessionID)
	}
	m.timerMu.Unlock()

	m.mu.Lock()
	delete(m.screens, sessionID)
	m.mu.Unlock()
}

// monitorSessionPolling polls the asciinema stream-out file of a
// session whose process lives in another daemon instance and replays
// output through its own Parser/Screen instead of relying on an
// in-process direct callback. GetOrCreateScreen does not start it.
func (m *Manager) monitorSessionPolling(sessionID string, ss *SessionScreen) {
	streamPath := ss.Session.StreamOutPath()
	lastPos := int64(0)
	parser := vt.NewParser(ss.Session.Screen())

	for {
		select {
		case <-m.shutdownCh:
			return
		default:
		}

		if !ss.Session.IsAlive() {
			break
		}

		update, newPos, err := readStreamContent(streamPath, lastPos)
		if err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] termsocket: error reading stream content: %v", err)
		}

		if update != nil && (len(update.OutputData) > 0 || update.Resize != nil) {
			if len(update.OutputData) > 0 {
				parser.Feed(update.OutputData)
			}
			if update.Resize != nil {
				ss.Session.Screen().Resize(update.Resize.Width, update.Resize.Height)
			}
			m.notifySubscribers(sessionID, ss.snapshot())
		}

		lastPos = newPos
		time.Sleep(50 * time.Millisecond)
	}

	m.mu.Lock()
	delete(m.screens, sessionID)
	m.mu.Unlock()
}

// scheduleNotification debounces notifications by 50ms, matching the
// teacher's buffer-notification cadence, and skips delivery when the
// freshly taken snapshot's rendered lines and cursor are unchanged.
func (m *Manager) scheduleNotification(sessionID string, ss *SessionScreen) {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()

	if timer, exists := m.notificationTimers[sessionID]; exists && timer != nil {
		timer.Stop()
	}

	m.notificationTimers[sessionID] = time.AfterFunc(50*time.Millisecond, func() {
		snap := ss.snapshot()

		ss.mu.Lock()
		changed := ss.lastSnapshot == nil || !sameRender(ss.lastSnapshot, snap)
		ss.lastSnapshot = snap
		ss.mu.Unlock()

		if changed {
			m.notifySubscribers(sessionID, snap)
		}

		m.timerMu.Lock()
		delete(m.notificationTimers, sessionID)
		m.timerMu.Unlock()
	})
}

func sameRender(a, b *Snapshot) bool {
	if a.Cursor != b.Cursor || len(a.Lines) != len(b.Lines) {
		return false
	}
	for i := range a.Lines {
		if a.Lines[i] != b.Lines[i] {
			return false
		}
	}
	return true
}

func (m *Manager) notifySubscribers(sessionID string, snapshot *Snapshot) {
	m.subMu.RLock()
	subs := m.subscribers[sessionID]
	m.subMu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// StreamUpdate represents an update from the stream file.
type StreamUpdate struct {
	OutputData []byte
	Resize     *ResizeEvent
}

// ResizeEvent represents a terminal resize.
type ResizeEvent struct {
	Width  int
	Height int
}

// readStreamContent reads new content from an asciinema stream file
// and extracts any output/resize events appended since lastPos.
func readStreamContent(path string, lastPos int64) (*StreamUpdate, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, lastPos, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, lastPos, err
	}

	currentSize := stat.Size()
	if currentSize <= lastPos {
		return nil, lastPos, nil
	}

	if _, err := file.Seek(lastPos, 0); err != nil {
		return nil, lastPos, err
	}

	newContent := make([]byte, currentSize-lastPos)
	n, err := file.Read(newContent)
	if err != nil && err != io.EOF {
		return nil, lastPos, err
	}

	update := &StreamUpdate{OutputData: []byte{}}
	decoder := json.NewDecoder(bytes.NewReader(newContent[:n]))

	if lastPos == 0 {
		var header map[string]interface{}
		if err := decoder.Decode(&header); err == nil {
			// Header consumed; continue to events.
		}
	}

	for decoder.More() {
		var event []interface{}
		if err := decoder.Decode(&event); err != nil {
			break
		}
		if len(event) < 3 {
			continue
		}
		eventType, ok := event[1].(string)
		if !ok {
			continue
		}
		switch eventType {
		case "o":
			if data, ok := event[2].(string); ok {
				update.OutputData = append(update.OutputData, []byte(data)...)
			}
		case "r":
			if data, ok := event[2].(string); ok {
				var width, height int
				if _, err := fmt.Sscanf(data, "%dx%d", &width, &height); err == nil {
					update.Resize = &ResizeEvent{Width: width, Height: height}
				}
			}
		}
	}

	return update, lastPos + int64(n), nil
}

// Shutdown gracefully shuts down the manager.
func (m *Manager) Shutdown() {
	log.Println("Shutting down terminal screen manager...")

	close(m.shutdownCh)
	m.wg.Wait()

	m.subMu.Lock()
	for _, subs := range m.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	m.subscribers = make(map[string][]chan *Snapshot)
	m.subMu.Unlock()

	m.mu.Lock()
	m.screens = make(map[string]*SessionScreen)
	m.mu.Unlock()

	log.Println("Terminal screen manager shutdown complete")
}
