package session

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// ControlDirWatcher watches the control directory for session
// directories created by another process (e.g. a vtcapture run
// started from a different shell) and folds them into this Manager's
// registry so ListSessions/GetSession see them without a restart.
// Grounded on the pack's pkg/session/control_watcher.go
// (noppefoxwolf-vibetunnel), adapted from that package's own
// RegisterExternalSession to this Manager's loadSession.
type ControlDirWatcher struct {
	manager *Manager
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewControlDirWatcher creates a watcher for manager's control directory.
func NewControlDirWatcher(manager *Manager) *ControlDirWatcher {
	return &ControlDirWatcher{manager: manager, done: make(chan struct{})}
}

// Start begins watching. The caller should call Stop when done.
func (w *ControlDirWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(w.manager.controlPath); err != nil {
		watcher.Close()
		return err
	}

	go w.handleEvents()
	log.Printf("[INFO] session: watching control directory %s", w.manager.controlPath)
	return nil
}

// Stop stops the watcher.
func (w *ControlDirWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	close(w.done)
	w.watcher.Close()
}

func (w *ControlDirWatcher) handleEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.processEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] session: control directory watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *ControlDirWatcher) processEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 {
		return
	}

	id := filepath.Base(event.Name)
	if _, err := uuid.Parse(id); err != nil {
		return
	}

	w.manager.mutex.RLock()
	_, known := w.manager.runningSessions[id]
	w.manager.mutex.RUnlock()
	if known {
		return
	}

	sess, err := loadSession(w.manager.controlPath, id, w.manager)
	if err != nil {
		// info.json may not be written yet; the watcher does not retry
		// this directory (only Create events on the control directory
		// are handled).
		return
	}

	w.manager.mutex.Lock()
	w.manager.runningSessions[id] = sess
	w.manager.mutex.Unlock()
	log.Printf("[INFO] session: registered externally created session %s", id)
}
