package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vtcore/vterm/pkg/termsocket"
)

// wireSnapshot is the JSON frame sent to a structured (non-raw)
// client: the fully rendered screen plus cursor position, rather than
// the raw PTY bytes RawTerminalWebSocketHandler forwards.
type wireSnapshot struct {
	Type       string   `json:"type"`
	Lines      []string `json:"lines"`
	CursorX    int      `json:"cursorX"`
	CursorY    int      `json:"cursorY"`
	SequenceID int64    `json:"sequenceId"`
}

// ScreenWebSocketHandler streams debounced vt.Screen snapshots over a
// JSON websocket, for clients that want a ready-rendered grid instead
// of raw PTY bytes. Grounded on the teacher's buffer-websocket
// counterpart to raw_websocket.go and on pkg/termsocket.Manager's
// subscriber model.
type ScreenWebSocketHandler struct {
	screens *termsocket.Manager
}

func NewScreenWebSocketHandler(screens *termsocket.Manager) *ScreenWebSocketHandler {
	return &ScreenWebSocketHandler{screens: screens}
}

func (h *ScreenWebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ScreenWebSocket] Failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if initial, err := h.screens.GetSnapshot(sessionID); err == nil {
		h.send(conn, initial)
	}

	unsubscribe, err := h.screens.SubscribeToScreenChanges(sessionID, func(sid string, snap *termsocket.Snapshot) {
		h.send(conn, snap)
	})
	if err != nil {
		log.Printf("[ScreenWebSocket] Failed to subscribe: %v", err)
		return
	}
	defer unsubscribe()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ScreenWebSocketHandler) send(conn *websocket.Conn, snap *termsocket.Snapshot) {
	frame := wireSnapshot{
		Type:       "snapshot",
		Lines:      snap.Lines,
		CursorX:    snap.Cursor.X,
		CursorY:    snap.Cursor.Y,
		SequenceID: snap.SequenceID,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, data)
}
