package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vtcore/vterm/pkg/session"
)

// RawTerminalWebSocketHandler streams a session's raw PTY bytes to a
// client with no screen processing in between, for clients (like an
// xterm.js frontend) that want to run their own terminal emulator.
// Grounded on the teacher's pkg/api/raw_websocket.go.
type RawTerminalWebSocketHandler struct {
	manager *session.Manager

	// lastSubscribed is the most recent sessionId named in a subscribe
	// message, used to route inbound keystrokes on this connection.
	lastSubscribed string
}

func NewRawTerminalWebSocketHandler(manager *session.Manager) *RawTerminalWebSocketHandler {
	return &RawTerminalWebSocketHandler{
		manager: manager,
	}
}

func (h *RawTerminalWebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[RawWebSocket] Failed to upgrade connection: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("[RawWebSocket] Failed to close connection: %v", err)
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[RawWebSocket] Failed to set read deadline: %v", err)
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("[RawWebSocket] Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	send := make(chan []byte, 256)
	done := make(chan struct{})
	var closeOnce sync.Once

	closeOnceFunc := func() {
		closeOnce.Do(func() {
			close(done)
		})
	}

	go h.writer(conn, send, ticker, done)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[RawWebSocket] Error: %v", err)
			}
			closeOnceFunc()
			return
		}

		switch messageType {
		case websocket.TextMessage:
			h.handleTextMessage(message, send, done, closeOnceFunc)
		case websocket.BinaryMessage:
			// Raw keystrokes from the client go straight to the PTY.
			if sess, err := h.manager.GetSession(h.lastSubscribed); err == nil {
				_, _ = sess.Write(message)
			}
		}
	}
}

func (h *RawTerminalWebSocketHandler) handleTextMessage(message []byte, send chan []byte, done chan struct{}, closeFunc func()) {
	var msg map[string]interface{}
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("[RawWebSocket] Failed to parse message: %v", err)
		return
	}

	msgType, ok := msg["type"].(string)
	if !ok {
		return
	}

	switch msgType {
	case "ping":
		pong, _ := json.Marshal(map[string]string{"type": "pong"})
		if !safeSend(send, pong, done) {
			return
		}

	case "subscribe":
		sessionID, ok := msg["sessionId"].(string)
		if !ok {
			return
		}
		h.lastSubscribed = sessionID
		go h.subscribeToRawPTY(sessionID, send, done)

	case "unsubscribe":
		closeFunc()
	}
}

func (h *RawTerminalWebSocketHandler) subscribeToRawPTY(sessionID string, send chan []byte, done chan struct{}) {
	var lastData []byte
	var flushTimer *time.Timer
	var dataMutex sync.Mutex

	h.manager.RegisterRawPTYCallback(sessionID, func(sid string, data []byte) {
		dataMutex.Lock()
		defer dataMutex.Unlock()

		lastData = append(lastData, data...)

		if flushTimer != nil {
			flushTimer.Stop()
		}
		flushTimer = time.AfterFunc(50*time.Millisecond, func() {
			dataMutex.Lock()
			if lastData != nil {
				safeSend(send, lastData, done)
				lastData = nil
			}
			dataMutex.Unlock()
		})
	})

	<-done

	dataMutex.Lock()
	if flushTimer != nil {
		flushTimer.Stop()
	}
	dataMutex.Unlock()

	h.manager.UnregisterRawPTYCallback(sessionID)
}

func (h *RawTerminalWebSocketHandler) writer(conn *websocket.Conn, send chan []byte, ticker *time.Ticker, done chan struct{}) {
	defer close(send)

	for {
		select {
		case message, ok := <-send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[RawWebSocket] Failed to set write deadline: %v", err)
				return
			}
			if !ok {
				if err := conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					log.Printf("[RawWebSocket] Failed to write close message: %v", err)
				}
				return
			}

			if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("[RawWebSocket] Failed to set write deadline for ping: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
