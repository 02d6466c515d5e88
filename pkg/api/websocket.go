package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Connection tuning shared by both the raw and structured websocket
// handlers, grounded on the teacher's websocket deadlines (the pack's
// copy of pkg/api only retained raw_websocket.go, so these constants
// are reconstructed from the deadlines it references).
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// safeSend delivers a message to a writer goroutine's channel without
// blocking forever if the connection is closing.
func safeSend(send chan []byte, message []byte, done chan struct{}) bool {
	select {
	case send <- message:
		return true
	case <-done:
		return false
	}
}
