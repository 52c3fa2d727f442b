package feed

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // viewers send nothing beyond control frames
)

// Viewer is the middleman between one websocket connection and the hub.
// The feed is push-only: the read pump exists to notice disconnects and
// answer pings, not to accept commands.
type Viewer struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewViewer wraps an upgraded connection. Start must be called to begin
// pumping.
func NewViewer(hub *Hub, conn *websocket.Conn) *Viewer {
	return &Viewer{
		hub:  hub,
		conn: conn,
		send: make(chan Message, 16),
	}
}

// Start begins the read and write pumps.
func (v *Viewer) Start() {
	go v.writePump()
	go v.readPump()
}

// readPump drains the connection until the client goes away, then
// unregisters the viewer.
func (v *Viewer) readPump() {
	defer func() {
		v.hub.Unregister(v)
		_ = v.conn.Close()
	}()

	v.conn.SetReadLimit(maxMessageSize)
	if err := v.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("feed: viewer read error: %v", err)
			}
			return
		}
	}
}

// writePump forwards hub messages to the connection and keeps it alive
// with periodic pings.
func (v *Viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = v.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-v.send:
			if err := v.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// Hub closed the channel: shutdown or slow-viewer drop.
				_ = v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			if err := v.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
