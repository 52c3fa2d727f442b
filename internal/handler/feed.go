package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/thedjrox/Leftover-Locator/internal/feed"
)

// upgrader accepts any origin: the feed is public read-only data and
// the browser client is served from a different host.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FeedHandler attaches viewers to the live inventory feed.
type FeedHandler struct {
	Hub *feed.Hub
}

// NewFeedHandler constructs a FeedHandler.
func NewFeedHandler(hub *feed.Hub) *FeedHandler {
	if hub == nil {
		panic("nil hub passed to NewFeedHandler")
	}
	return &FeedHandler{Hub: hub}
}

// Connect handles GET /ws. It upgrades the connection, registers the
// viewer with the hub and starts its pumps. No snapshot is pushed here;
// new viewers pull the current state from GET /restaurants and then
// receive every subsequent change over this connection.
func (h *FeedHandler) Connect(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("feed: upgrade failed: %v", err)
		return err
	}

	v := feed.NewViewer(h.Hub, conn)
	h.Hub.Register(v)
	v.Start()
	return nil
}
