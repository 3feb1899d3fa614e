// Package watch streams the spectator view of the match to websocket clients.
package watch

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/beka-birhanu/cman/api/i"
	logger "github.com/beka-birhanu/cman/infrastruture/log"
	service_i "github.com/beka-birhanu/cman/service/i"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	sendQueueSize = 64
	writeWait     = 5 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// watcher is one websocket spectator.
type watcher struct {
	ws   *websocket.Conn
	send chan []byte
}

// enqueue drops the frame when the watcher is too slow; the tick never waits on it.
func (w *watcher) enqueue(frame []byte) {
	select {
	case w.send <- frame:
	default:
	}
}

// Hub fans frames out to every connected watcher.
type Hub struct {
	watchers map[*watcher]struct{}
	last     []byte // latest frame, replayed to new watchers
	closed   bool
	logger   service_i.Logger
	sync.Mutex
}

// NewHub creates an empty hub.
func NewHub(l service_i.Logger) *Hub {
	if l == nil {
		l = logger.Nop()
	}
	return &Hub{
		watchers: make(map[*watcher]struct{}),
		logger:   l,
	}
}

var (
	_ service_i.MatchObserver = &Hub{}
	_ i.Controller            = &Hub{}
)

// Observe broadcasts frame to every watcher.
func (h *Hub) Observe(frame []byte) {
	h.Lock()
	defer h.Unlock()
	h.last = frame
	for w := range h.watchers {
		w.enqueue(frame)
	}
}

// Len returns the number of connected watchers.
func (h *Hub) Len() int {
	h.Lock()
	defer h.Unlock()
	return len(h.watchers)
}

// Close disconnects every watcher and refuses new ones.
func (h *Hub) Close() {
	h.Lock()
	defer h.Unlock()
	h.closed = true
	for w := range h.watchers {
		close(w.send)
		delete(h.watchers, w)
	}
}

// RegisterPublic registers public routes.
func (h *Hub) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/watch", h.watch)
}

// watch upgrades the request and streams binary frames.
func (h *Hub) watch(ctx *gin.Context) {
	ws, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("upgrade error: %s", err))
		return
	}

	w := &watcher{ws: ws, send: make(chan []byte, sendQueueSize)}
	if !h.add(w) {
		_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "match over"), time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}
	h.logger.Info(fmt.Sprintf("watcher connected from %s", ctx.Request.RemoteAddr))

	go h.writePump(w)
	go h.readPump(w)
}

func (h *Hub) add(w *watcher) bool {
	h.Lock()
	defer h.Unlock()
	if h.closed {
		return false
	}
	h.watchers[w] = struct{}{}
	if h.last != nil {
		w.enqueue(h.last)
	}
	return true
}

func (h *Hub) remove(w *watcher) {
	h.Lock()
	defer h.Unlock()
	if _, ok := h.watchers[w]; ok {
		delete(h.watchers, w)
		close(w.send)
	}
}

// writePump writes queued frames until the queue is closed.
func (h *Hub) writePump(w *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = w.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-w.send:
			_ = w.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := w.ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				h.remove(w)
				return
			}
		case <-ticker.C:
			_ = w.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(w)
				return
			}
		}
	}
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(w *watcher) {
	defer h.remove(w)
	w.ws.SetReadLimit(512)
	_ = w.ws.SetReadDeadline(time.Now().Add(pongWait))
	w.ws.SetPongHandler(func(string) error {
		return w.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := w.ws.ReadMessage(); err != nil {
			return
		}
	}
}
