// notepad/services/events/hub.go
package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"notepad/notepad/sources/psql/models"
	"notepad/notepad/utils/logging"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const (
	PageCreated = "page_created"
	PageUpdated = "page_updated"
	PageDeleted = "page_deleted"
)

type Event struct {
	Type string             `json:"type"`
	Page models.PageSummary `json:"page"`
}

const (
	clientBuffer = 16
	writeTimeout = 5 * time.Second
)

type client struct {
	send chan []byte
}

// Hub fans page events out to every connected websocket. Events are hints
// only; a client that falls behind is dropped and must reload.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	originPatterns []string
}

// NewHub accepts upgrades from the server's own origin and from the listed
// CORS origins. A "*" entry is ignored: the feed carries page titles, so
// other sites never get it through a wildcard.
func NewHub(origins []string) *Hub {
	return &Hub{
		clients:        make(map[*client]struct{}),
		originPatterns: originPatterns(origins),
	}
}

// originPatterns reduces origins to the host[:port] form the websocket
// origin check matches against.
func originPatterns(origins []string) []string {
	var patterns []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		patterns = append(patterns, o)
	}
	return patterns
}

// Publish never blocks the caller.
func (h *Hub) Publish(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		logging.ErrorLogger.Error("encode page event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add() *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	c := &client{send: make(chan []byte, clientBuffer)}
	h.clients[c] = struct{}{}
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request and streams events until either side goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	c := h.add()
	if c == nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.remove(c)

	// incoming messages are ignored; CloseRead notices when the peer leaves
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "")
				return
			}
			if err := write(ctx, conn, data); err != nil {
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
