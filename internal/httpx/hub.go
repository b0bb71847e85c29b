package httpx

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sandbox_chess/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientQueueLen = 64
)

// client is one websocket subscriber of a game.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans session events out to the websocket clients watching a game.
// OnEvent runs under the table lock, so it only queues frames; each
// client has its own writer goroutine.
type hub struct {
	game    string
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

func newHub(gameID string) *hub {
	return &hub{game: gameID, clients: make(map[*client]struct{})}
}

// frame is the wire envelope of everything pushed to clients.
type frame struct {
	Game  string           `json:"game"`
	Event *game.Event      `json:"event,omitempty"`
	State *game.BoardState `json:"state,omitempty"`
}

func (h *hub) OnEvent(ev game.Event) {
	h.broadcast(frame{Game: h.game, Event: &ev})
}

func (h *hub) broadcast(f frame) {
	msg, err := json.Marshal(f)
	if err != nil {
		log.Error("encode frame", "game", h.game, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Warn("dropping slow websocket client", "game", h.game, "remote", c.conn.RemoteAddr().String())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// attach registers conn, queues the greeting frame and starts its pumps.
func (h *hub) attach(conn *websocket.Conn, greeting frame) {
	c := &client{conn: conn, send: make(chan []byte, clientQueueLen)}
	msg, err := json.Marshal(greeting)
	if err != nil {
		log.Error("encode greeting", "game", h.game, "error", err)
		conn.Close()
		return
	}
	c.send <- msg

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *hub) detach(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump only services control frames; moves go through the JSON API.
func (h *hub) readPump(c *client) {
	defer func() {
		h.detach(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read", "game", h.game, "error", err)
			}
			return
		}
	}
}

func (h *hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close disconnects every client; the game is gone.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
