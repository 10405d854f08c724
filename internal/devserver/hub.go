package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Gunvolt24/wb_storefront/internal/ports"
)

const hubWriteWait = 5 * time.Second

// wsFrame — кадр обмена клиент ↔ имитатор.
type wsFrame struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type hubConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *hubConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
	return c.conn.WriteJSON(v)
}

// hub — комнаты push-канала: клиент входит кадром joinRoom, события уходят
// всем соединениям комнаты.
type hub struct {
	log      ports.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]map[*hubConn]struct{}
}

func newHub(log ports.Logger) *hub {
	return &hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		rooms:    make(map[string]map[*hubConn]struct{}),
	}
}

// Serve — апгрейд соединения и цикл чтения служебных кадров.
func (h *hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf(r.Context(), "ws upgrade: %v", err)
		return
	}
	hc := &hubConn{conn: conn}
	joined := make(map[string]struct{})

	defer func() {
		h.mu.Lock()
		for room := range joined {
			delete(h.rooms[room], hc)
			if len(h.rooms[room]) == 0 {
				delete(h.rooms, room)
			}
		}
		h.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		var f wsFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		if f.Event != "joinRoom" || f.Room == "" {
			continue
		}

		h.mu.Lock()
		if h.rooms[f.Room] == nil {
			h.rooms[f.Room] = make(map[*hubConn]struct{})
		}
		h.rooms[f.Room][hc] = struct{}{}
		h.mu.Unlock()
		joined[f.Room] = struct{}{}

		_ = hc.writeJSON(wsFrame{Event: "joined", Room: f.Room})
	}
}

// Broadcast — событие всем соединениям комнаты.
func (h *hub) Broadcast(room, event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Errorf(context.Background(), "ws broadcast marshal: %v", err)
		return
	}

	h.mu.Lock()
	conns := make([]*hubConn, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.writeJSON(wsFrame{Event: event, Room: room, Data: raw}); err != nil {
			h.log.Warnf(context.Background(), "ws broadcast write: %v", err)
		}
	}
}
