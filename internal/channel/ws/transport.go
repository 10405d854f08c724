// Пакет ws — websocket-реализация push-транспорта канала заказов.
// Кадр на проводе: {"event": ..., "room": ..., "data": ...}; подписчик
// получает сырой data и сам решает, как его разбирать.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Gunvolt24/wb_storefront/internal/ports"
)

// Проверка соответствия порту на этапе компиляции.
var _ ports.PushTransport = (*Transport)(nil)

const (
	writeWait = 5 * time.Second
	// сервер шлёт служебные кадры joined/left; они не доходят до подписчиков
	frameJoined = "joined"
)

// frame — единица обмена по websocket в обе стороны.
type frame struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Transport — websocket-клиент push-канала. Обработчики событий зовутся
// из единственной читающей горутины, по одному за раз.
type Transport struct {
	url  string
	log  ports.Logger
	dial websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]ports.PushHandler
	done     chan struct{}
}

func New(rawURL string, handshakeTimeout time.Duration, log ports.Logger) *Transport {
	wsURL := rawURL
	switch {
	case strings.HasPrefix(wsURL, "https"):
		wsURL = "wss" + wsURL[len("https"):]
	case strings.HasPrefix(wsURL, "http"):
		wsURL = "ws" + wsURL[len("http"):]
	}
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &Transport{
		url:      wsURL,
		log:      log,
		dial:     websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		handlers: make(map[string]ports.PushHandler),
	}
}

// Connect — установка соединения; повторный вызов при живом соединении — no-op.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	conn, _, err := t.dial.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial %s: %w", t.url, err)
	}

	t.conn = conn
	t.done = make(chan struct{})
	go t.readLoop(conn, t.done)

	t.log.Infof(ctx, "push transport connected: %s", t.url)
	return nil
}

// JoinRoom — вход в комнату пользователя; сервер начинает слать события по ней.
func (t *Transport) JoinRoom(ctx context.Context, room string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return fmt.Errorf("join room %q: not connected", room)
	}
	if err := t.write(frame{Event: "joinRoom", Room: room}); err != nil {
		return fmt.Errorf("join room %q: %w", room, err)
	}
	return nil
}

// On — регистрация обработчика события; повторная регистрация заменяет прежний.
func (t *Transport) On(event string, h ports.PushHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = h
}

// Off — снятие обработчика; события без обработчика молча отбрасываются.
func (t *Transport) Off(event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.handlers, event)
}

// Disconnect — вежливое закрытие: CloseMessage, затем разрыв.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}
	close(t.done)

	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := t.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	closeErr := t.conn.Close()
	t.conn = nil

	if err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return closeErr
}

// write зовётся под t.mu.
func (t *Transport) write(f frame) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteJSON(f)
}

func (t *Transport) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			select {
			case <-done:
				// штатное закрытие
			default:
				t.log.Warnf(context.Background(), "push transport read: %v", err)
			}
			return
		}
		if f.Event == "" || f.Event == frameJoined {
			continue
		}

		t.mu.Lock()
		h := t.handlers[f.Event]
		t.mu.Unlock()

		if h != nil {
			h(f.Data)
		}
	}
}
