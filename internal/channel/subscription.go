// Пакет channel — живой канал заказов: единственная подписка на push-события
// orderStatusUpdate и newOrder поверх транспорта ports.PushTransport.
// Каждое событие применяется к локальному кэшу заказов и сопровождается
// сверяющим перечитыванием истории — push даёт немедленность, опрос даёт
// полноту.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/pkg/metrics"
	"github.com/Gunvolt24/wb_storefront/pkg/validate"
)

// ErrOwnedByOther — канал уже привязан к другому пользователю; сначала Close.
var ErrOwnedByOther = errors.New("order channel already owned by another user")

// ConnState — состояние подписки.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnected
)

func (s ConnState) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// Subscription — единственный владелец push-подписки на заказы.
// Повторный Subscribe того же пользователя — no-op; смена пользователя
// требует явного Close.
type Subscription struct {
	transport ports.PushTransport
	store     ports.OrderStore
	notify    ports.Notifier
	log       ports.Logger
	refetch   func(ctx context.Context) // сверяющее перечитывание истории

	mu     sync.Mutex
	userID string
	state  ConnState
	closed bool
}

func New(
	transport ports.PushTransport,
	store ports.OrderStore,
	notify ports.Notifier,
	log ports.Logger,
	refetch func(ctx context.Context),
) *Subscription {
	if refetch == nil {
		refetch = func(context.Context) {}
	}
	return &Subscription{
		transport: transport,
		store:     store,
		notify:    notify,
		log:       log,
		refetch:   refetch,
	}
}

// State — состояние подписки.
func (s *Subscription) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe — подключение и вход в комнату пользователя. Идемпотентен для
// того же userID; для чужого возвращает ErrOwnedByOther.
func (s *Subscription) Subscribe(ctx context.Context, userID string) error {
	s.mu.Lock()
	if s.state == StateConnected {
		same := s.userID == userID
		s.mu.Unlock()
		if same {
			return nil
		}
		return fmt.Errorf("%w: want %q", ErrOwnedByOther, userID)
	}
	s.closed = false
	s.mu.Unlock()

	if err := s.transport.Connect(ctx); err != nil {
		return fmt.Errorf("connect push transport: %w", err)
	}
	if err := s.transport.JoinRoom(ctx, userID); err != nil {
		_ = s.transport.Disconnect()
		return fmt.Errorf("join room %q: %w", userID, err)
	}

	s.transport.On(domain.EventOrderStatusUpdate, func(payload []byte) {
		s.onStatusUpdate(ctx, payload)
	})
	s.transport.On(domain.EventNewOrder, func(payload []byte) {
		s.onNewOrder(ctx, payload)
	})

	s.mu.Lock()
	s.userID = userID
	s.state = StateConnected
	s.mu.Unlock()

	s.log.Infof(ctx, "order channel subscribed: user=%s", userID)
	return nil
}

// Close — отписка и отключение. Сначала снимаются обработчики, потом рвётся
// соединение: событие, долетевшее между этими шагами, гасится флагом closed.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.state = StateDisconnected
	s.userID = ""
	s.mu.Unlock()

	s.transport.Off(domain.EventOrderStatusUpdate)
	s.transport.Off(domain.EventNewOrder)
	return s.transport.Disconnect()
}

func (s *Subscription) dropped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) onStatusUpdate(ctx context.Context, payload []byte) {
	if s.dropped() {
		return
	}

	var ev domain.OrderStatusEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.log.Warnf(ctx, "orderStatusUpdate: malformed payload: %v", err)
		metrics.ChannelEvents.WithLabelValues(domain.EventOrderStatusUpdate, "invalid").Inc()
		return
	}
	if err := validate.StatusEvent(ev); err != nil {
		s.log.Warnf(ctx, "orderStatusUpdate rejected: %v", err)
		metrics.ChannelEvents.WithLabelValues(domain.EventOrderStatusUpdate, "invalid").Inc()
		return
	}

	if !s.store.PatchStatus(ctx, ev) {
		// патч по неизвестному id не создаёт запись; полный список
		// догонит её сверяющим перечитыванием
		s.log.Warnf(ctx, "orderStatusUpdate: unknown order id=%s", ev.ID)
		metrics.ChannelEvents.WithLabelValues(domain.EventOrderStatusUpdate, "dropped").Inc()
		s.refetch(ctx)
		return
	}
	metrics.ChannelEvents.WithLabelValues(domain.EventOrderStatusUpdate, "applied").Inc()

	number := ev.OrderNumber
	if number == "" {
		number = ev.ID
	}
	s.notify.Notify(ports.NotifyInfo, fmt.Sprintf("Заказ №%s: статус изменён на «%s»", number, ev.Status))
	if ev.Status == domain.StatusCancelled {
		// отмена заметнее обычной смены статуса
		s.notify.Notify(ports.NotifyWarning, fmt.Sprintf("Заказ №%s отменён", number))
	}

	s.refetch(ctx)
}

func (s *Subscription) onNewOrder(ctx context.Context, payload []byte) {
	if s.dropped() {
		return
	}

	var ev domain.NewOrderEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.log.Warnf(ctx, "newOrder: malformed payload: %v", err)
		metrics.ChannelEvents.WithLabelValues(domain.EventNewOrder, "invalid").Inc()
		return
	}
	if err := validate.NewOrderEvent(ev); err != nil {
		s.log.Warnf(ctx, "newOrder rejected: %v", err)
		metrics.ChannelEvents.WithLabelValues(domain.EventNewOrder, "invalid").Inc()
		return
	}

	s.store.Append(ctx, ev.Order)
	metrics.ChannelEvents.WithLabelValues(domain.EventNewOrder, "applied").Inc()
	s.notify.Notify(ports.NotifySuccess, fmt.Sprintf("Поступил новый заказ №%s", ev.Order.OrderNumber))

	s.refetch(ctx)
}
