package channel_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Gunvolt24/wb_storefront/internal/channel"
	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/internal/store/memory"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

// fakeTransport — транспорт в памяти: запоминает обработчики и порядок
// служебных вызовов, события доставляются вручную через emit.
type fakeTransport struct {
	mu       sync.Mutex
	connects int
	rooms    []string
	handlers map[string]ports.PushHandler
	calls    []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string]ports.PushHandler)}
}

func (f *fakeTransport) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	f.calls = append(f.calls, "connect")
	return nil
}

func (f *fakeTransport) JoinRoom(_ context.Context, room string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, room)
	f.calls = append(f.calls, "join:"+room)
	return nil
}

func (f *fakeTransport) On(event string, h ports.PushHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = h
	f.calls = append(f.calls, "on:"+event)
}

func (f *fakeTransport) Off(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, event)
	f.calls = append(f.calls, "off:"+event)
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disconnect")
	return nil
}

func (f *fakeTransport) emit(t *testing.T, event string, v any) ports.PushHandler {
	t.Helper()
	f.mu.Lock()
	h, ok := f.handlers[event]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("no handler registered for %q", event)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	h(payload)
	return h
}

type recordingNotifier struct {
	mu       sync.Mutex
	levels   []ports.NotifyLevel
	messages []string
}

func (r *recordingNotifier) Notify(level ports.NotifyLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, message)
}

func seedOrder(t *testing.T, store *memory.OrderStore, id, number string) {
	t.Helper()
	store.ReplaceAll(context.Background(), []domain.OrderRecord{
		{ID: id, OrderNumber: number, Status: domain.StatusPending},
	})
}

func TestSubscribe_RegistersBothEventsAndIsIdempotent(t *testing.T) {
	tr := newFakeTransport()
	sub := channel.New(tr, memory.NewOrderStore(), &recordingNotifier{}, noopLogger{}, nil)

	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if sub.State() != channel.StateConnected {
		t.Fatalf("state = %v, want connected", sub.State())
	}
	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("repeat Subscribe must be no-op: %v", err)
	}
	if tr.connects != 1 {
		t.Fatalf("connects = %d, want 1", tr.connects)
	}
	if len(tr.rooms) != 1 || tr.rooms[0] != "u-1" {
		t.Fatalf("rooms = %v, want single join for u-1", tr.rooms)
	}
	if _, ok := tr.handlers[domain.EventOrderStatusUpdate]; !ok {
		t.Fatalf("handler for %s not registered", domain.EventOrderStatusUpdate)
	}
	if _, ok := tr.handlers[domain.EventNewOrder]; !ok {
		t.Fatalf("handler for %s not registered", domain.EventNewOrder)
	}

	if err := sub.Subscribe(context.Background(), "u-2"); !errors.Is(err, channel.ErrOwnedByOther) {
		t.Fatalf("Subscribe другого пользователя: error = %v, want ErrOwnedByOther", err)
	}
}

func TestStatusUpdate_PatchesStoreAndRefetches(t *testing.T) {
	tr := newFakeTransport()
	store := memory.NewOrderStore()
	notifier := &recordingNotifier{}
	refetched := 0

	sub := channel.New(tr, store, notifier, noopLogger{}, func(context.Context) { refetched++ })
	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	seedOrder(t, store, "ord-1", "WB-1001")

	tr.emit(t, domain.EventOrderStatusUpdate, domain.OrderStatusEvent{
		ID: "ord-1", OrderNumber: "WB-1001", Status: domain.StatusShipped,
	})

	snap := store.Snapshot(context.Background())
	if len(snap) != 1 || snap[0].Status != domain.StatusShipped {
		t.Fatalf("store = %+v, want ord-1 shipped", snap)
	}
	if refetched != 1 {
		t.Fatalf("refetched %d times, want 1", refetched)
	}
	if len(notifier.levels) != 1 || notifier.levels[0] != ports.NotifyInfo {
		t.Fatalf("notifications = %v, want single info", notifier.levels)
	}
}

func TestStatusUpdate_CancelledGetsSecondLouderNotification(t *testing.T) {
	tr := newFakeTransport()
	store := memory.NewOrderStore()
	notifier := &recordingNotifier{}

	sub := channel.New(tr, store, notifier, noopLogger{}, nil)
	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	seedOrder(t, store, "ord-2", "WB-1002")

	tr.emit(t, domain.EventOrderStatusUpdate, domain.OrderStatusEvent{
		ID: "ord-2", OrderNumber: "WB-1002", Status: domain.StatusCancelled,
	})

	if len(notifier.levels) != 2 {
		t.Fatalf("notifications = %d, want info then warning", len(notifier.levels))
	}
	if notifier.levels[0] != ports.NotifyInfo || notifier.levels[1] != ports.NotifyWarning {
		t.Fatalf("levels = %v, want [info warning]", notifier.levels)
	}
}

func TestStatusUpdate_UnknownOrderDroppedButRefetched(t *testing.T) {
	tr := newFakeTransport()
	store := memory.NewOrderStore()
	refetched := 0

	sub := channel.New(tr, store, &recordingNotifier{}, noopLogger{}, func(context.Context) { refetched++ })
	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	tr.emit(t, domain.EventOrderStatusUpdate, domain.OrderStatusEvent{
		ID: "ghost", Status: domain.StatusShipped,
	})

	if store.Len() != 0 {
		t.Fatalf("патч по неизвестному id не должен создавать записей")
	}
	if refetched != 1 {
		t.Fatalf("refetched %d times, want 1 (полный список догонит запись)", refetched)
	}
}

func TestStatusUpdate_InvalidPayloadIgnored(t *testing.T) {
	tr := newFakeTransport()
	store := memory.NewOrderStore()
	notifier := &recordingNotifier{}
	refetched := 0

	sub := channel.New(tr, store, notifier, noopLogger{}, func(context.Context) { refetched++ })
	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	seedOrder(t, store, "ord-3", "WB-1003")

	tr.emit(t, domain.EventOrderStatusUpdate, domain.OrderStatusEvent{
		ID: "ord-3", Status: "teleported", // неизвестный статус
	})

	if got := store.Snapshot(context.Background())[0].Status; got != domain.StatusPending {
		t.Fatalf("status = %s, invalid event must not be applied", got)
	}
	if refetched != 0 || len(notifier.levels) != 0 {
		t.Fatalf("invalid event must neither refetch nor notify")
	}
}

func TestNewOrder_AppendsAndNotifies(t *testing.T) {
	tr := newFakeTransport()
	store := memory.NewOrderStore()
	notifier := &recordingNotifier{}
	refetched := 0

	sub := channel.New(tr, store, notifier, noopLogger{}, func(context.Context) { refetched++ })
	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	tr.emit(t, domain.EventNewOrder, domain.NewOrderEvent{
		Order: domain.OrderRecord{ID: "ord-9", OrderNumber: "WB-1009", Status: domain.StatusPending, Total: 500},
	})

	snap := store.Snapshot(context.Background())
	if len(snap) != 1 || snap[0].ID != "ord-9" {
		t.Fatalf("store = %+v, want appended ord-9", snap)
	}
	if refetched != 1 {
		t.Fatalf("refetched %d times, want 1", refetched)
	}
	if len(notifier.levels) != 1 || notifier.levels[0] != ports.NotifySuccess {
		t.Fatalf("notifications = %v, want single success", notifier.levels)
	}
}

func TestClose_DetachesBeforeDisconnectAndSilencesStragglers(t *testing.T) {
	tr := newFakeTransport()
	store := memory.NewOrderStore()
	notifier := &recordingNotifier{}

	sub := channel.New(tr, store, notifier, noopLogger{}, nil)
	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	seedOrder(t, store, "ord-4", "WB-1004")

	// обработчик, захваченный до Close, имитирует событие в полёте
	tr.mu.Lock()
	straggler := tr.handlers[domain.EventOrderStatusUpdate]
	tr.mu.Unlock()

	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sub.State() != channel.StateDisconnected {
		t.Fatalf("state = %v, want disconnected", sub.State())
	}

	// Off обоих событий строго раньше disconnect
	var offSeen int
	for _, call := range tr.calls {
		switch {
		case call == "off:"+domain.EventOrderStatusUpdate || call == "off:"+domain.EventNewOrder:
			offSeen++
		case call == "disconnect":
			if offSeen != 2 {
				t.Fatalf("disconnect before both Off calls: %v", tr.calls)
			}
		}
	}

	payload, _ := json.Marshal(domain.OrderStatusEvent{ID: "ord-4", Status: domain.StatusShipped})
	straggler(payload)

	if got := store.Snapshot(context.Background())[0].Status; got != domain.StatusPending {
		t.Fatalf("событие после Close применилось: status=%s", got)
	}
	if len(notifier.levels) != 0 {
		t.Fatalf("событие после Close не должно уведомлять")
	}
}

func TestSubscribe_AfterCloseRebinds(t *testing.T) {
	tr := newFakeTransport()
	sub := channel.New(tr, memory.NewOrderStore(), &recordingNotifier{}, noopLogger{}, nil)

	if err := sub.Subscribe(context.Background(), "u-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sub.Subscribe(context.Background(), "u-2"); err != nil {
		t.Fatalf("Subscribe после Close: %v", err)
	}
	if tr.rooms[len(tr.rooms)-1] != "u-2" {
		t.Fatalf("rooms = %v, want rejoin as u-2", tr.rooms)
	}
}
