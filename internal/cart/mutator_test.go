package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/wb_storefront/internal/cart"
	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/internal/ports/mocks"
	"github.com/Gunvolt24/wb_storefront/internal/session"
	"github.com/Gunvolt24/wb_storefront/pkg/apperr"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type recordingNotifier struct {
	mu     sync.Mutex
	levels []ports.NotifyLevel
}

func (r *recordingNotifier) Notify(level ports.NotifyLevel, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
}

func newMutator(t *testing.T, sess *session.Context) (*cart.Mutator, *mocks.MockStorefrontAPI, *recordingNotifier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	api := mocks.NewMockStorefrontAPI(ctrl)
	notifier := &recordingNotifier{}
	return cart.New(api, sess, notifier, noopLogger{}), api, notifier
}

func TestAddItem_WithoutTokenDefersWithResume(t *testing.T) {
	sess := session.New() // не залогинен
	m, api, _ := newMutator(t, sess)
	api.EXPECT().AddCartItem(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	res, err := m.AddItem(context.Background(), "/product/p-1", "p-1", 2)
	if !errors.Is(err, apperr.ErrAuthRequired) {
		t.Fatalf("error = %v, want ErrAuthRequired", err)
	}
	if res.Resume == nil {
		t.Fatalf("Resume must carry the deferred intent")
	}
	if res.Resume.Origin != "/product/p-1" || res.Resume.ProductID != "p-1" || res.Resume.Quantity != 2 {
		t.Fatalf("resume = %+v", *res.Resume)
	}
}

func TestAddItem_ServerSnapshotIsAuthoritative(t *testing.T) {
	sess := session.New()
	sess.Login("u-1", "opaque-token", "")
	m, api, notifier := newMutator(t, sess)

	server := domain.CartSnapshot{
		Items: []domain.CartItem{{ProductID: "p-1", Name: "Кофеварка", Price: 4990, Quantity: 1}},
		Total: 4990,
	}
	api.EXPECT().AddCartItem(gomock.Any(), "p-1", 1).Return(server, nil)

	res, err := m.AddItem(context.Background(), "/catalog", "p-1", 0) // 0 → количество по умолчанию
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if res.Resume != nil {
		t.Fatalf("Resume must be empty on success")
	}
	if res.Snapshot.Total != 4990 || len(res.Snapshot.Items) != 1 {
		t.Fatalf("snapshot = %+v, want server copy", res.Snapshot)
	}
	if got := m.Snapshot(); got.Total != 4990 {
		t.Fatalf("stored snapshot = %+v, want server copy", got)
	}
	if len(notifier.levels) != 1 || notifier.levels[0] != ports.NotifySuccess {
		t.Fatalf("notifications = %v, want single success", notifier.levels)
	}
}

func TestAddItem_ServerAuthRejectionStillCarriesResume(t *testing.T) {
	sess := session.New()
	sess.Login("u-1", "opaque-token", "")
	m, api, notifier := newMutator(t, sess)

	api.EXPECT().
		AddCartItem(gomock.Any(), "p-2", 1).
		Return(domain.CartSnapshot{}, apperr.ErrAuthRequired)

	res, err := m.AddItem(context.Background(), "/trending", "p-2", 1)
	if !errors.Is(err, apperr.ErrAuthRequired) {
		t.Fatalf("error = %v, want ErrAuthRequired", err)
	}
	if res.Resume == nil || res.Resume.ProductID != "p-2" {
		t.Fatalf("resume = %+v, want deferred intent for p-2", res.Resume)
	}
	if len(notifier.levels) != 0 {
		t.Fatalf("auth rejection shows the login flow, not an error toast")
	}
}

func TestAddItem_FailureNotifiesAndKeepsSnapshot(t *testing.T) {
	sess := session.New()
	sess.Login("u-1", "opaque-token", "")
	m, api, notifier := newMutator(t, sess)

	good := domain.CartSnapshot{Items: []domain.CartItem{{ProductID: "p-1", Quantity: 1}}, Total: 100}
	gomock.InOrder(
		api.EXPECT().AddCartItem(gomock.Any(), "p-1", 1).Return(good, nil),
		api.EXPECT().AddCartItem(gomock.Any(), "p-3", 1).Return(domain.CartSnapshot{}, apperr.ErrTransport),
	)

	if _, err := m.AddItem(context.Background(), "/catalog", "p-1", 1); err != nil {
		t.Fatalf("first AddItem: %v", err)
	}
	if _, err := m.AddItem(context.Background(), "/catalog", "p-3", 1); !errors.Is(err, apperr.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
	if got := m.Snapshot(); got.Total != 100 {
		t.Fatalf("snapshot after failure = %+v, want last good copy", got)
	}
	if notifier.levels[len(notifier.levels)-1] != ports.NotifyError {
		t.Fatalf("notifications = %v, want trailing error", notifier.levels)
	}
}

func TestAddItem_SameProductSerializedDifferentProductsIndependent(t *testing.T) {
	sess := session.New()
	sess.Login("u-1", "opaque-token", "")
	m, api, _ := newMutator(t, sess)

	block := make(chan struct{})
	started := make(chan struct{})

	api.EXPECT().
		AddCartItem(gomock.Any(), "p-1", 1).
		DoAndReturn(func(context.Context, string, int) (domain.CartSnapshot, error) {
			close(started)
			<-block
			return domain.CartSnapshot{}, nil
		})
	api.EXPECT().
		AddCartItem(gomock.Any(), "p-2", 1).
		Return(domain.CartSnapshot{}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := m.AddItem(context.Background(), "/catalog", "p-1", 1); err != nil {
			t.Errorf("first AddItem: %v", err)
		}
	}()

	<-started
	if !m.InFlight("p-1") {
		t.Fatalf("p-1 must report in flight")
	}

	// тот же товар — отказ без сети
	if _, err := m.AddItem(context.Background(), "/catalog", "p-1", 1); !errors.Is(err, cart.ErrMutationInFlight) {
		t.Fatalf("error = %v, want ErrMutationInFlight", err)
	}
	// другой товар — независимая мутация
	if _, err := m.AddItem(context.Background(), "/catalog", "p-2", 1); err != nil {
		t.Fatalf("parallel AddItem for p-2: %v", err)
	}

	close(block)
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for m.InFlight("p-1") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if m.InFlight("p-1") {
		t.Fatalf("p-1 still in flight after completion")
	}
}
