// Пакет cart — мутатор корзины. Сервер — единственный источник истины:
// каждая успешная мутация возвращает корзину целиком, клиент лишь заменяет
// свой снимок ответом. Параллельные мутации одного товара не допускаются,
// разных товаров — независимы.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/internal/session"
	"github.com/Gunvolt24/wb_storefront/pkg/apperr"
)

// ErrMutationInFlight — мутация этого товара уже выполняется.
var ErrMutationInFlight = errors.New("cart mutation already in flight for product")

// Resume — отложенное намерение: что пользователь хотел сделать до того,
// как упёрся в требование входа. После входа намерение доигрывается.
type Resume struct {
	Origin    string // откуда пришёл пользователь (страница/контекст)
	ProductID string
	Quantity  int
}

// Result — исход мутации. При требовании входа Resume заполнен, а снимок
// корзины не меняется.
type Result struct {
	Snapshot domain.CartSnapshot
	Resume   *Resume
}

// Mutator — сериализует мутации по товару и хранит последний серверный
// снимок корзины.
type Mutator struct {
	api    ports.StorefrontAPI
	sess   *session.Context
	notify ports.Notifier
	log    ports.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	snapshot domain.CartSnapshot
}

func New(api ports.StorefrontAPI, sess *session.Context, notify ports.Notifier, log ports.Logger) *Mutator {
	return &Mutator{
		api:      api,
		sess:     sess,
		notify:   notify,
		log:      log,
		inflight: make(map[string]struct{}),
	}
}

// Snapshot — последний серверный снимок корзины.
func (m *Mutator) Snapshot() domain.CartSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSnapshot(m.snapshot)
}

// InFlight — выполняется ли сейчас мутация этого товара.
func (m *Mutator) InFlight(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[productID]
	return ok
}

// AddItem — добавление товара. Без пригодного токена сеть не трогается:
// сразу возвращается ErrAuthRequired с заполненным Resume, чтобы после
// входа доиграть намерение.
func (m *Mutator) AddItem(ctx context.Context, origin, productID string, quantity int) (Result, error) {
	if quantity <= 0 {
		quantity = 1
	}
	resume := &Resume{Origin: origin, ProductID: productID, Quantity: quantity}

	if !m.sess.Authenticated() {
		m.log.Infof(ctx, "cart add deferred: auth required, product=%s", productID)
		return Result{Resume: resume}, apperr.ErrAuthRequired
	}

	m.mu.Lock()
	if _, busy := m.inflight[productID]; busy {
		m.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %s", ErrMutationInFlight, productID)
	}
	m.inflight[productID] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inflight, productID)
		m.mu.Unlock()
	}()

	snap, err := m.api.AddCartItem(ctx, productID, quantity)
	if err != nil {
		if errors.Is(err, apperr.ErrAuthRequired) {
			// сессия истекла между проверкой и вызовом — намерение сохраняем
			m.log.Warnf(ctx, "cart add rejected by server: auth required, product=%s", productID)
			return Result{Resume: resume}, apperr.ErrAuthRequired
		}
		m.log.Warnf(ctx, "cart add failed: product=%s: %v", productID, err)
		m.notify.Notify(ports.NotifyError, "Не удалось добавить товар в корзину")
		return Result{}, err
	}

	m.mu.Lock()
	m.snapshot = cloneSnapshot(snap)
	m.mu.Unlock()

	m.notify.Notify(ports.NotifySuccess, "Товар добавлен в корзину")
	return Result{Snapshot: snap}, nil
}

func cloneSnapshot(s domain.CartSnapshot) domain.CartSnapshot {
	cp := s
	cp.Items = append([]domain.CartItem(nil), s.Items...)
	return cp
}
