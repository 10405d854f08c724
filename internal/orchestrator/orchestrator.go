// Пакет orchestrator — выдача ограниченного набора именованных идемпотентных
// операций чтения: дедупликация запросов в полёте, учёт живости вьюхи,
// контракт пагинации и явная реакция на смену геопозиции.
package orchestrator

import (
	"context"
	"sync"

	"github.com/Gunvolt24/wb_storefront/internal/bus"
	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/pkg/metrics"
)

// Имена операций (метки метрик и ключи дедупликации).
const (
	opCatalog  = "catalog"
	opTrending = "trending"
	opOrders   = "orders"
	opShops    = "nearby_shops"
)

// Orchestrator — без состояния вьюх; всё пер-вьюховое живёт в Slots.
type Orchestrator struct {
	api    ports.StorefrontAPI
	orders ports.OrderStore
	notify ports.Notifier
	log    ports.Logger
	events *bus.Bus
}

// New — DI-конструктор.
func New(
	api ports.StorefrontAPI,
	orders ports.OrderStore,
	notify ports.Notifier,
	log ports.Logger,
	events *bus.Bus,
) *Orchestrator {
	return &Orchestrator{api: api, orders: orders, notify: notify, log: log, events: events}
}

// Slots — слоты одной вьюхи: ровно один слот на операцию. Слоты принадлежат
// вьюхе и умирают вместе с ней; между вьюхами состояние не разделяется.
type Slots struct {
	view *View

	mu           sync.Mutex
	catalogQuery ports.CatalogQuery

	Catalog  *Slot[domain.Product]
	Trending *Slot[domain.Product]
	Orders   *Slot[domain.OrderRecord]
	Shops    *Slot[domain.Shop]

	unsubscribe func()
}

// NewSlots — слоты для вьюхи + подписка на смену геопозиции: по событию
// перечитываются ровно ближайшие магазины, ничего больше.
func (o *Orchestrator) NewSlots(view *View) *Slots {
	s := &Slots{
		view:     view,
		Catalog:  newSlot[domain.Product](view, opCatalog),
		Trending: newSlot[domain.Product](view, opTrending),
		Orders:   newSlot[domain.OrderRecord](view, opOrders),
		Shops:    newSlot[domain.Shop](view, opShops),
	}
	s.unsubscribe = o.events.Subscribe(func(ev bus.LocationChanged) {
		if !view.Alive() {
			return
		}
		go o.FetchNearbyShops(s, ev.Location.Longitude(), ev.Location.Latitude())
	})
	return s
}

// Close — отписка от событий; зовётся при размонтировании вьюхи.
func (s *Slots) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// View — хэндл владельца.
func (s *Slots) View() *View { return s.view }

// LastCatalogQuery — последние параметры каталога.
func (s *Slots) LastCatalogQuery() ports.CatalogQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogQuery
}

// FetchCatalog — чтение каталога. Смена сортировки или любого фильтра
// сбрасывает страницу на первую до выдачи запроса.
func (o *Orchestrator) FetchCatalog(s *Slots, q ports.CatalogQuery) Result[domain.Product] {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Page < 1 {
		q.Page = 1
	}

	firstFetch := s.Catalog.State().Status == StatusIdle

	s.mu.Lock()
	if !firstFetch && !q.SameFilters(s.catalogQuery) {
		q.Page = 1
	}
	s.catalogQuery = q
	s.mu.Unlock()

	res := run(s.Catalog, func(ctx context.Context) (Page[domain.Product], error) {
		p, err := o.api.Catalog(ctx, q)
		return Page[domain.Product]{Items: p.Items, Page: p.Page, TotalPages: p.TotalPages}, err
	})
	if res.Err != nil {
		o.log.Warnf(s.view.Context(), "catalog fetch failed: %v", res.Err)
		o.notify.Notify(ports.NotifyError, "Не удалось загрузить каталог")
	}
	return res
}

// GoToPage — переход по страницам каталога. Запросы за границы
// [1, totalPages] отклоняются без сетевого вызова.
func (o *Orchestrator) GoToPage(s *Slots, page int) (Result[domain.Product], bool) {
	state := s.Catalog.State()
	if page < 1 || (state.TotalPages > 0 && page > state.TotalPages) {
		metrics.FetchOps.WithLabelValues(opCatalog, "rejected").Inc()
		return Result[domain.Product]{}, false
	}

	s.mu.Lock()
	q := s.catalogQuery
	s.mu.Unlock()
	q.Page = page

	return o.FetchCatalog(s, q), true
}

// FetchTrending — популярные товары.
func (o *Orchestrator) FetchTrending(s *Slots, page, limit int) Result[domain.Product] {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	res := run(s.Trending, func(ctx context.Context) (Page[domain.Product], error) {
		p, err := o.api.Trending(ctx, page, limit)
		return Page[domain.Product]{Items: p.Items, Page: p.Page, TotalPages: p.TotalPages}, err
	})
	if res.Err != nil {
		o.log.Warnf(s.view.Context(), "trending fetch failed: %v", res.Err)
		o.notify.Notify(ports.NotifyError, "Не удалось загрузить популярные товары")
	}
	return res
}

// FetchOrders — история заказов. Сбои здесь намеренно тихие (только лог):
// переходные состояния авторизации не должны пугать пользователя.
// Успешный результат складывается в локальный кэш заказов.
func (o *Orchestrator) FetchOrders(s *Slots) Result[domain.OrderRecord] {
	res := run(s.Orders, func(ctx context.Context) (Page[domain.OrderRecord], error) {
		orders, err := o.api.Orders(ctx)
		return Page[domain.OrderRecord]{Items: orders, Page: 1, TotalPages: 1}, err
	})
	switch {
	case res.Err != nil:
		o.log.Warnf(s.view.Context(), "orders fetch failed (silent by design): %v", res.Err)
	case s.view.Alive():
		o.orders.ReplaceAll(s.view.Context(), res.Items)
	}
	return res
}

// FetchNearbyShops — магазины рядом; намеренно не входит в стартовый пакет,
// а выдаётся после него (координаты могут появиться только что).
func (o *Orchestrator) FetchNearbyShops(s *Slots, lon, lat float64) Result[domain.Shop] {
	res := run(s.Shops, func(ctx context.Context) (Page[domain.Shop], error) {
		shops, err := o.api.NearbyShops(ctx, lon, lat)
		return Page[domain.Shop]{Items: shops, Page: 1, TotalPages: 1}, err
	})
	if res.Err != nil {
		o.log.Warnf(s.view.Context(), "nearby shops fetch failed: %v", res.Err)
		o.notify.Notify(ports.NotifyError, "Не удалось найти магазины поблизости")
	}
	return res
}

// LoadBundle — стартовый пакет: каталог, популярное и заказы читаются
// одновременно и независимо — сбой одного не откатывает остальные.
// Ближайшие магазины выдаются строго после пакета и только при известных
// координатах.
func (o *Orchestrator) LoadBundle(s *Slots, q ports.CatalogQuery, loc *domain.Location) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); o.FetchCatalog(s, q) }()
	go func() { defer wg.Done(); o.FetchTrending(s, 1, 10) }()
	go func() { defer wg.Done(); o.FetchOrders(s) }()
	wg.Wait()

	if loc != nil && loc.Valid() {
		o.FetchNearbyShops(s, loc.Longitude(), loc.Latitude())
	}
}
