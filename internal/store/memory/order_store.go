package memory

import (
	"context"
	"sync"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/pkg/metrics"
)

// Проверка, что OrderStore удовлетворяет порту.
var _ ports.OrderStore = (*OrderStore)(nil)

// OrderStore — локальный кэш заказов. Питается двумя путями:
// полной заменой из опроса и точечными патчами из push-канала.
// Порядок хранения: новые заказы добавляются В НАЧАЛО списка.
type OrderStore struct {
	mu    sync.Mutex
	list  []domain.OrderRecord
	index map[string]int // id -> позиция в list
}

func NewOrderStore() *OrderStore {
	return &OrderStore{index: make(map[string]int)}
}

// ReplaceAll — результат опроса авторитетен: содержимое заменяется целиком.
func (s *OrderStore) ReplaceAll(_ context.Context, orders []domain.OrderRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = make([]domain.OrderRecord, 0, len(orders))
	s.index = make(map[string]int, len(orders))
	for _, o := range orders {
		if o.ID == "" {
			continue
		}
		if pos, ok := s.index[o.ID]; ok {
			s.list[pos] = cloneOrder(o)
			continue
		}
		s.index[o.ID] = len(s.list)
		s.list = append(s.list, cloneOrder(o))
	}

	metrics.StoreOps.WithLabelValues("replace").Inc()
	metrics.StoreSize.Set(float64(len(s.list)))
}

// PatchStatus — идемпотентный патч статуса по id. Для неизвестного id
// запись не создаётся; возвращается false.
func (s *OrderStore) PatchStatus(_ context.Context, ev domain.OrderStatusEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[ev.ID]
	if !ok {
		metrics.StoreOps.WithLabelValues("patch_unknown").Inc()
		return false
	}
	s.list[pos].Status = ev.Status
	if ev.OrderNumber != "" {
		s.list[pos].OrderNumber = ev.OrderNumber
	}

	metrics.StoreOps.WithLabelValues("patch").Inc()
	return true
}

// Append — новый заказ встаёт в начало; повторный id заменяет запись.
func (s *OrderStore) Append(_ context.Context, order domain.OrderRecord) {
	if order.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.index[order.ID]; ok {
		s.list[pos] = cloneOrder(order)
	} else {
		s.list = append([]domain.OrderRecord{cloneOrder(order)}, s.list...)
		s.index = make(map[string]int, len(s.list))
		for i := range s.list {
			s.index[s.list[i].ID] = i
		}
	}

	metrics.StoreOps.WithLabelValues("append").Inc()
	metrics.StoreSize.Set(float64(len(s.list)))
}

// Snapshot — копия списка; вызывающий волен мутировать результат.
func (s *OrderStore) Snapshot(_ context.Context) []domain.OrderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.OrderRecord, len(s.list))
	for i := range s.list {
		out[i] = cloneOrder(s.list[i])
	}
	return out
}

// Len — текущее количество заказов.
func (s *OrderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

func cloneOrder(o domain.OrderRecord) domain.OrderRecord {
	cp := o
	if o.Items != nil {
		cp.Items = append([]domain.OrderItem(nil), o.Items...)
	}
	return cp
}
