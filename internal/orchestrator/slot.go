package orchestrator

import (
	"context"
	"sync"

	"github.com/Gunvolt24/wb_storefront/pkg/metrics"
)

// Status — фаза слота.
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInFlight:
		return "in-flight"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Page — результат одной операции чтения с границами пагинации.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
}

// Result — исход одного вызова Run (не обязательно закоммиченный в слот).
type Result[T any] struct {
	Status     Status
	Items      []T
	Page       int
	TotalPages int
	Err        error
}

// Slot — держатель состояния одной именованной операции чтения для одной
// вьюхи. Гарантия: не больше одного запроса в полёте; второй вызов во время
// первого присоединяется к ожиданию и получает его результат, не порождая
// сетевого вызова. Результаты применяются в порядке завершения — слоты
// дизъюнктны, поэтому это безопасно.
type Slot[T any] struct {
	mu   sync.Mutex
	op   string
	view *View

	status     Status
	items      []T
	page       int
	totalPages int
	err        error

	inflight bool
	done     chan struct{}
	last     Result[T]
}

func newSlot[T any](view *View, op string) *Slot[T] {
	return &Slot[T]{op: op, view: view}
}

// State — копия текущего состояния слота.
func (s *Slot[T]) State() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Result[T]{
		Status:     s.status,
		Items:      append([]T(nil), s.items...),
		Page:       s.page,
		TotalPages: s.totalPages,
		Err:        s.err,
	}
}

// run — общий цикл: дедупликация, вызов, коммит под проверкой живости.
func run[T any](s *Slot[T], fetch func(ctx context.Context) (Page[T], error)) Result[T] {
	s.mu.Lock()
	if s.inflight {
		ch := s.done
		s.mu.Unlock()

		metrics.FetchOps.WithLabelValues(s.op, "dedup_join").Inc()
		<-ch

		s.mu.Lock()
		res := s.last
		s.mu.Unlock()
		return res
	}
	s.inflight = true
	s.status = StatusInFlight
	s.done = make(chan struct{})
	ch := s.done
	s.mu.Unlock()

	page, err := fetch(s.view.Context())

	var res Result[T]
	if err != nil {
		res = Result[T]{Status: StatusFailed, Err: err}
	} else {
		res = Result[T]{Status: StatusReady, Items: page.Items, Page: page.Page, TotalPages: page.TotalPages}
	}

	s.mu.Lock()
	s.inflight = false
	s.last = res
	if s.view.Alive() {
		s.status = res.Status
		s.err = res.Err
		if err == nil {
			s.items = res.Items
			s.page = res.Page
			s.totalPages = res.TotalPages
		}
		// при ошибке последние успешные данные остаются на месте
		if err == nil {
			metrics.FetchOps.WithLabelValues(s.op, "ok").Inc()
		} else {
			metrics.FetchOps.WithLabelValues(s.op, "error").Inc()
		}
	} else {
		metrics.FetchOps.WithLabelValues(s.op, "stale_drop").Inc()
	}
	close(ch)
	s.mu.Unlock()

	return res
}
