// Пакет bus — явная подписка на событие смены геопозиции. Пайплайн
// публикует LocationChanged, оркестратор перечитывает ровно ближайшие
// магазины: граф триггеров виден и тестируем, скрытых связей нет.
package bus

import (
	"sync"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
)

// LocationChanged — геопозиция определена (и, для аутентифицированной
// сессии, сохранена в профиле).
type LocationChanged struct {
	Location domain.Location
}

// Handler — подписчик события.
type Handler func(LocationChanged)

// Bus — внутрипроцессная шина; обработчики вызываются синхронно
// в порядке подписки.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]Handler
	keys []int
}

func New() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe — возвращает функцию отписки; её можно звать повторно.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs[id] = h
	b.keys = append(b.keys, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish — рассылка события. Список обработчиков копируется под локом,
// сами обработчики зовутся без лока: подписчик вправе публиковать
// или отписываться из собственного обработчика.
func (b *Bus) Publish(ev LocationChanged) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, id := range b.keys {
		if h, ok := b.subs[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
