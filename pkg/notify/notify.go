// Пакет notify — реализации стока уведомлений: ядро публикует намерения
// показать сообщение, а конкретная оболочка решает, как их отрисовать.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_storefront/internal/ports"
)

// LogNotifier — выводит уведомления в лог; используется CLI-оболочкой.
type LogNotifier struct {
	log ports.Logger
}

func NewLogNotifier(log ports.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Notify(level ports.NotifyLevel, message string) {
	ctx := context.Background()
	switch level {
	case ports.NotifyError:
		n.log.Errorf(ctx, "notify [%s] %s", level, message)
	case ports.NotifyWarning:
		n.log.Warnf(ctx, "notify [%s] %s", level, message)
	default:
		n.log.Infof(ctx, "notify [%s] %s", level, message)
	}
}

// Entry — одно уведомление в ленте.
type Entry struct {
	Level   ports.NotifyLevel
	Message string
	At      time.Time
}

// Feed — потокобезопасная лента последних уведомлений; при переполнении
// старые записи вытесняются.
type Feed struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 100
	}
	return &Feed{limit: limit}
}

func (f *Feed) Notify(level ports.NotifyLevel, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, Entry{Level: level, Message: message, At: time.Now()})
	if len(f.entries) > f.limit {
		f.entries = f.entries[len(f.entries)-f.limit:]
	}
}

// Entries — копия ленты в порядке поступления.
func (f *Feed) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Entry(nil), f.entries...)
}

// Tee — рассылает уведомление всем стокам по порядку.
type Tee struct {
	sinks []ports.Notifier
}

func NewTee(sinks ...ports.Notifier) *Tee { return &Tee{sinks: sinks} }

func (t *Tee) Notify(level ports.NotifyLevel, message string) {
	for _, s := range t.sinks {
		s.Notify(level, message)
	}
}
