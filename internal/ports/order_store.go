package ports

import (
	"context"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
)

// OrderStore — локальный сквозной кэш заказов, питаемый опросом и push-каналом.
// Требования к реализации: потокобезопасность; возврат копий записей.
type OrderStore interface {
	// ReplaceAll — полная замена содержимого результатом опроса.
	ReplaceAll(ctx context.Context, orders []domain.OrderRecord)

	// PatchStatus — точечный патч статуса. Для неизвестного id запись
	// не создаётся; возвращается false (вызывающий логирует и отбрасывает).
	PatchStatus(ctx context.Context, ev domain.OrderStatusEvent) bool

	// Append — добавить заказ из события newOrder; повторный id заменяет
	// запись, а не дублирует её.
	Append(ctx context.Context, order domain.OrderRecord)

	// Snapshot — копия текущего списка в порядке хранения.
	Snapshot(ctx context.Context) []domain.OrderRecord
}
