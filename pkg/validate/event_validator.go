package validate

import (
	"errors"
	"fmt"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
)

// ErrInvalidEvent — базовая (sentinel error) ошибка валидации push-события.
// Невалидное событие отбрасывается с логом; канал из-за него не падает.
var ErrInvalidEvent = errors.New("push event validation failed")

// знание о допустимых статусах держим в одном месте
var knownStatuses = map[domain.OrderStatus]struct{}{
	domain.StatusPending:   {},
	domain.StatusConfirmed: {},
	domain.StatusShipped:   {},
	domain.StatusDelivered: {},
	domain.StatusCancelled: {},
}

// StatusEvent — проверяет корректность события orderStatusUpdate.
func StatusEvent(ev domain.OrderStatusEvent) error {
	if ev.ID == "" {
		return fmt.Errorf("%w: id обязателен", ErrInvalidEvent)
	}
	if ev.Status == "" {
		return fmt.Errorf("%w: status обязателен", ErrInvalidEvent)
	}
	if _, ok := knownStatuses[ev.Status]; !ok {
		return fmt.Errorf("%w: неизвестный статус %q", ErrInvalidEvent, ev.Status)
	}
	return nil
}

// NewOrderEvent — проверяет корректность события newOrder.
func NewOrderEvent(ev domain.NewOrderEvent) error {
	if ev.Order.ID == "" {
		return fmt.Errorf("%w: order.id обязателен", ErrInvalidEvent)
	}
	if ev.Order.OrderNumber == "" {
		return fmt.Errorf("%w: order.orderNumber обязателен", ErrInvalidEvent)
	}
	if ev.Order.Total < 0 {
		return fmt.Errorf("%w: order.total должен быть неотрицательным", ErrInvalidEvent)
	}
	for i, item := range ev.Order.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity должен быть положительным", ErrInvalidEvent, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: items[%d].price должен быть неотрицательным", ErrInvalidEvent, i)
		}
	}
	return nil
}
