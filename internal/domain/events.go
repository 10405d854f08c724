package domain

// Имена push-событий канала заказов (совпадают с именами на сервере).
const (
	EventOrderStatusUpdate = "orderStatusUpdate"
	EventNewOrder          = "newOrder"
)

// OrderStatusEvent — push-событие смены статуса заказа. Несёт только
// изменившиеся поля; остальное клиент добирает сверяющим перечитыванием.
type OrderStatusEvent struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	Status      OrderStatus `json:"status"`
}

// NewOrderEvent — push-событие о новом заказе, несёт запись целиком.
type NewOrderEvent struct {
	Order OrderRecord `json:"order"`
}
