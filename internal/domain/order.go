package domain

import "time"

// OrderStatus — статус заказа на стороне бэкенда.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderItem — позиция заказа.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderRecord — заказ покупателя. Источник истины — бэкенд; клиент держит
// сквозной кэш, который пополняется опросом (полный список) и push-событиями
// (точечные патчи).
type OrderRecord struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	Status      OrderStatus `json:"status"`
	BuyerID     string      `json:"buyerId"`
	SellerID    string      `json:"sellerId"`
	Items       []OrderItem `json:"items"`
	Total       float64     `json:"total"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
