package domain

// CartItem — позиция корзины.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartSnapshot — корзина целиком в том виде, в каком её вернул сервер.
// Клиент никогда не пересчитывает Total для сохранения — только для
// оптимистичного отображения.
type CartSnapshot struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}
