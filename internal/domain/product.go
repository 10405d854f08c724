package domain

// Product — карточка товара в каталоге.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	SellerID    string  `json:"sellerId"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// Shop — магазин рядом с покупателем.
type Shop struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Distance float64 `json:"distance"` // расстояние до покупателя, км
}
