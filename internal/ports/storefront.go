package ports

import (
	"context"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
)

// CatalogQuery — параметры чтения каталога: пагинация, сортировка и фильтры.
// Значения простые и сериализуемые в query-строку без побочных эффектов.
type CatalogQuery struct {
	Page     int     // 1-базовая
	Limit    int
	SortBy   string  // newest | price-low | price-high
	MinPrice float64 // 0 — без нижней границы
	MaxPrice float64 // 0 — без верхней границы
	Search   string
}

// SameFilters — совпадают ли у запросов все поля, кроме страницы.
// Смена любого фильтра или сортировки сбрасывает страницу на первую.
func (q CatalogQuery) SameFilters(other CatalogQuery) bool {
	q.Page, other.Page = 0, 0
	return q == other
}

// ProductPage — страница списка товаров вместе с границами пагинации.
type ProductPage struct {
	Items      []domain.Product
	Page       int
	TotalPages int
}

// StorefrontAPI — граница REST-операций ядра. Реализация прикрепляет токен
// сессии и нормализует конверт {success, message?} в ошибки apperr.
type StorefrontAPI interface {
	Catalog(ctx context.Context, q CatalogQuery) (ProductPage, error)
	Trending(ctx context.Context, page, limit int) (ProductPage, error)
	Orders(ctx context.Context) ([]domain.OrderRecord, error)
	NearbyShops(ctx context.Context, lon, lat float64) ([]domain.Shop, error)
	UpdateProfileLocation(ctx context.Context, loc domain.Location) error
	AddCartItem(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error)
}
