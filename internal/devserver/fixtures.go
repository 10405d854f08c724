package devserver

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/google/uuid"
)

// user — учётка имитатора; пароль хранится открыто, это только dev-стенд.
type user struct {
	ID       string
	Email    string
	Password string
	Name     string
	Location *domain.Location
}

// catalogItem — серверная карточка товара: помимо публичных полей несёт
// рейтинг и время создания для сортировок trending/newest.
type catalogItem struct {
	domain.Product
	Rating    float64
	CreatedAt time.Time
}

// shopSite — магазин с координатами; дистанция до покупателя считается
// на каждый запрос.
type shopSite struct {
	Shop      domain.Shop
	Longitude float64
	Latitude  float64
}

// dataset — состояние имитатора в памяти.
type dataset struct {
	mu       sync.Mutex
	users    map[string]*user // по email
	products []catalogItem
	shops    []shopSite
	orders   map[string][]domain.OrderRecord // по userID
	carts    map[string]domain.CartSnapshot  // по userID
	places   map[string]string               // "lat,lon" с точностью до 2 знаков → адрес
}

func newDataset() *dataset {
	d := &dataset{
		users:  make(map[string]*user),
		orders: make(map[string][]domain.OrderRecord),
		carts:  make(map[string]domain.CartSnapshot),
		places: map[string]string{
			"28.00,77.00": "A-94, Sector-4, Noida",
			"55.70,37.60": "Москва, Пресненская наб. 10",
			"12.90,77.60": "Bengaluru, MG Road 1",
		},
	}

	demo := &user{
		ID:       "u-demo",
		Email:    "demo@wb.local",
		Password: "demo",
		Name:     "Демо Покупатель",
	}
	d.users[demo.Email] = demo

	categories := []string{"Электроника", "Дом", "Одежда", "Спорт", "Книги"}
	for i := 1; i <= 45; i++ {
		d.products = append(d.products, catalogItem{
			Product: domain.Product{
				ID:       fmt.Sprintf("p-%03d", i),
				Name:     fmt.Sprintf("Товар №%d", i),
				Price:    float64(100 + i*37),
				Category: categories[i%len(categories)],
				SellerID: "seller-1",
			},
			Rating:    3.0 + float64(i%20)/10,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		})
	}

	d.shops = []shopSite{
		{Shop: domain.Shop{ID: "s-1", Name: "WB Пункт — Центр", Address: "пр. Центральный, 1"}, Longitude: 77.00, Latitude: 28.00},
		{Shop: domain.Shop{ID: "s-2", Name: "WB Пункт — Север", Address: "ул. Северная, 12"}, Longitude: 77.05, Latitude: 28.10},
		{Shop: domain.Shop{ID: "s-3", Name: "WB Пункт — Юг", Address: "ул. Южная, 3"}, Longitude: 76.90, Latitude: 27.85},
	}

	d.orders[demo.ID] = []domain.OrderRecord{
		{
			ID: "ord-1", OrderNumber: "WB-1001", Status: domain.StatusConfirmed,
			BuyerID: demo.ID, Total: 1499,
			Items:     []domain.OrderItem{{ProductID: "p-001", Name: "Товар №1", Price: 1499, Quantity: 1}},
			CreatedAt: time.Now().Add(-48 * time.Hour), UpdatedAt: time.Now().Add(-24 * time.Hour),
		},
		{
			ID: "ord-2", OrderNumber: "WB-1002", Status: domain.StatusPending,
			BuyerID: demo.ID, Total: 530,
			Items:     []domain.OrderItem{{ProductID: "p-002", Name: "Товар №2", Price: 265, Quantity: 2}},
			CreatedAt: time.Now().Add(-2 * time.Hour), UpdatedAt: time.Now().Add(-2 * time.Hour),
		},
	}
	return d
}

func (d *dataset) findUser(email string) (*user, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[email]
	return u, ok
}

func (d *dataset) userByID(id string) (*user, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

type productFilter struct {
	sortBy   string
	minPrice float64
	maxPrice float64
	search   string
}

func (d *dataset) listProducts(f productFilter) []domain.Product {
	d.mu.Lock()
	items := append([]catalogItem(nil), d.products...)
	d.mu.Unlock()

	filtered := items[:0]
	for _, p := range items {
		if f.minPrice > 0 && p.Price < f.minPrice {
			continue
		}
		if f.maxPrice > 0 && p.Price > f.maxPrice {
			continue
		}
		if f.search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.search)) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch f.sortBy {
	case "price-low":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "price-high":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	default: // newest
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	}
	return publicProducts(filtered)
}

func (d *dataset) trendingProducts() []domain.Product {
	d.mu.Lock()
	items := append([]catalogItem(nil), d.products...)
	d.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool { return items[i].Rating > items[j].Rating })
	return publicProducts(items)
}

func publicProducts(items []catalogItem) []domain.Product {
	out := make([]domain.Product, 0, len(items))
	for _, it := range items {
		out = append(out, it.Product)
	}
	return out
}

func (d *dataset) productByID(id string) (domain.Product, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.products {
		if p.ID == id {
			return p.Product, true
		}
	}
	return domain.Product{}, false
}

const kmPerDegree = 111.0

func (d *dataset) nearbyShops(lon, lat float64) []domain.Shop {
	d.mu.Lock()
	sites := append([]shopSite(nil), d.shops...)
	d.mu.Unlock()

	out := make([]domain.Shop, 0, len(sites))
	for _, s := range sites {
		shop := s.Shop
		shop.Distance = math.Hypot(s.Longitude-lon, s.Latitude-lat) * kmPerDegree
		out = append(out, shop)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

func (d *dataset) ordersFor(userID string) []domain.OrderRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.OrderRecord(nil), d.orders[userID]...)
}

func (d *dataset) patchOrderStatus(userID, orderID string, status domain.OrderStatus) (domain.OrderRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.orders[userID]
	for i := range list {
		if list[i].ID == orderID {
			list[i].Status = status
			list[i].UpdatedAt = time.Now()
			return list[i], true
		}
	}
	return domain.OrderRecord{}, false
}

func (d *dataset) appendOrder(userID string, order domain.OrderRecord) domain.OrderRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.OrderNumber == "" {
		order.OrderNumber = fmt.Sprintf("WB-%d", 1000+len(d.orders[userID])+1)
	}
	order.BuyerID = userID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	d.orders[userID] = append(d.orders[userID], order)
	return order
}

func (d *dataset) addCartItem(userID string, p domain.Product, quantity int) domain.CartSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	cart := d.carts[userID]
	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == p.ID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: quantity,
		})
	}

	cart.Total = 0
	for _, it := range cart.Items {
		cart.Total += it.Price * float64(it.Quantity)
	}
	d.carts[userID] = cart

	// копия наружу
	cp := cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return cp
}

func (d *dataset) setUserLocation(userID string, loc domain.Location) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.ID == userID {
			cp := loc
			u.Location = &cp
			return true
		}
	}
	return false
}

func (d *dataset) reverseGeocode(lat, lon float64) (string, bool) {
	key := fmt.Sprintf("%.2f,%.2f", lat, lon)
	d.mu.Lock()
	defer d.mu.Unlock()
	addr, ok := d.places[key]
	return addr, ok
}
