// Пакет devserver — локальный имитатор бэкенда маркетплейса: REST с общим
// конвертом {success, message?, data?}, JWT-аутентификация, websocket-канал
// заказов и геоточки. Нужен для ручной обкатки ядра без настоящего сервера.
package devserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/wb_storefront/config"
	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/pkg/httpx"
)

// Server — имитатор и его зависимости.
type Server struct {
	cfg   config.DevServer
	fetch config.Fetch
	log   ports.Logger
	data  *dataset
	hub   *hub
}

func New(cfg config.DevServer, fetch config.Fetch, log ports.Logger) *Server {
	return &Server{
		cfg:   cfg,
		fetch: fetch,
		log:   log,
		data:  newDataset(),
		hub:   newHub(log),
	}
}

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Router — маршруты имитатора.
func (s *Server) Router() *gin.Engine {
	applyGinMode(context.Background(), s.cfg.GinMode, s.log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(s.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/login", s.login)
	r.GET("/api/products", s.products)
	r.GET("/api/products/trending", s.trending)
	r.GET("/api/shops/nearby", s.shops)
	r.GET("/api/geo/position", s.geoPosition)
	r.GET("/api/geo/reverse", s.geoReverse)

	auth := r.Group("/", s.requireAuth)
	auth.GET("/api/orders", s.orders)
	auth.PUT("/api/users/profile", s.updateProfile)
	auth.POST("/api/cart/items", s.addCartItem)

	// dev-хуки: руками двигаем заказы, чтобы проверить живой канал
	auth.POST("/api/dev/orders/:id/status", s.devPatchStatus)
	auth.POST("/api/dev/orders", s.devNewOrder)

	r.GET("/ws", func(c *gin.Context) { s.hub.Serve(c.Writer, c.Request) })

	return r
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// --- аутентификация ---

type claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	})
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false, "requiresAuth": true, "message": "Требуется вход",
		})
		return
	}

	var cl claims
	token, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || cl.UserID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false, "requiresAuth": true, "message": "Сессия истекла, войдите заново",
		})
		return
	}

	c.Set("userID", cl.UserID)
	c.Next()
}

func currentUserID(c *gin.Context) string {
	return c.GetString("userID")
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email и password обязательны")
		return
	}

	u, okUser := s.data.findUser(req.Email)
	if !okUser || u.Password != req.Password {
		fail(c, http.StatusUnauthorized, "Неверная пара email/пароль")
		return
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		s.log.Errorf(c.Request.Context(), "issue token: %v", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка")
		return
	}

	ok(c, gin.H{
		"token": token,
		"user":  gin.H{"id": u.ID, "email": u.Email, "name": u.Name},
	})
}

// --- каталог ---

func (s *Server) products(c *gin.Context) {
	page, limit := httpx.ParsePageLimit(c, s.fetch.DefaultLimit, s.fetch.MaxLimit)
	items := s.data.listProducts(productFilter{
		sortBy:   c.Query("sortBy"),
		minPrice: httpx.ParseFloat(c, "minPrice", 0),
		maxPrice: httpx.ParseFloat(c, "maxPrice", 0),
		search:   c.Query("q"),
	})
	s.paged(c, items, page, limit)
}

func (s *Server) trending(c *gin.Context) {
	page, limit := httpx.ParsePageLimit(c, s.fetch.DefaultLimit, s.fetch.MaxLimit)
	s.paged(c, s.data.trendingProducts(), page, limit)
}

func (s *Server) paged(c *gin.Context, items []domain.Product, page, limit int) {
	total := len(items)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items[start:end],
		"page":       page,
		"totalPages": totalPages,
		"count":      total,
	})
}

// --- магазины и гео ---

func (s *Server) shops(c *gin.Context) {
	lon := httpx.ParseFloat(c, "lon", 0)
	lat := httpx.ParseFloat(c, "lat", 0)
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		fail(c, http.StatusBadRequest, "координаты вне допустимого диапазона")
		return
	}
	ok(c, s.data.nearbyShops(lon, lat))
}

func (s *Server) geoPosition(c *gin.Context) {
	// фиксированная точка стенда; hiAccuracy ни на что не влияет
	c.JSON(http.StatusOK, gin.H{"longitude": 77.0, "latitude": 28.0})
}

func (s *Server) geoReverse(c *gin.Context) {
	lat := httpx.ParseFloat(c, "lat", 0)
	lon := httpx.ParseFloat(c, "lon", 0)
	addr, found := s.data.reverseGeocode(lat, lon)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"address": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr})
}

// --- заказы ---

func (s *Server) orders(c *gin.Context) {
	ok(c, s.data.ordersFor(currentUserID(c)))
}

// --- профиль ---

type profileRequest struct {
	Location domain.Location `json:"location"`
}

func (s *Server) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "некорректное тело запроса")
		return
	}
	if !req.Location.Valid() || req.Location.Address == "" {
		fail(c, http.StatusUnprocessableEntity, "location: нужны координаты и адрес")
		return
	}
	if !s.data.setUserLocation(currentUserID(c), req.Location) {
		fail(c, http.StatusNotFound, "пользователь не найден")
		return
	}
	ok(c, gin.H{"location": req.Location})
}

// --- корзина ---

type cartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "productId обязателен")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	p, found := s.data.productByID(req.ProductID)
	if !found {
		fail(c, http.StatusUnprocessableEntity, "товар не найден")
		return
	}
	ok(c, s.data.addCartItem(currentUserID(c), p, req.Quantity))
}

// --- dev-хуки живого канала ---

type statusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

func (s *Server) devPatchStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "status обязателен")
		return
	}

	userID := currentUserID(c)
	order, found := s.data.patchOrderStatus(userID, c.Param("id"), req.Status)
	if !found {
		fail(c, http.StatusNotFound, "заказ не найден")
		return
	}

	s.hub.Broadcast(userID, domain.EventOrderStatusUpdate, domain.OrderStatusEvent{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
	})
	ok(c, order)
}

func (s *Server) devNewOrder(c *gin.Context) {
	var order domain.OrderRecord
	if err := c.ShouldBindJSON(&order); err != nil {
		fail(c, http.StatusBadRequest, "некорректное тело заказа")
		return
	}

	userID := currentUserID(c)
	order = s.data.appendOrder(userID, order)
	s.hub.Broadcast(userID, domain.EventNewOrder, domain.NewOrderEvent{Order: order})
	ok(c, order)
}
