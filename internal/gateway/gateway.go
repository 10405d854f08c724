// Пакет gateway — тонкий транспорт над REST-бэкендом маркетплейса:
// прикрепляет токен сессии, штампует X-Request-ID, открывает спан на вызов
// и нормализует конверт {success, message?} в ошибки apperr.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Gunvolt24/wb_storefront/internal/domain"
	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/internal/session"
	"github.com/Gunvolt24/wb_storefront/pkg/apperr"
	"github.com/Gunvolt24/wb_storefront/pkg/ctxmeta"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Проверка соответствия порту на этапе компиляции.
var _ ports.StorefrontAPI = (*Client)(nil)

// Client — HTTP-клиент границы StorefrontAPI.
type Client struct {
	base   *url.URL
	http   *http.Client
	sess   *session.Context
	log    ports.Logger
	tracer trace.Tracer
}

// New — конструктор. Таймаут задаётся транспорту целиком; отдельной
// логики дедлайнов на уровне операций нет.
func New(baseURL string, timeout time.Duration, sess *session.Context, log ports.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:   u,
		http:   &http.Client{Timeout: timeout},
		sess:   sess,
		log:    log,
		tracer: otel.Tracer("storefront/gateway"),
	}, nil
}

// envelope — общий конверт всех ответов бэкенда.
type envelope struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Page         int             `json:"page,omitempty"`
	TotalPages   int             `json:"totalPages,omitempty"`
	Count        int             `json:"count,omitempty"`
	RequiresAuth bool            `json:"requiresAuth,omitempty"`
}

// Catalog — чтение каталога с фильтрами и пагинацией.
func (c *Client) Catalog(ctx context.Context, q ports.CatalogQuery) (ports.ProductPage, error) {
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(q.Page))
	vals.Set("limit", strconv.Itoa(q.Limit))
	if q.SortBy != "" {
		vals.Set("sortBy", q.SortBy)
	}
	if q.MinPrice > 0 {
		vals.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		vals.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.Search != "" {
		vals.Set("q", q.Search)
	}
	return c.productPage(ctx, "catalog", "/api/products", vals)
}

// Trending — популярные товары; тот же формат страницы, что и каталог.
func (c *Client) Trending(ctx context.Context, page, limit int) (ports.ProductPage, error) {
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(page))
	vals.Set("limit", strconv.Itoa(limit))
	return c.productPage(ctx, "trending", "/api/products/trending", vals)
}

func (c *Client) productPage(ctx context.Context, op, path string, vals url.Values) (ports.ProductPage, error) {
	env, err := c.call(ctx, op, http.MethodGet, path, vals, nil)
	if err != nil {
		return ports.ProductPage{}, err
	}
	var items []domain.Product
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return ports.ProductPage{}, fmt.Errorf("%w: decode %s data: %v", apperr.ErrTransport, op, err)
	}
	return ports.ProductPage{Items: items, Page: env.Page, TotalPages: env.TotalPages}, nil
}

// Orders — полная история заказов покупателя.
func (c *Client) Orders(ctx context.Context) ([]domain.OrderRecord, error) {
	env, err := c.call(ctx, "orders", http.MethodGet, "/api/orders", nil, nil)
	if err != nil {
		return nil, err
	}
	var orders []domain.OrderRecord
	if err := json.Unmarshal(env.Data, &orders); err != nil {
		return nil, fmt.Errorf("%w: decode orders data: %v", apperr.ErrTransport, err)
	}
	return orders, nil
}

// NearbyShops — магазины рядом с переданными координатами.
func (c *Client) NearbyShops(ctx context.Context, lon, lat float64) ([]domain.Shop, error) {
	vals := url.Values{}
	vals.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	vals.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))

	env, err := c.call(ctx, "nearby_shops", http.MethodGet, "/api/shops/nearby", vals, nil)
	if err != nil {
		return nil, err
	}
	var shops []domain.Shop
	if err := json.Unmarshal(env.Data, &shops); err != nil {
		return nil, fmt.Errorf("%w: decode shops data: %v", apperr.ErrTransport, err)
	}
	return shops, nil
}

// UpdateProfileLocation — зеркалирование геопозиции в профиль на сервере.
func (c *Client) UpdateProfileLocation(ctx context.Context, loc domain.Location) error {
	body := map[string]any{
		"location": map[string]any{
			"coordinates": loc.Coordinates,
			"address":     loc.Address,
		},
	}
	_, err := c.call(ctx, "update_profile", http.MethodPut, "/api/users/profile", nil, body)
	return err
}

// AddCartItem — добавление товара в корзину; снапшот сервера авторитетен.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}

	env, err := c.call(ctx, "cart_add", http.MethodPost, "/api/cart/items", nil, body)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	var snap domain.CartSnapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("%w: decode cart data: %v", apperr.ErrTransport, err)
	}
	return snap, nil
}

// call — общий путь запроса: заголовки, спан, классификация ошибок.
func (c *Client) call(ctx context.Context, op, method, path string, vals url.Values, body any) (envelope, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+op,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	env, err := c.do(ctx, method, path, vals, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return env, err
}

func (c *Client) do(ctx context.Context, method, path string, vals url.Values, body any) (envelope, error) {
	u := *c.base
	u.Path = path
	if vals != nil {
		u.RawQuery = vals.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("%w: marshal request: %v", apperr.ErrTransport, err)
		}
		payload = bytes.NewReader(raw)
	}

	requestID := uuid.New().String()
	ctx = ctxmeta.WithRequestID(ctx, requestID)
	userID := c.sess.UserID()
	ctx = ctxmeta.WithUserID(ctx, userID)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: build request: %v", apperr.ErrTransport, err)
	}
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.sess.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: %s %s: %v", apperr.ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return envelope{}, fmt.Errorf("%w: read body: %v", apperr.ErrTransport, err)
	}

	c.log.Infof(ctx, "api call id=%s user=%s method=%s path=%s status=%d duration=%s",
		requestID, userID, method, path, resp.StatusCode, time.Since(start))

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope{}, fmt.Errorf("%w: decode envelope: %v", apperr.ErrTransport, err)
		}
	}

	return normalize(resp.StatusCode, env)
}

// normalize — единые правила: 401/requiresAuth → AuthRequired;
// 400/422 → ValidationRejected; прочие неуспехи → Transport с текстом сервера.
func normalize(status int, env envelope) (envelope, error) {
	switch {
	case status == http.StatusUnauthorized || env.RequiresAuth:
		return envelope{}, fmt.Errorf("%w: %s", apperr.ErrAuthRequired, messageOr(env, "session expired"))
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return envelope{}, fmt.Errorf("%w: %s", apperr.ErrValidationRejected, messageOr(env, "request rejected"))
	case status < 200 || status > 299:
		return envelope{}, fmt.Errorf("%w: unexpected status %d: %s", apperr.ErrTransport, status, messageOr(env, "no message"))
	case !env.Success:
		return envelope{}, fmt.Errorf("%w: %s", apperr.ErrTransport, messageOr(env, "server reported failure"))
	}
	return env, nil
}

func messageOr(env envelope, fallback string) string {
	if env.Message != "" {
		return env.Message
	}
	return fallback
}
