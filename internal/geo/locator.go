// Пакет geo — HTTP-реализации источника координат и обратного геокодера.
// Локатор классифицирует отказы сентинелами apperr, чтобы пайплайн
// показывал по одной конкретной фразе на каждый вид причины.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_storefront/internal/ports"
	"github.com/Gunvolt24/wb_storefront/pkg/apperr"
)

// Проверка соответствия порту на этапе компиляции.
var _ ports.Geolocator = (*HTTPLocator)(nil)

const maxGeoBody = 64 << 10

// HTTPLocator — источник позиции устройства поверх HTTP-сервиса.
// Недавний фикс кэшируется: повторный запрос в пределах MaxCacheAge
// отдаёт его без сети.
type HTTPLocator struct {
	endpoint string
	http     *http.Client
	log      ports.Logger

	mu     sync.Mutex
	lastAt time.Time
	lon    float64
	lat    float64
}

func NewLocator(endpoint string, log ports.Logger) (*HTTPLocator, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parse position endpoint: %w", err)
	}
	return &HTTPLocator{
		endpoint: endpoint,
		http:     &http.Client{},
		log:      log,
	}, nil
}

type positionPayload struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Current — одноразовый запрос позиции. Дедлайн ожидается в ctx вызывающего;
// собственных таймаутов локатор не навешивает.
func (l *HTTPLocator) Current(ctx context.Context, opts ports.FixOptions) (float64, float64, error) {
	if opts.MaxCacheAge > 0 {
		l.mu.Lock()
		if !l.lastAt.IsZero() && time.Since(l.lastAt) <= opts.MaxCacheAge {
			lon, lat := l.lon, l.lat
			l.mu.Unlock()
			return lon, lat, nil
		}
		l.mu.Unlock()
	}

	vals := url.Values{}
	vals.Set("highAccuracy", strconv.FormatBool(opts.HighAccuracy))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint+"?"+vals.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: build position request: %v", apperr.ErrGeoUnavailable, err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, 0, fmt.Errorf("%w: position request: %v", apperr.ErrGeoTimeout, err)
		}
		return 0, 0, fmt.Errorf("%w: position request: %v", apperr.ErrGeoUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeoBody))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: read position response: %v", apperr.ErrGeoUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return 0, 0, fmt.Errorf("%w: position endpoint returned 403", apperr.ErrGeoPermissionDenied)
	case resp.StatusCode != http.StatusOK:
		return 0, 0, fmt.Errorf("%w: position endpoint returned %d", apperr.ErrGeoUnavailable, resp.StatusCode)
	}

	var fix positionPayload
	if err := json.Unmarshal(body, &fix); err != nil {
		return 0, 0, fmt.Errorf("%w: decode position: %v", apperr.ErrGeoUnavailable, err)
	}

	l.mu.Lock()
	l.lastAt = time.Now()
	l.lon, l.lat = fix.Longitude, fix.Latitude
	l.mu.Unlock()

	l.log.Infof(ctx, "position acquired: lon=%f lat=%f", fix.Longitude, fix.Latitude)
	return fix.Longitude, fix.Latitude, nil
}
