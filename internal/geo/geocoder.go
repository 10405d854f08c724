package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Gunvolt24/wb_storefront/internal/ports"
)

// Проверка соответствия порту на этапе компиляции.
var _ ports.Geocoder = (*ReverseGeocoder)(nil)

// ReverseGeocoder — обратное геокодирование через HTTP-сервис.
// Пустой адрес без ошибки означает «ничего не найдено»: запасной текст
// из координат подставляет вызывающий.
type ReverseGeocoder struct {
	endpoint string
	http     *http.Client
}

func NewGeocoder(endpoint string) (*ReverseGeocoder, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parse geocode endpoint: %w", err)
	}
	return &ReverseGeocoder{
		endpoint: endpoint,
		http:     &http.Client{},
	}, nil
}

type geocodePayload struct {
	Address string `json:"address"`
}

func (g *ReverseGeocoder) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	vals := url.Values{}
	vals.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	vals.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+vals.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeoBody))
	if err != nil {
		return "", fmt.Errorf("read geocode response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		// сервис честно говорит «адреса нет» — это не отказ
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode endpoint returned %d", resp.StatusCode)
	}

	var payload geocodePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode geocode response: %w", err)
	}
	return payload.Address, nil
}
