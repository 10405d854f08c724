package ports

import (
	"context"
	"time"
)

// FixOptions — параметры одноразового запроса позиции устройства.
type FixOptions struct {
	Timeout      time.Duration // ограниченное ожидание вместо бесконечного
	HighAccuracy bool
	MaxCacheAge  time.Duration // недавний кэшированный фикс считается свежим
}

// Geolocator — источник координат устройства. Ошибки классифицируются
// сентинелами apperr: ErrGeoPermissionDenied, ErrGeoUnavailable, ErrGeoTimeout.
type Geolocator interface {
	Current(ctx context.Context, opts FixOptions) (lon, lat float64, err error)
}

// Geocoder — обратное геокодирование. Пустая строка без ошибки означает
// «ничего не найдено»; решение о запасном тексте принимает вызывающий.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}
