package domain

import "fmt"

// Location — геопозиция профиля: координаты устройства и человекочитаемый адрес.
// Инвариант: непустой Address подразумевает валидную пару координат;
// частично заполненные значения не сохраняются.
type Location struct {
	Coordinates [2]float64 `json:"coordinates"` // [долгота, широта]
	Address     string     `json:"address"`
	Synced      bool       `json:"-"` // false — адрес определён, но не сохранён в профиле
}

func (l Location) Longitude() float64 { return l.Coordinates[0] }
func (l Location) Latitude() float64  { return l.Coordinates[1] }

// Valid — пара координат лежит в допустимых диапазонах.
func (l Location) Valid() bool {
	lon, lat := l.Coordinates[0], l.Coordinates[1]
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// FormatCoordinates — запасной текст адреса, когда геокодер ничего не нашёл:
// широта и долгота с шестью знаками после точки, через ", ".
func FormatCoordinates(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}
