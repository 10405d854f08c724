// Пакет apperr — таксономия ошибок клиента. Ошибки-сентинелы сравниваются
// через errors.Is; конкретику добавляют обёртки fmt.Errorf("%w: ...").
package apperr

import "errors"

var (
	// ErrTransport — сбой сети, таймаут или неуспешный конверт ответа.
	ErrTransport = errors.New("transport error")

	// ErrAuthRequired — нет валидного токена (или сервер сообщил об истёкшей сессии).
	ErrAuthRequired = errors.New("authentication required")

	// ErrValidationRejected — сервер отклонил входные данные.
	ErrValidationRejected = errors.New("validation rejected")

	// Ошибки геолокации — по одному виду на каждую причину отказа устройства.
	ErrGeoPermissionDenied = errors.New("geolocation permission denied")
	ErrGeoUnavailable      = errors.New("geolocation position unavailable")
	ErrGeoTimeout          = errors.New("geolocation timed out")

	// ErrChannelDropped — push-канал разорван транспортом.
	ErrChannelDropped = errors.New("push channel dropped")
)
