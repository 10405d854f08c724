package ports

import "context"

// PushHandler — обработчик одного push-события; получает сырой payload.
type PushHandler func(payload []byte)

// PushTransport — транспорт push-канала. Переподключение (если нужно) —
// забота реализации транспорта, не подписчика.
type PushTransport interface {
	Connect(ctx context.Context) error
	JoinRoom(ctx context.Context, room string) error
	On(event string, h PushHandler)
	Off(event string)
	Disconnect() error
}
