// Пакет ctxmeta — нейтральный слой для метаданных запроса, прокидываемых
// через context.Context (request_id, user_id, trace_id и т.д.).
// Идея: транспорт и логгер зависят от небольшого общего пакета,
// но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (неэкспортируемый тип — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeyUserID    ctxKey = "user_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyRequestID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithUserID кладёт идентификатор пользователя сессии в контекст;
// шлюз штампует его на исходящие запросы для склейки логов.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil || userID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyUserID, userID)
}

// UserIDFromContext достаёт идентификатор пользователя из контекста.
func UserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyUserID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
