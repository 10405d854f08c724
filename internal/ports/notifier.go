package ports

// NotifyLevel — уровень пользовательского уведомления.
type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifySuccess NotifyLevel = "success"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
)

// Notifier — единственная точка пользовательских уведомлений:
// ядро не рисует UI, оно лишь публикует намерения показать сообщение.
type Notifier interface {
	Notify(level NotifyLevel, message string)
}
