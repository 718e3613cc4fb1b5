package domain

// NotificationLevel classifies a user-visible message
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a message shown to the admin after an operation completes
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Operation CategoryOperation `json:"operation"`
	Message   string            `json:"message"`
}
