package entity

import "time"

// Tipos de notificación.
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationError   = "error"
	NotificationSuccess = "success"
)

// Notification mensaje en la bandeja de un usuario.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      string
	Link      string
	Metadata  map[string]any
	IsRead    bool
	CreatedAt time.Time
}
