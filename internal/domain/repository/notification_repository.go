package repository

import (
	"context"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
)

// NotificationRepository bandeja de notificaciones por usuario.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*entity.Notification, error)
	// MarkRead devuelve false si la notificación no existe o no es del usuario.
	MarkRead(ctx context.Context, id, userID string) (bool, error)
}
