// Package notify entrega notificaciones: las guarda en la bandeja del
// usuario y publica un evento para los canales externos (correo, push).
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	applicensing "github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// SubjectCreated asunto del evento de notificación creada.
const SubjectCreated = "notifications.created"

var _ applicensing.Notifier = (*Dispatcher)(nil)

// Publisher publica un mensaje en un asunto.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NopPublisher se usa cuando no hay NATS configurado.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }

// Event carga publicada en SubjectCreated.
type Event struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Link      string         `json:"link,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Dispatcher implementa licensing.Notifier.
type Dispatcher struct {
	repo repository.NotificationRepository
	pub  Publisher
	log  zerolog.Logger
}

// NewDispatcher pub nil equivale a NopPublisher.
func NewDispatcher(repo repository.NotificationRepository, pub Publisher, log zerolog.Logger) *Dispatcher {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Dispatcher{repo: repo, pub: pub, log: log.With().Str("component", "notify").Logger()}
}

// Notify guarda la notificación; la falla de publicación solo se registra
// porque la bandeja ya la contiene.
func (d *Dispatcher) Notify(ctx context.Context, n *entity.Notification) error {
	if err := d.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	data, err := json.Marshal(Event{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Link:      n.Link,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		d.log.Warn().Err(err).Str("notification_id", n.ID).Msg("serializar evento falló")
		return nil
	}
	if err := d.pub.Publish(ctx, SubjectCreated, data); err != nil {
		d.log.Warn().Err(err).Str("notification_id", n.ID).Msg("publicar evento falló")
	}
	return nil
}
