package repository

import (
	"context"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListByRole devuelve los usuarios activos de la organización con el rol dado.
	ListByRole(ctx context.Context, organizationID, role string) ([]*entity.User, error)
}
