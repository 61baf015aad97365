package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// AccessLogRepository bitácora de acceso a módulos (solo inserción).
type AccessLogRepository interface {
	Append(ctx context.Context, entry *entity.ModuleAccessLog) error
	// CountDistinctUsers cuenta usuarios distintos con acción accessed desde since.
	CountDistinctUsers(ctx context.Context, organizationID string, code licensing.ModuleCode, since time.Time) (int, error)
	// HasAccessedSince indica si el usuario tiene una entrada accessed desde since.
	HasAccessedSince(ctx context.Context, organizationID string, code licensing.ModuleCode, userID string, since time.Time) (bool, error)
}
