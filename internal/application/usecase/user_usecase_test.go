package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/testutil/memrepo"
)

func TestUser_GetByIDYAdmins(t *testing.T) {
	store := memrepo.New()
	store.AddUser(&entity.User{ID: "u-1", OrganizationID: "org-1", Email: "a@x.co", Role: entity.RoleAdmin, Status: "active"})
	store.AddUser(&entity.User{ID: "u-2", OrganizationID: "org-1", Email: "t@x.co", Role: entity.RoleTechnician, Status: "active"})
	store.AddUser(&entity.User{ID: "u-3", OrganizationID: "org-2", Email: "b@x.co", Role: entity.RoleAdmin, Status: "active"})
	uc := NewUserUseCase(store.Users())
	ctx := context.Background()

	u, err := uc.GetByID(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, "t@x.co", u.Email)

	_, err = uc.GetByID(ctx, "nadie")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	admins, err := uc.Admins(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "u-1", admins[0].ID)
}
