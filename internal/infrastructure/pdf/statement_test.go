package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/application/dto"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "Enterprise Plus", Label("enterprise_plus"))
	assert.Equal(t, "Core", Label("core"))
	assert.Equal(t, "Trial", Label("trial"))
}

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		in    dto.OrganizationModuleResponse
		want  string
		color *props.Color
	}{
		{dto.OrganizationModuleResponse{IsCore: true, IsActive: true}, "Incluido", colorGreen},
		{dto.OrganizationModuleResponse{IsActive: true, Status: "active"}, "Activo", colorGreen},
		{dto.OrganizationModuleResponse{}, "Sin licencia", colorGray},
		{dto.OrganizationModuleResponse{Status: "expired"}, "Vencido", colorRed},
		{dto.OrganizationModuleResponse{Status: "trial"}, "Trial", colorGray},
	}
	for _, c := range cases {
		got, color := statusLabel(c.in)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.color, color)
	}
}

func TestGenerate_DevuelvePDF(t *testing.T) {
	exp := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	maxUsers := 10
	in := &dto.OrganizationModulesResponse{
		OrganizationID: "org-1",
		Tier:           "professional",
		Modules: []dto.OrganizationModuleResponse{
			{Code: "user_management", Name: "User Management", Tier: "core", IsCore: true, IsActive: true},
			{Code: "preventive_maintenance", Name: "Preventive Maintenance", Tier: "standard",
				IsLicensed: true, IsActive: true, Status: "active", ExpiresAt: &exp, MaxUsers: &maxUsers},
			{Code: "meter_reading", Name: "Meter Reading", Tier: "standard", IsLicensed: true, Status: "trial"},
		},
	}

	out, err := NewStatementGenerator().Generate(context.Background(), in, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
