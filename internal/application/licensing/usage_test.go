package licensing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

func TestTrack_SobrescribeSoloContadoresPresentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.usage.Track(ctx, dto.TrackUsageRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.MeterReading),
		ActiveUsers:    int64Ptr(4),
		APICalls:       int64Ptr(120),
	})
	require.NoError(t, err)

	out, err := f.usage.Track(ctx, dto.TrackUsageRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.MeterReading),
		Transactions:   int64Ptr(9),
	})
	require.NoError(t, err)

	assert.EqualValues(t, 4, out.ActiveUsers)
	assert.EqualValues(t, 120, out.APICalls)
	assert.EqualValues(t, 9, out.Transactions)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), out.Date)
}

func TestTrack_UnaFilaPorDia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 35; i++ {
		_, err := f.usage.Track(ctx, dto.TrackUsageRequest{
			OrganizationID: testOrg,
			ModuleCode:     string(licensing.MeterReading),
			APICalls:       int64Ptr(int64(i)),
		})
		require.NoError(t, err)
		f.advance(24 * time.Hour)
	}

	stats, err := f.usage.Stats(ctx, testOrg, licensing.MeterReading)
	require.NoError(t, err)
	require.Len(t, stats, UsageStatsLimit)
	assert.EqualValues(t, 34, stats[0].APICalls)
	assert.True(t, stats[0].Date.After(stats[1].Date))
}

func TestTrack_ModuloDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.usage.Track(context.Background(), dto.TrackUsageRequest{OrganizationID: testOrg, ModuleCode: "x"})
	assert.ErrorIs(t, err, domain.ErrUnknownModule)
}
