package licensing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

func TestCatalogo_TieneVeintisieteModulos(t *testing.T) {
	assert.Len(t, licensing.All(), 27)
}

func TestCoreModules_SubconjuntoDelCatalogo(t *testing.T) {
	core := licensing.CoreModules()
	require.Len(t, core, 7)
	for _, c := range core {
		assert.True(t, licensing.IsKnown(c), "core %s fuera del catálogo", c)
		assert.True(t, licensing.IsCore(c))
	}
	assert.False(t, licensing.IsCore(licensing.PreventiveMaintenance))
}

func TestModulesForTier_PlanesAnidados(t *testing.T) {
	tiers := licensing.Tiers()
	for i := 1; i < len(tiers); i++ {
		lower := licensing.ModulesForTier(tiers[i-1])
		higher := licensing.ModulesForTier(tiers[i])
		assert.Greater(t, len(higher), len(lower))
		for _, code := range lower {
			assert.Contains(t, higher, code, "%s debe incluir %s", tiers[i], code)
		}
	}
	assert.ElementsMatch(t, licensing.CoreModules(), licensing.ModulesForTier(licensing.SubscriptionStarter))
	assert.Len(t, licensing.ModulesForTier(licensing.SubscriptionEnterprisePlus), 27)
	assert.Nil(t, licensing.ModulesForTier("gold"))
}

func TestDependencias_ConocidasYAnterioresEnOrden(t *testing.T) {
	pos := map[licensing.ModuleCode]int{}
	for i, d := range licensing.All() {
		pos[d.Code] = i
	}
	for _, d := range licensing.All() {
		for _, dep := range d.Dependencies {
			require.True(t, licensing.IsKnown(dep), "%s depende de %s desconocido", d.Code, dep)
			assert.Less(t, pos[dep], pos[d.Code], "%s aparece antes que su dependencia %s", d.Code, dep)
		}
	}
}

func TestDependencias_SinCiclos(t *testing.T) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := map[licensing.ModuleCode]int{}
	var visit func(c licensing.ModuleCode) bool
	visit = func(c licensing.ModuleCode) bool {
		switch state[c] {
		case visiting:
			return false
		case done:
			return true
		}
		state[c] = visiting
		d, _ := licensing.Definition(c)
		for _, dep := range d.Dependencies {
			if !visit(dep) {
				return false
			}
		}
		state[c] = done
		return true
	}
	for _, d := range licensing.All() {
		assert.True(t, visit(d.Code), "ciclo alcanzable desde %s", d.Code)
	}
}

func TestPlanes_IncluyenSusDependencias(t *testing.T) {
	for _, tier := range licensing.Tiers() {
		mods := licensing.ModulesForTier(tier)
		for _, code := range mods {
			d, _ := licensing.Definition(code)
			for _, dep := range d.Dependencies {
				assert.Contains(t, mods, dep, "plan %s: %s sin %s", tier, code, dep)
			}
		}
	}
}

func TestArchivedTables_MapeoParcial(t *testing.T) {
	assert.Equal(t, []string{"pm_schedules", "pm_tasks"}, licensing.ArchivedTables(licensing.PreventiveMaintenance))
	assert.Empty(t, licensing.ArchivedTables(licensing.MeterReading))
	assert.Empty(t, licensing.ArchivedTables("no_existe"))
	assert.True(t, licensing.IsArchivedTable("calibration_records"))
	assert.False(t, licensing.IsArchivedTable("users"))
}

func TestParseTier(t *testing.T) {
	tier, ok := licensing.ParseTier("enterprise_plus")
	assert.True(t, ok)
	assert.Equal(t, licensing.SubscriptionEnterprisePlus, tier)

	_, ok = licensing.ParseTier("platinum")
	assert.False(t, ok)
}
