// Package pdf genera el estado de licencias de una organización en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Organización + Plan  │  Fecha de emisión           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: módulos activos / en prueba / vencidos             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Módulo | Nivel | Estado | Vence | Usuarios           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda                                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/cmms-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 60}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// StatementGenerator genera el estado de licencias con Maroto v2.
type StatementGenerator struct{}

// NewStatementGenerator construye el generador.
func NewStatementGenerator() *StatementGenerator { return &StatementGenerator{} }

// Generate devuelve los bytes del PDF para el catálogo anotado de la organización.
func (g *StatementGenerator) Generate(_ context.Context, in *dto.OrganizationModulesResponse, issuedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estado de licencias", true).
		WithAuthor("cmms-api", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(in, issuedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(in.Modules))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range moduleRows(in.Modules) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(
			"Los módulos núcleo están incluidos en todos los planes. "+
				"Las pruebas no habilitan el acceso hasta su activación.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(in *dto.OrganizationModulesResponse, issuedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ESTADO DE LICENCIAS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Organización: "+in.OrganizationID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Plan: "+Label(nonEmpty(in.Tier, "sin plan")), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Emitido: "+issuedAt.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func summaryRow(mods []dto.OrganizationModuleResponse) core.Row {
	var active, trial, expired int
	for _, m := range mods {
		switch {
		case m.IsActive:
			active++
		case m.Status == "trial":
			trial++
		case m.Status == "expired":
			expired++
		}
	}
	cell := func(label string, n int) core.Col {
		return col.New(4).Add(text.New(fmt.Sprintf("%s: %d", label, n), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 2,
		}))
	}
	return row.New(9).Add(
		cell("Activos", active),
		cell("En prueba", trial),
		cell("Vencidos", expired),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Módulo", 5, align.Left),
		h("Nivel", 2, align.Center),
		h("Estado", 2, align.Center),
		h("Vence", 2, align.Center),
		h("Usuarios", 1, align.Right),
	)
}

// moduleRows una fila por módulo del catálogo.
func moduleRows(mods []dto.OrganizationModuleResponse) []core.Row {
	out := make([]core.Row, 0, len(mods))
	for _, m := range mods {
		status, color := statusLabel(m)
		expires := "-"
		if m.ExpiresAt != nil {
			expires = m.ExpiresAt.UTC().Format("02/01/2006")
		}
		users := "-"
		if m.MaxUsers != nil {
			users = fmt.Sprintf("%d", *m.MaxUsers)
		}
		out = append(out, row.New(6).Add(
			col.New(5).Add(text.New(m.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(Label(m.Tier), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(status, props.Text{Size: 8, Align: align.Center, Top: 1, Color: color})),
			col.New(2).Add(text.New(expires, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(users, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func statusLabel(m dto.OrganizationModuleResponse) (string, *props.Color) {
	switch {
	case m.IsCore:
		return "Incluido", colorGreen
	case m.IsActive:
		return "Activo", colorGreen
	case m.Status == "":
		return "Sin licencia", colorGray
	case m.Status == "expired":
		return "Vencido", colorRed
	default:
		return Label(m.Status), colorGray
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// Label convierte un código snake_case en etiqueta: "enterprise_plus" → "Enterprise Plus".
// cases.Caser no es seguro entre goroutines: uno por llamada.
func Label(code string) string {
	return cases.Title(language.Spanish).String(strings.ReplaceAll(code, "_", " "))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
