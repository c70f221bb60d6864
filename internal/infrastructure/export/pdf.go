package export

import (
	"context"
	"fmt"
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

	"github.com/jhoicas/Inventario-ledger/internal/application/report"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ report.PDFWriter = (*MarotoPDFWriter)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 156, Green: 0, Blue: 6}
)

// MarotoPDFWriter implementa report.PDFWriter usando Maroto v2.
type MarotoPDFWriter struct {
	title string
}

// NewMarotoPDFWriter construye el generador. title encabeza cada documento (p. ej. el nombre de la app).
func NewMarotoPDFWriter(title string) *MarotoPDFWriter { return &MarotoPDFWriter{title: title} }

// StockSummary tabla A4 con una fila por mercancía; bajo mínimo en rojo.
func (g *MarotoPDFWriter) StockSummary(_ context.Context, rows []repository.StockSummaryRow, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de stock", true).
		WithAuthor(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.title, generatedAt, len(rows)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(rows) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y fecha de corte + total de mercancías (der).
func headerRow(title string, generatedAt time.Time, count int) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(nonEmpty(title, "Inventario"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RESUMEN DE STOCK", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Corte: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d mercancías", count), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 8,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Código", 2, align.Left),
		h("Nombre", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Disponible", 2, align.Right),
		h("Mínimo", 2, align.Right),
		h("Estado", 1, align.Center),
	)
}

// tableDetailRows: una fila por mercancía.
func tableDetailRows(rows []repository.StockSummaryRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		style := props.Text{Size: 8, Top: 1}
		if r.MinStock != nil && r.OnHand.LessThan(*r.MinStock) {
			style.Color = colorAlert
		}
		minStock := "—"
		if r.MinStock != nil {
			minStock = r.MinStock.String()
		}
		status := "activa"
		if !r.Active {
			status = "inactiva"
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(r.Code, withAlign(style, align.Left))),
			col.New(4).Add(text.New(r.Name, withAlign(style, align.Left))),
			col.New(1).Add(text.New(r.Unit, withAlign(style, align.Center))),
			col.New(2).Add(text.New(r.OnHand.String(), withAlign(style, align.Right))),
			col.New(2).Add(text.New(minStock, withAlign(style, align.Right))),
			col.New(1).Add(text.New(status, withAlign(style, align.Center))),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func withAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	if a == align.Right {
		p.Right = 1
	} else {
		p.Left = 1
	}
	return p
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
