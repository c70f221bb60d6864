package report

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// SpreadsheetWriter genera libros xlsx.
type SpreadsheetWriter interface {
	StockSummary(rows []repository.StockSummaryRow, generatedAt time.Time) ([]byte, error)
	InOutDetail(rows []repository.InOutRow, from, to time.Time) ([]byte, error)
}

// PDFWriter genera el resumen de stock en PDF.
type PDFWriter interface {
	StockSummary(ctx context.Context, rows []repository.StockSummaryRow, generatedAt time.Time) ([]byte, error)
}

// XMLWriter serializa un rango del libro de movimientos.
type XMLWriter interface {
	Movements(lines []MovementLine, from, to time.Time) ([]byte, error)
}

// MovementLine movimiento con el código y nombre de su mercancía.
type MovementLine struct {
	entity.Movement
	GoodsCode string
	GoodsName string
}
