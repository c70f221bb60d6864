package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockSummaryRow fila del resumen de stock (todas las mercancías, con o sin lotes).
type StockSummaryRow struct {
	Code     string
	Name     string
	Category string
	Unit     string
	OnHand   decimal.Decimal
	MinStock *decimal.Decimal
	Active   bool
}

// InOutRow una línea de orden de entrada o salida dentro de un rango de fechas.
type InOutRow struct {
	Date     time.Time
	OrderNo  string
	Code     string
	Name     string
	Quantity decimal.Decimal // negativa en salidas
	Price    *decimal.Decimal
	Type     string // in | out
}

// ReportRepository consultas de solo lectura para exportación.
type ReportRepository interface {
	StockSummary(ctx context.Context) ([]StockSummaryRow, error)
	InOutDetail(ctx context.Context, from, to time.Time) ([]InOutRow, error)
}
