package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Tipo de orden que originó el movimiento.
const (
	OrderTypeStockIn  = "stock_in"
	OrderTypeStockOut = "stock_out"
)

// Movement hecho inmutable del libro de movimientos: una fila por línea de orden confirmada.
// Quantity es siempre la magnitud (positiva); el signo lo da Direction.
type Movement struct {
	ID        string
	GoodsID   string
	Direction string
	Quantity  decimal.Decimal
	OrderType string
	OrderID   string
	CreatedAt time.Time
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (m *Movement) Signed() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
