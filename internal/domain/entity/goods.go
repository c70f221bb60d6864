package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goods representa una mercancía del catálogo. El código es inmutable en la práctica y único
// entre mercancías activas e inactivas; "eliminar" solo limpia Active (lotes y órdenes la referencian).
type Goods struct {
	ID            string
	Code          string // código único (activo o inactivo)
	Name          string
	Category      string
	Spec          string
	Unit          string // unidad de medida
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	MinStock      *decimal.Decimal // umbral de stock mínimo; nil = sin alerta
	Remark        string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BelowMinimum indica si la cantidad agregada está estrictamente por debajo del umbral.
// Sin umbral configurado nunca está por debajo.
func (g *Goods) BelowMinimum(onHand decimal.Decimal) bool {
	if g.MinStock == nil {
		return false
	}
	return onHand.LessThan(*g.MinStock)
}
