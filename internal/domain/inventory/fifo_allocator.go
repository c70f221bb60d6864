package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Draw cantidad tomada de un lote por la asignación FIFO.
type Draw struct {
	Lot      *entity.Lot
	Quantity decimal.Decimal
}

// AllocateFIFO descuenta qty de los lotes en el orden recibido (el caller los entrega por orden de
// creación), tomando min(restante, lote) de cada uno. Modifica Quantity de los lotes tocados y
// devuelve los lotes afectados. Si los lotes se agotan con cantidad pendiente devuelve
// *domain.AllocationRaceError: el caller ya verificó suficiencia, así que es una violación de aislamiento.
// Ningún lote queda negativo.
func AllocateFIFO(goodsID string, lots []*entity.Lot, qty decimal.Decimal) ([]Draw, error) {
	remaining := qty
	var draws []Draw
	for _, lot := range lots {
		if !remaining.IsPositive() {
			break
		}
		if !lot.Quantity.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, lot.Quantity)
		lot.Quantity = lot.Quantity.Sub(take)
		remaining = remaining.Sub(take)
		draws = append(draws, Draw{Lot: lot, Quantity: take})
	}
	if remaining.IsPositive() {
		return draws, &domain.AllocationRaceError{GoodsID: goodsID, Remaining: remaining}
	}
	return draws, nil
}
