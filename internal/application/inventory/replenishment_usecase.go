package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: mercancías activas cuyo stock agregado está
// por debajo de su mínimo.
type ReplenishmentUseCase struct {
	lotRepo repository.LotRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(lotRepo repository.LotRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{lotRepo: lotRepo}
}

// GenerateReplenishmentList devuelve las mercancías bajo mínimo con la cantidad sugerida de pedido
// (mínimo * 1.5 - disponible) y su costo estimado, ordenadas por mayor déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	rawItems, err := uc.lotRepo.GetGoodsBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		idealStock := item.MinStock.Mul(factor)
		suggestedQty := idealStock.Sub(item.OnHand)
		if suggestedQty.LessThanOrEqual(decimal.Zero) {
			suggestedQty = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			GoodsID:            item.GoodsID,
			Code:               item.Code,
			Name:               item.Name,
			Unit:               item.Unit,
			OnHand:             item.OnHand,
			MinStock:           item.MinStock,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			PurchasePrice:      item.PurchasePrice,
			EstimatedOrderCost: suggestedQty.Mul(item.PurchasePrice),
		})
	}

	// Mayor déficit absoluto primero; a igual déficit, por código.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.MinStock.Sub(a.OnHand)
		defB := b.MinStock.Sub(b.OnHand)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.Code < b.Code
	})

	// 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
