package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// LotFilter filtros de listLots. Page es 1-indexado.
type LotFilter struct {
	Keyword          string
	OnlyBelowMinimum bool
	Page             int
	PageSize         int
}

// LotView lote enriquecido con los datos de catálogo que necesita la consulta de stock.
type LotView struct {
	entity.Lot
	GoodsCode string
	GoodsName string
	Unit      string
	MinStock  *decimal.Decimal
}

// ReplenishmentItem mercancía cuyo stock agregado está por debajo de su mínimo.
type ReplenishmentItem struct {
	GoodsID       string
	Code          string
	Name          string
	Unit          string
	OnHand        decimal.Decimal
	MinStock      decimal.Decimal
	PurchasePrice decimal.Decimal
}

// LotRepository puerto del Lot Store. Las mutaciones solo se usan dentro de una transacción del
// motor de inventario, después de LockGoods.
type LotRepository interface {
	// LockGoods toma el alcance exclusivo por mercancía hasta el fin de la transacción.
	LockGoods(ctx context.Context, goodsIDs []string) error
	// FindByKey busca el lote (goods, batch, location); nil es llave literal, no comodín.
	FindByKey(ctx context.Context, goodsID string, batchNo, location *string) (*entity.Lot, error)
	// Create persiste un lote nuevo y asigna ID y Seq.
	Create(ctx context.Context, lot *entity.Lot) error
	// Update guarda cantidad y vencimiento del lote.
	Update(ctx context.Context, lot *entity.Lot) error
	// ListAvailable lotes con cantidad > 0 de la mercancía, en orden de creación.
	ListAvailable(ctx context.Context, goodsID string) ([]*entity.Lot, error)
	QuantityOnHand(ctx context.Context, goodsID string) (decimal.Decimal, error)
	List(ctx context.Context, f LotFilter) ([]LotView, int, error)
	// QuantitiesByGoods suma de lotes por mercancía (solo mercancías con lotes).
	QuantitiesByGoods(ctx context.Context) (map[string]decimal.Decimal, error)
	ListNegative(ctx context.Context) ([]*entity.Lot, error)
	GetGoodsBelowMinimum(ctx context.Context) ([]ReplenishmentItem, error)
}
