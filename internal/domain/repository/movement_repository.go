package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementFilter rango (inclusivo) y mercancía opcional para consultar el libro de movimientos.
type MovementFilter struct {
	From    *time.Time
	To      *time.Time
	GoodsID string
	Limit   int
	Offset  int
}

// MovementRepository puerto del libro de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, error)
	// BalancesByGoods suma(in) - suma(out) por mercancía.
	BalancesByGoods(ctx context.Context) (map[string]decimal.Decimal, error)
}
