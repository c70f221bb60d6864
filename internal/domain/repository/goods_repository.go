package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// GoodsFilter filtros del listado de catálogo (solo mercancías activas). Page es 1-indexado.
type GoodsFilter struct {
	Keyword  string
	Category string
	Page     int
	PageSize int
}

// GoodsPatch cambios parciales de una mercancía; nil deja la columna como está. No incluye Active:
// la baja va por SetActive para que una edición concurrente no la revierta.
type GoodsPatch struct {
	Code          *string
	Name          *string
	Category      *string
	Spec          *string
	Unit          *string
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	MinStock      *decimal.Decimal
	Remark        *string
}

// GoodsRepository define el puerto de persistencia para Goods (DIP).
type GoodsRepository interface {
	Create(ctx context.Context, goods *entity.Goods) error
	// GetByID devuelve (nil, nil) si no existe; ignora el flag Active.
	GetByID(ctx context.Context, id string) (*entity.Goods, error)
	GetByCode(ctx context.Context, code string) (*entity.Goods, error)
	// Update aplica el patch en un solo paso y devuelve la fila resultante.
	// ErrNotFound si no existe, ErrDuplicateCode si el código nuevo está tomado.
	Update(ctx context.Context, id string, patch GoodsPatch, at time.Time) (*entity.Goods, error)
	// SetActive cambia solo el flag Active. Un id inexistente no es error.
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	List(ctx context.Context, f GoodsFilter) ([]*entity.Goods, int, error)
	// ExistingIDs devuelve el subconjunto de ids que existen (activos o no).
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}
