package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback ante cualquier error. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		goodsRepo repository.GoodsRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// SnapshotReader ejecuta lecturas sobre una sola foto del estado confirmado: ninguna orden que
// confirme mientras fn corre es visible a medias.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error) error
}
