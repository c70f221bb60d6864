package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria (solo inserción).
type MovementRepo struct {
	s  *Store
	tx *Tx
}

func (r *MovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	if r.tx == nil {
		return errNoTx
	}
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	r.tx.movements = append(r.tx.movements, *movement)
	return nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if f.GoodsID != "" && m.GoodsID != f.GoodsID {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		c := m
		out = append(out, &c)
	}
	r.s.mu.RUnlock()

	// Más recientes primero; a igual marca de tiempo, el último insertado primero.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.Movement{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MovementRepo) BalancesByGoods(_ context.Context) (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]decimal.Decimal)
	for _, m := range r.s.movements {
		out[m.GoodsID] = out[m.GoodsID].Add(m.Signed())
	}
	return out, nil
}
