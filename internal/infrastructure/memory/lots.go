package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

var errNoTx = errors.New("memory: operación requiere transacción")

// LotRepo Lot Store en memoria. Con tx lee staging sobre confirmado y escribe en staging;
// sin tx solo lee datos confirmados.
type LotRepo struct {
	s  *Store
	tx *Tx
}

func (r *LotRepo) LockGoods(ctx context.Context, goodsIDs []string) error {
	if r.tx == nil {
		return errNoTx
	}
	return r.tx.lock(ctx, goodsIDs)
}

func (r *LotRepo) FindByKey(_ context.Context, goodsID string, batchNo, location *string) (*entity.Lot, error) {
	for _, l := range r.lotsFor(goodsID) {
		if l.MatchesKey(batchNo, location) {
			return l, nil
		}
	}
	return nil, nil
}

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if r.tx == nil {
		return errNoTx
	}
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	lot.Seq = r.s.lotSeq.Add(1)
	c := *lot
	r.tx.lots[lot.ID] = &c
	r.tx.newLots = append(r.tx.newLots, lot.ID)
	return nil
}

func (r *LotRepo) Update(_ context.Context, lot *entity.Lot) error {
	if r.tx == nil {
		return errNoTx
	}
	c := *lot
	r.tx.lots[lot.ID] = &c
	return nil
}

func (r *LotRepo) ListAvailable(_ context.Context, goodsID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.lotsFor(goodsID) {
		if l.Quantity.IsPositive() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LotRepo) QuantityOnHand(_ context.Context, goodsID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range r.lotsFor(goodsID) {
		total = total.Add(l.Quantity)
	}
	return total, nil
}

func (r *LotRepo) List(_ context.Context, f repository.LotFilter) ([]repository.LotView, int, error) {
	r.s.mu.RLock()
	var views []repository.LotView
	for goodsID, ids := range r.s.lotsByGoods {
		g, ok := r.s.goods[goodsID]
		if !ok || !matchesKeyword(f.Keyword, g.Code, g.Name) {
			continue
		}
		if f.OnlyBelowMinimum && !g.BelowMinimum(r.s.sumLocked(goodsID)) {
			continue
		}
		for _, id := range ids {
			views = append(views, repository.LotView{
				Lot:       r.s.lots[id],
				GoodsCode: g.Code,
				GoodsName: g.Name,
				Unit:      g.Unit,
				MinStock:  g.MinStock,
			})
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool {
		if views[i].GoodsCode != views[j].GoodsCode {
			return views[i].GoodsCode < views[j].GoodsCode
		}
		return views[i].Seq < views[j].Seq
	})
	return paginate(views, f.Page, f.PageSize), len(views), nil
}

func (r *LotRepo) QuantitiesByGoods(_ context.Context) (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(r.s.lotsByGoods))
	for goodsID := range r.s.lotsByGoods {
		out[goodsID] = r.s.sumLocked(goodsID)
	}
	return out, nil
}

func (r *LotRepo) ListNegative(_ context.Context) ([]*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.Quantity.IsNegative() {
			c := l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *LotRepo) GetGoodsBelowMinimum(_ context.Context) ([]repository.ReplenishmentItem, error) {
	r.s.mu.RLock()
	var items []repository.ReplenishmentItem
	for _, g := range r.s.goods {
		if !g.Active || g.MinStock == nil || !g.MinStock.IsPositive() {
			continue
		}
		onHand := r.s.sumLocked(g.ID)
		if !g.BelowMinimum(onHand) {
			continue
		}
		price := decimal.Zero
		if g.PurchasePrice != nil {
			price = *g.PurchasePrice
		}
		items = append(items, repository.ReplenishmentItem{
			GoodsID:       g.ID,
			Code:          g.Code,
			Name:          g.Name,
			Unit:          g.Unit,
			OnHand:        onHand,
			MinStock:      *g.MinStock,
			PurchasePrice: price,
		})
	}
	r.s.mu.RUnlock()

	// Mayor déficit primero.
	sort.SliceStable(items, func(i, j int) bool {
		di := items[i].MinStock.Sub(items[i].OnHand)
		dj := items[j].MinStock.Sub(items[j].OnHand)
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return items[i].Code < items[j].Code
	})
	return items, nil
}

func (r *LotRepo) lotsFor(goodsID string) []*entity.Lot {
	if r.tx != nil {
		return r.tx.lotsFor(goodsID)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := r.s.lotsByGoods[goodsID]
	out := make([]*entity.Lot, 0, len(ids))
	for _, id := range ids {
		c := r.s.lots[id]
		out = append(out, &c)
	}
	return out
}

// sumLocked requiere mu tomado.
func (s *Store) sumLocked(goodsID string) decimal.Decimal {
	total := decimal.Zero
	for _, id := range s.lotsByGoods[goodsID] {
		total = total.Add(s.lots[id].Quantity)
	}
	return total
}
