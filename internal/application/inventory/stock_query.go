package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// StockQueryUseCase consultas de solo lectura sobre lotes y libro de movimientos.
// Siempre leen datos confirmados.
type StockQueryUseCase struct {
	goodsRepo repository.GoodsRepository
	lotRepo   repository.LotRepository
	movRepo   repository.MovementRepository
	snapshot  SnapshotReader
	now       func() time.Time
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	goodsRepo repository.GoodsRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	snapshot SnapshotReader,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		goodsRepo: goodsRepo,
		lotRepo:   lotRepo,
		movRepo:   movRepo,
		snapshot:  snapshot,
		now:       time.Now,
	}
}

// QuantityOnHand suma de los lotes de la mercancía.
func (uc *StockQueryUseCase) QuantityOnHand(ctx context.Context, goodsID string) (*dto.OnHandResponse, error) {
	goods, err := uc.goodsRepo.GetByID(ctx, goodsID)
	if err != nil {
		return nil, err
	}
	if goods == nil {
		return nil, domain.ErrNotFound
	}
	qty, err := uc.lotRepo.QuantityOnHand(ctx, goodsID)
	if err != nil {
		return nil, err
	}
	return &dto.OnHandResponse{
		GoodsID:      goods.ID,
		Code:         goods.Code,
		Quantity:     qty,
		BelowMinimum: goods.BelowMinimum(qty),
	}, nil
}

// ListLots lotes por (código de mercancía, orden de creación) con filtro por palabra clave y
// opcionalmente solo mercancías bajo su stock mínimo.
func (uc *StockQueryUseCase) ListLots(ctx context.Context, in dto.LotListRequest) (*dto.LotListResponse, error) {
	in.DefaultPage()
	views, total, err := uc.lotRepo.List(ctx, repository.LotFilter{
		Keyword:          in.Keyword,
		OnlyBelowMinimum: in.OnlyBelowMinimum,
		Page:             in.Page,
		PageSize:         in.PageSize,
	})
	if err != nil {
		return nil, err
	}
	today := uc.now()
	items := make([]dto.LotResponse, 0, len(views))
	for _, v := range views {
		items = append(items, dto.LotResponse{
			ID:        v.ID,
			GoodsID:   v.GoodsID,
			GoodsCode: v.GoodsCode,
			GoodsName: v.GoodsName,
			Unit:      v.Unit,
			BatchNo:   v.BatchNo,
			Location:  v.Location,
			Quantity:  v.Quantity,
			MinStock:  v.MinStock,
			ExpiresAt: v.ExpiresAt,
			Expired:   v.IsExpired(today),
		})
	}
	return &dto.LotListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: in.Page, PageSize: in.PageSize, Total: total},
	}, nil
}

// ListMovements asientos del libro en el rango [from, to], más recientes primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, from, to *time.Time, goodsID string, page dto.PageRequest) ([]dto.MovementResponse, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	list, err := uc.movRepo.List(ctx, repository.MovementFilter{
		From:    from,
		To:      to,
		GoodsID: goodsID,
		Limit:   page.PageSize,
		Offset:  page.Offset(),
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:        m.ID,
			GoodsID:   m.GoodsID,
			Direction: m.Direction,
			Quantity:  m.Quantity,
			OrderType: m.OrderType,
			OrderID:   m.OrderID,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// VerifyLedger compara, por mercancía, suma(in) - suma(out) del libro contra la suma de sus lotes
// y lista los lotes negativos. Las tres lecturas salen de la misma foto, así una orden confirmada
// en medio no aparece como discrepancia.
func (uc *StockQueryUseCase) VerifyLedger(ctx context.Context) (*dto.LedgerConsistencyResponse, error) {
	var (
		balances   map[string]decimal.Decimal
		quantities map[string]decimal.Decimal
		negatives  []*entity.Lot
	)
	err := uc.snapshot.ReadSnapshot(ctx, func(lotRepo repository.LotRepository, movRepo repository.MovementRepository) error {
		var err error
		if balances, err = movRepo.BalancesByGoods(ctx); err != nil {
			return err
		}
		if quantities, err = lotRepo.QuantitiesByGoods(ctx); err != nil {
			return err
		}
		negatives, err = lotRepo.ListNegative(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(balances)+len(quantities))
	for id := range balances {
		ids[id] = struct{}{}
	}
	for id := range quantities {
		ids[id] = struct{}{}
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	res := &dto.LedgerConsistencyResponse{
		GoodsChecked:  len(sorted),
		Discrepancies: []dto.LedgerDiscrepancy{},
		NegativeLots:  []dto.NegativeLot{},
	}
	for _, id := range sorted {
		ledger := balances[id]
		lots := quantities[id]
		if !ledger.Equal(lots) {
			res.Discrepancies = append(res.Discrepancies, dto.LedgerDiscrepancy{
				GoodsID:       id,
				LedgerBalance: ledger,
				LotQuantity:   lots,
			})
		}
	}
	for _, l := range negatives {
		res.NegativeLots = append(res.NegativeLots, dto.NegativeLot{
			LotID:    l.ID,
			GoodsID:  l.GoodsID,
			Quantity: l.Quantity,
		})
	}
	res.Consistent = len(res.Discrepancies) == 0 && len(res.NegativeLots) == 0
	return res, nil
}
