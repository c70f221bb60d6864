package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de exportación sobre el estado confirmado.
type ReportRepo struct {
	s *Store
}

func (r *ReportRepo) StockSummary(_ context.Context) ([]repository.StockSummaryRow, error) {
	r.s.mu.RLock()
	rows := make([]repository.StockSummaryRow, 0, len(r.s.goods))
	for _, g := range r.s.goods {
		rows = append(rows, repository.StockSummaryRow{
			Code:     g.Code,
			Name:     g.Name,
			Category: g.Category,
			Unit:     g.Unit,
			OnHand:   r.s.sumLocked(g.ID),
			MinStock: g.MinStock,
			Active:   g.Active,
		})
	}
	r.s.mu.RUnlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows, nil
}

func (r *ReportRepo) InOutDetail(_ context.Context, from, to time.Time) ([]repository.InOutRow, error) {
	r.s.mu.RLock()
	var rows []repository.InOutRow
	inRange := func(d time.Time) bool { return !d.Before(from) && !d.After(to) }
	for _, o := range r.s.receivings {
		if !inRange(o.Date) {
			continue
		}
		for _, l := range o.Lines {
			rows = append(rows, r.inOutRow(o.Date, o.OrderNo, l, entity.DirectionIn))
		}
	}
	for _, o := range r.s.shippings {
		if !inRange(o.Date) {
			continue
		}
		for _, l := range o.Lines {
			row := r.inOutRow(o.Date, o.OrderNo, l, entity.DirectionOut)
			row.Quantity = row.Quantity.Neg()
			rows = append(rows, row)
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].OrderNo != rows[j].OrderNo {
			return rows[i].OrderNo < rows[j].OrderNo
		}
		return rows[i].Code < rows[j].Code
	})
	return rows, nil
}

// inOutRow requiere mu tomado.
func (r *ReportRepo) inOutRow(date time.Time, orderNo string, l entity.OrderLine, direction string) repository.InOutRow {
	g := r.s.goods[l.GoodsID]
	return repository.InOutRow{
		Date:     date,
		OrderNo:  orderNo,
		Code:     g.Code,
		Name:     g.Name,
		Quantity: l.Quantity,
		Price:    l.Price,
		Type:     direction,
	}
}
