package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para las exportaciones.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// StockSummary todas las mercancías con su stock agregado (0 sin lotes), por código.
func (r *ReportRepo) StockSummary(ctx context.Context) ([]repository.StockSummaryRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT g.code, g.name, g.category, g.unit, COALESCE(t.on_hand, 0), g.min_stock, g.active
		FROM goods g
		LEFT JOIN (SELECT goods_id, SUM(quantity) AS on_hand FROM lots GROUP BY goods_id) t ON t.goods_id = g.id
		ORDER BY g.code`)
	if err != nil {
		return nil, fmt.Errorf("stock summary: %w", err)
	}
	defer rows.Close()

	var out []repository.StockSummaryRow
	for rows.Next() {
		var s repository.StockSummaryRow
		if err := rows.Scan(&s.Code, &s.Name, &s.Category, &s.Unit, &s.OnHand, &s.MinStock, &s.Active); err != nil {
			return nil, fmt.Errorf("scan stock summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// InOutDetail líneas de entradas y salidas cuyas órdenes caen en [from, to]; salidas en negativo.
func (r *ReportRepo) InOutDetail(ctx context.Context, from, to time.Time) ([]repository.InOutRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT o.order_date, o.order_no, g.code, g.name, l.quantity, l.price, 'in' AS type
		FROM receiving_orders o
		JOIN receiving_lines l ON l.order_id = o.id
		JOIN goods g ON g.id = l.goods_id
		WHERE o.order_date BETWEEN $1 AND $2
		UNION ALL
		SELECT o.order_date, o.order_no, g.code, g.name, -l.quantity, l.price, 'out' AS type
		FROM shipping_orders o
		JOIN shipping_lines l ON l.order_id = o.id
		JOIN goods g ON g.id = l.goods_id
		WHERE o.order_date BETWEEN $1 AND $2
		ORDER BY 1, 2, 3`, from, to)
	if err != nil {
		return nil, fmt.Errorf("in/out detail: %w", err)
	}
	defer rows.Close()

	var out []repository.InOutRow
	for rows.Next() {
		var row repository.InOutRow
		if err := rows.Scan(&row.Date, &row.OrderNo, &row.Code, &row.Name, &row.Quantity, &row.Price, &row.Type); err != nil {
			return nil, fmt.Errorf("scan in/out row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
