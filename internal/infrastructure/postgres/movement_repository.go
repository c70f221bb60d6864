package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE (trigger).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create registra un movimiento (solo inserción).
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, goods_id, direction, quantity, order_type, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.GoodsID, m.Direction, m.Quantity, m.OrderType, m.OrderID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// List movimientos en el rango inclusivo, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.GoodsID != "" && !isUUID(f.GoodsID) {
		return []*entity.Movement{}, nil
	}
	query := `
		SELECT id, goods_id, direction, quantity, order_type, order_id, created_at
		FROM movements
		WHERE ($1::uuid IS NULL OR goods_id = $1::uuid)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC, seq DESC`
	var goodsID *string
	if f.GoodsID != "" {
		goodsID = &f.GoodsID
	}
	args := []any{goodsID, f.From, f.To}
	if f.Limit > 0 {
		query += ` LIMIT $4`
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, len(args)+1)
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	list := []*entity.Movement{}
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.GoodsID, &m.Direction, &m.Quantity, &m.OrderType, &m.OrderID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *MovementRepo) BalancesByGoods(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT goods_id, SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END)
		FROM movements GROUP BY goods_id`)
	if err != nil {
		return nil, fmt.Errorf("balances by goods: %w", err)
	}
	return collectBalances(rows)
}
