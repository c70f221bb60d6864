package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación del Lot Store sobre PostgreSQL. Las mutaciones deben correr sobre una tx.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, seq, goods_id, quantity, batch_no, location, expires_at, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.Seq, &l.GoodsID, &l.Quantity, &l.BatchNo, &l.Location, &l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// LockGoods bloquea las filas de goods (FOR UPDATE) en orden de id, así dos órdenes con mercancías
// compartidas se serializan sin interbloqueo. El bloqueo dura hasta el Commit/Rollback.
func (r *LotRepo) LockGoods(ctx context.Context, goodsIDs []string) error {
	valid := onlyUUIDs(goodsIDs)
	if len(valid) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx, `SELECT id FROM goods WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, valid)
	if err != nil {
		return fmt.Errorf("lock goods: %w", err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lock goods: %w", err)
	}
	return nil
}

// FindByKey busca el lote (goods, batch, location); NULL se compara como valor.
func (r *LotRepo) FindByKey(ctx context.Context, goodsID string, batchNo, location *string) (*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE goods_id = $1 AND batch_no IS NOT DISTINCT FROM $2 AND location IS NOT DISTINCT FROM $3`
	l, err := scanLot(r.q.QueryRow(ctx, query, goodsID, batchNo, location))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lot: %w", err)
	}
	return l, nil
}

// Create inserta el lote; Seq lo asigna la secuencia.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots (id, goods_id, quantity, batch_no, location, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		lot.ID, lot.GoodsID, lot.Quantity, lot.BatchNo, lot.Location, lot.ExpiresAt, lot.CreatedAt, lot.UpdatedAt,
	).Scan(&lot.Seq)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// Update guarda cantidad y vencimiento.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := `UPDATE lots SET quantity = $2, expires_at = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, lot.ID, lot.Quantity, lot.ExpiresAt, lot.UpdatedAt); err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return nil
}

// ListAvailable lotes con cantidad positiva en orden FIFO.
func (r *LotRepo) ListAvailable(ctx context.Context, goodsID string) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM lots WHERE goods_id = $1 AND quantity > 0 ORDER BY seq`, goodsID)
	if err != nil {
		return nil, fmt.Errorf("list available lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *LotRepo) QuantityOnHand(ctx context.Context, goodsID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if !isUUID(goodsID) {
		return total, nil
	}
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM lots WHERE goods_id = $1`, goodsID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("quantity on hand: %w", err)
	}
	return total, nil
}

// List lotes con datos de catálogo, ordenados por código y creación.
func (r *LotRepo) List(ctx context.Context, f repository.LotFilter) ([]repository.LotView, int, error) {
	from := `
		FROM lots l
		JOIN goods g ON g.id = l.goods_id
		JOIN (SELECT goods_id, SUM(quantity) AS on_hand FROM lots GROUP BY goods_id) t ON t.goods_id = l.goods_id
		WHERE ($1 = '' OR g.code ILIKE $2 OR g.name ILIKE $2)
		  AND (NOT $3 OR (g.min_stock IS NOT NULL AND t.on_hand < g.min_stock))`
	args := []any{f.Keyword, likePattern(f.Keyword), f.OnlyBelowMinimum}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count lots: %w", err)
	}

	query := `
		SELECT l.id, l.seq, l.goods_id, l.quantity, l.batch_no, l.location, l.expires_at, l.created_at, l.updated_at,
			g.code, g.name, g.unit, g.min_stock ` + from + `
		ORDER BY g.code, l.seq`
	if f.PageSize > 0 {
		query += ` LIMIT $4 OFFSET $5`
		args = append(args, f.PageSize, offsetFor(f.Page, f.PageSize))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var list []repository.LotView
	for rows.Next() {
		var v repository.LotView
		if err := rows.Scan(
			&v.ID, &v.Seq, &v.GoodsID, &v.Quantity, &v.BatchNo, &v.Location, &v.ExpiresAt, &v.CreatedAt, &v.UpdatedAt,
			&v.GoodsCode, &v.GoodsName, &v.Unit, &v.MinStock,
		); err != nil {
			return nil, 0, fmt.Errorf("scan lot view: %w", err)
		}
		list = append(list, v)
	}
	return list, total, rows.Err()
}

func (r *LotRepo) QuantitiesByGoods(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `SELECT goods_id, SUM(quantity) FROM lots GROUP BY goods_id`)
	if err != nil {
		return nil, fmt.Errorf("quantities by goods: %w", err)
	}
	return collectBalances(rows)
}

func (r *LotRepo) ListNegative(ctx context.Context) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM lots WHERE quantity < 0 ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list negative lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// GetGoodsBelowMinimum mercancías activas con mínimo positivo y stock agregado por debajo, mayor déficit primero.
func (r *LotRepo) GetGoodsBelowMinimum(ctx context.Context) ([]repository.ReplenishmentItem, error) {
	query := `
		SELECT g.id, g.code, g.name, g.unit, COALESCE(t.on_hand, 0), g.min_stock, COALESCE(g.purchase_price, 0)
		FROM goods g
		LEFT JOIN (SELECT goods_id, SUM(quantity) AS on_hand FROM lots GROUP BY goods_id) t ON t.goods_id = g.id
		WHERE g.active AND g.min_stock > 0 AND COALESCE(t.on_hand, 0) < g.min_stock
		ORDER BY g.min_stock - COALESCE(t.on_hand, 0) DESC, g.code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("goods below minimum: %w", err)
	}
	defer rows.Close()

	var items []repository.ReplenishmentItem
	for rows.Next() {
		var it repository.ReplenishmentItem
		if err := rows.Scan(&it.GoodsID, &it.Code, &it.Name, &it.Unit, &it.OnHand, &it.MinStock, &it.PurchasePrice); err != nil {
			return nil, fmt.Errorf("scan replenishment item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// collectBalances lee filas (goods_id, total) a un mapa.
func collectBalances(rows pgx.Rows) (map[string]decimal.Decimal, error) {
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var goodsID string
		var total decimal.Decimal
		if err := rows.Scan(&goodsID, &total); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out[goodsID] = total
	}
	return out, rows.Err()
}
