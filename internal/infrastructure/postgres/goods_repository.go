package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.GoodsRepository = (*GoodsRepo)(nil)

// GoodsRepo implementación del puerto GoodsRepository sobre PostgreSQL (usable con pool o tx).
type GoodsRepo struct {
	q Querier
}

// NewGoodsRepository construye el adaptador de persistencia del catálogo. Pasar pool o tx (Querier).
func NewGoodsRepository(q Querier) *GoodsRepo {
	return &GoodsRepo{q: q}
}

const goodsColumns = `id, code, name, category, spec, unit, purchase_price, sale_price, min_stock, remark, active, created_at, updated_at`

func scanGoods(row pgx.Row) (*entity.Goods, error) {
	var g entity.Goods
	err := row.Scan(
		&g.ID, &g.Code, &g.Name, &g.Category, &g.Spec, &g.Unit,
		&g.PurchasePrice, &g.SalePrice, &g.MinStock, &g.Remark, &g.Active, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create persiste una mercancía nueva. ErrDuplicateCode si el código ya existe.
func (r *GoodsRepo) Create(ctx context.Context, goods *entity.Goods) error {
	if goods.ID == "" {
		goods.ID = uuid.New().String()
	}
	query := `
		INSERT INTO goods (` + goodsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		goods.ID, goods.Code, goods.Name, goods.Category, goods.Spec, goods.Unit,
		goods.PurchasePrice, goods.SalePrice, goods.MinStock, goods.Remark, goods.Active,
		goods.CreatedAt, goods.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert goods: %w", err)
	}
	return nil
}

// GetByID obtiene una mercancía por ID (activa o no).
func (r *GoodsRepo) GetByID(ctx context.Context, id string) (*entity.Goods, error) {
	if !isUUID(id) {
		return nil, nil
	}
	g, err := scanGoods(r.q.QueryRow(ctx, `SELECT `+goodsColumns+` FROM goods WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get goods: %w", err)
	}
	return g, nil
}

// GetByCode obtiene una mercancía por código.
func (r *GoodsRepo) GetByCode(ctx context.Context, code string) (*entity.Goods, error) {
	g, err := scanGoods(r.q.QueryRow(ctx, `SELECT `+goodsColumns+` FROM goods WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get goods by code: %w", err)
	}
	return g, nil
}

// Update aplica el patch con COALESCE sobre cada columna, así dos ediciones concurrentes
// de campos distintos no se pisan y el flag active nunca se reescribe.
func (r *GoodsRepo) Update(ctx context.Context, id string, patch repository.GoodsPatch, at time.Time) (*entity.Goods, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	query := `
		UPDATE goods SET
			code = COALESCE($2, code), name = COALESCE($3, name), category = COALESCE($4, category),
			spec = COALESCE($5, spec), unit = COALESCE($6, unit),
			purchase_price = COALESCE($7, purchase_price), sale_price = COALESCE($8, sale_price),
			min_stock = COALESCE($9, min_stock), remark = COALESCE($10, remark), updated_at = $11
		WHERE id = $1
		RETURNING ` + goodsColumns
	g, err := scanGoods(r.q.QueryRow(ctx, query,
		id, patch.Code, patch.Name, patch.Category, patch.Spec, patch.Unit,
		patch.PurchasePrice, patch.SalePrice, patch.MinStock, patch.Remark, at,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, fmt.Errorf("update goods: %w", err)
	}
	return g, nil
}

// SetActive activa o da de baja sin tocar el resto de la fila.
func (r *GoodsRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	if !isUUID(id) {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE goods SET active = $2, updated_at = $3 WHERE id = $1 AND active <> $2`, id, active, at)
	if err != nil {
		return fmt.Errorf("set goods active: %w", err)
	}
	return nil
}

// List mercancías activas filtradas por palabra clave (código o nombre) y categoría, ordenadas por código.
func (r *GoodsRepo) List(ctx context.Context, f repository.GoodsFilter) ([]*entity.Goods, int, error) {
	where := `WHERE active
		AND ($1 = '' OR code ILIKE $2 OR name ILIKE $2)
		AND ($3 = '' OR category = $3)`
	args := []any{f.Keyword, likePattern(f.Keyword), f.Category}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM goods `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count goods: %w", err)
	}

	query := `SELECT ` + goodsColumns + ` FROM goods ` + where + ` ORDER BY code`
	if f.PageSize > 0 {
		query += ` LIMIT $4 OFFSET $5`
		args = append(args, f.PageSize, offsetFor(f.Page, f.PageSize))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list goods: %w", err)
	}
	defer rows.Close()

	var list []*entity.Goods
	for rows.Next() {
		g, err := scanGoods(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan goods: %w", err)
		}
		list = append(list, g)
	}
	return list, total, rows.Err()
}

// ExistingIDs devuelve el subconjunto de ids presentes en el catálogo.
func (r *GoodsRepo) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	valid := onlyUUIDs(ids)
	if len(valid) == 0 {
		return []string{}, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id::text FROM goods WHERE id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, fmt.Errorf("existing goods: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan goods ids: %w", err)
	}
	return found, nil
}
