package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo encabezados y líneas de órdenes de entrada y salida sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func (r *OrderRepo) ReceivingNoExists(ctx context.Context, orderNo string) (bool, error) {
	return r.orderNoExists(ctx, "receiving_orders", orderNo)
}

func (r *OrderRepo) ShippingNoExists(ctx context.Context, orderNo string) (bool, error) {
	return r.orderNoExists(ctx, "shipping_orders", orderNo)
}

func (r *OrderRepo) orderNoExists(ctx context.Context, table, orderNo string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE order_no = $1)`, orderNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return exists, nil
}

// CreateReceiving inserta encabezado y líneas. El constraint único de order_no resuelve carreras entre
// dos órdenes con el mismo número.
func (r *OrderRepo) CreateReceiving(ctx context.Context, o *entity.ReceivingOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO receiving_orders (id, order_no, supplier, order_date, user_id, remark, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.OrderNo, o.Supplier, o.Date, o.UserID, o.Remark, o.CreatedAt,
	)
	if err != nil {
		return orderInsertError(err, "insert receiving order")
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		prepareLine(o.ID, i, l)
		_, err := r.q.Exec(ctx, `
			INSERT INTO receiving_lines (id, order_id, line_no, goods_id, quantity, price, batch_no, location, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, l.OrderID, l.LineNo, l.GoodsID, l.Quantity, l.Price, l.BatchNo, l.Location, l.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("insert receiving line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) CreateShipping(ctx context.Context, o *entity.ShippingOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO shipping_orders (id, order_no, customer, order_date, user_id, out_type, remark, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.OrderNo, o.Customer, o.Date, o.UserID, o.OutType, o.Remark, o.CreatedAt,
	)
	if err != nil {
		return orderInsertError(err, "insert shipping order")
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		prepareLine(o.ID, i, l)
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipping_lines (id, order_id, line_no, goods_id, quantity, price, batch_no, location)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, l.OrderID, l.LineNo, l.GoodsID, l.Quantity, l.Price, l.BatchNo, l.Location,
		)
		if err != nil {
			return fmt.Errorf("insert shipping line: %w", err)
		}
	}
	return nil
}

// GetReceiving devuelve (nil, nil) si no existe.
func (r *OrderRepo) GetReceiving(ctx context.Context, id string) (*entity.ReceivingOrder, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var o entity.ReceivingOrder
	err := r.q.QueryRow(ctx, `
		SELECT id, order_no, supplier, order_date, user_id, remark, created_at
		FROM receiving_orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.OrderNo, &o.Supplier, &o.Date, &o.UserID, &o.Remark, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receiving order: %w", err)
	}
	lines, err := r.lines(ctx, `
		SELECT id, order_id, line_no, goods_id, quantity, price, batch_no, location, expires_at
		FROM receiving_lines WHERE order_id = $1 ORDER BY line_no`, id, true)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepo) GetShipping(ctx context.Context, id string) (*entity.ShippingOrder, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var o entity.ShippingOrder
	err := r.q.QueryRow(ctx, `
		SELECT id, order_no, customer, order_date, user_id, out_type, remark, created_at
		FROM shipping_orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.OrderNo, &o.Customer, &o.Date, &o.UserID, &o.OutType, &o.Remark, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipping order: %w", err)
	}
	lines, err := r.lines(ctx, `
		SELECT id, order_id, line_no, goods_id, quantity, price, batch_no, location
		FROM shipping_lines WHERE order_id = $1 ORDER BY line_no`, id, false)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepo) lines(ctx context.Context, query, orderID string, withExpiry bool) ([]entity.OrderLine, error) {
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		dest := []any{&l.ID, &l.OrderID, &l.LineNo, &l.GoodsID, &l.Quantity, &l.Price, &l.BatchNo, &l.Location}
		if withExpiry {
			dest = append(dest, &l.ExpiresAt)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// prepareLine asigna id, orden y número de línea (1-indexado).
func prepareLine(orderID string, i int, l *entity.OrderLine) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.OrderID = orderID
	l.LineNo = i + 1
}

func orderInsertError(err error, op string) error {
	if isUniqueViolation(err) && strings.HasSuffix(violatedConstraint(err), "order_no_key") {
		return domain.ErrDuplicateOrderNumber
	}
	return fmt.Errorf("%s: %w", op, err)
}
