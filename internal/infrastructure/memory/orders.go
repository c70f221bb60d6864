package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes de entrada y salida en memoria.
type OrderRepo struct {
	s  *Store
	tx *Tx
}

func (r *OrderRepo) ReceivingNoExists(_ context.Context, orderNo string) (bool, error) {
	if r.tx != nil {
		for _, o := range r.tx.receivings {
			if o.OrderNo == orderNo {
				return true, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.receivingNos[orderNo]
	return ok, nil
}

func (r *OrderRepo) ShippingNoExists(_ context.Context, orderNo string) (bool, error) {
	if r.tx != nil {
		for _, o := range r.tx.shippings {
			if o.OrderNo == orderNo {
				return true, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.shippingNos[orderNo]
	return ok, nil
}

func (r *OrderRepo) CreateReceiving(ctx context.Context, order *entity.ReceivingOrder) error {
	if r.tx == nil {
		return errNoTx
	}
	if dup, _ := r.ReceivingNoExists(ctx, order.OrderNo); dup {
		return domain.ErrDuplicateOrderNumber
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	assignLineIDs(order.ID, order.Lines)
	c := *order
	c.Lines = append([]entity.OrderLine(nil), order.Lines...)
	r.tx.receivings = append(r.tx.receivings, c)
	return nil
}

func (r *OrderRepo) CreateShipping(ctx context.Context, order *entity.ShippingOrder) error {
	if r.tx == nil {
		return errNoTx
	}
	if dup, _ := r.ShippingNoExists(ctx, order.OrderNo); dup {
		return domain.ErrDuplicateOrderNumber
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	assignLineIDs(order.ID, order.Lines)
	c := *order
	c.Lines = append([]entity.OrderLine(nil), order.Lines...)
	r.tx.shippings = append(r.tx.shippings, c)
	return nil
}

func (r *OrderRepo) GetReceiving(_ context.Context, id string) (*entity.ReceivingOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.receivings[id]
	if !ok {
		return nil, nil
	}
	o.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &o, nil
}

func (r *OrderRepo) GetShipping(_ context.Context, id string) (*entity.ShippingOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.shippings[id]
	if !ok {
		return nil, nil
	}
	o.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &o, nil
}

func assignLineIDs(orderID string, lines []entity.OrderLine) {
	for i := range lines {
		if lines[i].ID == "" {
			lines[i].ID = uuid.New().String()
		}
		lines[i].OrderID = orderID
		lines[i].LineNo = i + 1
	}
}
