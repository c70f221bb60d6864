package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// OrderRepository puerto de persistencia para encabezados y líneas de órdenes de entrada y salida.
type OrderRepository interface {
	ReceivingNoExists(ctx context.Context, orderNo string) (bool, error)
	ShippingNoExists(ctx context.Context, orderNo string) (bool, error)
	// CreateReceiving persiste encabezado y líneas; ErrDuplicateOrderNumber si el número ya existe.
	CreateReceiving(ctx context.Context, order *entity.ReceivingOrder) error
	CreateShipping(ctx context.Context, order *entity.ShippingOrder) error
	GetReceiving(ctx context.Context, id string) (*entity.ReceivingOrder, error)
	GetShipping(ctx context.Context, id string) (*entity.ShippingOrder, error)
}
