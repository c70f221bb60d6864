package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de salida (disposición) de una orden de despacho.
const (
	OutTypeSale     = "sale"
	OutTypeUse      = "use"
	OutTypeScrap    = "scrap"
	OutTypeTransfer = "transfer"
	OutTypeOther    = "other"
)

// ValidOutType indica si el tipo de salida es reconocido.
func ValidOutType(t string) bool {
	switch t {
	case OutTypeSale, OutTypeUse, OutTypeScrap, OutTypeTransfer, OutTypeOther:
		return true
	}
	return false
}

// OrderLine detalle de una orden de entrada o salida.
// En salidas BatchNo/Location se guardan pero no dirigen la asignación (FIFO por mercancía).
type OrderLine struct {
	ID        string
	OrderID   string
	LineNo    int
	GoodsID   string
	Quantity  decimal.Decimal
	Price     *decimal.Decimal
	BatchNo   *string
	Location  *string
	ExpiresAt *time.Time // solo entradas
}

// ReceivingOrder encabezado de una orden de entrada (recepción). Inmutable después de confirmada.
type ReceivingOrder struct {
	ID        string
	OrderNo   string
	Supplier  string
	Date      time.Time
	UserID    *string
	Remark    string
	Lines     []OrderLine
	CreatedAt time.Time
}

// ShippingOrder encabezado de una orden de salida (despacho/consumo).
type ShippingOrder struct {
	ID        string
	OrderNo   string
	Customer  string
	Date      time.Time
	UserID    *string
	OutType   string
	Remark    string
	Lines     []OrderLine
	CreatedAt time.Time
}
