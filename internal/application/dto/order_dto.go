package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de una orden. En salidas batch_no/location se guardan pero no dirigen la asignación.
type OrderLineRequest struct {
	GoodsID   string           `json:"goods_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	BatchNo   *string          `json:"batch_no,omitempty"`
	Location  *string          `json:"location,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// ReceiveRequest body para POST /api/stock-in.
type ReceiveRequest struct {
	OrderNo  string             `json:"order_no" validate:"required"`
	Supplier string             `json:"supplier"`
	Date     *time.Time         `json:"date,omitempty"`
	Remark   string             `json:"remark"`
	Lines    []OrderLineRequest `json:"lines"`
}

// ShipRequest body para POST /api/stock-out. OutType por defecto "sale".
type ShipRequest struct {
	OrderNo  string             `json:"order_no" validate:"required"`
	Customer string             `json:"customer"`
	Date     *time.Time         `json:"date,omitempty"`
	OutType  string             `json:"out_type" validate:"omitempty,oneof=sale use scrap transfer other"`
	Remark   string             `json:"remark"`
	Lines    []OrderLineRequest `json:"lines"`
}

// OrderLineResponse línea persistida.
type OrderLineResponse struct {
	ID        string           `json:"id"`
	LineNo    int              `json:"line_no"`
	GoodsID   string           `json:"goods_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	BatchNo   *string          `json:"batch_no,omitempty"`
	Location  *string          `json:"location,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// ReceivingOrderResponse orden de entrada confirmada.
type ReceivingOrderResponse struct {
	ID        string              `json:"id"`
	OrderNo   string              `json:"order_no"`
	Supplier  string              `json:"supplier"`
	Date      time.Time           `json:"date"`
	UserID    *string             `json:"user_id,omitempty"`
	Remark    string              `json:"remark"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
}

// ShippingOrderResponse orden de salida confirmada.
type ShippingOrderResponse struct {
	ID        string              `json:"id"`
	OrderNo   string              `json:"order_no"`
	Customer  string              `json:"customer"`
	Date      time.Time           `json:"date"`
	UserID    *string             `json:"user_id,omitempty"`
	OutType   string              `json:"out_type"`
	Remark    string              `json:"remark"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
}
