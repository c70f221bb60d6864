package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotListRequest filtros de GET /api/stock/lots.
type LotListRequest struct {
	Keyword          string `query:"keyword"`
	OnlyBelowMinimum bool   `query:"only_below_minimum"`
	PageRequest
}

// LotResponse lote con los datos de la mercancía.
type LotResponse struct {
	ID        string           `json:"id"`
	GoodsID   string           `json:"goods_id"`
	GoodsCode string           `json:"goods_code"`
	GoodsName string           `json:"goods_name"`
	Unit      string           `json:"unit"`
	BatchNo   *string          `json:"batch_no"`
	Location  *string          `json:"location"`
	Quantity  decimal.Decimal  `json:"quantity"`
	MinStock  *decimal.Decimal `json:"min_stock"`
	ExpiresAt *time.Time       `json:"expires_at"`
	Expired   bool             `json:"expired"`
}

// LotListResponse lista paginada de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// OnHandResponse cantidad agregada de una mercancía.
type OnHandResponse struct {
	GoodsID      string          `json:"goods_id"`
	Code         string          `json:"code"`
	Quantity     decimal.Decimal `json:"quantity"`
	BelowMinimum bool            `json:"below_minimum"`
}

// MovementResponse asiento del libro de movimientos.
type MovementResponse struct {
	ID        string          `json:"id"`
	GoodsID   string          `json:"goods_id"`
	Direction string          `json:"direction"`
	Quantity  decimal.Decimal `json:"quantity"`
	OrderType string          `json:"order_type"`
	OrderID   string          `json:"order_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// LedgerDiscrepancy mercancía cuyo saldo del libro no coincide con la suma de sus lotes.
type LedgerDiscrepancy struct {
	GoodsID       string          `json:"goods_id"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	LotQuantity   decimal.Decimal `json:"lot_quantity"`
}

// NegativeLot lote con cantidad negativa.
type NegativeLot struct {
	LotID    string          `json:"lot_id"`
	GoodsID  string          `json:"goods_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// LedgerConsistencyResponse resultado de la verificación del libro contra los lotes.
type LedgerConsistencyResponse struct {
	Consistent    bool                `json:"consistent"`
	GoodsChecked  int                 `json:"goods_checked"`
	Discrepancies []LedgerDiscrepancy `json:"discrepancies"`
	NegativeLots  []NegativeLot       `json:"negative_lots"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para una mercancía bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	GoodsID            string          `json:"goods_id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Unit               string          `json:"unit"`
	OnHand             decimal.Decimal `json:"on_hand"`
	MinStock           decimal.Decimal `json:"min_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`         // MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"` // IdealStock - OnHand
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * PurchasePrice
	Priority           int             `json:"priority"`             // 1 = más urgente
}
