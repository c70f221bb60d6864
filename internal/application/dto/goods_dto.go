package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateGoodsRequest entrada para registrar una mercancía.
type CreateGoodsRequest struct {
	Code          string           `json:"code" validate:"required,min=1,max=50"`
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	Category      string           `json:"category"`
	Spec          string           `json:"spec"`
	Unit          string           `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	MinStock      *decimal.Decimal `json:"min_stock,omitempty"`
	Remark        string           `json:"remark"`
}

// UpdateGoodsRequest actualización parcial; solo se aplican los campos presentes.
type UpdateGoodsRequest struct {
	Code          *string          `json:"code" validate:"omitempty,min=1,max=50"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category      *string          `json:"category"`
	Spec          *string          `json:"spec"`
	Unit          *string          `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	MinStock      *decimal.Decimal `json:"min_stock"`
	Remark        *string          `json:"remark"`
}

// GoodsListRequest filtros de GET /api/goods.
type GoodsListRequest struct {
	Keyword  string `query:"keyword"`
	Category string `query:"category"`
	PageRequest
}

// GoodsResponse salida de una mercancía.
type GoodsResponse struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Spec          string           `json:"spec"`
	Unit          string           `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	MinStock      *decimal.Decimal `json:"min_stock"`
	Remark        string           `json:"remark"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// GoodsListResponse lista paginada de mercancías.
type GoodsListResponse struct {
	Items []GoodsResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
