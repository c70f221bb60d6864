package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// GoodsUseCase casos de uso del catálogo. El stock no se toca aquí: solo vía órdenes de entrada/salida.
type GoodsUseCase struct {
	repo repository.GoodsRepository
}

// NewGoodsUseCase construye el caso de uso.
func NewGoodsUseCase(repo repository.GoodsRepository) *GoodsUseCase {
	return &GoodsUseCase{repo: repo}
}

// Register crea una mercancía activa. DuplicateCode si el código existe (activa o inactiva).
func (uc *GoodsUseCase) Register(ctx context.Context, in dto.CreateGoodsRequest) (*dto.GoodsResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validatePrices(in.PurchasePrice, in.SalePrice, in.MinStock); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}
	now := time.Now()
	goods := &entity.Goods{
		ID:            uuid.New().String(),
		Code:          code,
		Name:          name,
		Category:      in.Category,
		Spec:          in.Spec,
		Unit:          in.Unit,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		MinStock:      in.MinStock,
		Remark:        in.Remark,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, goods); err != nil {
		return nil, err
	}
	return toGoodsResponse(goods), nil
}

// GetByID obtiene una mercancía (activa o no).
func (uc *GoodsUseCase) GetByID(ctx context.Context, id string) (*dto.GoodsResponse, error) {
	goods, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goods == nil {
		return nil, domain.ErrNotFound
	}
	return toGoodsResponse(goods), nil
}

// Update aplica solo los campos presentes. Si cambia el código vuelve a verificar unicidad;
// la restricción única del repositorio cubre la carrera entre la verificación y la escritura.
func (uc *GoodsUseCase) Update(ctx context.Context, id string, in dto.UpdateGoodsRequest) (*dto.GoodsResponse, error) {
	if err := validatePrices(in.PurchasePrice, in.SalePrice, in.MinStock); err != nil {
		return nil, err
	}
	patch := repository.GoodsPatch{
		Category:      in.Category,
		Spec:          in.Spec,
		Unit:          in.Unit,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		MinStock:      in.MinStock,
		Remark:        in.Remark,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		patch.Name = &name
	}
	if in.Code != nil {
		code := strings.TrimSpace(*in.Code)
		if code == "" {
			return nil, domain.ErrInvalidInput
		}
		other, err := uc.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrDuplicateCode
		}
		patch.Code = &code
	}
	goods, err := uc.repo.Update(ctx, id, patch, time.Now())
	if err != nil {
		return nil, err
	}
	return toGoodsResponse(goods), nil
}

// Deactivate baja lógica. Idempotente: inexistente o ya inactiva no es error.
func (uc *GoodsUseCase) Deactivate(ctx context.Context, id string) error {
	return uc.repo.SetActive(ctx, id, false, time.Now())
}

// List lista mercancías activas por código, con filtros y paginación 1-indexada.
func (uc *GoodsUseCase) List(ctx context.Context, in dto.GoodsListRequest) (*dto.GoodsListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.GoodsFilter{
		Keyword:  strings.TrimSpace(in.Keyword),
		Category: in.Category,
		Page:     in.Page,
		PageSize: in.PageSize,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.GoodsResponse, 0, len(list))
	for _, g := range list {
		items = append(items, *toGoodsResponse(g))
	}
	return &dto.GoodsListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: in.Page, PageSize: in.PageSize, Total: total},
	}, nil
}

func validatePrices(values ...*decimal.Decimal) error {
	for _, v := range values {
		if v != nil && (v.IsNegative() || !entity.FitsNumeric(*v)) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

func toGoodsResponse(g *entity.Goods) *dto.GoodsResponse {
	if g == nil {
		return nil
	}
	return &dto.GoodsResponse{
		ID:            g.ID,
		Code:          g.Code,
		Name:          g.Name,
		Category:      g.Category,
		Spec:          g.Spec,
		Unit:          g.Unit,
		PurchasePrice: g.PurchasePrice,
		SalePrice:     g.SalePrice,
		MinStock:      g.MinStock,
		Remark:        g.Remark,
		Active:        g.Active,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}
