package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.GoodsRepository = (*GoodsRepo)(nil)

// GoodsRepo catálogo en memoria. Las escrituras se confirman de inmediato.
type GoodsRepo struct {
	s *Store
}

func (r *GoodsRepo) Create(_ context.Context, goods *entity.Goods) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.codeTaken(goods.Code, "") {
		return domain.ErrDuplicateCode
	}
	if goods.ID == "" {
		goods.ID = uuid.New().String()
	}
	r.s.goods[goods.ID] = *goods
	return nil
}

func (r *GoodsRepo) GetByID(_ context.Context, id string) (*entity.Goods, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.goods[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (r *GoodsRepo) GetByCode(_ context.Context, code string) (*entity.Goods, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, g := range r.s.goods {
		if g.Code == code {
			return &g, nil
		}
	}
	return nil, nil
}

// Update aplica el patch bajo el lock del store; Active no se toca.
func (r *GoodsRepo) Update(_ context.Context, id string, patch repository.GoodsPatch, at time.Time) (*entity.Goods, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.goods[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Code != nil {
		if r.codeTaken(*patch.Code, id) {
			return nil, domain.ErrDuplicateCode
		}
		g.Code = *patch.Code
	}
	setIf(&g.Name, patch.Name)
	setIf(&g.Category, patch.Category)
	setIf(&g.Spec, patch.Spec)
	setIf(&g.Unit, patch.Unit)
	setIf(&g.Remark, patch.Remark)
	if patch.PurchasePrice != nil {
		g.PurchasePrice = patch.PurchasePrice
	}
	if patch.SalePrice != nil {
		g.SalePrice = patch.SalePrice
	}
	if patch.MinStock != nil {
		g.MinStock = patch.MinStock
	}
	g.UpdatedAt = at
	r.s.goods[id] = g
	return &g, nil
}

func (r *GoodsRepo) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.goods[id]
	if !ok || g.Active == active {
		return nil
	}
	g.Active = active
	g.UpdatedAt = at
	r.s.goods[id] = g
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (r *GoodsRepo) List(_ context.Context, f repository.GoodsFilter) ([]*entity.Goods, int, error) {
	r.s.mu.RLock()
	var matched []*entity.Goods
	for _, g := range r.s.goods {
		if !g.Active {
			continue
		}
		if f.Category != "" && g.Category != f.Category {
			continue
		}
		if !matchesKeyword(f.Keyword, g.Code, g.Name) {
			continue
		}
		c := g
		matched = append(matched, &c)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Code < matched[j].Code })
	return paginate(matched, f.Page, f.PageSize), len(matched), nil
}

func (r *GoodsRepo) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	found := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.s.goods[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

// codeTaken requiere mu tomado.
func (r *GoodsRepo) codeTaken(code, exceptID string) bool {
	for id, g := range r.s.goods {
		if id != exceptID && g.Code == code {
			return true
		}
	}
	return false
}

// matchesKeyword subcadena sin distinguir mayúsculas (plegado Unicode) sobre cualquiera de los campos.
func matchesKeyword(keyword string, fields ...string) bool {
	if keyword == "" {
		return true
	}
	fold := cases.Fold()
	kw := fold.String(keyword)
	for _, f := range fields {
		if strings.Contains(fold.String(f), kw) {
			return true
		}
	}
	return false
}

// paginate aplica página 1-indexada; pageSize <= 0 devuelve todo.
func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	if page-1 >= (len(items)+pageSize-1)/pageSize {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
