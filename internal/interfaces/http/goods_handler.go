package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
)

// GoodsHandler maneja el catálogo de mercancías (protegido).
type GoodsHandler struct {
	uc *usecase.GoodsUseCase
}

// NewGoodsHandler construye el handler.
func NewGoodsHandler(uc *usecase.GoodsUseCase) *GoodsHandler {
	return &GoodsHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar mercancía
// @Tags         goods
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateGoodsRequest  true  "Datos de la mercancía"
// @Success      201   {object}  dto.GoodsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/goods [post]
func (h *GoodsHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateGoodsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener mercancía por ID (activa o no)
// @Tags         goods
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la mercancía"
// @Success      200  {object}  dto.GoodsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/goods/{id} [get]
func (h *GoodsHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar mercancías activas
// @Tags         goods
// @Security     Bearer
// @Produce      json
// @Param        keyword    query  string  false  "Subcadena de código o nombre"
// @Param        category   query  string  false  "Categoría exacta"
// @Param        page       query  int     false  "Página (1-indexada)"  default(1)
// @Param        page_size  query  int     false  "Tamaño de página"     default(20)
// @Success      200  {object}  dto.GoodsListResponse
// @Router       /api/goods [get]
func (h *GoodsHandler) List(c *fiber.Ctx) error {
	in := dto.GoodsListRequest{
		Keyword:     c.Query("keyword"),
		Category:    c.Query("category"),
		PageRequest: pageFromQuery(c),
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar mercancía
// @Tags         goods
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la mercancía"
// @Param        body  body  dto.UpdateGoodsRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.GoodsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/goods/{id} [put]
func (h *GoodsHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateGoodsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar mercancía (no se elimina; idempotente)
// @Tags         goods
// @Security     Bearer
// @Param        id   path  string  true  "ID de la mercancía"
// @Success      204
// @Router       /api/goods/{id} [delete]
func (h *GoodsHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// pageFromQuery lee page/page_size con los límites por defecto.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Page: c.QueryInt("page", 1), PageSize: c.QueryInt("page_size", 20)}
	p.DefaultPage()
	return p
}
