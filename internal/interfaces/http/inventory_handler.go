package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

// InventoryHandler maneja órdenes de entrada/salida y consultas de stock (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	stock         *inventory.StockQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, stock *inventory.StockQueryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, stock: stock, replenishment: replenishment}
}

// Receive godoc
// @Summary      Confirmar orden de entrada
// @Description  Todo o nada: cada línea suma a su lote (mercancía, lote, ubicación) y registra un movimiento "in".
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "Encabezado y líneas"
// @Success      201   {object}  dto.ReceivingOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock-in [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.Receive(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetReceiving godoc
// @Summary      Obtener orden de entrada
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ReceivingOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-in/{id} [get]
func (h *InventoryHandler) GetReceiving(c *fiber.Ctx) error {
	out, err := h.ledger.GetReceiving(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Ship godoc
// @Summary      Confirmar orden de salida
// @Description  Todo o nada: descuenta de los lotes más antiguos primero (FIFO) y registra un movimiento "out" por línea.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShipRequest  true  "Encabezado y líneas"
// @Success      201   {object}  dto.ShippingOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/stock-out [post]
func (h *InventoryHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.Ship(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetShipping godoc
// @Summary      Obtener orden de salida
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ShippingOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-out/{id} [get]
func (h *InventoryHandler) GetShipping(c *fiber.Ctx) error {
	out, err := h.ledger.GetShipping(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListLots godoc
// @Summary      Listar lotes
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        keyword             query  string  false  "Subcadena de código o nombre"
// @Param        only_below_minimum  query  bool    false  "Solo mercancías bajo su mínimo"
// @Param        page                query  int     false  "Página (1-indexada)"  default(1)
// @Param        page_size           query  int     false  "Tamaño de página"     default(20)
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/stock/lots [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	in := dto.LotListRequest{
		Keyword:          c.Query("keyword"),
		OnlyBelowMinimum: c.QueryBool("only_below_minimum", false),
		PageRequest:      pageFromQuery(c),
	}
	out, err := h.stock.ListLots(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// OnHand godoc
// @Summary      Cantidad agregada de una mercancía
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        goodsId  path  string  true  "ID de la mercancía"
// @Success      200  {object}  dto.OnHandResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/on-hand/{goodsId} [get]
func (h *InventoryHandler) OnHand(c *fiber.Ctx) error {
	out, err := h.stock.QuantityOnHand(c.UserContext(), c.Params("goodsId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Mercancías con stock agregado bajo su mínimo, con cantidad sugerida (mínimo*1.5 - stock), mayor déficit primero.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/stock/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// VerifyLedger godoc
// @Summary      Verificar libro contra lotes
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LedgerConsistencyResponse
// @Router       /api/stock/consistency [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	out, err := h.stock.VerifyLedger(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        from       query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to         query  string  false  "Hasta, inclusivo (YYYY-MM-DD o RFC3339)"
// @Param        goods_id   query  string  false  "Filtrar por mercancía"
// @Param        page       query  int     false  "Página (1-indexada)"  default(1)
// @Param        page_size  query  int     false  "Tamaño de página"     default(20)
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	from, to, err := dateRange(c, false)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.stock.ListMovements(c.UserContext(), from, to, c.Query("goods_id"), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// dateRange lee from/to. Una fecha sin hora en "to" cubre el día completo.
func dateRange(c *fiber.Ctx, required bool) (from, to *time.Time, err error) {
	from, err = parseDateParam(c.Query("from"), false)
	if err != nil {
		return nil, nil, err
	}
	to, err = parseDateParam(c.Query("to"), true)
	if err != nil {
		return nil, nil, err
	}
	if required && (from == nil || to == nil) {
		return nil, nil, domain.ErrInvalidInput
	}
	return from, to, nil
}

func parseDateParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
