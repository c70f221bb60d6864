package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/report"
)

// ReportHandler descarga de reportes (solo admin).
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// StockSummary godoc
// @Summary      Resumen de stock
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/pdf
// @Param        format  query  string  false  "xlsx | pdf"  default(xlsx)
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock-summary [get]
func (h *ReportHandler) StockSummary(c *fiber.Ctx) error {
	r, err := h.uc.StockSummary(c.UserContext(), c.Query("format", report.FormatXLSX))
	if err != nil {
		return writeError(c, err)
	}
	return sendReport(c, r)
}

// InOutDetail godoc
// @Summary      Detalle de entradas y salidas
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query  string  true  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to    query  string  true  "Hasta, inclusivo"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/inout-detail [get]
func (h *ReportHandler) InOutDetail(c *fiber.Ctx) error {
	from, to, err := dateRange(c, true)
	if err != nil {
		return writeError(c, err)
	}
	r, err := h.uc.InOutDetail(c.UserContext(), *from, *to)
	if err != nil {
		return writeError(c, err)
	}
	return sendReport(c, r)
}

// MovementsXML godoc
// @Summary      Libro de movimientos en XML
// @Tags         reports
// @Security     Bearer
// @Produce      application/xml
// @Param        from  query  string  true  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to    query  string  true  "Hasta, inclusivo"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements.xml [get]
func (h *ReportHandler) MovementsXML(c *fiber.Ctx) error {
	from, to, err := dateRange(c, true)
	if err != nil {
		return writeError(c, err)
	}
	r, err := h.uc.MovementsXML(c.UserContext(), *from, *to)
	if err != nil {
		return writeError(c, err)
	}
	return sendReport(c, r)
}

func sendReport(c *fiber.Ctx, r *report.Report) error {
	c.Attachment(r.Filename)
	c.Set(fiber.HeaderContentType, r.ContentType)
	return c.Send(r.Data)
}
