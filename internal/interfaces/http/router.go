package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/auth"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/report"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	UserUC          *usecase.UserUseCase
	GoodsUC         *usecase.GoodsUseCase
	LedgerUC        *inventory.LedgerUseCase
	StockUC         *inventory.StockQueryUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	ReportUC        *report.ReportUseCase
	JWTSecret       string
	AppName         string
}

// Política de roles: viewer solo lectura; operator agrega entradas/salidas y edición de catálogo;
// admin agrega baja de mercancías, verificación del libro, reportes y usuarios.
var (
	readers   = []string{entity.RoleViewer, entity.RoleOperator, entity.RoleAdmin}
	operators = []string{entity.RoleOperator, entity.RoleAdmin}
	admins    = []string{entity.RoleAdmin}
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	read := RequireRole(readers...)
	write := RequireRole(operators...)
	admin := RequireRole(admins...)

	userHandler := NewUserHandler(deps.AuthUC, deps.UserUC)
	protected.Get("/auth/me", read, userHandler.Me)
	users := protected.Group("/users", admin)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)

	goodsHandler := NewGoodsHandler(deps.GoodsUC)
	goods := protected.Group("/goods")
	goods.Get("/", read, goodsHandler.List)
	goods.Post("/", write, goodsHandler.Create)
	goods.Get("/:id", read, goodsHandler.GetByID)
	goods.Put("/:id", write, goodsHandler.Update)
	goods.Delete("/:id", admin, goodsHandler.Deactivate)

	invHandler := NewInventoryHandler(deps.LedgerUC, deps.StockUC, deps.ReplenishmentUC)
	protected.Post("/stock-in", write, invHandler.Receive)
	protected.Get("/stock-in/:id", read, invHandler.GetReceiving)
	protected.Post("/stock-out", write, invHandler.Ship)
	protected.Get("/stock-out/:id", read, invHandler.GetShipping)

	stock := protected.Group("/stock")
	stock.Get("/lots", read, invHandler.ListLots)
	stock.Get("/on-hand/:goodsId", read, invHandler.OnHand)
	stock.Get("/replenishment", read, invHandler.GetReplenishmentList)
	stock.Get("/movements", read, invHandler.ListMovements)
	stock.Get("/consistency", admin, invHandler.VerifyLedger)

	reportHandler := NewReportHandler(deps.ReportUC)
	reports := protected.Group("/reports", admin)
	reports.Get("/stock-summary", reportHandler.StockSummary)
	reports.Get("/inout-detail", reportHandler.InOutDetail)
	reports.Get("/movements.xml", reportHandler.MovementsXML)
}
