package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Inventario-ledger/docs"
	"github.com/jhoicas/Inventario-ledger/internal/application/auth"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/report"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/export"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// @title        Inventario Ledger API
// @version      1.0
// @description  Libro de inventario por lotes: entradas, salidas FIFO, consultas de stock y reportes.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in           header
// @name         Authorization

// repos implementación de los puertos según STORE_DRIVER.
type repos struct {
	tx        inventory.TxRunner
	snapshot  inventory.SnapshotReader
	goods     repository.GoodsRepository
	lots      repository.LotRepository
	movements repository.MovementRepository
	orders    repository.OrderRepository
	reports   repository.ReportRepository
	users     repository.UserRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:   cfg.App.Name,
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	r, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer r.close()

	zl := log.Zerolog()
	authUC := auth.NewAuthUseCase(r.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, zl)
	if err := authUC.EnsureDefaultAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Warn().Err(err).Str("username", cfg.Admin.Username).Msg("no se creó el administrador inicial")
	}

	reportUC := report.NewReportUseCase(
		r.reports, r.movements, r.goods,
		export.NewExcelWriter(), export.NewMarotoPDFWriter(cfg.App.Name), export.NewXMLWriter(),
		cfg.Export.Dir, zl,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		UserUC:          usecase.NewUserUseCase(r.users),
		GoodsUC:         usecase.NewGoodsUseCase(r.goods),
		LedgerUC:        inventory.NewLedgerUseCase(r.tx, r.orders, zl),
		StockUC:         inventory.NewStockQueryUseCase(r.goods, r.lots, r.movements, r.snapshot),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(r.lots),
		ReportUC:        reportUC,
		JWTSecret:       cfg.JWT.Secret,
		AppName:         cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore arma los repositorios sobre PostgreSQL o, con STORE_DRIVER=memory, en memoria (se pierde al salir).
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repos, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos no persisten")
		s := memory.NewStore()
		return &repos{
			tx: s, snapshot: s, goods: s.Goods(), lots: s.Lots(), movements: s.Movements(),
			orders: s.Orders(), reports: s.Reports(), users: s.Users(),
			close: func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool, log.Zerolog()); err != nil {
			pool.Close()
			return nil, err
		}
	}
	runner := postgres.NewTxRunner(pool)
	return &repos{
		tx:        runner,
		snapshot:  runner,
		goods:     postgres.NewGoodsRepository(pool),
		lots:      postgres.NewLotRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		orders:    postgres.NewOrderRepository(pool),
		reports:   postgres.NewReportRepository(pool),
		users:     postgres.NewUserRepository(pool),
		close:     pool.Close,
	}, nil
}
