package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// LedgerUseCase motor del libro de inventario: entradas y salidas transaccionales sobre lotes,
// con bloqueo exclusivo por mercancía durante la secuencia verificar-mutar y Commit/Rollback.
type LedgerUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, orderRepo repository.OrderRepository, log zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		log:       log,
		now:       time.Now,
	}
}

// Receive registra una orden de entrada. Precondiciones, en orden: número de orden libre,
// líneas no vacías con cantidad > 0, todas las mercancías existen (activas o no).
// Cada línea suma al lote (goods, batch, location) o lo crea, y agrega un movimiento "in".
func (uc *LedgerUseCase) Receive(ctx context.Context, userID string, in dto.ReceiveRequest) (*dto.ReceivingOrderResponse, error) {
	orderNo := strings.TrimSpace(in.OrderNo)
	if orderNo == "" {
		return nil, fmt.Errorf("%w: número de orden requerido", domain.ErrInvalidInput)
	}
	now := uc.now()

	var order *entity.ReceivingOrder
	err := uc.txRunner.Run(ctx, func(
		goodsRepo repository.GoodsRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
	) error {
		dup, err := orderRepo.ReceivingNoExists(ctx, orderNo)
		if err != nil {
			return err
		}
		if dup {
			return domain.ErrDuplicateOrderNumber
		}
		if err := validateLines(in.Lines); err != nil {
			return err
		}
		goodsIDs := distinctGoods(in.Lines)
		if err := checkGoodsExist(ctx, goodsRepo, goodsIDs); err != nil {
			return err
		}
		if err := lotRepo.LockGoods(ctx, goodsIDs); err != nil {
			return err
		}

		order = &entity.ReceivingOrder{
			OrderNo:   orderNo,
			Supplier:  in.Supplier,
			Date:      orderDate(in.Date, now),
			UserID:    optionalUser(userID),
			Remark:    in.Remark,
			Lines:     toOrderLines(in.Lines, true),
			CreatedAt: now,
		}
		if err := orderRepo.CreateReceiving(ctx, order); err != nil {
			return err
		}

		for _, line := range order.Lines {
			if err := receiveLine(ctx, lotRepo, line, now); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, &entity.Movement{
				GoodsID:   line.GoodsID,
				Direction: entity.DirectionIn,
				Quantity:  line.Quantity,
				OrderType: entity.OrderTypeStockIn,
				OrderID:   order.ID,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("order_no", order.OrderNo).
		Int("lines", len(order.Lines)).
		Msg("orden de entrada confirmada")
	return toReceivingResponse(order), nil
}

// receiveLine fusiona la línea en su lote o crea uno nuevo. Un lote fusionado conserva su
// vencimiento y solo adopta el de la línea si no tenía.
func receiveLine(ctx context.Context, lotRepo repository.LotRepository, line entity.OrderLine, now time.Time) error {
	lot, err := lotRepo.FindByKey(ctx, line.GoodsID, line.BatchNo, line.Location)
	if err != nil {
		return err
	}
	if lot == nil {
		return lotRepo.Create(ctx, &entity.Lot{
			GoodsID:   line.GoodsID,
			Quantity:  line.Quantity,
			BatchNo:   line.BatchNo,
			Location:  line.Location,
			ExpiresAt: line.ExpiresAt,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	lot.Quantity = lot.Quantity.Add(line.Quantity)
	if lot.ExpiresAt == nil {
		lot.ExpiresAt = line.ExpiresAt
	}
	lot.UpdatedAt = now
	return lotRepo.Update(ctx, lot)
}

// Ship registra una orden de salida. Además de las precondiciones de Receive verifica, para todas
// las mercancías antes de asignar, que lo solicitado no supere lo disponible; luego descuenta
// FIFO por orden de creación de lotes y agrega un movimiento "out" por línea.
func (uc *LedgerUseCase) Ship(ctx context.Context, userID string, in dto.ShipRequest) (*dto.ShippingOrderResponse, error) {
	orderNo := strings.TrimSpace(in.OrderNo)
	if orderNo == "" {
		return nil, fmt.Errorf("%w: número de orden requerido", domain.ErrInvalidInput)
	}
	outType := in.OutType
	if outType == "" {
		outType = entity.OutTypeSale
	}
	if !entity.ValidOutType(outType) {
		return nil, fmt.Errorf("%w: tipo de salida %q", domain.ErrInvalidInput, outType)
	}
	now := uc.now()

	var order *entity.ShippingOrder
	err := uc.txRunner.Run(ctx, func(
		goodsRepo repository.GoodsRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
	) error {
		dup, err := orderRepo.ShippingNoExists(ctx, orderNo)
		if err != nil {
			return err
		}
		if dup {
			return domain.ErrDuplicateOrderNumber
		}
		if err := validateLines(in.Lines); err != nil {
			return err
		}
		goodsIDs := distinctGoods(in.Lines)
		if err := checkGoodsExist(ctx, goodsRepo, goodsIDs); err != nil {
			return err
		}
		// Desde aquí hasta el commit ninguna otra orden puede mutar estas mercancías.
		if err := lotRepo.LockGoods(ctx, goodsIDs); err != nil {
			return err
		}
		if err := checkSufficiency(ctx, lotRepo, goodsIDs, in.Lines); err != nil {
			return err
		}

		order = &entity.ShippingOrder{
			OrderNo:   orderNo,
			Customer:  in.Customer,
			Date:      orderDate(in.Date, now),
			UserID:    optionalUser(userID),
			OutType:   outType,
			Remark:    in.Remark,
			Lines:     toOrderLines(in.Lines, false),
			CreatedAt: now,
		}
		if err := orderRepo.CreateShipping(ctx, order); err != nil {
			return err
		}

		for _, line := range order.Lines {
			lots, err := lotRepo.ListAvailable(ctx, line.GoodsID)
			if err != nil {
				return err
			}
			draws, err := inventory.AllocateFIFO(line.GoodsID, lots, line.Quantity)
			if err != nil {
				return err
			}
			for _, d := range draws {
				d.Lot.UpdatedAt = now
				if err := lotRepo.Update(ctx, d.Lot); err != nil {
					return err
				}
			}
			if err := movRepo.Create(ctx, &entity.Movement{
				GoodsID:   line.GoodsID,
				Direction: entity.DirectionOut,
				Quantity:  line.Quantity,
				OrderType: entity.OrderTypeStockOut,
				OrderID:   order.ID,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAllocationRace) {
			uc.log.Error().Err(err).Str("order_no", orderNo).Msg("asignación FIFO sin stock tras verificación previa; orden revertida")
		}
		return nil, err
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("order_no", order.OrderNo).
		Str("out_type", order.OutType).
		Int("lines", len(order.Lines)).
		Msg("orden de salida confirmada")
	return toShippingResponse(order), nil
}

// GetReceiving devuelve una orden de entrada con sus líneas.
func (uc *LedgerUseCase) GetReceiving(ctx context.Context, id string) (*dto.ReceivingOrderResponse, error) {
	order, err := uc.orderRepo.GetReceiving(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toReceivingResponse(order), nil
}

// GetShipping devuelve una orden de salida con sus líneas.
func (uc *LedgerUseCase) GetShipping(ctx context.Context, id string) (*dto.ShippingOrderResponse, error) {
	order, err := uc.orderRepo.GetShipping(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toShippingResponse(order), nil
}

func validateLines(lines []dto.OrderLineRequest) error {
	if len(lines) == 0 {
		return domain.ErrEmptyOrder
	}
	for i, l := range lines {
		if strings.TrimSpace(l.GoodsID) == "" {
			return fmt.Errorf("%w: línea %d sin mercancía", domain.ErrInvalidInput, i+1)
		}
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: línea %d: la cantidad debe ser mayor que cero", domain.ErrInvalidInput, i+1)
		}
		if !entity.FitsNumeric(l.Quantity) {
			return fmt.Errorf("%w: línea %d: cantidad %s con más de %d decimales o fuera de rango",
				domain.ErrInvalidInput, i+1, l.Quantity, entity.NumericScale)
		}
		if l.Price != nil && (l.Price.IsNegative() || !entity.FitsNumeric(*l.Price)) {
			return fmt.Errorf("%w: línea %d: precio inválido", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

// distinctGoods ids en orden de primera aparición.
func distinctGoods(lines []dto.OrderLineRequest) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if !seen[l.GoodsID] {
			seen[l.GoodsID] = true
			ids = append(ids, l.GoodsID)
		}
	}
	return ids
}

// checkGoodsExist reporta todas las mercancías faltantes a la vez.
func checkGoodsExist(ctx context.Context, goodsRepo repository.GoodsRepository, ids []string) error {
	found, err := goodsRepo.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	exists := make(map[string]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &domain.UnknownGoodsError{IDs: missing}
	}
	return nil
}

// checkSufficiency compara el total pedido por mercancía contra su cantidad disponible.
// Requiere las mercancías bloqueadas.
func checkSufficiency(ctx context.Context, lotRepo repository.LotRepository, goodsIDs []string, lines []dto.OrderLineRequest) error {
	requested := make(map[string]decimal.Decimal, len(goodsIDs))
	for _, l := range lines {
		requested[l.GoodsID] = requested[l.GoodsID].Add(l.Quantity)
	}
	var shortages []domain.Shortage
	for _, id := range goodsIDs {
		available, err := lotRepo.QuantityOnHand(ctx, id)
		if err != nil {
			return err
		}
		if requested[id].GreaterThan(available) {
			shortages = append(shortages, domain.Shortage{
				GoodsID:   id,
				Requested: requested[id],
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

func toOrderLines(in []dto.OrderLineRequest, withExpiry bool) []entity.OrderLine {
	lines := make([]entity.OrderLine, 0, len(in))
	for i, l := range in {
		line := entity.OrderLine{
			LineNo:   i + 1,
			GoodsID:  l.GoodsID,
			Quantity: l.Quantity,
			Price:    l.Price,
			BatchNo:  blankToNil(l.BatchNo),
			Location: blankToNil(l.Location),
		}
		if withExpiry {
			line.ExpiresAt = l.ExpiresAt
		}
		lines = append(lines, line)
	}
	return lines
}

// blankToNil: una etiqueta vacía es lo mismo que no tenerla.
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func orderDate(d *time.Time, now time.Time) time.Time {
	if d == nil || d.IsZero() {
		return now
	}
	return *d
}

func optionalUser(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

func toLineResponses(lines []entity.OrderLine) []dto.OrderLineResponse {
	out := make([]dto.OrderLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.OrderLineResponse{
			ID:        l.ID,
			LineNo:    l.LineNo,
			GoodsID:   l.GoodsID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			BatchNo:   l.BatchNo,
			Location:  l.Location,
			ExpiresAt: l.ExpiresAt,
		})
	}
	return out
}

func toReceivingResponse(o *entity.ReceivingOrder) *dto.ReceivingOrderResponse {
	return &dto.ReceivingOrderResponse{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		Supplier:  o.Supplier,
		Date:      o.Date,
		UserID:    o.UserID,
		Remark:    o.Remark,
		Lines:     toLineResponses(o.Lines),
		CreatedAt: o.CreatedAt,
	}
}

func toShippingResponse(o *entity.ShippingOrder) *dto.ShippingOrderResponse {
	return &dto.ShippingOrderResponse{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		Customer:  o.Customer,
		Date:      o.Date,
		UserID:    o.UserID,
		OutType:   o.OutType,
		Remark:    o.Remark,
		Lines:     toLineResponses(o.Lines),
		CreatedAt: o.CreatedAt,
	}
}
