package inventory_test

import (
	"context"
	"errors"
	"sync"
	"time"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

type fixture struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
	query  *inventory.StockQueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return &fixture{
		store:  store,
		ledger: inventory.NewLedgerUseCase(store, store.Orders(), zerolog.Nop()),
		query:  inventory.NewStockQueryUseCase(store.Goods(), store.Lots(), store.Movements(), store),
	}
}

func (f *fixture) goods(t *testing.T, code string, minStock *decimal.Decimal) string {
	t.Helper()
	g := &entity.Goods{Code: code, Name: "Mercancía " + code, Unit: "und", MinStock: minStock, Active: true}
	require.NoError(t, f.store.Goods().Create(context.Background(), g))
	return g.ID
}

func (f *fixture) onHand(t *testing.T, goodsID string) decimal.Decimal {
	t.Helper()
	res, err := f.query.QuantityOnHand(context.Background(), goodsID)
	require.NoError(t, err)
	return res.Quantity
}

func (f *fixture) lots(t *testing.T) []repository.LotView {
	t.Helper()
	views, _, err := f.store.Lots().List(context.Background(), repository.LotFilter{})
	require.NoError(t, err)
	return views
}

func (f *fixture) movements(t *testing.T) int {
	t.Helper()
	list, err := f.store.Movements().List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	return len(list)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func strPtr(s string) *string { return &s }

func line(goodsID string, qty int64) dto.OrderLineRequest {
	return dto.OrderLineRequest{GoodsID: goodsID, Quantity: dec(qty)}
}

func receive(no string, lines ...dto.OrderLineRequest) dto.ReceiveRequest {
	return dto.ReceiveRequest{OrderNo: no, Supplier: "Proveedor", Lines: lines}
}

func ship(no string, lines ...dto.OrderLineRequest) dto.ShipRequest {
	return dto.ShipRequest{OrderNo: no, Customer: "Cliente", Lines: lines}
}

func TestReceive_CreaLoteYMovimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "SP001", nil)

	order, err := f.ledger.Receive(ctx, "u1", receive("IN-1", line(g, 20)))
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.Len(t, order.Lines, 1)
	assert.NotEmpty(t, order.Lines[0].ID)
	assert.Equal(t, 1, order.Lines[0].LineNo)
	require.NotNil(t, order.UserID)
	assert.Equal(t, "u1", *order.UserID)

	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.Nil(t, lots[0].BatchNo)
	assert.Nil(t, lots[0].Location)
	assert.True(t, lots[0].Quantity.Equal(dec(20)))
	assert.Equal(t, 1, f.movements(t))

	got, err := f.ledger.GetReceiving(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "IN-1", got.OrderNo)
}

func TestReceive_FusionaPorLlaveLiteral(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)

	_, err := f.ledger.Receive(ctx, "", receive("IN-1",
		line(g, 5),
		dto.OrderLineRequest{GoodsID: g, Quantity: dec(2), BatchNo: strPtr("B1")},
		line(g, 3),
	))
	require.NoError(t, err)
	_, err = f.ledger.Receive(ctx, "", receive("IN-2",
		dto.OrderLineRequest{GoodsID: g, Quantity: dec(1), BatchNo: strPtr("B1")},
		dto.OrderLineRequest{GoodsID: g, Quantity: dec(4), BatchNo: strPtr("B1"), Location: strPtr("A-1")},
	))
	require.NoError(t, err)

	lots := f.lots(t)
	require.Len(t, lots, 3)
	// (nil, nil) fusionado en la misma orden
	assert.Nil(t, lots[0].BatchNo)
	assert.True(t, lots[0].Quantity.Equal(dec(8)))
	assert.Equal(t, "B1", *lots[1].BatchNo)
	assert.Nil(t, lots[1].Location)
	assert.True(t, lots[1].Quantity.Equal(dec(3)))
	assert.Equal(t, "A-1", *lots[2].Location)
	assert.True(t, f.onHand(t, g).Equal(dec(15)))
	assert.Equal(t, 5, f.movements(t))
}

func TestReceive_Precondiciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)

	_, err := f.ledger.Receive(ctx, "", receive("IN-1"))
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = f.ledger.Receive(ctx, "", receive("IN-1", line(g, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	for _, q := range []string{"1.00005", "0.00001", "100000000000000"} {
		_, err = f.ledger.Receive(ctx, "", receive("IN-1", dto.OrderLineRequest{GoodsID: g, Quantity: decimal.RequireFromString(q)}))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, q)
	}
	ok := dto.OrderLineRequest{GoodsID: g, Quantity: decimal.RequireFromString("1.2500")}
	_, err = f.ledger.Receive(ctx, "", receive("IN-1", ok, line("x1", 1)))
	assert.ErrorIs(t, err, domain.ErrUnknownGoods)

	_, err = f.ledger.Receive(ctx, "", receive("IN-1", line(g, 1), line("x1", 1), line("x2", 1), line("x1", 2)))
	require.ErrorIs(t, err, domain.ErrUnknownGoods)
	var unknown *domain.UnknownGoodsError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"x1", "x2"}, unknown.IDs)

	assert.Empty(t, f.lots(t))
	assert.Zero(t, f.movements(t))
}

func TestReceive_MercanciaInactivaSeAcepta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)
	require.NoError(t, f.store.Goods().SetActive(ctx, g, false, time.Now()))

	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 4)))
	require.NoError(t, err)
	assert.True(t, f.onHand(t, g).Equal(dec(4)))
}

func TestReceive_VencimientoEnLoteFusionado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)
	exp1 := mustDate(t, "2027-01-31")
	exp2 := mustDate(t, "2027-06-30")

	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 1)))
	require.NoError(t, err)
	_, err = f.ledger.Receive(ctx, "", receive("IN-2", dto.OrderLineRequest{GoodsID: g, Quantity: dec(1), ExpiresAt: &exp1}))
	require.NoError(t, err)
	_, err = f.ledger.Receive(ctx, "", receive("IN-3", dto.OrderLineRequest{GoodsID: g, Quantity: dec(1), ExpiresAt: &exp2}))
	require.NoError(t, err)

	lots := f.lots(t)
	require.Len(t, lots, 1)
	require.NotNil(t, lots[0].ExpiresAt)
	assert.True(t, lots[0].ExpiresAt.Equal(exp1))
}

func TestShip_FIFOPorOrdenDeCreacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)

	_, err := f.ledger.Receive(ctx, "", receive("IN-1", dto.OrderLineRequest{GoodsID: g, Quantity: dec(5), BatchNo: strPtr("L1")}))
	require.NoError(t, err)
	_, err = f.ledger.Receive(ctx, "", receive("IN-2", dto.OrderLineRequest{GoodsID: g, Quantity: dec(3), BatchNo: strPtr("L2")}))
	require.NoError(t, err)

	order, err := f.ledger.Ship(ctx, "", ship("OUT-1", line(g, 6)))
	require.NoError(t, err)
	assert.Equal(t, entity.OutTypeSale, order.OutType)

	lots := f.lots(t)
	require.Len(t, lots, 2)
	assert.True(t, lots[0].Quantity.IsZero(), "L1 agotado")
	assert.True(t, lots[1].Quantity.Equal(dec(2)), "L2 con 2")
	// un solo movimiento de salida aunque se tocaron dos lotes
	assert.Equal(t, 3, f.movements(t))
}

func TestShip_LoteEnCeroSeReutiliza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)

	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 2)))
	require.NoError(t, err)
	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", line(g, 2)))
	require.NoError(t, err)
	_, err = f.ledger.Receive(ctx, "", receive("IN-2", line(g, 7)))
	require.NoError(t, err)

	lots := f.lots(t)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(dec(7)))
}

func TestShip_AtomicidadConMercanciaDesconocida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)
	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 10)))
	require.NoError(t, err)

	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", line(g, 3), line("no-existe", 1)))
	require.ErrorIs(t, err, domain.ErrUnknownGoods)

	assert.True(t, f.onHand(t, g).Equal(dec(10)))
	assert.Equal(t, 1, f.movements(t))
	exists, err := f.store.Orders().ShippingNoExists(ctx, "OUT-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestShip_StockInsuficienteSumaLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g1 := f.goods(t, "G1", nil)
	g2 := f.goods(t, "G2", nil)
	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g1, 6), line(g2, 1)))
	require.NoError(t, err)

	// cada línea cabe sola; juntas no
	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", line(g1, 4), line(g2, 1), line(g1, 4)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	require.Len(t, short.Shortages, 1)
	assert.Equal(t, g1, short.Shortages[0].GoodsID)
	assert.True(t, short.Shortages[0].Requested.Equal(dec(8)))
	assert.True(t, short.Shortages[0].Available.Equal(dec(6)))

	assert.True(t, f.onHand(t, g1).Equal(dec(6)))
	assert.True(t, f.onHand(t, g2).Equal(dec(1)))
	assert.Equal(t, 2, f.movements(t))
}

func TestShip_CantidadConMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)
	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 2)))
	require.NoError(t, err)

	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", dto.OrderLineRequest{GoodsID: g, Quantity: decimal.RequireFromString("1.00005")}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.onHand(t, g).Equal(dec(2)))
	assert.Equal(t, 1, f.movements(t))

	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", dto.OrderLineRequest{GoodsID: g, Quantity: decimal.RequireFromString("1.0001")}))
	require.NoError(t, err)
	res, err := f.query.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
}

func TestShip_TipoDeSalidaInvalido(t *testing.T) {
	f := newFixture(t)
	g := f.goods(t, "G1", nil)
	req := ship("OUT-1", line(g, 1))
	req.OutType = "regalo"
	_, err := f.ledger.Ship(context.Background(), "", req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestShip_ConcurrenciaMismaMercancia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)
	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 10)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, no := range []string{"OUT-A", "OUT-B"} {
		wg.Add(1)
		go func(i int, no string) {
			defer wg.Done()
			_, errs[i] = f.ledger.Ship(ctx, "", ship(no, line(g, 6)))
		}(i, no)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, f.onHand(t, g).Equal(dec(4)))
}

func TestShip_ConcurrenciaMuchasOrdenes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g1 := f.goods(t, "G1", nil)
	g2 := f.goods(t, "G2", nil)
	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g1, 50), line(g2, 50)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			no := "OUT-" + decimal.NewFromInt(int64(i)).String()
			// órdenes con mercancías cruzadas en distinto orden
			if i%2 == 0 {
				_, _ = f.ledger.Ship(ctx, "", ship(no, line(g1, 3), line(g2, 2)))
			} else {
				_, _ = f.ledger.Ship(ctx, "", ship(no, line(g2, 3), line(g1, 2)))
			}
		}(i)
	}
	wg.Wait()

	assert.False(t, f.onHand(t, g1).IsNegative())
	assert.False(t, f.onHand(t, g2).IsNegative())
	res, err := f.query.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
}

func TestNumeroDeOrdenDuplicado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "G1", nil)

	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 5)))
	require.NoError(t, err)
	_, err = f.ledger.Receive(ctx, "", receive("IN-1", line(g, 5)))
	require.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)
	assert.True(t, f.onHand(t, g).Equal(dec(5)))

	// la unicidad se verifica antes que las demás precondiciones
	_, err = f.ledger.Receive(ctx, "", receive("IN-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)

	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", line(g, 1)))
	require.NoError(t, err)
	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", line(g, 1)))
	require.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)
	assert.True(t, f.onHand(t, g).Equal(dec(4)))
}

func TestGetOrden_NoEncontrada(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.GetReceiving(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.ledger.GetShipping(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEscenarioCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.goods(t, "SP001", decPtr(5))

	_, err := f.ledger.Receive(ctx, "", receive("IN-1", line(g, 20)))
	require.NoError(t, err)
	assert.True(t, f.onHand(t, g).Equal(dec(20)))

	_, err = f.ledger.Ship(ctx, "", ship("OUT-1", line(g, 8)))
	require.NoError(t, err)
	assert.True(t, f.onHand(t, g).Equal(dec(12)))

	movs, err := f.query.ListMovements(ctx, nil, nil, g, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	directions := map[string]decimal.Decimal{}
	for _, m := range movs {
		directions[m.Direction] = m.Quantity
	}
	assert.True(t, directions[entity.DirectionIn].Equal(dec(20)))
	assert.True(t, directions[entity.DirectionOut].Equal(dec(8)))

	below, err := f.query.ListLots(ctx, dto.LotListRequest{OnlyBelowMinimum: true})
	require.NoError(t, err)
	assert.Empty(t, below.Items)

	_, err = f.ledger.Ship(ctx, "", ship("OUT-2", line(g, 10)))
	require.NoError(t, err)
	assert.True(t, f.onHand(t, g).Equal(dec(2)))

	below, err = f.query.ListLots(ctx, dto.LotListRequest{OnlyBelowMinimum: true})
	require.NoError(t, err)
	require.Len(t, below.Items, 1)
	assert.Equal(t, "SP001", below.Items[0].GoodsCode)

	res, err := f.query.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, 1, res.GoodsChecked)
}
