package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

func lots(qtys ...int64) []*entity.Lot {
	out := make([]*entity.Lot, 0, len(qtys))
	for i, q := range qtys {
		out = append(out, &entity.Lot{ID: string(rune('A' + i)), Seq: int64(i + 1), GoodsID: "g1", Quantity: decimal.NewFromInt(q)})
	}
	return out
}

// L1(5), L2(3); salida de 6 deja L1 en 0 y L2 en 2.
func TestAllocateFIFO_ConsumeLoteMasAntiguoPrimero(t *testing.T) {
	ls := lots(5, 3)

	draws, err := inventory.AllocateFIFO("g1", ls, decimal.NewFromInt(6))
	require.NoError(t, err)

	assert.True(t, ls[0].Quantity.Equal(decimal.Zero))
	assert.True(t, ls[1].Quantity.Equal(decimal.NewFromInt(2)))
	require.Len(t, draws, 2)
	assert.True(t, draws[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, draws[1].Quantity.Equal(decimal.NewFromInt(1)))
}

func TestAllocateFIFO_NoTocaLotesSobrantes(t *testing.T) {
	ls := lots(5, 3, 7)

	draws, err := inventory.AllocateFIFO("g1", ls, decimal.NewFromInt(5))
	require.NoError(t, err)

	require.Len(t, draws, 1)
	assert.True(t, ls[1].Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, ls[2].Quantity.Equal(decimal.NewFromInt(7)))
}

func TestAllocateFIFO_SaltaLotesEnCero(t *testing.T) {
	ls := lots(0, 4)

	draws, err := inventory.AllocateFIFO("g1", ls, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, "B", draws[0].Lot.ID)
}

func TestAllocateFIFO_Decimales(t *testing.T) {
	ls := lots(1, 1)
	ls[0].Quantity = decimal.RequireFromString("0.25")

	_, err := inventory.AllocateFIFO("g1", ls, decimal.RequireFromString("0.75"))
	require.NoError(t, err)
	assert.True(t, ls[0].Quantity.IsZero())
	assert.Equal(t, "0.5", ls[1].Quantity.String())
}

func TestAllocateFIFO_StockAgotadoEsAllocationRace(t *testing.T) {
	ls := lots(2, 1)

	_, err := inventory.AllocateFIFO("g1", ls, decimal.NewFromInt(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAllocationRace))
	assert.False(t, errors.Is(err, domain.ErrInsufficientStock))

	var race *domain.AllocationRaceError
	require.True(t, errors.As(err, &race))
	assert.True(t, race.Remaining.Equal(decimal.NewFromInt(1)))
	for _, l := range ls {
		assert.False(t, l.Quantity.IsNegative(), "ningún lote puede quedar negativo")
	}
}
