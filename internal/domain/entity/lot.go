package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot cantidad de una mercancía en un par (lote, ubicación). Batch y Location nil forman parte
// de la llave: (goods, nil, nil) es el stock no diferenciado. Nunca se elimina; un lote en cero
// se reutiliza en la siguiente entrada con la misma llave.
type Lot struct {
	ID        string
	Seq       int64 // orden de creación; define el orden FIFO
	GoodsID   string
	Quantity  decimal.Decimal
	BatchNo   *string
	Location  *string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchesKey compara la llave (batch, location) tratando nil como valor literal.
func (l *Lot) MatchesKey(batchNo, location *string) bool {
	return sameLabel(l.BatchNo, batchNo) && sameLabel(l.Location, location)
}

// IsExpired indica si el lote venció antes de la fecha dada.
func (l *Lot) IsExpired(today time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	y, m, d := today.Date()
	return l.ExpiresAt.Before(time.Date(y, m, d, 0, 0, 0, 0, today.Location()))
}

func sameLabel(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// NumericScale decimales que persisten las columnas NUMERIC(18, 4) de cantidades y precios.
const NumericScale = 4

var numericLimit = decimal.New(1, 18-NumericScale)

// FitsNumeric indica si d cabe exacto en NUMERIC(18, 4): como mucho 4 decimales y 14 enteros.
// Un valor que no cabe sería redondeado por la base y el libro dejaría de cuadrar con los lotes.
func FitsNumeric(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(NumericScale)) && d.Abs().LessThan(numericLimit)
}
