package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrUsernameExists       = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrDuplicateCode        = errors.New("el código de mercancía ya existe")
	ErrDuplicateOrderNumber = errors.New("el número de orden ya existe")
	ErrEmptyOrder           = errors.New("la orden no tiene líneas")
	ErrUnknownGoods         = errors.New("mercancía inexistente")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	// ErrAllocationRace indica que la verificación previa de suficiencia pasó pero la asignación FIFO
	// no encontró stock: el aislamiento por mercancía se rompió. Nunca debe exponerse en detalle al caller.
	ErrAllocationRace = errors.New("inconsistencia en la asignación de lotes")
)

// UnknownGoodsError reporta todas las mercancías referenciadas que no existen.
type UnknownGoodsError struct {
	IDs []string
}

func (e *UnknownGoodsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownGoods.Error(), strings.Join(e.IDs, ", "))
}

// Is permite errors.Is(err, ErrUnknownGoods).
func (e *UnknownGoodsError) Is(target error) bool { return target == ErrUnknownGoods }

// Shortage faltante de una mercancía en una orden de salida.
type Shortage struct {
	GoodsID   string
	Requested decimal.Decimal
	Available decimal.Decimal
}

// InsufficientStockError reporta, por mercancía, lo solicitado frente a lo disponible.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (solicitado %s, disponible %s)", s.GoodsID, s.Requested, s.Available))
	}
	return fmt.Sprintf("%s: %s", ErrInsufficientStock.Error(), strings.Join(parts, "; "))
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// AllocationRaceError detalle interno de ErrAllocationRace (solo para logs).
type AllocationRaceError struct {
	GoodsID   string
	Remaining decimal.Decimal
}

func (e *AllocationRaceError) Error() string {
	return fmt.Sprintf("%s: mercancía %s, faltan %s", ErrAllocationRace.Error(), e.GoodsID, e.Remaining)
}

// Is permite errors.Is(err, ErrAllocationRace).
func (e *AllocationRaceError) Is(target error) bool { return target == ErrAllocationRace }
