// Package export implementa los escritores de reportes: xlsx (excelize), PDF (maroto) y XML (etree).
package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/report"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ report.SpreadsheetWriter = (*ExcelWriter)(nil)

const (
	sheetSummary = "Stock"
	sheetDetail  = "Entradas y salidas"
)

// ExcelWriter implementa report.SpreadsheetWriter con excelize.
type ExcelWriter struct{}

// NewExcelWriter construye el escritor.
func NewExcelWriter() *ExcelWriter { return &ExcelWriter{} }

// StockSummary una fila por mercancía; las que están bajo su mínimo se resaltan.
func (w *ExcelWriter) StockSummary(rows []repository.StockSummaryRow, generatedAt time.Time) ([]byte, error) {
	f, err := newBook(sheetSummary)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.SetCellValue(sheetSummary, "A1", "Resumen de stock al "+generatedAt.Format("02/01/2006 15:04")); err != nil {
		return nil, err
	}
	header := []interface{}{"Código", "Nombre", "Categoría", "Unidad", "Disponible", "Mínimo", "Estado"}
	if err := writeHeader(f, sheetSummary, 3, header); err != nil {
		return nil, err
	}
	alert, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, r := range rows {
		rowNum := i + 4
		status := "activa"
		if !r.Active {
			status = "inactiva"
		}
		values := []interface{}{r.Code, r.Name, r.Category, r.Unit, r.OnHand.InexactFloat64(), optionalNumber(r.MinStock), status}
		if err := setRow(f, sheetSummary, rowNum, values); err != nil {
			return nil, err
		}
		if r.MinStock != nil && r.OnHand.LessThan(*r.MinStock) {
			if err := styleRow(f, sheetSummary, rowNum, len(values), alert); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(sheetSummary, "A", "A", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetSummary, "B", "B", 36); err != nil {
		return nil, err
	}
	return toBytes(f)
}

// InOutDetail detalle de líneas; las salidas llevan cantidad negativa.
func (w *ExcelWriter) InOutDetail(rows []repository.InOutRow, from, to time.Time) ([]byte, error) {
	f, err := newBook(sheetDetail)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	title := fmt.Sprintf("Entradas y salidas del %s al %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
	if err := f.SetCellValue(sheetDetail, "A1", title); err != nil {
		return nil, err
	}
	header := []interface{}{"Fecha", "Orden", "Código", "Nombre", "Cantidad", "Precio", "Tipo"}
	if err := writeHeader(f, sheetDetail, 3, header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		kind := "entrada"
		if r.Type == "out" {
			kind = "salida"
		}
		values := []interface{}{r.Date.Format("2006-01-02"), r.OrderNo, r.Code, r.Name, r.Quantity.InexactFloat64(), optionalNumber(r.Price), kind}
		if err := setRow(f, sheetDetail, i+4, values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(sheetDetail, "D", "D", 36); err != nil {
		return nil, err
	}
	return toBytes(f)
}

func newBook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, rowNum int, header []interface{}) error {
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := setRow(f, sheet, rowNum, header); err != nil {
		return err
	}
	return styleRow(f, sheet, rowNum, len(header), bold)
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, rowNum, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, rowNum)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func toBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

// optionalNumber celda vacía para valores no configurados.
func optionalNumber(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}
