// Package report exporta resúmenes de stock y detalle de entradas/salidas. Solo consume lecturas.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// Formatos soportados.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
	FormatXML  = "xml"
)

var contentTypes = map[string]string{
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
	FormatXML:  "application/xml",
}

// Report archivo generado.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportUseCase arma los reportes a partir de las consultas de solo lectura.
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	movRepo    repository.MovementRepository
	goodsRepo  repository.GoodsRepository
	xlsx       SpreadsheetWriter
	pdf        PDFWriter
	xml        XMLWriter
	exportDir  string
	log        zerolog.Logger
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso. exportDir vacío desactiva la copia en disco.
func NewReportUseCase(
	reportRepo repository.ReportRepository,
	movRepo repository.MovementRepository,
	goodsRepo repository.GoodsRepository,
	xlsx SpreadsheetWriter,
	pdf PDFWriter,
	xml XMLWriter,
	exportDir string,
	log zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo: reportRepo,
		movRepo:    movRepo,
		goodsRepo:  goodsRepo,
		xlsx:       xlsx,
		pdf:        pdf,
		xml:        xml,
		exportDir:  exportDir,
		log:        log,
		now:        time.Now,
	}
}

// StockSummary todas las mercancías (activas o no) con su disponible, en xlsx o pdf.
func (uc *ReportUseCase) StockSummary(ctx context.Context, format string) (*Report, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatPDF {
		return nil, fmt.Errorf("%w: formato %q", domain.ErrInvalidInput, format)
	}
	rows, err := uc.reportRepo.StockSummary(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	var data []byte
	if format == FormatPDF {
		data, err = uc.pdf.StockSummary(ctx, rows, now)
	} else {
		data, err = uc.xlsx.StockSummary(rows, now)
	}
	if err != nil {
		return nil, err
	}
	return uc.finish(fmt.Sprintf("resumen_stock_%s.%s", now.Format("20060102_150405"), format), format, data), nil
}

// InOutDetail una fila por línea de orden en [from, to], ordenadas por fecha.
func (uc *ReportUseCase) InOutDetail(ctx context.Context, from, to time.Time) (*Report, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	rows, err := uc.reportRepo.InOutDetail(ctx, from, to)
	if err != nil {
		return nil, err
	}
	data, err := uc.xlsx.InOutDetail(rows, from, to)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("entradas_salidas_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	return uc.finish(name, FormatXLSX, data), nil
}

// MovementsXML rango del libro de movimientos en XML.
func (uc *ReportUseCase) MovementsXML(ctx context.Context, from, to time.Time) (*Report, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	movs, err := uc.movRepo.List(ctx, repository.MovementFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	lines := make([]MovementLine, 0, len(movs))
	names := make(map[string][2]string)
	for _, m := range movs {
		info, ok := names[m.GoodsID]
		if !ok {
			g, err := uc.goodsRepo.GetByID(ctx, m.GoodsID)
			if err != nil {
				return nil, err
			}
			if g != nil {
				info = [2]string{g.Code, g.Name}
			}
			names[m.GoodsID] = info
		}
		lines = append(lines, MovementLine{Movement: *m, GoodsCode: info[0], GoodsName: info[1]})
	}
	data, err := uc.xml.Movements(lines, from, to)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("movimientos_%s_%s.xml", from.Format("20060102"), to.Format("20060102"))
	return uc.finish(name, FormatXML, data), nil
}

// finish guarda una copia en exportDir si está configurado. Un fallo al escribir no invalida la respuesta.
func (uc *ReportUseCase) finish(name, format string, data []byte) *Report {
	if uc.exportDir != "" {
		path := filepath.Join(uc.exportDir, name)
		if err := os.MkdirAll(uc.exportDir, 0o755); err != nil {
			uc.log.Warn().Err(err).Str("dir", uc.exportDir).Msg("no se pudo crear el directorio de exportación")
		} else if err := os.WriteFile(path, data, 0o644); err != nil {
			uc.log.Warn().Err(err).Str("path", path).Msg("no se pudo guardar la copia del reporte")
		}
	}
	return &Report{Filename: name, ContentType: contentTypes[format], Data: data}
}
