package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type catalogo struct {
	Mercancias []mercancia `xml:"mercancia"`
}

type mercancia struct {
	Codigo       string `xml:"codigo,attr"`
	Nombre       string `xml:"nombre,attr"`
	Categoria    string `xml:"categoria,attr"`
	Especif      string `xml:"especificacion,attr"`
	Unidad       string `xml:"unidad,attr"`
	PrecioCompra string `xml:"precio_compra,attr"`
	PrecioVenta  string `xml:"precio_venta,attr"`
	Minimo       string `xml:"minimo,attr"`
}

// seedItem fila lista para el INSERT; los decimales vacíos van como NULL.
type seedItem struct {
	ID            string
	Code          string
	Name          string
	Category      string
	Spec          string
	Unit          string
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	MinStock      *decimal.Decimal
}

// parseCatalog decodifica el XML. Omite entradas sin código o nombre, con números inválidos o
// con código repetido (gana la primera). Devuelve los ítems ordenados por código.
func parseCatalog(r io.Reader) ([]seedItem, int, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToUpper(charset) {
		case "ISO-8859-1", "ISO8859-1", "LATIN1":
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		case "WINDOWS-1252", "CP1252":
			return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, 0, err
	}

	seen := make(map[string]bool)
	var items []seedItem
	skipped := 0
	for _, m := range c.Mercancias {
		code := strings.TrimSpace(m.Codigo)
		name := strings.TrimSpace(m.Nombre)
		if code == "" || name == "" || seen[code] {
			skipped++
			continue
		}
		purchase, err1 := optionalDecimal(m.PrecioCompra)
		sale, err2 := optionalDecimal(m.PrecioVenta)
		minStock, err3 := optionalDecimal(m.Minimo)
		if err1 != nil || err2 != nil || err3 != nil {
			skipped++
			continue
		}
		seen[code] = true
		items = append(items, seedItem{
			ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte("goods:"+code)).String(),
			Code:          code,
			Name:          name,
			Category:      strings.TrimSpace(m.Categoria),
			Spec:          strings.TrimSpace(m.Especif),
			Unit:          strings.TrimSpace(m.Unidad),
			PurchasePrice: purchase,
			SalePrice:     sale,
			MinStock:      minStock,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return items, skipped, nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("valor negativo: %s", s)
	}
	return &d, nil
}

// writeSeed escribe un INSERT por mercancía; ON CONFLICT (code) DO NOTHING lo hace re-ejecutable
// sin pisar cambios hechos desde la API.
func writeSeed(w io.Writer, items []seedItem, source string) error {
	if _, err := fmt.Fprintf(w, "-- Catálogo inicial de mercancías\n-- Generado desde %s\n\n", source); err != nil {
		return err
	}
	for _, it := range items {
		_, err := fmt.Fprintf(w,
			"INSERT INTO goods (id, code, name, category, spec, unit, purchase_price, sale_price, min_stock)\n"+
				"VALUES ('%s', '%s', '%s', '%s', '%s', '%s', %s, %s, %s)\n"+
				"ON CONFLICT (code) DO NOTHING;\n",
			it.ID, escapeSQL(it.Code), escapeSQL(it.Name), escapeSQL(it.Category), escapeSQL(it.Spec), escapeSQL(it.Unit),
			sqlDecimal(it.PurchasePrice), sqlDecimal(it.SalePrice), sqlDecimal(it.MinStock),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func sqlDecimal(d *decimal.Decimal) string {
	if d == nil {
		return "NULL"
	}
	return d.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
