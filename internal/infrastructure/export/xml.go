package export

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/Inventario-ledger/internal/application/report"
)

var _ report.XMLWriter = (*XMLWriter)(nil)

// XMLWriter implementa report.XMLWriter con etree.
type XMLWriter struct{}

// NewXMLWriter construye el escritor.
func NewXMLWriter() *XMLWriter { return &XMLWriter{} }

// Movements documento <movements from=".." to=".." count=".."> con un <movement> por asiento.
func (w *XMLWriter) Movements(lines []report.MovementLine, from, to time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("movements")
	root.CreateAttr("from", from.Format(time.RFC3339))
	root.CreateAttr("to", to.Format(time.RFC3339))
	root.CreateAttr("count", fmt.Sprintf("%d", len(lines)))

	for _, l := range lines {
		el := root.CreateElement("movement")
		el.CreateAttr("id", l.ID)
		el.CreateAttr("direction", l.Direction)
		el.CreateElement("goods_id").SetText(l.GoodsID)
		el.CreateElement("goods_code").SetText(l.GoodsCode)
		el.CreateElement("goods_name").SetText(l.GoodsName)
		el.CreateElement("quantity").SetText(l.Quantity.String())
		order := el.CreateElement("order")
		order.CreateAttr("type", l.OrderType)
		order.SetText(l.OrderID)
		el.CreateElement("created_at").SetText(l.CreatedAt.Format(time.RFC3339))
	}

	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xml: serializar movimientos: %w", err)
	}
	return data, nil
}
