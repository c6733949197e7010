package export

import (
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// Columns is the flat row field set, in output order.
var Columns = []string{
	"id",
	"name",
	"date",
	"totalAmount",
	"status",
	"supplierName",
	"goodsName",
	"quantity",
	"purchaseRate",
	"totalCost",
	"buyerName",
	"saleRate",
	"totalSaleAmount",
	"origin",
	"destination",
	"transportCharges",
}

// Row is one flattened trade. Values are string, float64 or nil; nil marks a
// field whose leg is absent.
type Row map[string]any

// Flatten maps each trade to a Row. An empty input yields an empty, non-nil slice.
func Flatten(txs []*trade.Transaction) []Row {
	rows := make([]Row, 0, len(txs))

	for _, tx := range txs {
		rows = append(rows, flatten(tx))
	}

	return rows
}

func flatten(tx *trade.Transaction) Row {
	row := Row{
		"id":          tx.ID,
		"name":        tx.Name,
		"date":        nil,
		"totalAmount": tx.TotalAmount,
		"status":      string(tx.Status.Effective()),
	}

	if !tx.Date.IsZero() {
		row["date"] = tx.Date.Format(time.RFC3339)
	}

	for _, k := range []string{"supplierName", "goodsName", "quantity", "purchaseRate", "totalCost"} {
		row[k] = nil
	}

	if b := tx.LoadBuy; b != nil {
		row["supplierName"] = b.SupplierName
		row["goodsName"] = b.GoodsName
		row["quantity"] = b.Quantity
		row["purchaseRate"] = b.PurchaseRate
		row["totalCost"] = b.TotalCost
	}

	for _, k := range []string{"buyerName", "saleRate", "totalSaleAmount"} {
		row[k] = nil
	}

	if s := tx.LoadSold; s != nil {
		row["buyerName"] = s.BuyerName
		row["saleRate"] = s.SaleRate
		row["totalSaleAmount"] = s.TotalSaleAmount
	}

	for _, k := range []string{"origin", "destination", "transportCharges"} {
		row[k] = nil
	}

	if tr := tx.Transportation; tr != nil {
		row["origin"] = tr.Origin
		row["destination"] = tr.Destination
		row["transportCharges"] = tr.Charges
	}

	return row
}

// Cell renders a row value as text. Absent values are blank.
func Cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Record returns the row's cells in Columns order.
func (r Row) Record() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = Cell(r[c])
	}

	return out
}
