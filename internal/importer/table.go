package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// headings maps a normalised column heading to the field it fills. Keys are
// lower case with spaces, dots and underscores removed, so "Supplier Name",
// "supplier_name" and "supplierName" all land on supplierName.
var headings = map[string]string{
	"id":               "id",
	"tradeid":          "id",
	"name":             "name",
	"trade":            "name",
	"description":      "name",
	"date":             "date",
	"tradedate":        "date",
	"status":           "status",
	"supplier":         "supplierName",
	"suppliername":     "supplierName",
	"seller":           "supplierName",
	"goods":            "goodsName",
	"goodsname":        "goodsName",
	"commodity":        "goodsName",
	"item":             "goodsName",
	"quantity":         "quantity",
	"qty":              "quantity",
	"unit":             "unit",
	"rate":             "purchaseRate",
	"purchaserate":     "purchaseRate",
	"buyrate":          "purchaseRate",
	"amountpaid":       "amountPaid",
	"paid":             "amountPaid",
	"buyer":            "buyerName",
	"buyername":        "buyerName",
	"quantitysold":     "quantitySold",
	"qtysold":          "quantitySold",
	"salerate":         "saleRate",
	"sellrate":         "saleRate",
	"totalsaleamount":  "totalSaleAmount",
	"saleamount":       "totalSaleAmount",
	"amountreceived":   "amountReceived",
	"received":         "amountReceived",
	"vehicle":          "vehicleNumber",
	"vehiclenumber":    "vehicleNumber",
	"origin":           "origin",
	"from":             "origin",
	"destination":      "destination",
	"to":               "destination",
	"transportcharges": "transportCharges",
	"freight":          "transportCharges",
	"charges":          "transportCharges",
}

// anchors are the fields of which a header row must carry at least one.
var anchors = []string{"name", "supplierName", "goodsName", "buyerName"}

// minHeaderFields keeps a data row that happens to say "Rice" from passing as a header.
const minHeaderFields = 3

var (
	purchaseFields  = []string{"supplierName", "goodsName", "quantity", "unit", "purchaseRate", "amountPaid"}
	saleFields      = []string{"buyerName", "quantitySold", "saleRate", "totalSaleAmount", "amountReceived"}
	transportFields = []string{"vehicleNumber", "origin", "destination", "transportCharges"}
)

var dateLayouts = []string{"02-01-2006", "02/01/2006", "2006/01/02", "02.01.2006"}

func normalizeHeading(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '_', '-', '\t':
			return -1
		}

		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// colIndex maps field names to their position in a row.
type colIndex map[string]int

// findHeader returns the first row that looks like a header, so title lines
// above the table are skipped.
func findHeader(rows [][]string) (colIndex, int, bool) {
	for i, row := range rows {
		cols := make(colIndex)

		for j, cell := range row {
			if field, ok := headings[normalizeHeading(cell)]; ok {
				if _, dup := cols[field]; !dup {
					cols[field] = j
				}
			}
		}

		if len(cols) < minHeaderFields {
			continue
		}

		for _, a := range anchors {
			if _, ok := cols[a]; ok {
				return cols, i, true
			}
		}
	}

	return nil, 0, false
}

// parseTable turns a sheet of rows into trades.
func parseTable(rows [][]string) ([]*trade.Transaction, error) {
	cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no header row found: expected columns such as name, supplierName, goodsName: %w", trade.ErrValidation)
	}

	txs := []*trade.Transaction{}

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		if blank(row) {
			continue
		}

		tx, err := parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

type rowReader struct {
	cols colIndex
	row  []string
	err  error
}

func (r *rowReader) text(field string) string {
	idx, ok := r.cols[field]
	if !ok || idx >= len(r.row) {
		return ""
	}

	return strings.TrimSpace(r.row[idx])
}

func (r *rowReader) amount(field string) float64 {
	v, err := form.ParseAmount(r.text(field))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", field, err)
	}

	return v
}

func (r *rowReader) date(field string) time.Time {
	s := r.text(field)
	if s == "" {
		return time.Time{}
	}

	if t, err := form.ParseDate(s); err == nil {
		return t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	if r.err == nil {
		r.err = fmt.Errorf("%s: invalid date %q: %w", field, s, trade.ErrValidation)
	}

	return time.Time{}
}

func (r *rowReader) has(fields []string) bool {
	for _, f := range fields {
		if r.text(f) != "" {
			return true
		}
	}

	return false
}

func parseRow(cols colIndex, row []string) (*trade.Transaction, error) {
	r := &rowReader{cols: cols, row: row}

	tx := &trade.Transaction{
		ID:          r.text("id"),
		Name:        r.text("name"),
		Date:        r.date("date"),
		Payments:    []trade.Payment{},
		Notes:       []trade.Note{},
		Attachments: []trade.Attachment{},
	}

	if s := trade.Status(strings.ToLower(r.text("status"))); s != "" {
		if !s.Valid() {
			return nil, fmt.Errorf("unknown status %q: %w", s, trade.ErrValidation)
		}

		tx.Status = s
	}

	if r.has(purchaseFields) {
		tx.LoadBuy = &trade.LoadBuy{
			SupplierName: r.text("supplierName"),
			GoodsName:    r.text("goodsName"),
			Quantity:     r.amount("quantity"),
			Unit:         r.text("unit"),
			PurchaseRate: r.amount("purchaseRate"),
			AmountPaid:   r.amount("amountPaid"),
		}
	}

	if r.has(saleFields) {
		tx.LoadSold = &trade.LoadSold{
			BuyerName:      r.text("buyerName"),
			QuantitySold:   r.amount("quantitySold"),
			SaleRate:       r.amount("saleRate"),
			AmountReceived: r.amount("amountReceived"),
		}

		fillQuantitySold(tx, r.amount("totalSaleAmount"))
	}

	if r.has(transportFields) {
		tx.Transportation = &trade.Transportation{
			VehicleNumber: r.text("vehicleNumber"),
			Origin:        r.text("origin"),
			Destination:   r.text("destination"),
			Charges:       r.amount("transportCharges"),
		}
	}

	if r.err != nil {
		return nil, r.err
	}

	return tx, nil
}

// fillQuantitySold recovers the sold quantity, which the flat export omits,
// from the sale total or else from the purchased quantity.
func fillQuantitySold(tx *trade.Transaction, total float64) {
	s := tx.LoadSold
	if s.QuantitySold != 0 {
		return
	}

	switch {
	case total != 0 && s.SaleRate != 0:
		s.QuantitySold = total / s.SaleRate
	case tx.LoadBuy != nil:
		s.QuantitySold = tx.LoadBuy.Quantity
	}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
