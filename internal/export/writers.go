package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Transactions"

// WriteJSON writes the full trades, two-space indented. An empty list is "[]".
func WriteJSON(w io.Writer, txs []*trade.Transaction) error {
	if txs == nil {
		txs = []*trade.Transaction{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}

	return nil
}

// WriteCSV writes a header line followed by one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// WriteXLSX writes the rows to a single-sheet workbook. Numbers stay numeric.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		values := make([]any, len(Columns))
		for j, c := range Columns {
			values[j] = r[c]
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

type pdfColumn struct {
	title string
	width float64
	value func(tx *trade.Transaction) string
}

var pdfColumns = []pdfColumn{
	{"ID", 25, func(tx *trade.Transaction) string { return idPrefix(tx.ID) }},
	{"Name", 80, func(tx *trade.Transaction) string { return tx.Name }},
	{"Date", 30, func(tx *trade.Transaction) string { return dateCell(tx.Date) }},
	{"Amount", 35, func(tx *trade.Transaction) string { return fmt.Sprintf("%.2f", tx.TotalAmount) }},
	{"Status", 30, func(tx *trade.Transaction) string { return string(tx.Status.Effective()) }},
	{"Goods", 60, func(tx *trade.Transaction) string {
		if tx.LoadBuy == nil {
			return ""
		}

		return tx.LoadBuy.GoodsName
	}},
}

// WritePDF renders an A4 landscape table of the trades.
func WritePDF(w io.Writer, title string, txs []*trade.Transaction) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)

	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "L", true, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)

	for _, tx := range txs {
		for _, c := range pdfColumns {
			align := "L"
			if c.title == "Amount" {
				align = "R"
			}

			pdf.CellFormat(c.width, 7, tr(truncate(c.value(tx), c.width)), "1", 0, align, false, 0, "")
		}

		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}

	return nil
}

func idPrefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func dateCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}

// truncate keeps roughly what fits in a cell of width mm at 9pt.
func truncate(s string, width float64) string {
	limit := int(width / 2)

	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	return string(r[:limit-1]) + "…"
}
