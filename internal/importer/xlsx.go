package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// XLSX reads the first sheet of a workbook.
type XLSX struct{}

func NewXLSX() *XLSX {
	return &XLSX{}
}

func (p *XLSX) Parse(r io.Reader) ([]*trade.Transaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w: %w", trade.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", trade.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	return parseTable(rows)
}
