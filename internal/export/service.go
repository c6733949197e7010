package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatPDF    Format = "pdf"
	FormatBundle Format = "zip"
)

var Formats = []Format{FormatJSON, FormatCSV, FormatXLSX, FormatPDF, FormatBundle}

// ParseFormat accepts a format name case-insensitively; "excel" and "xls" mean xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX, FormatPDF, FormatBundle:
		return f, nil
	case "excel", "xls":
		return FormatXLSX, nil
	case "":
		return FormatJSON, nil
	}

	return "", fmt.Errorf("unknown export format %q: %w", s, trade.ErrValidation)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatBundle:
		return "application/zip"
	default:
		return "application/json"
	}
}

// FileName is the suggested download name for an export taken at t.
func (f Format) FileName(t time.Time) string {
	return fmt.Sprintf("transactions_%s.%s", t.Format("20060102"), f)
}

// Service produces exports from the stored trades. It only reads.
type Service struct {
	trades *trade.Service
	client *http.Client
}

func NewService(trades *trade.Service) *Service {
	return &Service{
		trades: trades,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Select lists the trades matching c, newest first.
func (s *Service) Select(ctx context.Context, c query.Criteria) ([]*trade.Transaction, error) {
	txs, err := s.trades.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	txs = query.Apply(txs, c)
	query.SortByDate(txs)

	return txs, nil
}

// Export writes the trades matching c to w in format f.
func (s *Service) Export(ctx context.Context, f Format, c query.Criteria, w io.Writer) error {
	txs, err := s.Select(ctx, c)
	if err != nil {
		return err
	}

	return s.Write(ctx, f, txs, w)
}

// Write encodes an already selected list.
func (s *Service) Write(ctx context.Context, f Format, txs []*trade.Transaction, w io.Writer) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, txs)
	case FormatCSV:
		return WriteCSV(w, Flatten(txs))
	case FormatXLSX:
		return WriteXLSX(w, Flatten(txs))
	case FormatPDF:
		return WritePDF(w, "Transactions", txs)
	case FormatBundle:
		return WriteBundle(ctx, w, s.client, txs)
	}

	return fmt.Errorf("unknown export format %q: %w", f, trade.ErrValidation)
}
