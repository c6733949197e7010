// Package importer reads trades back from files: JSON backups written by the
// JSON export, and CSV or xlsx sheets laid out like the flat export or like a
// hand-kept ledger.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name, or a file name whose extension names one.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimPrefix(ext, ".")
	}

	switch Format(s) {
	case FormatJSON, FormatCSV, FormatXLSX:
		return Format(s), nil
	case "txt":
		return FormatCSV, nil
	case "xls", "excel":
		return FormatXLSX, nil
	}

	return "", fmt.Errorf("unknown import format %q: %w", s, trade.ErrValidation)
}

type Importer interface {
	Parse(r io.Reader) ([]*trade.Transaction, error)
}

// Normalizer rewrites party and goods names before a trade is stored.
type Normalizer interface {
	Normalize(ctx context.Context, tx *trade.Transaction) error
}
