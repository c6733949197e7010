package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

type Service struct {
	trades     *trade.Service
	normalizer Normalizer
	importers  map[Format]Importer
}

// NewService wires the parsers. normalizer may be nil.
func NewService(trades *trade.Service, normalizer Normalizer) *Service {
	return &Service{
		trades:     trades,
		normalizer: normalizer,
		importers: map[Format]Importer{
			FormatJSON: NewJSON(),
			FormatCSV:  NewCSV(),
			FormatXLSX: NewXLSX(),
		},
	}
}

// Parse reads r without touching the store.
func (s *Service) Parse(ctx context.Context, f Format, r io.Reader) ([]*trade.Transaction, error) {
	imp, ok := s.importers[f]
	if !ok {
		return nil, fmt.Errorf("unknown import format %q: %w", f, trade.ErrValidation)
	}

	txs, err := imp.Parse(r)
	if err != nil {
		return nil, err
	}

	if s.normalizer == nil {
		return txs, nil
	}

	for _, tx := range txs {
		if err := s.normalizer.Normalize(ctx, tx); err != nil {
			return nil, fmt.Errorf("normalizing names: %w", err)
		}
	}

	return txs, nil
}

// Import parses r and creates every trade in it. Trades whose id already
// exists are returned as conflicts and left untouched in the store.
func (s *Service) Import(ctx context.Context, f Format, r io.Reader) (*trade.ImportResult, error) {
	txs, err := s.Parse(ctx, f, r)
	if err != nil {
		return nil, err
	}

	result, err := s.trades.ImportBatch(ctx, txs)
	if err != nil {
		return nil, err
	}

	slog.Info("import finished",
		"format", f,
		"imported", len(result.Imported),
		"conflicts", len(result.Conflicts),
	)

	return result, nil
}
