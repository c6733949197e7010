package importer

import (
	"encoding/json"
	"fmt"
	"io"

	enc "github.com/MrJamesThe3rd/tradebook/internal/encoding"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// JSON restores the array written by the JSON export.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (p *JSON) Parse(r io.Reader) ([]*trade.Transaction, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	var txs []*trade.Transaction
	if err := json.NewDecoder(utf8r).Decode(&txs); err != nil {
		return nil, fmt.Errorf("decoding backup: %w: %w", trade.ErrValidation, err)
	}

	out := make([]*trade.Transaction, 0, len(txs))

	for i, tx := range txs {
		if tx == nil {
			continue
		}

		if tx.Status != "" && !tx.Status.Valid() {
			return nil, fmt.Errorf("entry %d: unknown status %q: %w", i+1, tx.Status, trade.ErrValidation)
		}

		out = append(out, tx)
	}

	return out, nil
}
