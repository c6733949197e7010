package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	enc "github.com/MrJamesThe3rd/tradebook/internal/encoding"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// CSV reads comma, semicolon or tab separated sheets in any charset the
// encoding package can detect.
type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func (p *CSV) Parse(r io.Reader) ([]*trade.Transaction, error) {
	utf8r, charset, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	comma := sniffDelimiter(head)
	slog.Debug("parsing csv", "charset", charset, "delimiter", string(comma))

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w: %w", trade.ErrValidation, err)
	}

	return parseTable(rows)
}

// sniffDelimiter picks the separator that occurs most often outside quotes
// in the sample. Ties and empty input fall back to a comma.
func sniffDelimiter(head []byte) rune {
	counts := map[rune]int{}
	quoted := false

	for _, c := range string(head) {
		switch c {
		case '"':
			quoted = !quoted
		case ',', ';', '\t':
			if !quoted {
				counts[c]++
			}
		}
	}

	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}

	return best
}
