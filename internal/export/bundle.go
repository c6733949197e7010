package export

import (
	"archive/zip"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// WriteBundle writes a zip archive holding the JSON and CSV exports, a plain
// text digest and every attachment the trades reference. Attachments stored
// as data URIs are decoded; http(s) URLs are downloaded with client.
func WriteBundle(ctx context.Context, w io.Writer, client *http.Client, txs []*trade.Transaction) error {
	zw := zip.NewWriter(w)

	if err := addEntry(zw, "transactions.json", func(w io.Writer) error { return WriteJSON(w, txs) }); err != nil {
		return err
	}

	if err := addEntry(zw, "transactions.csv", func(w io.Writer) error { return WriteCSV(w, Flatten(txs)) }); err != nil {
		return err
	}

	if err := addEntry(zw, "digest.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, Digest(txs))
		return err
	}); err != nil {
		return err
	}

	for _, tx := range txs {
		for _, a := range tx.Attachments {
			name := path.Join("attachments", safeName(tx.ID), attachmentFilename(a))

			err := addEntry(zw, name, func(w io.Writer) error {
				return copyAttachment(ctx, w, client, a)
			})
			if err != nil {
				return fmt.Errorf("attachment %s of transaction %s: %w", a.ID, tx.ID, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	return nil
}

func addEntry(zw *zip.Writer, name string, fill func(io.Writer) error) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}

	return fill(f)
}

func copyAttachment(ctx context.Context, w io.Writer, client *http.Client, a trade.Attachment) error {
	if strings.HasPrefix(a.URI, "data:") {
		data, err := decodeDataURI(a.URI)
		if err != nil {
			return err
		}

		_, err = w.Write(data)

		return err
	}

	u, err := url.Parse(a.URI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("unsupported attachment uri %q", a.URI)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URI, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, a.URI)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("copying body: %w", err)
	}

	return nil
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data uri: %w", err)
		}

		return data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data uri: %w", err)
	}

	return []byte(text), nil
}

// safeName maps s onto a single archive path element: letters, digits,
// '-', '_' and '.', never "." or "..".
func safeName(s string) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}

		return '_'
	}, s)

	if strings.Trim(safe, ".") == "" {
		return strings.Repeat("_", max(len(safe), 1))
	}

	return safe
}

func attachmentFilename(a trade.Attachment) string {
	id := safeName(a.ID)

	safe := id
	if a.Name != "" {
		safe = safeName(a.Name)
	}

	if path.Ext(safe) == "" && a.Type != "" {
		if exts, _ := mime.ExtensionsByType(a.Type); len(exts) > 0 {
			safe += exts[0]
		}
	}

	return id + "_" + safe
}

// Digest is a one-line-per-trade text summary suitable for pasting into a message.
// Payable is the purchase balance, receivable the sale's pending balance.
func Digest(txs []*trade.Transaction) string {
	var sb strings.Builder

	for _, tx := range txs {
		goods := "-"
		if tx.LoadBuy != nil && tx.LoadBuy.GoodsName != "" {
			goods = tx.LoadBuy.GoodsName
		}

		date := dateCell(tx.Date)
		if date == "" {
			date = "undated"
		}

		var payable, receivable float64
		if tx.LoadBuy != nil {
			payable = tx.LoadBuy.Balance
		}

		if tx.LoadSold != nil {
			receivable = tx.LoadSold.PendingBalance
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %.2f | %s | payable %.2f | receivable %.2f | %d attachment(s)\n",
			date, tx.Name, goods, tx.TotalAmount, tx.Status.Effective(), payable, receivable, len(tx.Attachments))
	}

	return sb.String()
}
