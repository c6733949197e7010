package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/MrJamesThe3rd/tradebook/internal/database"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// Store keeps each Transaction aggregate as one JSON document keyed by id.
// Payments, notes and attachments travel inside the document.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open prepares the schema and returns a ready Store.
func Open(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := database.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("%w: %w", trade.ErrStorageUnavailable, err)
	}

	return New(db), nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *trade.Transaction) error {
	doc, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var retired int
	if err := dbTx.QueryRowContext(ctx, `SELECT COUNT(*) FROM retired_ids WHERE id = $1`, tx.ID).Scan(&retired); err != nil {
		return fmt.Errorf("checking retired ids: %w", err)
	}

	if retired > 0 {
		return fmt.Errorf("id %s was used by a deleted transaction: %w", tx.ID, trade.ErrDuplicateKey)
	}

	now := time.Now().UTC()

	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO transactions (id, document, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		tx.ID, string(doc), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("id %s: %w", tx.ID, trade.ErrDuplicateKey)
		}

		return fmt.Errorf("creating transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*trade.Transaction, error) {
	var doc string

	err := s.db.QueryRowContext(ctx, `SELECT document FROM transactions WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("id %s: %w", id, trade.ErrNotFound)
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return decode(doc)
}

// ListTransactions returns every stored transaction in no particular order.
func (s *Store) ListTransactions(ctx context.Context) ([]*trade.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*trade.Transaction

	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		tx, err := decode(doc)
		if err != nil {
			return nil, err
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// UpdateTransaction replaces the whole stored document. There is no version
// check: the last writer wins.
func (s *Store) UpdateTransaction(ctx context.Context, tx *trade.Transaction) error {
	doc, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("encoding transaction: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET document = $1, updated_at = $2 WHERE id = $3`,
		string(doc), time.Now().UTC(), tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("id %s: %w", tx.ID, trade.ErrNotFound)
	}

	return nil
}

// DeleteTransaction removes the record and retires its id. Deleting a missing
// id is not an error.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n > 0 {
		_, err = dbTx.ExecContext(ctx,
			`INSERT INTO retired_ids (id, retired_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			id, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("retiring id: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	return nil
}

func decode(doc string) (*trade.Transaction, error) {
	var tx trade.Transaction
	if err := json.Unmarshal([]byte(doc), &tx); err != nil {
		return nil, fmt.Errorf("decoding transaction: %w", err)
	}

	return &tx, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}

	return false
}
