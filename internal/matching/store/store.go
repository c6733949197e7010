package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/tradebook/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, raw string) (string, error) {
	query := `
		SELECT preferred_name
		FROM name_aliases
		WHERE LOWER($1) LIKE '%' || REPLACE(REPLACE(REPLACE(LOWER(raw_pattern), '\', '\\'), '%', '\%'), '_', '\_') || '%' ESCAPE '\'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, raw).Scan(&preferred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return preferred, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern, preferredName string) error {
	query := `
		INSERT INTO name_aliases (raw_pattern, preferred_name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.ExecContext(ctx, query, rawPattern, preferredName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}

func (s *Store) ListMappings(ctx context.Context) ([]matching.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_pattern, preferred_name
		FROM name_aliases
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	mappings := []matching.Mapping{}

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.RawPattern, &m.PreferredName); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return mappings, nil
}
