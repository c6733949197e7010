// Package matching learns preferred spellings for the party and goods names
// that arrive in imported files, e.g. "NORTHERN FARMS LTD PUNE" -> "Northern Farms Ltd.".
package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, raw string) (string, error)
	CreateMapping(ctx context.Context, rawPattern, preferredName string) error
	ListMappings(ctx context.Context) ([]Mapping, error)
}

// Mapping rewrites any name containing RawPattern, ignoring case, to PreferredName.
type Mapping struct {
	RawPattern    string `json:"rawPattern"`
	PreferredName string `json:"preferredName"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the preferred name for raw, or "" when nothing matches.
// The longest matching pattern wins; ties go to the newest mapping.
func (s *Service) Suggest(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, raw)
}

// Learn remembers a new mapping between a raw pattern and a preferred name.
func (s *Service) Learn(ctx context.Context, rawPattern, preferredName string) error {
	rawPattern = strings.TrimSpace(rawPattern)
	preferredName = strings.TrimSpace(preferredName)

	if rawPattern == "" || preferredName == "" {
		return fmt.Errorf("raw pattern and preferred name are required: %w", trade.ErrValidation)
	}

	return s.repo.CreateMapping(ctx, rawPattern, preferredName)
}

func (s *Service) Mappings(ctx context.Context) ([]Mapping, error) {
	return s.repo.ListMappings(ctx)
}

// Normalize rewrites the supplier, buyer and goods names of tx in place.
func (s *Service) Normalize(ctx context.Context, tx *trade.Transaction) error {
	var names []*string

	if tx.LoadBuy != nil {
		names = append(names, &tx.LoadBuy.SupplierName, &tx.LoadBuy.GoodsName)
	}

	if tx.LoadSold != nil {
		names = append(names, &tx.LoadSold.BuyerName)
	}

	for _, name := range names {
		preferred, err := s.Suggest(ctx, *name)
		if err != nil {
			return fmt.Errorf("matching %q: %w", *name, err)
		}

		if preferred != "" {
			*name = preferred
		}
	}

	return nil
}
