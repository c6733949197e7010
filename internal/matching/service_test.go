package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tradebook/internal/matching"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

func TestService_Learn(t *testing.T) {
	type testCase struct {
		name      string
		raw       string
		preferred string
		setupMock func(m *matching.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "Trimmed",
			raw:       "  northern farms ",
			preferred: "Northern Farms Ltd.",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateMapping(gomock.Any(), "northern farms", "Northern Farms Ltd.").Return(nil)
			},
		},
		{
			name:      "MissingPattern",
			raw:       " ",
			preferred: "Northern Farms Ltd.",
			setupMock: func(m *matching.MockRepository) {},
			wantErr:   trade.ErrValidation,
		},
		{
			name:      "MissingPreferred",
			raw:       "northern",
			setupMock: func(m *matching.MockRepository) {},
			wantErr:   trade.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)
			tt.setupMock(repo)

			err := matching.NewService(repo).Learn(context.Background(), tt.raw, tt.preferred)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Normalize(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)

	repo.EXPECT().FindMatch(gomock.Any(), "NORTHERN FARMS PUNE").Return("Northern Farms Ltd.", nil)
	repo.EXPECT().FindMatch(gomock.Any(), "soya").Return("Soybean", nil)
	repo.EXPECT().FindMatch(gomock.Any(), "Harbor Mills").Return("", nil)

	tx := &trade.Transaction{
		LoadBuy:  &trade.LoadBuy{SupplierName: "NORTHERN FARMS PUNE", GoodsName: "soya"},
		LoadSold: &trade.LoadSold{BuyerName: "Harbor Mills"},
	}

	require.NoError(t, matching.NewService(repo).Normalize(context.Background(), tx))

	assert.Equal(t, "Northern Farms Ltd.", tx.LoadBuy.SupplierName)
	assert.Equal(t, "Soybean", tx.LoadBuy.GoodsName)
	assert.Equal(t, "Harbor Mills", tx.LoadSold.BuyerName)
}

func TestService_NormalizeSkipsEmptyNames(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)

	tx := &trade.Transaction{LoadBuy: &trade.LoadBuy{}}

	require.NoError(t, matching.NewService(repo).Normalize(context.Background(), tx))
	require.NoError(t, matching.NewService(repo).Normalize(context.Background(), &trade.Transaction{}))
}

func TestService_NormalizeStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)

	boom := errors.New("db down")
	repo.EXPECT().FindMatch(gomock.Any(), "Acme").Return("", boom)

	err := matching.NewService(repo).Normalize(context.Background(), &trade.Transaction{
		LoadBuy: &trade.LoadBuy{SupplierName: "Acme"},
	})
	assert.ErrorIs(t, err, boom)
}
