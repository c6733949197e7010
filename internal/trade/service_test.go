package trade_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newService(repo trade.Repository) *trade.Service {
	return trade.NewService(repo).WithClock(func() time.Time { return fixedNow })
}

func TestService_Create(t *testing.T) {
	type args struct {
		params trade.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *trade.MockRepository)
		verify    func(t *testing.T, tx *trade.Transaction)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "WithPurchase",
			args: args{
				params: trade.CreateParams{
					Name: "Wheat lot 7",
					Purchase: &trade.PurchaseParams{
						SupplierName: "Northern Farms Ltd.",
						GoodsName:    "Wheat",
						Quantity:     100,
						PurchaseRate: 50,
						AmountPaid:   1000,
					},
				},
			},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, tx *trade.Transaction) {
				assert.NotEmpty(t, tx.ID)
				assert.Equal(t, "Wheat lot 7", tx.Name)
				assert.Equal(t, fixedNow, tx.Date)
				assert.Equal(t, trade.StatusPending, tx.Status)
				assert.Equal(t, 5000.0, tx.TotalAmount)
				assert.Equal(t, 5000.0, tx.LoadBuy.TotalCost)
				assert.Equal(t, 4000.0, tx.LoadBuy.Balance)
				assert.NotNil(t, tx.Payments)
			},
		},
		{
			name: "PlaceholderName",
			args: args{params: trade.CreateParams{}},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			verify: func(t *testing.T, tx *trade.Transaction) {
				assert.Equal(t, "Trade 15 Mar 2024", tx.Name)
				assert.Equal(t, 0.0, tx.TotalAmount)
				assert.Nil(t, tx.LoadBuy)
			},
		},
		{
			name: "DuplicateKey",
			args: args{params: trade.CreateParams{ID: "taken"}},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(trade.ErrDuplicateKey)
			},
			wantErr: trade.ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := trade.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := newService(repo).Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.verify(t, got)
		})
	}
}

func stored() *trade.Transaction {
	tx := &trade.Transaction{
		ID:       "tx-1",
		Name:     "Maize",
		Date:     fixedNow,
		Status:   trade.StatusPending,
		LoadBuy:  &trade.LoadBuy{SupplierName: "Acme", GoodsName: "Maize", Quantity: 50, PurchaseRate: 100, AmountPaid: 1000},
		Payments: []trade.Payment{},
		Notes:    []trade.Note{},
	}
	trade.Reconcile(tx)

	return tx
}

func TestService_AddPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)
	original := stored()

	repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(original, nil)
	repo.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *trade.Transaction) error {
			assert.Equal(t, 1500.0, tx.LoadBuy.AmountPaid)
			assert.Equal(t, 3500.0, tx.LoadBuy.Balance)
			return nil
		})

	got, err := newService(repo).AddPayment(context.Background(), "tx-1", trade.PaymentParams{Amount: 500})
	require.NoError(t, err)

	require.Len(t, got.Payments, 1)
	assert.Equal(t, trade.PaymentCash, got.Payments[0].Mode)
	assert.Equal(t, fixedNow, got.Payments[0].Date)
	assert.NotEmpty(t, got.Payments[0].ID)

	// The record handed out by the repository is not touched.
	assert.Empty(t, original.Payments)
	assert.Equal(t, 1000.0, original.LoadBuy.AmountPaid)
}

func TestService_UpdateSale_Completes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)
	tx := stored()
	tx.LoadBuy.AmountPaid = 5000

	repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	got, err := newService(repo).UpdateSale(context.Background(), "tx-1", trade.SaleParams{
		BuyerName:      "Harbor Mills",
		QuantitySold:   50,
		SaleRate:       120,
		AmountReceived: 6000,
	})
	require.NoError(t, err)

	assert.Equal(t, 6000.0, got.LoadSold.TotalSaleAmount)
	assert.Equal(t, 0.0, got.LoadSold.PendingBalance)
	assert.Equal(t, trade.StatusCompleted, got.Status)
}

func TestService_Mutations_Errors(t *testing.T) {
	type testCase struct {
		name      string
		call      func(s *trade.Service) error
		setupMock func(m *trade.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "NotFound",
			call: func(s *trade.Service) error {
				_, err := s.Rename(context.Background(), "missing", "x")
				return err
			},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), "missing").Return(nil, trade.ErrNotFound)
			},
			wantErr: trade.ErrNotFound,
		},
		{
			name: "EmptyName",
			call: func(s *trade.Service) error {
				_, err := s.Rename(context.Background(), "tx-1", "")
				return err
			},
			wantErr: trade.ErrValidation,
		},
		{
			name: "UnknownStatus",
			call: func(s *trade.Service) error {
				_, err := s.SetStatus(context.Background(), "tx-1", trade.Status("archived"))
				return err
			},
			wantErr: trade.ErrValidation,
		},
		{
			name: "CompletedByHand",
			call: func(s *trade.Service) error {
				_, err := s.SetStatus(context.Background(), "tx-1", trade.StatusCompleted)
				return err
			},
			wantErr: trade.ErrValidation,
		},
		{
			name: "RemoveMissingNote",
			call: func(s *trade.Service) error {
				_, err := s.RemoveNote(context.Background(), "tx-1", "nope")
				return err
			},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(stored(), nil)
			},
			wantErr: trade.ErrNotFound,
		},
		{
			name: "UpdateFails",
			call: func(s *trade.Service) error {
				_, err := s.AddNote(context.Background(), "tx-1", "called supplier")
				return err
			},
			setupMock: func(m *trade.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(stored(), nil)
				m.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(trade.ErrStorageUnavailable)
			},
			wantErr: trade.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := trade.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := tt.call(newService(repo))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_SetStatus_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)
	repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(stored(), nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	got, err := newService(repo).SetStatus(context.Background(), "tx-1", trade.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, trade.StatusCancelled, got.Status)
}

func TestService_Replace_KeepsCreationDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)
	repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(stored(), nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	in := stored()
	in.Date = fixedNow.AddDate(1, 0, 0)
	in.LoadBuy.Quantity = 10

	got, err := newService(repo).Replace(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, fixedNow, got.Date)
	assert.Equal(t, 1000.0, got.TotalAmount)
	assert.Equal(t, 0.0, got.LoadBuy.Balance)
}

func TestService_Replace_CompletedNeedsSettledLegs(t *testing.T) {
	type testCase struct {
		name       string
		sale       *trade.LoadSold
		wantStatus trade.Status
	}

	tests := []testCase{
		{name: "NoSale", wantStatus: trade.StatusPending},
		{
			name:       "SaleUnpaid",
			sale:       &trade.LoadSold{BuyerName: "Delta", QuantitySold: 50, SaleRate: 120},
			wantStatus: trade.StatusPending,
		},
		{
			name:       "BothSettled",
			sale:       &trade.LoadSold{BuyerName: "Delta", QuantitySold: 50, SaleRate: 120, AmountReceived: 6000},
			wantStatus: trade.StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := trade.NewMockRepository(ctrl)
			repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(stored(), nil)
			repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

			in := stored()
			in.Status = trade.StatusCompleted
			in.LoadBuy.AmountPaid = 5000
			in.LoadSold = tt.sale

			got, err := newService(repo).Replace(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestService_Attachments(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)
	tx := stored()

	repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	svc := newService(repo)

	got, err := svc.AddAttachment(context.Background(), "tx-1", trade.AttachmentParams{
		Name: "weighbridge.jpg",
		Type: "image/jpeg",
		URI:  "https://files.example.com/weighbridge.jpg",
	})
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)

	repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(got, nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	got, err = svc.RemoveAttachment(context.Background(), "tx-1", got.Attachments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attachments)

	_, err = svc.AddAttachment(context.Background(), "tx-1", trade.AttachmentParams{Name: "empty"})
	assert.ErrorIs(t, err, trade.ErrValidation)
}

func TestService_ImportBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)

	fresh := &trade.Transaction{ID: "new", LoadBuy: &trade.LoadBuy{Quantity: 2, PurchaseRate: 10}}
	dup := &trade.Transaction{ID: "old", Name: "Old"}

	gomock.InOrder(
		repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil),
		repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(trade.ErrDuplicateKey),
	)

	result, err := newService(repo).ImportBatch(context.Background(), []*trade.Transaction{fresh, dup})
	require.NoError(t, err)

	require.Len(t, result.Imported, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, 20.0, result.Imported[0].TotalAmount)
	assert.Equal(t, "Trade 15 Mar 2024", result.Imported[0].Name)
	assert.Equal(t, "old", result.Conflicts[0].ID)
}

func TestService_ImportBatch_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)
	repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	result, err := newService(repo).ImportBatch(context.Background(), []*trade.Transaction{{ID: "a"}})
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := trade.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any()).Return([]*trade.Transaction{{ID: "a"}, {ID: "b"}}, nil)

	got, err := newService(repo).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
