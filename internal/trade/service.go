package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists whole Transaction aggregates keyed by ID.
// UpdateTransaction is a blind full-record replace: concurrent writers to the
// same ID are last-write-wins.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=trade
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context) ([]*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the time source used for creation and payment dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateParams struct {
	ID       string
	Name     string
	Date     time.Time
	Purchase *PurchaseParams
}

type PurchaseParams struct {
	SupplierName    string
	SupplierContact string
	GoodsName       string
	Quantity        float64
	Unit            string
	PurchaseRate    float64
	AmountPaid      float64
	PurchaseDate    time.Time
}

type SaleParams struct {
	BuyerName      string
	BuyerContact   string
	QuantitySold   float64
	SaleRate       float64
	AmountReceived float64
	SaleDate       time.Time
}

type PaymentParams struct {
	Date            time.Time
	Amount          float64
	Mode            PaymentMode
	Counterparty    string
	IsIncoming      bool
	Notes           string
	ReferenceNumber string
}

type AttachmentParams struct {
	Name        string
	Type        string
	URI         string
	Description string
}

// PlaceholderName is the display label given to a trade created without one.
func PlaceholderName(date time.Time) string {
	return "Trade " + date.Format("02 Jan 2006")
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	date := params.Date
	if date.IsZero() {
		date = s.now().UTC()
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}

	name := params.Name
	if name == "" {
		name = PlaceholderName(date)
	}

	tx := &Transaction{
		ID:          id,
		Name:        name,
		Date:        date,
		Status:      StatusPending,
		Payments:    []Payment{},
		Notes:       []Note{},
		Attachments: []Attachment{},
	}

	if params.Purchase != nil {
		tx.LoadBuy = purchaseLeg(*params.Purchase)
	}

	Reconcile(tx)

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// List returns every stored trade in store order. Filtering and sorting
// belong to the query package.
func (s *Service) List(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// Replace writes tx over the stored record with the same ID. The creation
// date of the stored record is kept. A supplied completed status is only kept
// when the replacement itself is fully settled.
func (s *Service) Replace(ctx context.Context, tx *Transaction) (*Transaction, error) {
	return s.mutate(ctx, tx.ID, func(current *Transaction) error {
		date := current.Date
		*current = *tx.Clone()

		if !date.IsZero() {
			current.Date = date
		}

		if current.Status == StatusCompleted {
			current.Status = StatusPending
		}

		return nil
	})
}

func (s *Service) Rename(ctx context.Context, id, name string) (*Transaction, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}

	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.Name = name
		return nil
	})
}

// SetStatus cancels or reopens a trade. Completed is never set by hand;
// reopening a fully settled trade lands on completed again.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Transaction, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}

	if status == StatusCompleted {
		return nil, fmt.Errorf("completed follows from settled legs and cannot be set: %w", ErrValidation)
	}

	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.Status = status
		return nil
	})
}

func (s *Service) UpdatePurchase(ctx context.Context, id string, params PurchaseParams) (*Transaction, error) {
	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.LoadBuy = purchaseLeg(params)
		return nil
	})
}

func (s *Service) UpdateTransport(ctx context.Context, id string, leg Transportation) (*Transaction, error) {
	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.Transportation = &leg
		return nil
	})
}

func (s *Service) RemoveTransport(ctx context.Context, id string) (*Transaction, error) {
	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.Transportation = nil
		return nil
	})
}

func (s *Service) UpdateSale(ctx context.Context, id string, params SaleParams) (*Transaction, error) {
	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.LoadSold = &LoadSold{
			BuyerName:      params.BuyerName,
			BuyerContact:   params.BuyerContact,
			QuantitySold:   params.QuantitySold,
			SaleRate:       params.SaleRate,
			AmountReceived: params.AmountReceived,
			SaleDate:       params.SaleDate,
		}

		return nil
	})
}

func (s *Service) AddPayment(ctx context.Context, id string, params PaymentParams) (*Transaction, error) {
	date := params.Date
	if date.IsZero() {
		date = s.now().UTC()
	}

	mode := params.Mode
	if mode == "" {
		mode = PaymentCash
	}

	return s.mutate(ctx, id, func(tx *Transaction) error {
		ApplyPayment(tx, Payment{
			ID:              uuid.NewString(),
			Date:            date,
			Amount:          params.Amount,
			Mode:            mode,
			Counterparty:    params.Counterparty,
			IsIncoming:      params.IsIncoming,
			Notes:           params.Notes,
			ReferenceNumber: params.ReferenceNumber,
		})

		return nil
	})
}

// ReplacePayments swaps the whole payment list. Leg amounts are left as they are.
func (s *Service) ReplacePayments(ctx context.Context, id string, payments []Payment) (*Transaction, error) {
	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.Payments = append([]Payment{}, payments...)
		for i := range tx.Payments {
			if tx.Payments[i].ID == "" {
				tx.Payments[i].ID = uuid.NewString()
			}
		}

		return nil
	})
}

func (s *Service) AddNote(ctx context.Context, id, content string) (*Transaction, error) {
	if content == "" {
		return nil, fmt.Errorf("note content is required: %w", ErrValidation)
	}

	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.Notes = append(tx.Notes, Note{
			ID:      uuid.NewString(),
			Date:    s.now().UTC(),
			Content: content,
		})

		return nil
	})
}

func (s *Service) RemoveNote(ctx context.Context, id, noteID string) (*Transaction, error) {
	return s.mutate(ctx, id, func(tx *Transaction) error {
		for i, n := range tx.Notes {
			if n.ID == noteID {
				tx.Notes = append(tx.Notes[:i], tx.Notes[i+1:]...)
				return nil
			}
		}

		return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
	})
}

func (s *Service) AddAttachment(ctx context.Context, id string, params AttachmentParams) (*Transaction, error) {
	if params.URI == "" {
		return nil, fmt.Errorf("attachment uri is required: %w", ErrValidation)
	}

	return s.mutate(ctx, id, func(tx *Transaction) error {
		tx.Attachments = append(tx.Attachments, Attachment{
			ID:          uuid.NewString(),
			Name:        params.Name,
			Type:        params.Type,
			URI:         params.URI,
			Date:        s.now().UTC(),
			Description: params.Description,
		})

		return nil
	})
}

func (s *Service) RemoveAttachment(ctx context.Context, id, attachmentID string) (*Transaction, error) {
	return s.mutate(ctx, id, func(tx *Transaction) error {
		for i, a := range tx.Attachments {
			if a.ID == attachmentID {
				tx.Attachments = append(tx.Attachments[:i], tx.Attachments[i+1:]...)
				return nil
			}
		}

		return fmt.Errorf("attachment %s: %w", attachmentID, ErrNotFound)
	})
}

type ImportResult struct {
	Imported  []*Transaction
	Conflicts []*Transaction
}

// ImportBatch creates every trade in txs. Trades whose ID is already taken are
// reported as conflicts and skipped; any other error stops the batch.
func (s *Service) ImportBatch(ctx context.Context, txs []*Transaction) (*ImportResult, error) {
	result := &ImportResult{}

	for _, in := range txs {
		tx := in.Clone()
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}

		if tx.Date.IsZero() {
			tx.Date = s.now().UTC()
		}

		if tx.Name == "" {
			tx.Name = PlaceholderName(tx.Date)
		}

		Reconcile(tx)

		err := s.repo.CreateTransaction(ctx, tx)
		if errors.Is(err, ErrDuplicateKey) {
			result.Conflicts = append(result.Conflicts, tx)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("importing transaction %s: %w", tx.ID, err)
		}

		result.Imported = append(result.Imported, tx)
	}

	return result, nil
}

// mutate runs the read-modify-write cycle shared by every edit. fn works on a
// private copy; nothing is written when fn or the store fails.
func (s *Service) mutate(ctx context.Context, id string, fn func(tx *Transaction) error) (*Transaction, error) {
	current, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := current.Clone()
	if err := fn(tx); err != nil {
		return nil, err
	}

	tx.ID = id
	Reconcile(tx)

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("updating transaction %s: %w", id, err)
	}

	return tx, nil
}

func purchaseLeg(p PurchaseParams) *LoadBuy {
	return &LoadBuy{
		SupplierName:    p.SupplierName,
		SupplierContact: p.SupplierContact,
		GoodsName:       p.GoodsName,
		Quantity:        p.Quantity,
		Unit:            p.Unit,
		PurchaseRate:    p.PurchaseRate,
		AmountPaid:      p.AmountPaid,
		PurchaseDate:    p.PurchaseDate,
	}
}
