package trade

import (
	"time"
)

// Status represents the lifecycle state of a trade.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Effective returns the status with the unset value read as pending.
func (s Status) Effective() Status {
	if s == "" {
		return StatusPending
	}

	return s
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}

	return false
}

// PaymentMode is how money changed hands.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentBank   PaymentMode = "bank"
	PaymentUPI    PaymentMode = "upi"
	PaymentCheque PaymentMode = "cheque"
	PaymentOther  PaymentMode = "other"
)

// Transaction is the root aggregate: one buy -> transport -> sell trade together
// with its payments, notes and attachments. It is persisted as a single unit.
type Transaction struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Date           time.Time       `json:"date,omitzero"`
	TotalAmount    float64         `json:"totalAmount"`
	Status         Status          `json:"status,omitempty"`
	LoadBuy        *LoadBuy        `json:"loadBuy,omitempty"`
	Transportation *Transportation `json:"transportation,omitempty"`
	LoadSold       *LoadSold       `json:"loadSold,omitempty"`
	Payments       []Payment       `json:"payments"`
	Notes          []Note          `json:"notes"`
	Attachments    []Attachment    `json:"attachments"`
}

// LoadBuy is the purchase leg. TotalCost and Balance are derived.
type LoadBuy struct {
	SupplierName    string    `json:"supplierName"`
	SupplierContact string    `json:"supplierContact,omitempty"`
	GoodsName       string    `json:"goodsName"`
	Quantity        float64   `json:"quantity"`
	Unit            string    `json:"unit,omitempty"`
	PurchaseRate    float64   `json:"purchaseRate"`
	TotalCost       float64   `json:"totalCost"`
	AmountPaid      float64   `json:"amountPaid"`
	Balance         float64   `json:"balance"`
	PurchaseDate    time.Time `json:"purchaseDate,omitzero"`
}

// Transportation is the logistics leg. It carries no derived fields.
type Transportation struct {
	VehicleNumber string    `json:"vehicleNumber"`
	DriverName    string    `json:"driverName,omitempty"`
	DriverContact string    `json:"driverContact,omitempty"`
	EmptyWeight   float64   `json:"emptyWeight,omitempty"`
	LoadedWeight  float64   `json:"loadedWeight,omitempty"`
	NetWeight     float64   `json:"netWeight,omitempty"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Charges       float64   `json:"charges"`
	Notes         string    `json:"notes,omitempty"`
	DepartureDate time.Time `json:"departureDate,omitzero"`
	ArrivalDate   time.Time `json:"arrivalDate,omitzero"`
}

// LoadSold is the sale leg. TotalSaleAmount and PendingBalance are derived.
type LoadSold struct {
	BuyerName       string    `json:"buyerName"`
	BuyerContact    string    `json:"buyerContact,omitempty"`
	QuantitySold    float64   `json:"quantitySold"`
	SaleRate        float64   `json:"saleRate"`
	TotalSaleAmount float64   `json:"totalSaleAmount"`
	AmountReceived  float64   `json:"amountReceived"`
	PendingBalance  float64   `json:"pendingBalance"`
	SaleDate        time.Time `json:"saleDate,omitzero"`
}

// Payment records money received from the buyer (IsIncoming) or paid to the supplier.
type Payment struct {
	ID              string      `json:"id"`
	Date            time.Time   `json:"date,omitzero"`
	Amount          float64     `json:"amount"`
	Mode            PaymentMode `json:"mode"`
	Counterparty    string      `json:"counterparty"`
	IsIncoming      bool        `json:"isIncoming"`
	Notes           string      `json:"notes,omitempty"`
	ReferenceNumber string      `json:"referenceNumber,omitempty"`
}

type Note struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date,omitzero"`
	Content string    `json:"content"`
}

// Attachment references binary content by data URI or external URL.
type Attachment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	URI         string    `json:"uri"`
	Date        time.Time `json:"date,omitzero"`
	Description string    `json:"description,omitempty"`
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (t *Transaction) Clone() *Transaction {
	c := *t

	if t.LoadBuy != nil {
		b := *t.LoadBuy
		c.LoadBuy = &b
	}

	if t.Transportation != nil {
		tr := *t.Transportation
		c.Transportation = &tr
	}

	if t.LoadSold != nil {
		s := *t.LoadSold
		c.LoadSold = &s
	}

	if t.Payments != nil {
		c.Payments = append([]Payment{}, t.Payments...)
	}

	if t.Notes != nil {
		c.Notes = append([]Note{}, t.Notes...)
	}

	if t.Attachments != nil {
		c.Attachments = append([]Attachment{}, t.Attachments...)
	}

	return &c
}
