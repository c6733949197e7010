package trade

import (
	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// Dates arrive as YYYY-MM-DD or RFC 3339 strings and are parsed by form.ParseDate.

type createRequest struct {
	ID       string           `json:"id" validate:"omitempty,max=64"`
	Name     string           `json:"name" validate:"max=200"`
	Date     string           `json:"date"`
	Purchase *purchaseRequest `json:"loadBuy"`
}

type purchaseRequest struct {
	SupplierName    string  `json:"supplierName" validate:"required"`
	SupplierContact string  `json:"supplierContact"`
	GoodsName       string  `json:"goodsName" validate:"required"`
	Quantity        float64 `json:"quantity" validate:"gte=0"`
	Unit            string  `json:"unit"`
	PurchaseRate    float64 `json:"purchaseRate" validate:"gte=0"`
	AmountPaid      float64 `json:"amountPaid" validate:"gte=0"`
	PurchaseDate    string  `json:"purchaseDate"`
}

func (p purchaseRequest) params() (trade.PurchaseParams, error) {
	date, err := form.ParseDate(p.PurchaseDate)
	if err != nil {
		return trade.PurchaseParams{}, err
	}

	return trade.PurchaseParams{
		SupplierName:    p.SupplierName,
		SupplierContact: p.SupplierContact,
		GoodsName:       p.GoodsName,
		Quantity:        p.Quantity,
		Unit:            p.Unit,
		PurchaseRate:    p.PurchaseRate,
		AmountPaid:      p.AmountPaid,
		PurchaseDate:    date,
	}, nil
}

type transportRequest struct {
	VehicleNumber string  `json:"vehicleNumber" validate:"required"`
	DriverName    string  `json:"driverName"`
	DriverContact string  `json:"driverContact"`
	EmptyWeight   float64 `json:"emptyWeight" validate:"gte=0"`
	LoadedWeight  float64 `json:"loadedWeight" validate:"gte=0"`
	NetWeight     float64 `json:"netWeight" validate:"gte=0"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Charges       float64 `json:"charges" validate:"gte=0"`
	Notes         string  `json:"notes"`
	DepartureDate string  `json:"departureDate"`
	ArrivalDate   string  `json:"arrivalDate"`
}

func (t transportRequest) leg() (trade.Transportation, error) {
	departure, err := form.ParseDate(t.DepartureDate)
	if err != nil {
		return trade.Transportation{}, err
	}

	arrival, err := form.ParseDate(t.ArrivalDate)
	if err != nil {
		return trade.Transportation{}, err
	}

	net := t.NetWeight
	if net == 0 && t.LoadedWeight > t.EmptyWeight {
		net = t.LoadedWeight - t.EmptyWeight
	}

	return trade.Transportation{
		VehicleNumber: t.VehicleNumber,
		DriverName:    t.DriverName,
		DriverContact: t.DriverContact,
		EmptyWeight:   t.EmptyWeight,
		LoadedWeight:  t.LoadedWeight,
		NetWeight:     net,
		Origin:        t.Origin,
		Destination:   t.Destination,
		Charges:       t.Charges,
		Notes:         t.Notes,
		DepartureDate: departure,
		ArrivalDate:   arrival,
	}, nil
}

type saleRequest struct {
	BuyerName      string  `json:"buyerName" validate:"required"`
	BuyerContact   string  `json:"buyerContact"`
	QuantitySold   float64 `json:"quantitySold" validate:"gte=0"`
	SaleRate       float64 `json:"saleRate" validate:"gte=0"`
	AmountReceived float64 `json:"amountReceived" validate:"gte=0"`
	SaleDate       string  `json:"saleDate"`
}

func (s saleRequest) params() (trade.SaleParams, error) {
	date, err := form.ParseDate(s.SaleDate)
	if err != nil {
		return trade.SaleParams{}, err
	}

	return trade.SaleParams{
		BuyerName:      s.BuyerName,
		BuyerContact:   s.BuyerContact,
		QuantitySold:   s.QuantitySold,
		SaleRate:       s.SaleRate,
		AmountReceived: s.AmountReceived,
		SaleDate:       date,
	}, nil
}

type paymentRequest struct {
	Date            string  `json:"date"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	Mode            string  `json:"mode" validate:"omitempty,oneof=cash bank upi cheque other"`
	Counterparty    string  `json:"counterparty"`
	IsIncoming      bool    `json:"isIncoming"`
	Notes           string  `json:"notes"`
	ReferenceNumber string  `json:"referenceNumber"`
}

func (p paymentRequest) params() (trade.PaymentParams, error) {
	date, err := form.ParseDate(p.Date)
	if err != nil {
		return trade.PaymentParams{}, err
	}

	return trade.PaymentParams{
		Date:            date,
		Amount:          p.Amount,
		Mode:            trade.PaymentMode(p.Mode),
		Counterparty:    p.Counterparty,
		IsIncoming:      p.IsIncoming,
		Notes:           p.Notes,
		ReferenceNumber: p.ReferenceNumber,
	}, nil
}

type replacePaymentsRequest struct {
	Payments []trade.Payment `json:"payments" validate:"dive"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending cancelled"`
}

type noteRequest struct {
	Content string `json:"content" validate:"required"`
}

type attachmentRequest struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type"`
	URI         string `json:"uri" validate:"required"`
	Description string `json:"description"`
}

type listResponse struct {
	Transactions []*trade.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

type goodsResponse struct {
	Goods []string `json:"goods"`
}
