package trade

import "math"

// finite maps NaN and ±Inf to 0 so a bad input can never leak into a total.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}

// RecomputePurchase refreshes TotalCost and Balance from Quantity, PurchaseRate and AmountPaid.
func RecomputePurchase(b *LoadBuy) {
	if b == nil {
		return
	}

	b.Quantity = finite(b.Quantity)
	b.PurchaseRate = finite(b.PurchaseRate)
	b.AmountPaid = finite(b.AmountPaid)

	b.TotalCost = finite(b.Quantity * b.PurchaseRate)
	b.Balance = finite(b.TotalCost - b.AmountPaid)
}

// RecomputeSale refreshes TotalSaleAmount and PendingBalance.
func RecomputeSale(s *LoadSold) {
	if s == nil {
		return
	}

	s.QuantitySold = finite(s.QuantitySold)
	s.SaleRate = finite(s.SaleRate)
	s.AmountReceived = finite(s.AmountReceived)

	s.TotalSaleAmount = finite(s.QuantitySold * s.SaleRate)
	s.PendingBalance = finite(s.TotalSaleAmount - s.AmountReceived)
}

// ApplyPayment appends p and credits the matching leg. An outgoing payment
// without a purchase leg (or an incoming one without a sale leg) is only recorded.
func ApplyPayment(tx *Transaction, p Payment) {
	p.Amount = finite(p.Amount)
	tx.Payments = append(tx.Payments, p)

	switch {
	case p.IsIncoming && tx.LoadSold != nil:
		tx.LoadSold.AmountReceived += p.Amount
		RecomputeSale(tx.LoadSold)
	case !p.IsIncoming && tx.LoadBuy != nil:
		tx.LoadBuy.AmountPaid += p.Amount
		RecomputePurchase(tx.LoadBuy)
	}

	tx.Status = EvaluateCompletion(tx)
}

// EvaluateCompletion returns completed once both legs exist and are fully settled.
// Otherwise the current status is returned unchanged, so a completed trade is never
// reverted and a cancelled one is never completed.
func EvaluateCompletion(tx *Transaction) Status {
	if tx.Status == StatusCancelled {
		return tx.Status
	}

	if tx.LoadBuy == nil || tx.LoadSold == nil {
		return tx.Status
	}

	if tx.LoadBuy.AmountPaid >= tx.LoadBuy.TotalCost && tx.LoadSold.AmountReceived >= tx.LoadSold.TotalSaleAmount {
		return StatusCompleted
	}

	return tx.Status
}

// Reconcile brings every derived field of tx in line with its inputs.
// All mutation paths run it before the record is written.
func Reconcile(tx *Transaction) {
	RecomputePurchase(tx.LoadBuy)
	RecomputeSale(tx.LoadSold)

	if tx.Transportation != nil {
		tx.Transportation.Charges = finite(tx.Transportation.Charges)
	}

	tx.TotalAmount = 0
	if tx.LoadBuy != nil {
		tx.TotalAmount = tx.LoadBuy.TotalCost
	}

	if tx.Status == "" {
		tx.Status = StatusPending
	}

	tx.Status = EvaluateCompletion(tx)
}
