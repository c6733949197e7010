package query

import "github.com/MrJamesThe3rd/tradebook/internal/trade"

// Summary aggregates the money position of a set of trades.
type Summary struct {
	Count       int                  `json:"count"`
	ByStatus    map[trade.Status]int `json:"byStatus"`
	Purchases   float64              `json:"purchases"`
	Sales       float64              `json:"sales"`
	Transport   float64              `json:"transport"`
	Payable     float64              `json:"payable"`
	Receivable  float64              `json:"receivable"`
	GrossMargin float64              `json:"grossMargin"`
	PaymentsIn  float64              `json:"paymentsIn"`
	PaymentsOut float64              `json:"paymentsOut"`
}

// Summarize totals txs. Cancelled trades are counted but left out of the money figures.
func Summarize(txs []*trade.Transaction) Summary {
	s := Summary{ByStatus: make(map[trade.Status]int)}

	for _, tx := range txs {
		s.Count++
		s.ByStatus[tx.Status.Effective()]++

		if tx.Status == trade.StatusCancelled {
			continue
		}

		if tx.LoadBuy != nil {
			s.Purchases += tx.LoadBuy.TotalCost
			s.Payable += tx.LoadBuy.Balance
		}

		if tx.LoadSold != nil {
			s.Sales += tx.LoadSold.TotalSaleAmount
			s.Receivable += tx.LoadSold.PendingBalance
		}

		if tx.Transportation != nil {
			s.Transport += tx.Transportation.Charges
		}

		for _, p := range tx.Payments {
			if p.IsIncoming {
				s.PaymentsIn += p.Amount
			} else {
				s.PaymentsOut += p.Amount
			}
		}
	}

	s.GrossMargin = s.Sales - s.Purchases - s.Transport

	return s
}
