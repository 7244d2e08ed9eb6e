// Package domain defines the records the dashboard reads from the trading backend
// and the view state it renders.
package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one executed trade as reported by the backend.
type Trade struct {
	ID         int64           `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	ProfitLoss decimal.Decimal `json:"profit_loss"`
}

// Chronological returns a copy of trades ordered by timestamp, oldest first.
// Trades with equal timestamps keep their relative order.
func Chronological(trades []Trade) []Trade {
	sorted := make([]Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
