package domain

import "github.com/shopspring/decimal"

// Portfolio aggregate account metrics. Singleton per fetch.
type Portfolio struct {
	TotalValue  decimal.Decimal `json:"total_value"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	ProfitLoss  decimal.Decimal `json:"profit_loss"`
}

// ChartPoint single point of the profit/loss chart.
type ChartPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}
