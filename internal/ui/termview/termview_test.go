package termview

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vadiminshakov/marti-dashboard/internal/dashboard"
	"github.com/vadiminshakov/marti-dashboard/internal/domain"
)

func scenario() ([]domain.Trade, *domain.Portfolio) {
	trades := []domain.Trade{{
		ID:         1,
		Timestamp:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Symbol:     "BTC/USDT",
		Side:       domain.SideBuy,
		Price:      decimal.NewFromInt(40000),
		Quantity:   decimal.RequireFromString("0.1"),
		ProfitLoss: decimal.RequireFromString("25.5"),
	}}
	p := &domain.Portfolio{
		TotalValue:  decimal.RequireFromString("10250.5"),
		CashBalance: decimal.RequireFromString("6250.5"),
		ProfitLoss:  decimal.RequireFromString("250.5"),
	}
	return trades, p
}

func TestPortfolioSummary(t *testing.T) {
	_, p := scenario()
	out := PortfolioSummary(p, "USD")

	assert.Contains(t, out, "$10,250.50")
	assert.Contains(t, out, "$6,250.50")
	assert.Contains(t, out, "$250.50")
	assert.Empty(t, PortfolioSummary(nil, "USD"))
}

func TestTradeTable(t *testing.T) {
	trades, _ := scenario()
	out := TradeTable(trades, "USD", time.UTC)

	for _, want := range []string{"1/1/2024, 12:00:00 AM", "BTC/USDT", "BUY", "$40,000.00", "0.1", "$25.50"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, TradeTable(nil, "USD", time.UTC), dashboard.EmptyTradesText)
}

func TestProfitChart(t *testing.T) {
	points := []domain.ChartPoint{
		{Label: "9:00:00 AM", Value: decimal.NewFromInt(-10)},
		{Label: "10:00:00 AM", Value: decimal.NewFromInt(10)},
	}
	out := ProfitChart(points)

	assert.Contains(t, out, "▁")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "9:00:00 AM → 10:00:00 AM")
	assert.Contains(t, ProfitChart(nil), dashboard.EmptyChartText)
}

func TestSparkLevel(t *testing.T) {
	lo, hi := decimal.NewFromInt(-10), decimal.NewFromInt(10)
	assert.Equal(t, 0, sparkLevel(lo, lo, hi))
	assert.Equal(t, len(sparks)-1, sparkLevel(hi, lo, hi))
	assert.Equal(t, (len(sparks)-1)/2, sparkLevel(decimal.NewFromInt(3), decimal.NewFromInt(3), decimal.NewFromInt(3)))
}

func TestStyles(t *testing.T) {
	assert.Equal(t, positiveStyle.GetForeground(), signStyle(decimal.Zero).GetForeground())
	assert.Equal(t, negativeStyle.GetForeground(), signStyle(decimal.NewFromInt(-1)).GetForeground())
	assert.Equal(t, positiveStyle.GetForeground(), sideStyle(domain.SideBuy).GetForeground())
	assert.Equal(t, negativeStyle.GetForeground(), sideStyle(domain.SideSell).GetForeground())
}

func TestPage(t *testing.T) {
	trades, p := scenario()

	loading := Page(dashboard.NewView(domain.LoadingState(1), "http://localhost:8000", time.UTC), Options{})
	assert.Contains(t, loading, dashboard.LoadingText)

	failed := Page(dashboard.NewView(domain.ErrorState(1, dashboard.DefaultErrorMessage), "http://localhost:8000", time.UTC), Options{})
	assert.Contains(t, failed, dashboard.DefaultErrorMessage)
	assert.Contains(t, failed, "http://localhost:8000")
	assert.NotContains(t, failed, "BTC/USDT")

	ready := Page(dashboard.NewView(domain.ReadyState(1, trades, p, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "http://localhost:8000", time.UTC), Options{Location: time.UTC})
	assert.Contains(t, ready, dashboard.DefaultTitle)
	assert.Contains(t, ready, "Recent Trades")
	assert.Equal(t, 1, strings.Count(ready, "BTC/USDT"))
}
