package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/marti-dashboard/internal/domain"
)

func TestNewView_Ready(t *testing.T) {
	p := samplePortfolio()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := domain.ReadyState(4, sampleTrades(), &p, at)

	v := NewView(s, "http://localhost:8000", time.UTC)

	assert.Equal(t, domain.PhaseReady, v.Phase)
	assert.Equal(t, uint64(4), v.Cycle)
	assert.Equal(t, "http://localhost:8000", v.BackendURL)
	assert.Equal(t, at, v.UpdatedAt)
	assert.Equal(t, &p, v.Portfolio)
	assert.Equal(t, sampleTrades(), v.Trades)
	require.Len(t, v.Chart, 1)
	assert.Equal(t, "12:00:00 AM", v.Chart[0].Label)
	assert.True(t, v.Chart[0].Value.Equal(decimal.RequireFromString("25.5")))
}

func TestNewView_ErrorAndLoadingExposeNoData(t *testing.T) {
	v := NewView(domain.ErrorState(2, DefaultErrorMessage), "http://backend", time.UTC)
	assert.Equal(t, domain.PhaseError, v.Phase)
	assert.Equal(t, DefaultErrorMessage, v.Message)
	assert.Nil(t, v.Portfolio)
	assert.Nil(t, v.Trades)
	assert.Nil(t, v.Chart)

	v = NewView(domain.LoadingState(3), "http://backend", time.UTC)
	assert.Equal(t, domain.PhaseLoading, v.Phase)
	assert.Empty(t, v.Message)
	assert.Nil(t, v.Trades)
}

func TestChartPoints(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	// backend sends newest first
	trades := []domain.Trade{
		{ID: 2, Timestamp: base.Add(time.Hour), ProfitLoss: decimal.NewFromInt(-5)},
		{ID: 1, Timestamp: base, ProfitLoss: decimal.NewFromInt(10)},
	}

	points := ChartPoints(trades, time.UTC)

	require.Len(t, points, 2)
	assert.Equal(t, "9:00:00 AM", points[0].Label)
	assert.True(t, points[0].Value.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "10:00:00 AM", points[1].Label)
	assert.True(t, points[1].Value.Equal(decimal.NewFromInt(-5)))
}

func TestChartPoints_Empty(t *testing.T) {
	points := ChartPoints(nil, time.UTC)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}
