package dashboard

import (
	"time"

	"github.com/vadiminshakov/marti-dashboard/internal/domain"
	"github.com/vadiminshakov/marti-dashboard/internal/format"
)

// Texts shared by every renderer.
const (
	// LoadingText shown while a fetch cycle is in flight.
	LoadingText = "Loading Dashboard Data..."
	// DefaultTitle of the page header.
	DefaultTitle = "AI Trading Dashboard"
	// EmptyChartText shown instead of an empty chart.
	EmptyChartText = "No profit data available to display chart."
	// EmptyTradesText shown instead of an empty trade table.
	EmptyTradesText = "No trades to display."
)

// View is the state narrowed for presentation components. Components receive
// only the slice they render and never the raw union.
type View struct {
	Phase      domain.Phase
	Cycle      uint64
	Message    string
	BackendURL string
	UpdatedAt  time.Time

	Portfolio *domain.Portfolio
	Chart     []domain.ChartPoint
	Trades    []domain.Trade
}

// NewView narrows s. Data is only exposed in the ready phase.
func NewView(s domain.ViewState, backendURL string, loc *time.Location) View {
	v := View{
		Phase:      s.Phase,
		Cycle:      s.Cycle,
		BackendURL: backendURL,
	}

	switch s.Phase {
	case domain.PhaseError:
		v.Message = s.Message
	case domain.PhaseReady:
		v.UpdatedAt = s.UpdatedAt
		v.Portfolio = s.Portfolio
		v.Trades = s.Trades
		v.Chart = ChartPoints(s.Trades, loc)
	}
	return v
}

// ChartPoints projects trades onto the profit/loss chart in chronological order.
// It is recomputed on every render and never cached.
func ChartPoints(trades []domain.Trade, loc *time.Location) []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(trades))
	for _, t := range domain.Chronological(trades) {
		points = append(points, domain.ChartPoint{
			Label: format.TimeLabel(t.Timestamp, loc),
			Value: t.ProfitLoss,
		})
	}
	return points
}
