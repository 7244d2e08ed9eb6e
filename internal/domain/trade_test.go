package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestChronological(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := []Trade{
		{ID: 3, Timestamp: base.Add(2 * time.Hour)},
		{ID: 2, Timestamp: base.Add(time.Hour)},
		{ID: 4, Timestamp: base.Add(time.Hour)},
		{ID: 1, Timestamp: base},
	}

	sorted := Chronological(trades)

	ids := make([]int64, 0, len(sorted))
	for _, tr := range sorted {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []int64{1, 2, 4, 3}, ids)
	// input is not reordered
	assert.Equal(t, int64(3), trades[0].ID)
}

func TestReadyState(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Portfolio{TotalValue: decimal.NewFromInt(1)}

	s := ReadyState(7, nil, p, at)

	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, uint64(7), s.Cycle)
	assert.NotNil(t, s.Trades)
	assert.Empty(t, s.Trades)
	assert.Same(t, p, s.Portfolio)
	assert.Empty(t, s.Message)
}

func TestErrorState_CarriesNoData(t *testing.T) {
	s := ErrorState(3, "failed")

	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, "failed", s.Message)
	assert.Nil(t, s.Trades)
	assert.Nil(t, s.Portfolio)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "loading", PhaseLoading.String())
	assert.Equal(t, "error", PhaseError.String())
	assert.Equal(t, "ready", PhaseReady.String())
}
