package domain

import "time"

// Phase identifies the active variant of ViewState.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
	PhaseReady
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ViewState is the tagged union the dashboard renders from.
// Only the fields of the active Phase are populated: Message for PhaseError,
// Trades, Portfolio and UpdatedAt for PhaseReady.
type ViewState struct {
	Phase     Phase
	Cycle     uint64
	Message   string
	Trades    []Trade
	Portfolio *Portfolio
	UpdatedAt time.Time
}

// IdleState is the state before the first fetch cycle.
func IdleState() ViewState {
	return ViewState{Phase: PhaseIdle}
}

// LoadingState marks the start of fetch cycle.
func LoadingState(cycle uint64) ViewState {
	return ViewState{Phase: PhaseLoading, Cycle: cycle}
}

// ErrorState carries a user-safe message. Any data of previous cycles is dropped.
func ErrorState(cycle uint64, message string) ViewState {
	return ViewState{Phase: PhaseError, Cycle: cycle, Message: message}
}

// ReadyState holds a complete snapshot of both resources.
func ReadyState(cycle uint64, trades []Trade, portfolio *Portfolio, at time.Time) ViewState {
	if trades == nil {
		trades = []Trade{}
	}
	return ViewState{
		Phase:     PhaseReady,
		Cycle:     cycle,
		Trades:    trades,
		Portfolio: portfolio,
		UpdatedAt: at,
	}
}
