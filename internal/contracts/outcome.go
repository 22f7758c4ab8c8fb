package contracts

import "time"

// Mode is the trading mode a model is trained for.
type Mode string

const (
	ModeSafe       Mode = "SAFE"
	ModeAggressive Mode = "AGGRESSIVE"
)

// AllModes lists every mode the lifecycle manages.
var AllModes = []Mode{ModeSafe, ModeAggressive}

// Valid reports whether the mode is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeSafe || m == ModeAggressive
}

// Side is the direction of a trade.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Valid reports whether the side is one of the known sides.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// TradingOutcome is a realized trade result as reported by the execution
// system. Immutable once written; owned by the outcome store.
type TradingOutcome struct {
	Symbol     string             `json:"symbol"`
	Side       Side               `json:"side"`
	EntryPrice float64            `json:"entry_price"`
	ExitPrice  float64            `json:"exit_price"`
	EntryTime  time.Time          `json:"entry_time"`
	ExitTime   time.Time          `json:"exit_time"`
	Mode       Mode               `json:"mode"`
	Outcome    string             `json:"outcome"` // e.g. "+1R", "-1R", "time_stop"
	Features   map[string]float64 `json:"features"`
	Score      float64            `json:"score"` // prediction score at decision time
	Timestamp  time.Time          `json:"timestamp"`
}
