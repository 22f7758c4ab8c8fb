package contracts

import (
	"encoding/json"
	"testing"
	"time"
)

func TestModeValid(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeSafe, true},
		{ModeAggressive, true},
		{Mode("safe"), false},
		{Mode(""), false},
		{Mode("TURBO"), false},
	}

	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.want {
			t.Errorf("Mode(%q).Valid() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestSideValid(t *testing.T) {
	tests := []struct {
		side Side
		want bool
	}{
		{SideLong, true},
		{SideShort, true},
		{Side("long"), false},
		{Side(""), false},
	}

	for _, tt := range tests {
		if got := tt.side.Valid(); got != tt.want {
			t.Errorf("Side(%q).Valid() = %v, want %v", tt.side, got, tt.want)
		}
	}
}

func TestTradingOutcome_JSONRoundtrip(t *testing.T) {
	o := TradingOutcome{
		Symbol:     "NVDA",
		Side:       SideLong,
		EntryPrice: 800,
		ExitPrice:  812,
		EntryTime:  time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		ExitTime:   time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Mode:       ModeSafe,
		Outcome:    "closed",
		Features:   map[string]float64{"momentum_15m": 0.7},
		Score:      0.81,
		Timestamp:  time.Date(2026, 3, 15, 10, 0, 1, 0, time.UTC),
	}

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back TradingOutcome
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if back.Symbol != o.Symbol || back.Mode != o.Mode || back.Side != o.Side {
		t.Errorf("roundtrip mismatch: got %+v", back)
	}
	if back.Features["momentum_15m"] != 0.7 {
		t.Errorf("features lost in roundtrip: %+v", back.Features)
	}
}

func TestTrainResultHelpers(t *testing.T) {
	m := &ModelMetrics{ModelID: "safe_1"}

	r := Trained(m)
	if r.Status != TrainStatusTrained || r.Metrics != m {
		t.Errorf("Trained() = %+v", r)
	}

	r = InsufficientData("10 samples, need 200")
	if r.Status != TrainStatusInsufficientData || r.Reason == "" {
		t.Errorf("InsufficientData() = %+v", r)
	}

	r = BackendUnavailable()
	if r.Status != TrainStatusBackendUnavailable {
		t.Errorf("BackendUnavailable() = %+v", r)
	}
}
