package contracts

import "time"

// DriftReport is the result of comparing current feature data against a
// frozen reference snapshot using the population stability index.
type DriftReport struct {
	Scores        map[string]float64 `json:"scores"` // per-feature PSI
	MaxScore      float64            `json:"max_score"`
	MaxFeature    string             `json:"max_feature"`
	Threshold     float64            `json:"threshold"`
	DriftDetected bool               `json:"drift_detected"`
	CheckedAt     time.Time          `json:"checked_at"`
}

// ArmSnapshot is a read-only view of one bandit arm.
type ArmSnapshot struct {
	Strategy   string  `json:"strategy"`
	Alpha      float64 `json:"alpha"`
	Beta       float64 `json:"beta"`
	WinRate    float64 `json:"win_rate"`   // alpha / (alpha + beta)
	Confidence float64 `json:"confidence"` // alpha + beta
}
