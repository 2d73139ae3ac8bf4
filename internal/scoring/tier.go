package scoring

import "fmt"

// Tier is the discrete priority bucket derived from the total score.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
	TierReject Tier = "REJECT"
)

// Thresholds holds the tier boundaries. They are data, not constants, so the
// scorer stays pure and testable against arbitrary sets.
type Thresholds struct {
	Low    float64 `mapstructure:"low"`
	Medium float64 `mapstructure:"medium"`
	High   float64 `mapstructure:"high"`
}

// DefaultThresholds returns the standard boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 30, Medium: 50, High: 75}
}

// Validate rejects threshold sets that are not strictly ordered.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.Low >= t.Medium || t.Medium >= t.High || t.High > 100 {
		return fmt.Errorf("thresholds must satisfy 0 <= low < medium < high <= 100, got %+v", t)
	}
	return nil
}

// TierFor maps a total score onto its tier. The mapping is monotonic: a
// higher score never yields a lower tier.
func (t Thresholds) TierFor(total float64) Tier {
	switch {
	case total >= t.High:
		return TierHigh
	case total >= t.Medium:
		return TierMedium
	case total >= t.Low:
		return TierLow
	default:
		return TierReject
	}
}
