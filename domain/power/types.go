package power

import (
	"encoding/json"
	"math"
	"time"

	"powersim/domain/core"
	"powersim/domain/design"
)

// GridPoint is one simulation cell's result: the p-value obtained for a
// single replication at a single swept size. Immutable once produced.
type GridPoint struct {
	Size        design.Size `json:"size"`
	Replication int         `json:"replication"`
	PValue      float64     `json:"p_value"`
	Degenerate  bool        `json:"degenerate,omitempty"`
}

// CurvePoint is the aggregate for one swept size: the empirical power and
// the denominator actually used (degenerate replications are excluded from
// both numerator and denominator).
type CurvePoint struct {
	Size         design.Size `json:"size"`
	Power        float64     `json:"power"`
	Replications int         `json:"replications"`
	Excluded     int         `json:"excluded,omitempty"`
}

// Defined reports whether the point carries a usable power estimate.
// A point where every replication was degenerate has Power = NaN.
func (p CurvePoint) Defined() bool {
	return p.Replications > 0 && !math.IsNaN(p.Power)
}

// curvePointJSON carries power as a pointer so an undefined estimate
// round-trips as null; encoding/json rejects NaN outright.
type curvePointJSON struct {
	Size         design.Size `json:"size"`
	Power        *float64    `json:"power"`
	Replications int         `json:"replications"`
	Excluded     int         `json:"excluded,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (p CurvePoint) MarshalJSON() ([]byte, error) {
	out := curvePointJSON{Size: p.Size, Replications: p.Replications, Excluded: p.Excluded}
	if !math.IsNaN(p.Power) {
		v := p.Power
		out.Power = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (p *CurvePoint) UnmarshalJSON(data []byte) error {
	var in curvePointJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.Size = in.Size
	p.Replications = in.Replications
	p.Excluded = in.Excluded
	if in.Power != nil {
		p.Power = *in.Power
	} else {
		p.Power = math.NaN()
	}
	return nil
}

// Curve maps the swept grid, in sweep order, to empirical power
type Curve struct {
	Alpha  float64      `json:"alpha"`
	Points []CurvePoint `json:"points"`
}

// MinimumSize scans the curve in grid order and returns the first size whose
// empirical power reaches the target. Monte Carlo noise can make the curve
// locally non-monotonic, so the scan stays linear rather than bisecting.
func (c Curve) MinimumSize(target float64) (design.Size, error) {
	for _, p := range c.Points {
		if !p.Defined() {
			continue
		}
		if p.Power >= target {
			return p.Size, nil
		}
	}
	return design.Size{}, core.ErrThresholdNotReached
}

// Run is the persistent unit of output: one estimated curve with the inputs
// needed to reproduce it. Everything else is discarded after aggregation.
type Run struct {
	ID           core.RunID `json:"id"`
	Name         string     `json:"name"`
	Design       string     `json:"design"`
	Test         string     `json:"test"`
	Seed         int64      `json:"seed"`
	Replications int        `json:"replications"`
	Curve        Curve      `json:"curve"`
	CreatedAt    time.Time  `json:"created_at"`
}
