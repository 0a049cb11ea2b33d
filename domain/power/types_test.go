package power

import (
	"encoding/json"
	"math"
	"testing"

	"powersim/domain/core"
	"powersim/domain/design"
)

func point(n int, p float64, reps int) CurvePoint {
	return CurvePoint{Size: design.Size{Subjects: n}, Power: p, Replications: reps}
}

func TestMinimumSize_FirstQualifying(t *testing.T) {
	// Deliberately non-monotonic around the threshold: Monte Carlo noise
	// can produce exactly this shape, and the scan must not assume
	// monotonicity.
	curve := Curve{Alpha: 0.05, Points: []CurvePoint{
		point(10, 0.42, 1000),
		point(20, 0.81, 1000),
		point(30, 0.79, 1000),
		point(40, 0.92, 1000),
	}}

	size, err := curve.MinimumSize(0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size.Subjects != 20 {
		t.Fatalf("expected first qualifying size 20, got %d", size.Subjects)
	}
}

func TestMinimumSize_ThresholdNotReached(t *testing.T) {
	// Grid of small sizes where true power stays far below the target
	curve := Curve{Alpha: 0.05, Points: []CurvePoint{
		point(2, 0.06, 1000),
		point(4, 0.09, 1000),
		point(6, 0.14, 1000),
		point(8, 0.21, 1000),
		point(10, 0.28, 1000),
	}}

	_, err := curve.MinimumSize(0.8)
	if !core.IsThresholdNotReached(err) {
		t.Fatalf("expected ErrThresholdNotReached, got %v", err)
	}
}

func TestMinimumSize_SkipsUndefinedPoints(t *testing.T) {
	undefined := CurvePoint{Size: design.Size{Subjects: 5}, Power: math.NaN(), Replications: 0, Excluded: 1000}
	curve := Curve{Alpha: 0.05, Points: []CurvePoint{
		undefined,
		point(10, 0.85, 1000),
	}}

	size, err := curve.MinimumSize(0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size.Subjects != 10 {
		t.Fatalf("expected size 10, got %d", size.Subjects)
	}
}

func TestCurvePointJSONRoundTrip(t *testing.T) {
	undefined := CurvePoint{Size: design.Size{Subjects: 5}, Power: math.NaN(), Excluded: 100}
	data, err := json.Marshal(undefined)
	if err != nil {
		t.Fatalf("marshal with NaN power: %v", err)
	}

	var back CurvePoint
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !math.IsNaN(back.Power) {
		t.Fatalf("expected NaN power to round-trip via null, got %v", back.Power)
	}
	if back.Excluded != 100 {
		t.Fatalf("expected excluded count 100, got %d", back.Excluded)
	}

	defined := point(20, 0.5, 400)
	data, err = json.Marshal(defined)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != defined {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, defined)
	}
}
