package reference

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"powersim/domain/core"
)

func TestNoncentralFCDF_ZeroLambdaMatchesCentralF(t *testing.T) {
	cases := []struct{ x, d1, d2 float64 }{
		{0.5, 1, 10},
		{2.0, 2, 6},
		{3.2, 3, 57},
		{1.0, 5, 5},
	}
	for _, c := range cases {
		want := distuv.F{D1: c.d1, D2: c.d2}.CDF(c.x)
		got := NoncentralFCDF(c.x, c.d1, c.d2, 0)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("F(%v; %v,%v): got %v, want %v", c.x, c.d1, c.d2, got, want)
		}
	}
}

func TestNoncentralFCDF_SmallLambdaNearCentral(t *testing.T) {
	// The mixture is continuous in lambda; a tiny lambda must stay close
	// to the central CDF and strictly below it (mass shifts right).
	central := distuv.F{D1: 2, D2: 20}.CDF(1.5)
	shifted := NoncentralFCDF(1.5, 2, 20, 1e-6)
	if shifted >= central {
		t.Fatalf("noncentral CDF %v not below central %v", shifted, central)
	}
	if central-shifted > 1e-5 {
		t.Fatalf("discontinuity at lambda->0: central %v vs %v", central, shifted)
	}
}

func TestOneSampleTTestPower_NullEffectEqualsAlpha(t *testing.T) {
	p, err := OneSampleTTestPower(0, 5, 20, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p-0.05) > 1e-9 {
		t.Fatalf("power at zero effect should equal alpha, got %v", p)
	}
}

func TestOneSampleTTestPower_KnownScenario(t *testing.T) {
	// d = 3/5 = 0.6 with n = 20: R power.t.test(n=20, delta=3, sd=5,
	// type="one.sample") reports ~0.72
	p, err := OneSampleTTestPower(3, 5, 20, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p < 0.66 || p > 0.76 {
		t.Fatalf("one-sample power out of expected band: %v", p)
	}
}

func TestTwoSampleTTestPower_KnownScenario(t *testing.T) {
	// d = 0.6 with 20 per group: R power.t.test(n=20, delta=3, sd=5)
	// reports ~0.45
	p, err := TwoSampleTTestPower(3, 5, 20, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p < 0.40 || p > 0.51 {
		t.Fatalf("two-sample power out of expected band: %v", p)
	}
}

func TestPower_MonotoneInSampleSize(t *testing.T) {
	prev := 0.0
	for _, n := range []int{5, 10, 20, 40, 80, 160} {
		p, err := OneSampleTTestPower(0.5, 1, n, 0.05)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if p < prev {
			t.Fatalf("power decreased from %v to %v at n=%d", prev, p, n)
		}
		if p < 0 || p > 1 {
			t.Fatalf("power %v outside [0,1] at n=%d", p, n)
		}
		prev = p
	}
	if prev < 0.99 {
		t.Fatalf("expected near-certain rejection at n=160 for d=0.5, got %v", prev)
	}
}

func TestOneWayANOVAPower(t *testing.T) {
	// Equal means: the F-test rejects at rate alpha
	p, err := OneWayANOVAPower([]float64{1, 1, 1}, 2, 15, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p-0.05) > 1e-9 {
		t.Fatalf("ANOVA power at equal means should equal alpha, got %v", p)
	}

	// Spread means raise power; a wide spread with n=50 is near certain
	small, err := OneWayANOVAPower([]float64{0, 0.2, 0.4}, 1, 10, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	large, err := OneWayANOVAPower([]float64{0, 1, 2}, 1, 50, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if small >= large {
		t.Fatalf("expected power to grow with effect and n: %v vs %v", small, large)
	}
	if large < 0.999 {
		t.Fatalf("expected near-certain rejection, got %v", large)
	}
}

func TestPower_InvalidParameters(t *testing.T) {
	if _, err := OneSampleTTestPower(1, 0, 20, 0.05); !core.IsInvalidParameter(err) {
		t.Fatalf("expected ErrInvalidParameter for sd=0, got %v", err)
	}
	if _, err := OneSampleTTestPower(1, 1, 1, 0.05); !core.IsInvalidParameter(err) {
		t.Fatalf("expected ErrInvalidParameter for n=1, got %v", err)
	}
	if _, err := OneSampleTTestPower(1, 1, 20, 1.5); !core.IsInvalidParameter(err) {
		t.Fatalf("expected ErrInvalidParameter for alpha=1.5, got %v", err)
	}
	if _, err := OneWayANOVAPower([]float64{1}, 1, 10, 0.05); !core.IsInvalidParameter(err) {
		t.Fatalf("expected ErrInvalidParameter for single group, got %v", err)
	}
}
