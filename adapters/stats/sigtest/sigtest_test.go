package sigtest

import (
	"math"
	"testing"

	"powersim/domain/core"
	"powersim/domain/design"
)

func groupDataset(groups map[design.Condition][]float64) design.Dataset {
	var ds design.Dataset
	subject := 0
	// Deterministic insertion order for the two fixed labels used below
	for _, cond := range []design.Condition{"a", "b", "c"} {
		for _, v := range groups[cond] {
			subject++
			ds.Observations = append(ds.Observations, design.Observation{Subject: subject, Condition: cond, Value: v})
		}
	}
	return ds
}

func approx(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %.12f, want %.12f (tolerance %g)", got, want, tol)
	}
}

func TestOneSampleT_KnownPValue(t *testing.T) {
	// mean 2.5, sd sqrt(5/3), t = sqrt(15), df = 3
	// R: 2*pt(sqrt(15), 3, lower.tail=FALSE) = 0.03046627...
	ds := groupDataset(map[design.Condition][]float64{"a": {2, 1, 3, 4}})
	p, err := OneSampleT{Condition: "a"}.PValue(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, p, 0.0304662, 1e-5)
}

func TestOneSampleT_WholeDatasetWhenUnlabeled(t *testing.T) {
	ds := groupDataset(map[design.Condition][]float64{"a": {2, 1, 3, 4}})
	p, err := OneSampleT{}.PValue(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, p, 0.0304662, 1e-5)
}

func TestOneSampleT_NonZeroMu0(t *testing.T) {
	// Shifting by the sample mean gives t = 0, p = 1
	ds := groupDataset(map[design.Condition][]float64{"a": {2, 1, 3, 4}})
	p, err := OneSampleT{Condition: "a", Mu0: 2.5}.PValue(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, p, 1.0, 1e-12)
}

func TestTwoSampleT_KnownPValue(t *testing.T) {
	// Pooled two-sample t: t = -3.9703446152237674, df = 6,
	// p = 0.0073640592242113214 (matches R t.test(var.equal=TRUE))
	ds := groupDataset(map[design.Condition][]float64{
		"a": {2, 1, 3, 4},
		"b": {6, 5, 7, 9},
	})
	p, err := TwoSampleT{A: "a", B: "b"}.PValue(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, p, 0.0073640592242113214, 1e-9)
}

func TestPairedT_AggregatesTrialsPerSubject(t *testing.T) {
	// Subjects have several trials per condition; the paired test must use
	// subject means. Differences of means are {2, 1, 3, 4}, so the p-value
	// matches the known one-sample result above.
	var ds design.Dataset
	subjectA := [][]float64{{1, 3}, {0, 2}, {2, 4}, {3, 5}}  // means 2,1,3,4
	subjectB := [][]float64{{0, 0, 0}, {0, 0}, {0}, {0, 0}}  // means all 0
	for s := 0; s < 4; s++ {
		for _, v := range subjectA[s] {
			ds.Observations = append(ds.Observations, design.Observation{Subject: s + 1, Condition: "post", Value: v})
		}
		for _, v := range subjectB[s] {
			ds.Observations = append(ds.Observations, design.Observation{Subject: s + 1, Condition: "pre", Value: v})
		}
	}

	p, err := PairedT{A: "post", B: "pre"}.PValue(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, p, 0.0304662, 1e-5)
}

func TestOneWayANOVA_KnownPValue(t *testing.T) {
	// Three balanced groups with means 2,3,4 and within-SS 6: F(2,6) = 3.
	// The F(2,6) CDF has closed form 1-(1+f/3)^-3, so p = 2^-3 = 0.125.
	ds := groupDataset(map[design.Condition][]float64{
		"a": {1, 2, 3},
		"b": {2, 3, 4},
		"c": {3, 4, 5},
	})
	p, err := OneWayANOVA{}.PValue(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, p, 0.125, 1e-10)
}

func TestDegenerateSamples(t *testing.T) {
	tests := []struct {
		name string
		run  func() (float64, error)
	}{
		{
			"one-sample zero variance",
			func() (float64, error) {
				ds := groupDataset(map[design.Condition][]float64{"a": {5, 5, 5, 5}})
				return OneSampleT{Condition: "a"}.PValue(ds)
			},
		},
		{
			"two-sample zero pooled variance",
			func() (float64, error) {
				ds := groupDataset(map[design.Condition][]float64{"a": {1, 1}, "b": {2, 2}})
				return TwoSampleT{A: "a", B: "b"}.PValue(ds)
			},
		},
		{
			"paired constant differences",
			func() (float64, error) {
				// Every subject improves by exactly 1: zero difference variance
				ds := design.Dataset{Observations: []design.Observation{
					{Subject: 1, Condition: "a", Value: 1}, {Subject: 1, Condition: "b", Value: 2},
					{Subject: 2, Condition: "a", Value: 2}, {Subject: 2, Condition: "b", Value: 3},
					{Subject: 3, Condition: "a", Value: 3}, {Subject: 3, Condition: "b", Value: 4},
				}}
				return PairedT{A: "a", B: "b"}.PValue(ds)
			},
		},
		{
			"anova zero within-group variance",
			func() (float64, error) {
				ds := groupDataset(map[design.Condition][]float64{"a": {1, 1}, "b": {2, 2}, "c": {3, 3}})
				return OneWayANOVA{}.PValue(ds)
			},
		},
		{
			"one-sample too small",
			func() (float64, error) {
				ds := groupDataset(map[design.Condition][]float64{"a": {1}})
				return OneSampleT{Condition: "a"}.PValue(ds)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			if !core.IsDegenerateSample(err) {
				t.Fatalf("expected ErrDegenerateSample, got %v", err)
			}
		})
	}
}

func TestPValuesInUnitInterval(t *testing.T) {
	ds := groupDataset(map[design.Condition][]float64{
		"a": {0.3, -1.2, 0.8, 2.1, -0.4},
		"b": {1.1, 0.2, -0.6, 1.9, 0.7},
		"c": {-0.2, 0.5, 1.4, -1.1, 0.9},
	})
	tests := []struct {
		name string
		test interface {
			PValue(design.Dataset) (float64, error)
		}
	}{
		{"one sample", OneSampleT{Condition: "a"}},
		{"two sample", TwoSampleT{A: "a", B: "b"}},
		{"anova", OneWayANOVA{}},
	}
	for _, tt := range tests {
		p, err := tt.test.PValue(ds)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if p < 0 || p > 1 {
			t.Fatalf("%s: p-value %v outside [0,1]", tt.name, p)
		}
	}
}
