package sigtest

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"powersim/domain/design"
	"powersim/ports"
)

// OneWayANOVA runs the F-test for a difference in means across two or more
// independent groups and returns the overall p-value for the group factor.
// Conditions == nil means "every condition present, in dataset order".
type OneWayANOVA struct {
	Conditions []design.Condition
}

// Name implements ports.SignificanceTest
func (t OneWayANOVA) Name() string {
	return "one_way_anova"
}

// PValue implements ports.SignificanceTest
func (t OneWayANOVA) PValue(ds design.Dataset) (float64, error) {
	conds := t.Conditions
	if conds == nil {
		conds = ds.Conditions()
	}
	if len(conds) < 2 {
		return 0, degenerate(t.Name(), fmt.Sprintf("need at least 2 groups, got %d", len(conds)))
	}

	groups := make([][]float64, len(conds))
	total := 0
	var grandSum float64
	for i, c := range conds {
		groups[i] = ds.ValuesFor(c)
		if len(groups[i]) < minGroupSize {
			return 0, degenerate(t.Name(), fmt.Sprintf("group %q needs at least %d observations, got %d", c, minGroupSize, len(groups[i])))
		}
		total += len(groups[i])
		for _, v := range groups[i] {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(total)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		d := m - grandMean
		ssBetween += float64(len(g)) * d * d
		for _, v := range g {
			ssWithin += (v - m) * (v - m)
		}
	}

	df1 := float64(len(groups) - 1)
	df2 := float64(total - len(groups))
	if ssWithin == 0 {
		return 0, degenerate(t.Name(), "zero within-group variance")
	}

	f := (ssBetween / df1) / (ssWithin / df2)
	dist := distuv.F{D1: df1, D2: df2}
	return 1 - dist.CDF(f), nil
}

var _ ports.SignificanceTest = OneWayANOVA{}
