package api

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"powersim/adapters/simdata"
	"powersim/adapters/stats/sigtest"
	"powersim/domain/core"
	"powersim/domain/design"
	"powersim/ports"
)

// buildGenerator maps a DesignRequest onto a concrete dataset generator
func buildGenerator(req DesignRequest) (ports.DatasetGenerator, error) {
	switch req.Type {
	case "independent_groups":
		return simdata.NewIndependentGroups(design.IndependentGroupsSpec{Groups: req.Groups}), nil

	case "within_subject":
		k := len(req.Conditions)
		if len(req.Covariance) != k {
			return nil, core.NewParameterError("covariance", fmt.Sprintf("got %d rows for %d conditions", len(req.Covariance), k))
		}
		sym := mat.NewSymDense(k, nil)
		for i, row := range req.Covariance {
			if len(row) != k {
				return nil, core.NewParameterError("covariance", fmt.Sprintf("row %d has %d entries, need %d", i, len(row), k))
			}
			for j := i; j < k; j++ {
				if row[j] != req.Covariance[j][i] {
					return nil, core.NewParameterError("covariance", "matrix is not symmetric")
				}
				sym.SetSym(i, j, row[j])
			}
		}
		return simdata.NewWithinSubject(design.WithinSubjectSpec{
			Conditions:  req.Conditions,
			Means:       req.Means,
			Covariance:  sym,
			ResidualSD:  req.ResidualSD,
			TrialCounts: req.TrialCounts,
		}), nil

	default:
		return nil, core.NewParameterError("design.type", fmt.Sprintf("unknown design %q", req.Type))
	}
}

// buildTest maps a TestRequest onto a concrete significance test
func buildTest(req TestRequest) (ports.SignificanceTest, error) {
	switch req.Type {
	case "one_sample_t":
		return sigtest.OneSampleT{Condition: req.Condition, Mu0: req.Mu0}, nil
	case "two_sample_t":
		if req.A == "" || req.B == "" {
			return nil, core.NewParameterError("test", "two_sample_t requires conditions a and b")
		}
		return sigtest.TwoSampleT{A: req.A, B: req.B}, nil
	case "paired_t":
		if req.A == "" || req.B == "" {
			return nil, core.NewParameterError("test", "paired_t requires conditions a and b")
		}
		return sigtest.PairedT{A: req.A, B: req.B}, nil
	case "one_way_anova":
		return sigtest.OneWayANOVA{Conditions: req.Groups}, nil
	default:
		return nil, core.NewParameterError("test.type", fmt.Sprintf("unknown test %q", req.Type))
	}
}
