// Package diagnostics implements the sanity checks that decide whether
// each estimator's assumptions hold: sample-ratio mismatch, pre-period
// baseline imbalance, and the DiD parallel-trends check.
package diagnostics

import (
	"fmt"
	"math"

	"github.com/SankaiAI/data-learning-lab/adapters/stats/estimators"
	"github.com/SankaiAI/data-learning-lab/domain/experiment"
	"github.com/SankaiAI/data-learning-lab/internal/numeric"
)

const (
	// srmAlpha flags an allocation mismatch. Stricter than the estimator
	// significance level: a failed SRM invalidates the whole readout.
	srmAlpha = 0.01
	// baselineAlpha flags pre-period imbalance. Looser than the estimator
	// significance level: imbalance is a warning, not a hard failure.
	baselineAlpha = 0.10
	// expectedShare is the intended control allocation.
	expectedShare = 0.5

	// Parallel-trends tolerances: absolute percentage points for
	// proportion metrics, a fraction of the control pre-period value for
	// continuous metrics.
	proportionTrendThreshold = 0.02
	continuousTrendFraction  = 0.20
)

// Checker runs the three diagnostics.
type Checker struct {
	naive *estimators.Naive
}

// NewChecker creates a diagnostics checker.
func NewChecker() *Checker {
	return &Checker{naive: estimators.NewNaive()}
}

// SampleRatio checks the observed control/treatment user split against
// the intended 50/50 allocation with a one-degree-of-freedom chi-square
// statistic. The p-value uses the exp(-chi2/2) closed form; this is a
// documented approximation of the exact chi-square tail.
func (c *Checker) SampleRatio(users []experiment.UserRecord) experiment.SRMResult {
	var nControl, nTreatment int
	for i := range users {
		switch users[i].Arm {
		case experiment.ArmControl:
			nControl++
		case experiment.ArmTreatment:
			nTreatment++
		}
	}

	chi2, p := numeric.ChiSquareSplit(float64(nControl), float64(nTreatment), expectedShare)
	return experiment.SRMResult{
		ControlUsers:   nControl,
		TreatmentUsers: nTreatment,
		ChiSquared:     chi2,
		PValue:         p,
		Mismatch:       p < srmAlpha,
	}
}

// Baseline applies the naive comparison math to the pre-period summaries.
// A low p-value means the arms already differed before launch, which
// taints the naive post-period readout.
func (c *Checker) Baseline(users []experiment.UserRecord, set experiment.SummarySet, m experiment.Metric) experiment.BaselineResult {
	pre := c.naive.CompareAt(users, set, m, experiment.PeriodPre)
	return experiment.BaselineResult{
		Difference:        pre.Estimate,
		StdErr:            pre.StdErr,
		PValue:            pre.PValue,
		ImbalanceDetected: pre.PValue < baselineAlpha,
	}
}

// ParallelTrends compares the two arms' pre-period values against a
// metric-dependent tolerance. DiD is only credible when the arms were
// moving together before launch.
func (c *Checker) ParallelTrends(set experiment.SummarySet, m experiment.Metric) experiment.ParallelTrendsResult {
	controlPre := set.ControlPre.Rate
	treatmentPre := set.TreatmentPre.Rate
	diff := math.Abs(treatmentPre - controlPre)

	threshold := proportionTrendThreshold
	if m.IsContinuous() {
		threshold = continuousTrendFraction * math.Abs(controlPre)
	}

	result := experiment.ParallelTrendsResult{
		ControlPre:   controlPre,
		TreatmentPre: treatmentPre,
		Difference:   diff,
		Threshold:    threshold,
		IsParallel:   diff <= threshold,
	}
	if !result.IsParallel {
		result.Warning = fmt.Sprintf(
			"pre-period gap %.4f exceeds threshold %.4f; DiD parallel-trends assumption is questionable",
			diff, threshold)
	}
	return result
}
