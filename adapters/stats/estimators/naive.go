// Package estimators implements the three treatment-effect estimators:
// the naive post-period comparison, the CUPED covariate-adjusted
// comparison, and difference-in-differences. Each estimator is a pure
// function of the user records and summaries it is handed; degenerate
// inputs degrade to a neutral zero-effect result instead of an error.
package estimators

import (
	"math"

	"github.com/SankaiAI/data-learning-lab/domain/experiment"
	"github.com/SankaiAI/data-learning-lab/internal/numeric"
)

// fallbackVarianceFactor approximates an arm's variance as 0.5*mean when
// user-level records are not supplied. A documented simplification, used
// only on that path.
const fallbackVarianceFactor = 0.5

// Naive compares the two arms' post-period rates directly: a z-test on
// independent proportions, or a Welch t-test on continuous means.
type Naive struct{}

// NewNaive creates a naive estimator.
func NewNaive() *Naive {
	return &Naive{}
}

// Name returns the estimator name.
func (e *Naive) Name() string { return "naive" }

// Description returns a human-readable description.
func (e *Naive) Description() string {
	return "Post-period treatment/control comparison with no adjustment"
}

// Estimate computes the naive post-period effect. The user list is
// optional for continuous metrics: when present, per-arm variances come
// from the actual per-user post-period means; when absent, the 0.5*mean
// fallback applies.
func (e *Naive) Estimate(users []experiment.UserRecord, set experiment.SummarySet, m experiment.Metric) experiment.NaiveResult {
	return e.compare(users, set.Cell(experiment.ArmControl, experiment.PeriodPost),
		set.Cell(experiment.ArmTreatment, experiment.PeriodPost), m)
}

// CompareAt runs the identical comparison on an arbitrary period. The
// baseline-imbalance diagnostic uses it against the pre period.
func (e *Naive) CompareAt(users []experiment.UserRecord, set experiment.SummarySet, m experiment.Metric, p experiment.Period) experiment.NaiveResult {
	return e.compare(users, set.Cell(experiment.ArmControl, p), set.Cell(experiment.ArmTreatment, p), m)
}

func (e *Naive) compare(users []experiment.UserRecord, control, treatment experiment.Summary, m experiment.Metric) experiment.NaiveResult {
	result := experiment.NaiveResult{
		EffectEstimate:   experiment.NeutralEffect(),
		ControlValue:     control.Rate,
		TreatmentValue:   treatment.Rate,
		ControlSamples:   control.Count,
		TreatmentSamples: treatment.Count,
	}
	if control.Count == 0 || treatment.Count == 0 {
		return result
	}

	estimate := treatment.Rate - control.Rate
	var se, p float64
	if m.IsContinuous() {
		se, p = e.continuousTest(users, control, treatment, m, estimate)
	} else {
		se = numeric.ProportionDiffSE(control.Rate, control.Count, treatment.Rate, treatment.Count)
		p = pFromZ(estimate, se)
	}

	lower, upper := numeric.ConfidenceInterval(estimate, se, numeric.DefaultConfidence)
	result.EffectEstimate = experiment.EffectEstimate{
		Estimate:    estimate,
		StdErr:      se,
		CILower:     lower,
		CIUpper:     upper,
		PValue:      p,
		Significant: p < experiment.SignificanceLevel,
	}
	return result
}

func (e *Naive) continuousTest(users []experiment.UserRecord, control, treatment experiment.Summary, m experiment.Metric, estimate float64) (se, p float64) {
	varC, nC := armVariance(users, control, m)
	varT, nT := armVariance(users, treatment, m)

	se = numeric.WelchSE(varC, nC, varT, nT)
	df := numeric.WelchDF(varC, nC, varT, nT)
	if se == 0 {
		if estimate == 0 {
			return 0, 1
		}
		return 0, 0
	}
	return se, numeric.TwoSidedPFromT(estimate/se, df)
}

// armVariance returns an arm's variance and sample size for the Welch
// test: empirical over per-user post-period means when user records are
// available, otherwise the fallback heuristic over the aggregate mean.
func armVariance(users []experiment.UserRecord, s experiment.Summary, m experiment.Metric) (variance, n float64) {
	if len(users) > 0 {
		rates := experiment.UserRates(users, m, s.Arm, s.Period)
		if len(rates) > 1 {
			return numeric.Variance(rates), float64(len(rates))
		}
	}
	return fallbackVarianceFactor * math.Abs(s.Rate), s.Count
}

// Lift converts a naive result into a relative lift over the control
// value. A zero control value returns all zeros to keep NaN and Inf out
// of the report.
func (e *Naive) Lift(r experiment.NaiveResult) experiment.RelativeLift {
	if r.ControlValue == 0 {
		return experiment.RelativeLift{}
	}
	lift := r.Estimate / r.ControlValue
	scaledSE := r.StdErr / math.Abs(r.ControlValue)
	lower, upper := numeric.ConfidenceInterval(lift, scaledSE, numeric.DefaultConfidence)
	return experiment.RelativeLift{Lift: lift, CILower: lower, CIUpper: upper}
}

// pFromZ guards the division behind a z-score p-value: a zero standard
// error with a zero estimate is "no information" (p=1), while a nonzero
// estimate over a zero error is treated as certain.
func pFromZ(estimate, se float64) float64 {
	if se == 0 {
		if estimate == 0 {
			return 1
		}
		return 0
	}
	return numeric.TwoSidedPFromZ(estimate / se)
}
