package estimators

import (
	"math"

	"github.com/SankaiAI/data-learning-lab/domain/experiment"
	"github.com/SankaiAI/data-learning-lab/internal/numeric"
)

// DiD estimates the treatment effect as each arm's own pre-to-post change
// differenced across arms, removing any shared time trend. It works off
// the four aggregate summaries only, so its standard error is a coarser
// approximation than CUPED's user-level one.
type DiD struct{}

// NewDiD creates a difference-in-differences estimator.
func NewDiD() *DiD {
	return &DiD{}
}

// Name returns the estimator name.
func (e *DiD) Name() string { return "did" }

// Description returns a human-readable description.
func (e *DiD) Description() string {
	return "Difference-in-differences over the four arm/period aggregates"
}

// Estimate computes (treatmentPost - treatmentPre) - (controlPost - controlPre).
func (e *DiD) Estimate(set experiment.SummarySet, m experiment.Metric) experiment.DiDResult {
	cPre := set.ControlPre
	cPost := set.ControlPost
	tPre := set.TreatmentPre
	tPost := set.TreatmentPost

	result := experiment.DiDResult{
		EffectEstimate: experiment.NeutralEffect(),
		ControlPre:     cPre.Rate,
		ControlPost:    cPost.Rate,
		TreatmentPre:   tPre.Rate,
		TreatmentPost:  tPost.Rate,
		ControlDelta:   cPost.Rate - cPre.Rate,
		TreatmentDelta: tPost.Rate - tPre.Rate,
	}
	if hasEmptyCell(set) {
		return result
	}

	estimate := result.TreatmentDelta - result.ControlDelta
	var se float64
	if m.IsContinuous() {
		se = math.Sqrt(continuousArmVarianceProxy(cPre, cPost) + continuousArmVarianceProxy(tPre, tPost))
	} else {
		seC := pooledProportionSE(cPre, cPost)
		seT := pooledProportionSE(tPre, tPost)
		se = math.Sqrt(seC*seC + seT*seT)
	}
	p := pFromZ(estimate, se)

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

// Regression restates the four summary rates as OLS-style coefficients of
// Y = a + b1*Treat + b2*Post + b3*(Treat x Post). Being an algebraic
// identity, the interaction coefficient matches Estimate bit for bit; an
// empty cell zeroes the coefficients the same way it neutralizes Estimate.
func (e *DiD) Regression(set experiment.SummarySet) experiment.DiDRegression {
	if hasEmptyCell(set) {
		return experiment.DiDRegression{}
	}
	cPre := set.ControlPre.Rate
	cPost := set.ControlPost.Rate
	tPre := set.TreatmentPre.Rate
	tPost := set.TreatmentPost.Rate
	return experiment.DiDRegression{
		Intercept:       cPre,
		TreatCoef:       tPre - cPre,
		PostCoef:        cPost - cPre,
		InteractionCoef: (tPost - tPre) - (cPost - cPre),
	}
}

// hasEmptyCell reports whether any of the four summaries saw no events.
func hasEmptyCell(set experiment.SummarySet) bool {
	return set.ControlPre.Count == 0 || set.ControlPost.Count == 0 ||
		set.TreatmentPre.Count == 0 || set.TreatmentPost.Count == 0
}

// pooledProportionSE pools an arm's successes and impressions across both
// periods into a single proportion, then combines the per-period error
// terms. Reuses aggregate counts instead of user-level variance.
func pooledProportionSE(pre, post experiment.Summary) float64 {
	total := pre.Count + post.Count
	if total == 0 || pre.Count == 0 || post.Count == 0 {
		return 0
	}
	pooled := (pre.Sum + post.Sum) / total
	return math.Sqrt(pooled * (1 - pooled) * (1/pre.Count + 1/post.Count))
}

// continuousArmVarianceProxy scales the 0.5*mean variance heuristic over
// the average of an arm's pre and post means by the inverse counts. Not a
// rigorous variance estimator; a known limitation of the aggregate-only
// DiD path.
func continuousArmVarianceProxy(pre, post experiment.Summary) float64 {
	if pre.Count == 0 || post.Count == 0 {
		return 0
	}
	proxy := fallbackVarianceFactor * math.Abs(pre.Rate+post.Rate) / 2
	return proxy/pre.Count + proxy/post.Count
}
