package experiment

// SignificanceLevel is the fixed threshold for the Significant flag on
// every estimator result.
const SignificanceLevel = 0.05

// EffectEstimate is the shape every estimator shares: a treatment-minus-
// control point estimate with its standard error, two-sided confidence
// interval, p-value and a significance flag at the fixed 0.05 threshold.
// Degenerate inputs produce the neutral value (0 estimate, p 1, not
// significant) rather than an error.
type EffectEstimate struct {
	Estimate    float64 `json:"estimate"`
	StdErr      float64 `json:"std_err"`
	CILower     float64 `json:"ci_lower"`
	CIUpper     float64 `json:"ci_upper"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// NeutralEffect is the well-defined zero-effect result returned for
// degenerate inputs: no estimate, zero-width interval, p-value 1.
func NeutralEffect() EffectEstimate {
	return EffectEstimate{PValue: 1}
}

// NaiveResult is the post-period group comparison.
type NaiveResult struct {
	EffectEstimate
	ControlValue     float64 `json:"control_value"`
	TreatmentValue   float64 `json:"treatment_value"`
	ControlSamples   float64 `json:"control_samples"`
	TreatmentSamples float64 `json:"treatment_samples"`
}

// RelativeLift expresses the naive estimate as a fraction of the control
// arm's value, with an interval rescaled from the naive standard error.
type RelativeLift struct {
	Lift    float64 `json:"lift"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
}

// CUPEDResult carries the covariate-adjusted comparison plus the
// adjustment transparency numbers: theta and the variance before, after
// and reduced fraction.
type CUPEDResult struct {
	EffectEstimate
	Theta             float64 `json:"theta"`
	VarianceBefore    float64 `json:"variance_before"`
	VarianceAfter     float64 `json:"variance_after"`
	VarianceReduction float64 `json:"variance_reduction"`
	QualifyingUsers   int     `json:"qualifying_users"`
}

// DiDResult carries the difference-in-differences estimate plus the four
// raw period means and both pre-to-post deltas.
type DiDResult struct {
	EffectEstimate
	ControlPre     float64 `json:"control_pre"`
	ControlPost    float64 `json:"control_post"`
	TreatmentPre   float64 `json:"treatment_pre"`
	TreatmentPost  float64 `json:"treatment_post"`
	ControlDelta   float64 `json:"control_delta"`
	TreatmentDelta float64 `json:"treatment_delta"`
}

// DiDRegression expresses the four summary values as the coefficients of
// Y = a + b1*Treat + b2*Post + b3*(Treat x Post). It is an algebraic
// identity over the summaries, not a fitted regression, and its
// interaction coefficient equals the direct DiD estimate exactly.
type DiDRegression struct {
	Intercept       float64 `json:"intercept"`
	TreatCoef       float64 `json:"treat_coef"`
	PostCoef        float64 `json:"post_coef"`
	InteractionCoef float64 `json:"interaction_coef"`
}

// SRMResult is the sample-ratio-mismatch diagnostic against the intended
// 50/50 allocation.
type SRMResult struct {
	ControlUsers   int     `json:"control_users"`
	TreatmentUsers int     `json:"treatment_users"`
	ChiSquared     float64 `json:"chi_squared"`
	PValue         float64 `json:"p_value"`
	Mismatch       bool    `json:"mismatch"`
}

// BaselineResult is the pre-period imbalance diagnostic. It reuses the
// naive comparison math on the pre period and flags at p < 0.10, a softer
// threshold than the main significance cutoff: pre-period imbalance is a
// warning signal, not a hard failure.
type BaselineResult struct {
	Difference        float64 `json:"difference"`
	StdErr            float64 `json:"std_err"`
	PValue            float64 `json:"p_value"`
	ImbalanceDetected bool    `json:"imbalance_detected"`
}

// ParallelTrendsResult is the DiD assumption diagnostic comparing the two
// arms' pre-period values. Warning is empty when the trends are parallel.
type ParallelTrendsResult struct {
	ControlPre   float64 `json:"control_pre"`
	TreatmentPre float64 `json:"treatment_pre"`
	Difference   float64 `json:"difference"`
	Threshold    float64 `json:"threshold"`
	IsParallel   bool    `json:"is_parallel"`
	Warning      string  `json:"warning,omitempty"`
}
