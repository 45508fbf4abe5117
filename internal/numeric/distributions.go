package numeric

import "math"

// Abramowitz & Stegun 26.2.17 coefficients for the standard normal CDF.
const (
	asP  = 0.2316419
	asB1 = 0.319381530
	asB2 = -0.356563782
	asB3 = 1.781477937
	asB4 = -1.821255978
	asB5 = 1.330274429
)

// NormalCDF returns the standard normal cumulative distribution at z using
// the Abramowitz-Stegun rational approximation (absolute error ~1e-7).
func NormalCDF(z float64) float64 {
	if z < 0 {
		return 1 - NormalCDF(-z)
	}
	t := 1 / (1 + asP*z)
	poly := t * (asB1 + t*(asB2+t*(asB3+t*(asB4+t*asB5))))
	pdf := math.Exp(-z*z/2) / math.Sqrt(2*math.Pi)
	return 1 - pdf*poly
}

// TwoSidedPFromZ returns the two-sided p-value for a z statistic.
func TwoSidedPFromZ(z float64) float64 {
	p := 2 * (1 - NormalCDF(math.Abs(z)))
	return clampProbability(p)
}

// TwoSidedPFromT returns the two-sided p-value for a t statistic with the
// given degrees of freedom, via a moment-corrected normal approximation:
// z = t(1 - 1/(4df)) / sqrt(1 + t^2/(2df)). Degenerate df returns 1.
func TwoSidedPFromT(t, df float64) float64 {
	if df <= 0 {
		return 1
	}
	z := t * (1 - 1/(4*df)) / math.Sqrt(1+t*t/(2*df))
	return TwoSidedPFromZ(z)
}

// zTable maps supported confidence levels to two-sided critical values.
// Unsupported levels deliberately fall back to the 95% value; the engine
// does not pretend to support arbitrary levels.
var zTable = map[float64]float64{
	0.90: 1.645,
	0.95: 1.960,
	0.99: 2.576,
}

// DefaultConfidence is the confidence level used when callers do not ask
// for a specific one.
const DefaultConfidence = 0.95

// ZForConfidence returns the two-sided critical z for a confidence level,
// falling back to the 95% value for unknown levels.
func ZForConfidence(level float64) float64 {
	if z, ok := zTable[level]; ok {
		return z
	}
	return zTable[DefaultConfidence]
}

// ConfidenceInterval returns estimate +/- z*se for the given confidence
// level. A zero standard error yields a zero-width interval.
func ConfidenceInterval(estimate, se, level float64) (lower, upper float64) {
	z := ZForConfidence(level)
	return estimate - z*se, estimate + z*se
}

// ChiSquareSplit returns the one-degree-of-freedom chi-square statistic
// for an observed two-way count split against an expected ratio (fraction
// of the total expected in the first cell), together with a p-value.
//
// The p-value uses the closed form exp(-chi2/2), which is exact for 2 df
// and a coarse upper approximation for the 1-df statistic used here. It
// is a documented simplification, kept deliberately.
func ChiSquareSplit(observed1, observed2, expectedShare float64) (chi2, p float64) {
	total := observed1 + observed2
	if total <= 0 || expectedShare <= 0 || expectedShare >= 1 {
		return 0, 1
	}
	exp1 := total * expectedShare
	exp2 := total - exp1
	d1 := observed1 - exp1
	d2 := observed2 - exp2
	chi2 = d1*d1/exp1 + d2*d2/exp2
	return chi2, clampProbability(math.Exp(-chi2 / 2))
}

func clampProbability(p float64) float64 {
	// A NaN statistic carries no evidence, so it reads as p=1 rather than
	// as maximal significance.
	if math.IsNaN(p) || p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
