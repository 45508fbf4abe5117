// Package numeric provides the shared statistical primitives used by the
// estimators and diagnostics: sample moments, standard errors, and the
// closed-form distribution approximations the engine standardizes on.
package numeric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of data, or 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Variance returns the Bessel-corrected sample variance (n-1 denominator).
// Fewer than two observations carry no variance information, so n < 2
// returns 0 rather than NaN.
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// StdDev returns the sample standard deviation.
func StdDev(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Covariance returns the sample covariance (n-1 denominator) of two
// equal-length series. Mismatched lengths or n < 2 return 0.
func Covariance(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation returns the Pearson correlation of two series, or 0 when
// either series is degenerate (zero variance or mismatched lengths).
func Correlation(x, y []float64) float64 {
	sx := StdDev(x)
	sy := StdDev(y)
	if sx == 0 || sy == 0 {
		return 0
	}
	return Covariance(x, y) / (sx * sy)
}

// ProportionSE returns the standard error of a sample proportion,
// sqrt(p(1-p)/n). A zero denominator returns 0.
func ProportionSE(p, n float64) float64 {
	if n <= 0 {
		return 0
	}
	return math.Sqrt(p * (1 - p) / n)
}

// ProportionDiffSE returns the standard error of the difference of two
// independent proportions as the root sum of squares of the per-arm errors.
func ProportionDiffSE(p1, n1, p2, n2 float64) float64 {
	se1 := ProportionSE(p1, n1)
	se2 := ProportionSE(p2, n2)
	return math.Sqrt(se1*se1 + se2*se2)
}

// WelchSE returns the standard error of a difference of two means with
// independent variances, sqrt(v1/n1 + v2/n2). Non-positive sample sizes
// contribute nothing.
func WelchSE(var1, n1, var2, n2 float64) float64 {
	total := 0.0
	if n1 > 0 {
		total += var1 / n1
	}
	if n2 > 0 {
		total += var2 / n2
	}
	return math.Sqrt(total)
}

// WelchDF returns the Welch-Satterthwaite degrees of freedom for an
// unequal-variance t-test. Either sample having n <= 1 makes the formula
// undefined; the caller gets 0 back and must treat the test as degenerate.
func WelchDF(var1, n1, var2, n2 float64) float64 {
	if n1 <= 1 || n2 <= 1 {
		return 0
	}
	a := var1 / n1
	b := var2 / n2
	denom := a*a/(n1-1) + b*b/(n2-1)
	if denom == 0 {
		return 0
	}
	return (a + b) * (a + b) / denom
}

// PooledTwoSampleSE returns the pooled-variance standard error of a
// difference of two means, with (n1-1)+(n2-1) degrees of freedom implied
// by the pooled denominator. Degenerate inputs return 0.
func PooledTwoSampleSE(var1, n1, var2, n2 float64) float64 {
	if n1 < 1 || n2 < 1 || n1+n2 <= 2 {
		return 0
	}
	pooled := ((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2)
	return math.Sqrt(pooled * (1/n1 + 1/n2))
}
