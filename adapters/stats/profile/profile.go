// Package profile summarizes the shape of each arm's user-level rate
// distribution. The numbers are descriptive context for the report
// surface; no estimator reads them.
package profile

import (
	"github.com/montanaflynn/stats"

	"github.com/SankaiAI/data-learning-lab/domain/experiment"
)

// Distribution describes one arm's per-user post-period rates.
type Distribution struct {
	Arm      experiment.Arm `json:"arm"`
	N        int            `json:"n"`
	Mean     float64        `json:"mean"`
	StdDev   float64        `json:"std_dev"`
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	Median   float64        `json:"median"`
	Q25      float64        `json:"q25"`
	Q75      float64        `json:"q75"`
	Skewness float64        `json:"skewness"`
}

// Analyze profiles one arm's post-period user rates. An arm with no
// qualifying users yields a zeroed profile.
func Analyze(users []experiment.UserRecord, m experiment.Metric, arm experiment.Arm) Distribution {
	rates := experiment.UserRates(users, m, arm, experiment.PeriodPost)
	d := Distribution{Arm: arm, N: len(rates)}
	if len(rates) == 0 {
		return d
	}

	d.Mean, _ = stats.Mean(rates)
	d.StdDev, _ = stats.StandardDeviationSample(rates)
	d.Min, _ = stats.Min(rates)
	d.Max, _ = stats.Max(rates)
	d.Median, _ = stats.Median(rates)
	d.Q25, _ = stats.Percentile(rates, 25)
	d.Q75, _ = stats.Percentile(rates, 75)
	d.Skewness = skewness(rates, d.Mean, d.StdDev)
	return d
}

// skewness is the adjusted Fisher-Pearson coefficient; zero-spread or
// tiny samples return 0.
func skewness(data []float64, mean, stdDev float64) float64 {
	n := float64(len(data))
	if n < 3 || stdDev == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		z := (v - mean) / stdDev
		sum += z * z * z
	}
	return n / ((n - 1) * (n - 2)) * sum
}
