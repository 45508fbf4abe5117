package experiment

import "fmt"

// MetricKind selects which counter set and test family an analysis uses.
type MetricKind string

const (
	// MetricProportion is a binary per-event outcome such as a click or a
	// conversion. Compared with a z-test.
	MetricProportion MetricKind = "proportion"
	// MetricContinuous is a real-valued per-event outcome such as revenue
	// or session duration. Compared with a Welch t-test.
	MetricContinuous MetricKind = "continuous"
)

// Metric is the strategy object for a metric kind. It fixes which user
// counters are read and whether the continuous test family applies,
// replacing per-estimator kind switches.
type Metric interface {
	Kind() MetricKind
	IsContinuous() bool
	// Totals returns the numerator and denominator of the user's rate for
	// the period: (successes, impressions) for proportion metrics,
	// (value sum, event count) for continuous metrics.
	Totals(u *UserRecord, p Period) (sum, count float64)
	// HasData reports whether the user produced any denominator events in
	// the period.
	HasData(u *UserRecord, p Period) bool
}

// MetricFor returns the strategy for a metric kind.
func MetricFor(kind MetricKind) (Metric, error) {
	switch kind {
	case MetricProportion:
		return proportionMetric{}, nil
	case MetricContinuous:
		return continuousMetric{}, nil
	default:
		return nil, fmt.Errorf("unknown metric kind %q", string(kind))
	}
}

type proportionMetric struct{}

func (proportionMetric) Kind() MetricKind   { return MetricProportion }
func (proportionMetric) IsContinuous() bool { return false }

func (proportionMetric) Totals(u *UserRecord, p Period) (float64, float64) {
	if p == PeriodPre {
		return float64(u.PreSuccesses), float64(u.PreImpressions)
	}
	return float64(u.PostSuccesses), float64(u.PostImpressions)
}

func (m proportionMetric) HasData(u *UserRecord, p Period) bool {
	_, count := m.Totals(u, p)
	return count > 0
}

type continuousMetric struct{}

func (continuousMetric) Kind() MetricKind   { return MetricContinuous }
func (continuousMetric) IsContinuous() bool { return true }

func (continuousMetric) Totals(u *UserRecord, p Period) (float64, float64) {
	if p == PeriodPre {
		return u.PreSum, float64(u.PreCount)
	}
	return u.PostSum, float64(u.PostCount)
}

func (m continuousMetric) HasData(u *UserRecord, p Period) bool {
	_, count := m.Totals(u, p)
	return count > 0
}
