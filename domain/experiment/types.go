// Package experiment defines the data model of a two-arm randomized
// experiment: per-user accumulated counters, the proportion/continuous
// metric strategies, group-by-period summaries, and the result shapes the
// estimators produce. Everything here is plain serializable data; the
// package carries no hidden state.
package experiment

// Arm identifies the experiment group a user belongs to. Assignment is
// immutable once a user record is created.
type Arm string

const (
	ArmControl   Arm = "control"
	ArmTreatment Arm = "treatment"
)

// Period identifies the observation window a counter belongs to.
type Period string

const (
	PeriodPre  Period = "pre"
	PeriodPost Period = "post"
)

// UserRecord holds one participant's accumulated counters across both
// periods. Counters only ever increase as events are applied; the record
// is read-only for every function in this package and below.
//
// The proportion counters (impressions/successes) and the continuous
// counters (sum/count) are parallel but distinct sets: a metric strategy
// reads exactly one of them.
type UserRecord struct {
	ID  string `json:"id"`
	Arm Arm    `json:"arm"`

	PreImpressions  int64 `json:"pre_impressions"`
	PreSuccesses    int64 `json:"pre_successes"`
	PostImpressions int64 `json:"post_impressions"`
	PostSuccesses   int64 `json:"post_successes"`

	PreSum    float64 `json:"pre_sum"`
	PreCount  int64   `json:"pre_count"`
	PostSum   float64 `json:"post_sum"`
	PostCount int64   `json:"post_count"`
}

// Summary is the exact aggregate of one arm's user counters for one
// period. For proportion metrics Count is impressions and Sum is
// successes; for continuous metrics Count is the event count and Sum is
// the value sum. Rate is Sum/Count, 0 when Count is 0.
type Summary struct {
	Arm    Arm     `json:"arm"`
	Period Period  `json:"period"`
	Count  float64 `json:"count"`
	Sum    float64 `json:"sum"`
	Rate   float64 `json:"rate"`
}

// SummarySet holds the four arm-by-period summaries. It is recomputed
// fresh from user records on every aggregation call; there is no
// incremental aggregate state to drift.
type SummarySet struct {
	ControlPre    Summary `json:"control_pre"`
	ControlPost   Summary `json:"control_post"`
	TreatmentPre  Summary `json:"treatment_pre"`
	TreatmentPost Summary `json:"treatment_post"`
}

// Cell returns the summary for an arm and period.
func (s SummarySet) Cell(arm Arm, period Period) Summary {
	switch {
	case arm == ArmControl && period == PeriodPre:
		return s.ControlPre
	case arm == ArmControl && period == PeriodPost:
		return s.ControlPost
	case arm == ArmTreatment && period == PeriodPre:
		return s.TreatmentPre
	default:
		return s.TreatmentPost
	}
}

// PairedObservation is one user's pre/post rate pair, produced only for
// users with data in both periods. Partial-data users are dropped before
// covariate adjustment because they would bias theta.
type PairedObservation struct {
	Arm  Arm     `json:"arm"`
	Pre  float64 `json:"pre"`
	Post float64 `json:"post"`
}

// Valid reports whether the arm is one of the two known groups.
func (a Arm) Valid() bool {
	return a == ArmControl || a == ArmTreatment
}
