package experiment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMetric(t *testing.T, kind MetricKind) Metric {
	t.Helper()
	m, err := MetricFor(kind)
	require.NoError(t, err)
	return m
}

func TestMetricFor_UnknownKind(t *testing.T) {
	_, err := MetricFor("ratio")
	assert.Error(t, err)
}

func TestAggregate_EmptyUsers(t *testing.T) {
	for _, kind := range []MetricKind{MetricProportion, MetricContinuous} {
		set := Aggregate(nil, mustMetric(t, kind))
		for _, s := range []Summary{set.ControlPre, set.ControlPost, set.TreatmentPre, set.TreatmentPost} {
			assert.Zero(t, s.Count)
			assert.Zero(t, s.Sum)
			assert.Zero(t, s.Rate)
		}
	}
}

func TestAggregate_RoundTrip(t *testing.T) {
	// Random partition of users into arms: summary totals must equal the
	// exact sum of the constituent counters.
	rng := rand.New(rand.NewSource(3))
	users := make([]UserRecord, 200)
	for i := range users {
		arm := ArmControl
		if rng.Intn(2) == 1 {
			arm = ArmTreatment
		}
		users[i] = UserRecord{
			ID:              "u",
			Arm:             arm,
			PreImpressions:  int64(rng.Intn(50)),
			PreSuccesses:    int64(rng.Intn(5)),
			PostImpressions: int64(rng.Intn(50)),
			PostSuccesses:   int64(rng.Intn(5)),
		}
	}

	set := Aggregate(users, mustMetric(t, MetricProportion))

	var wantPreImp, wantPreSucc, wantPostImp, wantPostSucc float64
	for _, u := range users {
		if u.Arm != ArmControl {
			continue
		}
		wantPreImp += float64(u.PreImpressions)
		wantPreSucc += float64(u.PreSuccesses)
		wantPostImp += float64(u.PostImpressions)
		wantPostSucc += float64(u.PostSuccesses)
	}
	assert.Equal(t, wantPreImp, set.ControlPre.Count)
	assert.Equal(t, wantPreSucc, set.ControlPre.Sum)
	assert.Equal(t, wantPostImp, set.ControlPost.Count)
	assert.Equal(t, wantPostSucc, set.ControlPost.Sum)

	totalPre := set.ControlPre.Count + set.TreatmentPre.Count
	var wantTotalPre float64
	for _, u := range users {
		wantTotalPre += float64(u.PreImpressions)
	}
	assert.Equal(t, wantTotalPre, totalPre)
}

func TestAggregate_Rates(t *testing.T) {
	users := []UserRecord{
		{ID: "c1", Arm: ArmControl, PostImpressions: 1000, PostSuccesses: 50},
		{ID: "t1", Arm: ArmTreatment, PostImpressions: 1000, PostSuccesses: 60},
	}
	set := Aggregate(users, mustMetric(t, MetricProportion))
	assert.InDelta(t, 0.05, set.ControlPost.Rate, 1e-12)
	assert.InDelta(t, 0.06, set.TreatmentPost.Rate, 1e-12)
	assert.Zero(t, set.ControlPre.Rate)
}

func TestAggregate_ContinuousCounters(t *testing.T) {
	users := []UserRecord{
		{ID: "c1", Arm: ArmControl, PostSum: 120, PostCount: 4, PreSum: 100, PreCount: 5},
		{ID: "c2", Arm: ArmControl, PostSum: 60, PostCount: 2},
	}
	set := Aggregate(users, mustMetric(t, MetricContinuous))
	assert.Equal(t, 6.0, set.ControlPost.Count)
	assert.Equal(t, 180.0, set.ControlPost.Sum)
	assert.InDelta(t, 30.0, set.ControlPost.Rate, 1e-12)
	assert.InDelta(t, 20.0, set.ControlPre.Rate, 1e-12)
}

func TestUserRates_ZeroDenominatorPolicy(t *testing.T) {
	users := []UserRecord{
		{ID: "a", Arm: ArmControl, PostImpressions: 10, PostSuccesses: 5, PostSum: 40, PostCount: 2},
		{ID: "b", Arm: ArmControl}, // no post events at all
	}

	// Proportion: the zero-impression user still counts as a 0-rate point.
	prop := UserRates(users, mustMetric(t, MetricProportion), ArmControl, PeriodPost)
	assert.Equal(t, []float64{0.5, 0}, prop)

	// Continuous: the zero-count user contributes no data point.
	cont := UserRates(users, mustMetric(t, MetricContinuous), ArmControl, PeriodPost)
	assert.Equal(t, []float64{20}, cont)
}

func TestUserRates_FiltersByArm(t *testing.T) {
	users := []UserRecord{
		{ID: "a", Arm: ArmControl, PostImpressions: 10, PostSuccesses: 1},
		{ID: "b", Arm: ArmTreatment, PostImpressions: 10, PostSuccesses: 9},
	}
	rates := UserRates(users, mustMetric(t, MetricProportion), ArmTreatment, PeriodPost)
	assert.Equal(t, []float64{0.9}, rates)
}

func TestPairedObservations_DropsPartialDataUsers(t *testing.T) {
	users := []UserRecord{
		{ID: "both", Arm: ArmControl, PreImpressions: 10, PreSuccesses: 1, PostImpressions: 20, PostSuccesses: 4},
		{ID: "pre-only", Arm: ArmControl, PreImpressions: 10, PreSuccesses: 1},
		{ID: "post-only", Arm: ArmTreatment, PostImpressions: 10, PostSuccesses: 1},
		{ID: "neither", Arm: ArmTreatment},
	}
	obs := PairedObservations(users, mustMetric(t, MetricProportion))
	if assert.Len(t, obs, 1) {
		assert.Equal(t, ArmControl, obs[0].Arm)
		assert.InDelta(t, 0.1, obs[0].Pre, 1e-12)
		assert.InDelta(t, 0.2, obs[0].Post, 1e-12)
	}
}

func TestSummarySet_Cell(t *testing.T) {
	set := SummarySet{
		ControlPre:    Summary{Arm: ArmControl, Period: PeriodPre, Rate: 1},
		ControlPost:   Summary{Arm: ArmControl, Period: PeriodPost, Rate: 2},
		TreatmentPre:  Summary{Arm: ArmTreatment, Period: PeriodPre, Rate: 3},
		TreatmentPost: Summary{Arm: ArmTreatment, Period: PeriodPost, Rate: 4},
	}
	assert.Equal(t, 1.0, set.Cell(ArmControl, PeriodPre).Rate)
	assert.Equal(t, 2.0, set.Cell(ArmControl, PeriodPost).Rate)
	assert.Equal(t, 3.0, set.Cell(ArmTreatment, PeriodPre).Rate)
	assert.Equal(t, 4.0, set.Cell(ArmTreatment, PeriodPost).Rate)
}
