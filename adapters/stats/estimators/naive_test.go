package estimators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankaiAI/data-learning-lab/domain/experiment"
	"github.com/SankaiAI/data-learning-lab/internal/numeric"
)

func mustMetric(t *testing.T, kind experiment.MetricKind) experiment.Metric {
	t.Helper()
	m, err := experiment.MetricFor(kind)
	require.NoError(t, err)
	return m
}

func TestNaive_ProportionScenario(t *testing.T) {
	// Control 1000 impressions / 50 clicks (5%), treatment 1000/60 (6%).
	users := []experiment.UserRecord{
		{ID: "c", Arm: experiment.ArmControl, PostImpressions: 1000, PostSuccesses: 50},
		{ID: "t", Arm: experiment.ArmTreatment, PostImpressions: 1000, PostSuccesses: 60},
	}
	m := mustMetric(t, experiment.MetricProportion)
	set := experiment.Aggregate(users, m)

	res := NewNaive().Estimate(users, set, m)

	assert.InDelta(t, 0.01, res.Estimate, 1e-12)
	wantSE := math.Sqrt(0.05*0.95/1000 + 0.06*0.94/1000)
	assert.InDelta(t, wantSE, res.StdErr, 1e-12)
	assert.InDelta(t, numeric.TwoSidedPFromZ(0.01/wantSE), res.PValue, 1e-12)
	// one point of lift at this sample size is not significant
	assert.Greater(t, res.PValue, 0.05)
	assert.False(t, res.Significant)
	assert.InDelta(t, 0.01-1.96*wantSE, res.CILower, 1e-12)
	assert.InDelta(t, 0.01+1.96*wantSE, res.CIUpper, 1e-12)
}

func TestNaive_IdenticalArms(t *testing.T) {
	users := []experiment.UserRecord{
		{ID: "c", Arm: experiment.ArmControl, PostImpressions: 500, PostSuccesses: 25},
		{ID: "t", Arm: experiment.ArmTreatment, PostImpressions: 500, PostSuccesses: 25},
	}
	m := mustMetric(t, experiment.MetricProportion)
	res := NewNaive().Estimate(users, experiment.Aggregate(users, m), m)

	assert.InDelta(t, 0, res.Estimate, 1e-12)
	assert.InDelta(t, 1, res.PValue, 1e-5)
	assert.False(t, res.Significant)
}

func TestNaive_EmptyArmsReturnNeutral(t *testing.T) {
	m := mustMetric(t, experiment.MetricProportion)
	res := NewNaive().Estimate(nil, experiment.Aggregate(nil, m), m)

	assert.Zero(t, res.Estimate)
	assert.Zero(t, res.StdErr)
	assert.Equal(t, 1.0, res.PValue)
	assert.False(t, res.Significant)
}

func TestNaive_ContinuousWithUserRecords(t *testing.T) {
	users := []experiment.UserRecord{
		{ID: "c1", Arm: experiment.ArmControl, PostSum: 10, PostCount: 1},
		{ID: "c2", Arm: experiment.ArmControl, PostSum: 12, PostCount: 1},
		{ID: "c3", Arm: experiment.ArmControl, PostSum: 11, PostCount: 1},
		{ID: "c4", Arm: experiment.ArmControl, PostSum: 13, PostCount: 1},
		{ID: "t1", Arm: experiment.ArmTreatment, PostSum: 14, PostCount: 1},
		{ID: "t2", Arm: experiment.ArmTreatment, PostSum: 16, PostCount: 1},
		{ID: "t3", Arm: experiment.ArmTreatment, PostSum: 15, PostCount: 1},
		{ID: "t4", Arm: experiment.ArmTreatment, PostSum: 17, PostCount: 1},
	}
	m := mustMetric(t, experiment.MetricContinuous)
	set := experiment.Aggregate(users, m)

	res := NewNaive().Estimate(users, set, m)

	assert.InDelta(t, 4.0, res.Estimate, 1e-12)
	// per-arm sample variance of {10,12,11,13} (and the shifted treatment
	// set) is 5/3; Welch SE over n=4 per arm
	wantSE := numeric.WelchSE(5.0/3, 4, 5.0/3, 4)
	assert.InDelta(t, wantSE, res.StdErr, 1e-9)
	assert.Less(t, res.PValue, 0.05)
	assert.True(t, res.Significant)
}

func TestNaive_ContinuousFallbackVariance(t *testing.T) {
	// No user records: each arm's variance falls back to 0.5*mean.
	set := experiment.SummarySet{
		ControlPre:    experiment.Summary{Arm: experiment.ArmControl, Period: experiment.PeriodPre},
		TreatmentPre:  experiment.Summary{Arm: experiment.ArmTreatment, Period: experiment.PeriodPre},
		ControlPost:   experiment.Summary{Arm: experiment.ArmControl, Period: experiment.PeriodPost, Count: 100, Sum: 2000, Rate: 20},
		TreatmentPost: experiment.Summary{Arm: experiment.ArmTreatment, Period: experiment.PeriodPost, Count: 100, Sum: 2200, Rate: 22},
	}
	m := mustMetric(t, experiment.MetricContinuous)

	res := NewNaive().Estimate(nil, set, m)

	assert.InDelta(t, 2.0, res.Estimate, 1e-12)
	wantSE := numeric.WelchSE(0.5*20, 100, 0.5*22, 100)
	assert.InDelta(t, wantSE, res.StdErr, 1e-9)
	assert.Greater(t, res.PValue, 0.0)
}

func TestNaive_Lift(t *testing.T) {
	e := NewNaive()

	res := experiment.NaiveResult{
		EffectEstimate: experiment.EffectEstimate{Estimate: 0.01, StdErr: 0.004},
		ControlValue:   0.05,
	}
	lift := e.Lift(res)
	assert.InDelta(t, 0.2, lift.Lift, 1e-12)
	assert.InDelta(t, 0.2-1.96*(0.004/0.05), lift.CILower, 1e-12)
	assert.InDelta(t, 0.2+1.96*(0.004/0.05), lift.CIUpper, 1e-12)
}

func TestNaive_LiftZeroControl(t *testing.T) {
	lift := NewNaive().Lift(experiment.NaiveResult{
		EffectEstimate: experiment.EffectEstimate{Estimate: 0.01, StdErr: 0.004},
	})
	assert.Zero(t, lift.Lift)
	assert.Zero(t, lift.CILower)
	assert.Zero(t, lift.CIUpper)
}

func TestNaive_CompareAtPrePeriod(t *testing.T) {
	users := []experiment.UserRecord{
		{ID: "c", Arm: experiment.ArmControl, PreImpressions: 1000, PreSuccesses: 50, PostImpressions: 1000, PostSuccesses: 50},
		{ID: "t", Arm: experiment.ArmTreatment, PreImpressions: 1000, PreSuccesses: 80, PostImpressions: 1000, PostSuccesses: 50},
	}
	m := mustMetric(t, experiment.MetricProportion)
	set := experiment.Aggregate(users, m)

	pre := NewNaive().CompareAt(users, set, m, experiment.PeriodPre)
	post := NewNaive().Estimate(users, set, m)

	assert.InDelta(t, 0.03, pre.Estimate, 1e-12)
	assert.InDelta(t, 0, post.Estimate, 1e-12)
}
