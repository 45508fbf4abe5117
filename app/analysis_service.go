// Package app composes aggregation, the three estimators, the
// diagnostics and the distribution profiles into a single report for the
// presentation layer.
package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SankaiAI/data-learning-lab/adapters/stats/diagnostics"
	"github.com/SankaiAI/data-learning-lab/adapters/stats/estimators"
	"github.com/SankaiAI/data-learning-lab/adapters/stats/profile"
	"github.com/SankaiAI/data-learning-lab/domain/experiment"
	"github.com/SankaiAI/data-learning-lab/internal/errors"
	"github.com/SankaiAI/data-learning-lab/internal/logging"
)

// Report is the complete analysis output: plain numeric/boolean data with
// no hidden state, safe to serialize as-is.
type Report struct {
	Metric    experiment.MetricKind `json:"metric"`
	UserCount int                   `json:"user_count"`

	Summaries experiment.SummarySet `json:"summaries"`

	Naive        experiment.NaiveResult   `json:"naive"`
	RelativeLift experiment.RelativeLift  `json:"relative_lift"`
	CUPED        experiment.CUPEDResult   `json:"cuped"`
	DiD          experiment.DiDResult     `json:"did"`
	Regression   experiment.DiDRegression `json:"regression"`

	SRM            experiment.SRMResult            `json:"srm"`
	Baseline       experiment.BaselineResult       `json:"baseline"`
	ParallelTrends experiment.ParallelTrendsResult `json:"parallel_trends"`

	ControlProfile   profile.Distribution `json:"control_profile"`
	TreatmentProfile profile.Distribution `json:"treatment_profile"`

	ComputedAt time.Time `json:"computed_at"`
}

// AnalysisService runs a full analysis for one metric kind. Every call
// re-reads the user records it is handed; nothing is cached between
// calls, so callers only need to finish applying counter updates before
// invoking it.
type AnalysisService struct {
	naive  *estimators.Naive
	cuped  *estimators.CUPED
	did    *estimators.DiD
	checks *diagnostics.Checker
	log    *logging.Logger
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(log *logging.Logger) *AnalysisService {
	return &AnalysisService{
		naive:  estimators.NewNaive(),
		cuped:  estimators.NewCUPED(),
		did:    estimators.NewDiD(),
		checks: diagnostics.NewChecker(),
		log:    log,
	}
}

// Analyze aggregates the user records and computes the three estimators,
// the diagnostics and the per-arm profiles. The estimators are pure
// functions of the (read-only) inputs, so they run concurrently.
func (s *AnalysisService) Analyze(ctx context.Context, users []experiment.UserRecord, kind experiment.MetricKind) (*Report, error) {
	metric, err := experiment.MetricFor(kind)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	started := time.Now()
	set := experiment.Aggregate(users, metric)

	report := &Report{
		Metric:    kind,
		UserCount: len(users),
		Summaries: set,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.Go(func() error {
		report.Naive = s.naive.Estimate(users, set, metric)
		report.RelativeLift = s.naive.Lift(report.Naive)
		return nil
	})
	g.Go(func() error {
		report.CUPED = s.cuped.Estimate(users, metric)
		return nil
	})
	g.Go(func() error {
		report.DiD = s.did.Estimate(set, metric)
		report.Regression = s.did.Regression(set)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.SRM = s.checks.SampleRatio(users)
	report.Baseline = s.checks.Baseline(users, set, metric)
	report.ParallelTrends = s.checks.ParallelTrends(set, metric)

	report.ControlProfile = profile.Analyze(users, metric, experiment.ArmControl)
	report.TreatmentProfile = profile.Analyze(users, metric, experiment.ArmTreatment)

	report.ComputedAt = time.Now()
	s.log.Debug("analysis for %d users (%s) completed in %s", len(users), kind, time.Since(started))
	return report, nil
}
