// Command cli runs a seeded simulated experiment end to end and prints
// the estimator readout and diagnostics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/SankaiAI/data-learning-lab/app"
	"github.com/SankaiAI/data-learning-lab/domain/experiment"
	"github.com/SankaiAI/data-learning-lab/internal/logging"
	"github.com/SankaiAI/data-learning-lab/internal/simkit"
)

func main() {
	_ = godotenv.Load()

	metricFlag := flag.String("metric", "proportion", "metric kind: proportion or continuous")
	users := flag.Int("users", 2000, "simulated user count")
	lift := flag.Float64("lift", 0.10, "true relative lift applied to the treatment arm")
	share := flag.Float64("treatment-share", 0.5, "intended treatment allocation")
	seed := flag.Int64("seed", 42, "rng seed")
	flag.Parse()

	kind := experiment.MetricKind(*metricFlag)
	if _, err := experiment.MetricFor(kind); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -metric: %v\n", err)
		os.Exit(2)
	}

	cfg := simkit.DefaultConfig(kind)
	cfg.UserCount = *users
	cfg.TrueLift = *lift
	cfg.TreatmentShare = *share
	cfg.Seed = *seed

	population := simkit.NewGenerator(cfg).Run()
	svc := app.NewAnalysisService(logging.NewFromEnv())
	report, err := svc.Analyze(context.Background(), population, kind)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	printReport(report)
}

func printReport(r *app.Report) {
	fmt.Printf("metric=%s users=%d (control=%d treatment=%d)\n\n",
		r.Metric, r.UserCount, r.SRM.ControlUsers, r.SRM.TreatmentUsers)

	fmt.Printf("%-8s %-6s %12s %12s %10s\n", "arm", "period", "count", "sum", "rate")
	for _, s := range []experiment.Summary{
		r.Summaries.ControlPre, r.Summaries.ControlPost,
		r.Summaries.TreatmentPre, r.Summaries.TreatmentPost,
	} {
		fmt.Printf("%-8s %-6s %12.0f %12.2f %10.5f\n", s.Arm, s.Period, s.Count, s.Sum, s.Rate)
	}

	fmt.Printf("\nnaive:  %s\n", formatEffect(r.Naive.EffectEstimate))
	fmt.Printf("  lift: %+.2f%% [%.2f%%, %.2f%%]\n",
		100*r.RelativeLift.Lift, 100*r.RelativeLift.CILower, 100*r.RelativeLift.CIUpper)
	fmt.Printf("cuped:  %s theta=%.4f var-reduction=%.1f%% (n=%d)\n",
		formatEffect(r.CUPED.EffectEstimate), r.CUPED.Theta,
		100*r.CUPED.VarianceReduction, r.CUPED.QualifyingUsers)
	fmt.Printf("did:    %s deltas: control=%+.5f treatment=%+.5f\n",
		formatEffect(r.DiD.EffectEstimate), r.DiD.ControlDelta, r.DiD.TreatmentDelta)

	fmt.Printf("\ndiagnostics:\n")
	fmt.Printf("  srm: chi2=%.3f p=%.3f mismatch=%v\n", r.SRM.ChiSquared, r.SRM.PValue, r.SRM.Mismatch)
	fmt.Printf("  baseline: diff=%+.5f p=%.3f imbalance=%v\n",
		r.Baseline.Difference, r.Baseline.PValue, r.Baseline.ImbalanceDetected)
	fmt.Printf("  parallel trends: diff=%.5f threshold=%.5f parallel=%v\n",
		r.ParallelTrends.Difference, r.ParallelTrends.Threshold, r.ParallelTrends.IsParallel)
	if r.ParallelTrends.Warning != "" {
		fmt.Printf("  warning: %s\n", r.ParallelTrends.Warning)
	}
}

func formatEffect(e experiment.EffectEstimate) string {
	marker := " "
	if e.Significant {
		marker = "*"
	}
	return fmt.Sprintf("%+.5f +/- %.5f [%.5f, %.5f] p=%.4f%s",
		e.Estimate, e.StdErr, e.CILower, e.CIUpper, e.PValue, marker)
}
