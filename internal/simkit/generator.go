// Package simkit generates synthetic experiment populations and event
// streams for demos and tests. All generator state (rng, per-user
// propensities) lives on an explicit Generator object passed around by
// the caller; there is no package-level counter to leak between runs.
package simkit

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/SankaiAI/data-learning-lab/domain/experiment"
)

// Config controls a simulated experiment.
type Config struct {
	UserCount      int                   `json:"user_count"`
	TreatmentShare float64               `json:"treatment_share"` // intended treatment allocation, 0.5 unless demoing SRM
	Metric         experiment.MetricKind `json:"metric"`
	BaseRate       float64               `json:"base_rate"`       // pre-period CTR, or mean event value for continuous
	TrueLift       float64               `json:"true_lift"`       // relative lift applied to treatment in the post period
	TimeTrend      float64               `json:"time_trend"`      // shared relative pre-to-post drift seen by both arms
	EventsPerUser  float64               `json:"events_per_user"` // expected events per user per period
	UserNoise      float64               `json:"user_noise"`      // per-user heterogeneity; correlates pre and post
	Seed           int64                 `json:"seed"`
}

// DefaultConfig returns a runnable configuration for a metric kind.
func DefaultConfig(kind experiment.MetricKind) Config {
	cfg := Config{
		UserCount:      2000,
		TreatmentShare: 0.5,
		Metric:         kind,
		BaseRate:       0.05,
		TrueLift:       0.10,
		TimeTrend:      0.02,
		EventsPerUser:  20,
		UserNoise:      0.30,
		Seed:           42,
	}
	if kind == experiment.MetricContinuous {
		cfg.BaseRate = 25.0
		cfg.EventsPerUser = 5
	}
	return cfg
}

// Event is one simulated observation for one user in one period.
type Event struct {
	UserID  string                `json:"user_id"`
	Period  experiment.Period     `json:"period"`
	Metric  experiment.MetricKind `json:"metric"`
	Success bool                  `json:"success"` // proportion metrics
	Value   float64               `json:"value"`   // continuous metrics
}

// Generator produces populations and event streams from a seeded rng.
type Generator struct {
	cfg        Config
	rng        *rand.Rand
	propensity map[string]float64
}

// NewGenerator creates a generator. Zero-valued knobs fall back to the
// defaults for the configured metric kind.
func NewGenerator(cfg Config) *Generator {
	def := DefaultConfig(cfg.Metric)
	if cfg.UserCount <= 0 {
		cfg.UserCount = def.UserCount
	}
	if cfg.TreatmentShare <= 0 || cfg.TreatmentShare >= 1 {
		cfg.TreatmentShare = def.TreatmentShare
	}
	if cfg.BaseRate <= 0 {
		cfg.BaseRate = def.BaseRate
	}
	if cfg.EventsPerUser <= 0 {
		cfg.EventsPerUser = def.EventsPerUser
	}
	return &Generator{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		propensity: make(map[string]float64),
	}
}

// Population creates the experiment participants. Arms are assigned once
// here and never change; each user also gets a persistent propensity
// factor so their pre and post behavior correlate.
func (g *Generator) Population() []experiment.UserRecord {
	users := make([]experiment.UserRecord, g.cfg.UserCount)
	for i := range users {
		id := uuid.NewString()
		arm := experiment.ArmControl
		if g.rng.Float64() < g.cfg.TreatmentShare {
			arm = experiment.ArmTreatment
		}
		users[i] = experiment.UserRecord{ID: id, Arm: arm}

		factor := 1 + g.cfg.UserNoise*g.rng.NormFloat64()
		if factor < 0.1 {
			factor = 0.1
		}
		g.propensity[id] = factor
	}
	return users
}

// Events generates one period's event stream for the population.
func (g *Generator) Events(users []experiment.UserRecord, period experiment.Period) []Event {
	events := make([]Event, 0, int(float64(len(users))*g.cfg.EventsPerUser))
	for i := range users {
		u := &users[i]
		n := g.eventCount()
		for e := 0; e < n; e++ {
			events = append(events, g.event(u, period))
		}
	}
	return events
}

func (g *Generator) eventCount() int {
	n := int(g.cfg.EventsPerUser)
	if frac := g.cfg.EventsPerUser - float64(n); g.rng.Float64() < frac {
		n++
	}
	return n
}

func (g *Generator) event(u *experiment.UserRecord, period experiment.Period) Event {
	level := g.cfg.BaseRate * g.propensity[u.ID]
	if period == experiment.PeriodPost {
		level *= 1 + g.cfg.TimeTrend
		if u.Arm == experiment.ArmTreatment {
			level *= 1 + g.cfg.TrueLift
		}
	}

	ev := Event{UserID: u.ID, Period: period, Metric: g.cfg.Metric}
	if g.cfg.Metric == experiment.MetricContinuous {
		value := level * (1 + 0.25*g.rng.NormFloat64())
		if value < 0 {
			value = 0
		}
		ev.Value = value
		return ev
	}

	p := level
	if p > 1 {
		p = 1
	}
	ev.Success = g.rng.Float64() < p
	return ev
}

// ApplyAll folds an event stream into the user counters, sequentially and
// in order. Counters only ever increase here; arm membership is never
// touched. Events for unknown users are dropped.
func ApplyAll(users []experiment.UserRecord, events []Event) {
	index := make(map[string]int, len(users))
	for i := range users {
		index[users[i].ID] = i
	}
	for _, ev := range events {
		i, ok := index[ev.UserID]
		if !ok {
			continue
		}
		apply(&users[i], ev)
	}
}

func apply(u *experiment.UserRecord, ev Event) {
	if ev.Metric == experiment.MetricContinuous {
		if ev.Period == experiment.PeriodPre {
			u.PreCount++
			u.PreSum += ev.Value
		} else {
			u.PostCount++
			u.PostSum += ev.Value
		}
		return
	}
	if ev.Period == experiment.PeriodPre {
		u.PreImpressions++
		if ev.Success {
			u.PreSuccesses++
		}
	} else {
		u.PostImpressions++
		if ev.Success {
			u.PostSuccesses++
		}
	}
}

// Run generates a complete simulated experiment: population, pre-period
// stream, post-period stream, all applied.
func (g *Generator) Run() []experiment.UserRecord {
	users := g.Population()
	ApplyAll(users, g.Events(users, experiment.PeriodPre))
	ApplyAll(users, g.Events(users, experiment.PeriodPost))
	return users
}
