package experiment

// Aggregate collapses user records into the four arm-by-period summaries.
// Every call walks the full user list; nothing is cached. An empty user
// list yields all-zero summaries with zero rates, never a division error.
// Users with an unknown arm are skipped.
func Aggregate(users []UserRecord, m Metric) SummarySet {
	set := SummarySet{
		ControlPre:    Summary{Arm: ArmControl, Period: PeriodPre},
		ControlPost:   Summary{Arm: ArmControl, Period: PeriodPost},
		TreatmentPre:  Summary{Arm: ArmTreatment, Period: PeriodPre},
		TreatmentPost: Summary{Arm: ArmTreatment, Period: PeriodPost},
	}

	for i := range users {
		u := &users[i]
		var pre, post *Summary
		switch u.Arm {
		case ArmControl:
			pre, post = &set.ControlPre, &set.ControlPost
		case ArmTreatment:
			pre, post = &set.TreatmentPre, &set.TreatmentPost
		default:
			continue
		}

		sum, count := m.Totals(u, PeriodPre)
		pre.Sum += sum
		pre.Count += count

		sum, count = m.Totals(u, PeriodPost)
		post.Sum += sum
		post.Count += count
	}

	for _, s := range []*Summary{&set.ControlPre, &set.ControlPost, &set.TreatmentPre, &set.TreatmentPost} {
		if s.Count > 0 {
			s.Rate = s.Sum / s.Count
		}
	}
	return set
}

// UserRates returns each user's own per-period rate for one arm, for
// estimators that need user-level variance rather than group totals.
//
// The zero-denominator policy differs by kind on purpose: a proportion
// user with no impressions still participated and contributes a 0-rate
// data point, while a continuous user with no events contributes no data
// point at all.
func UserRates(users []UserRecord, m Metric, arm Arm, period Period) []float64 {
	rates := make([]float64, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.Arm != arm {
			continue
		}
		sum, count := m.Totals(u, period)
		if count == 0 {
			if m.IsContinuous() {
				continue
			}
			rates = append(rates, 0)
			continue
		}
		rates = append(rates, sum/count)
	}
	return rates
}

// PairedObservations returns the pre/post rate pair for every user with
// denominator data in both periods, across both arms. Users missing
// either period are dropped entirely.
func PairedObservations(users []UserRecord, m Metric) []PairedObservation {
	obs := make([]PairedObservation, 0, len(users))
	for i := range users {
		u := &users[i]
		if !u.Arm.Valid() || !m.HasData(u, PeriodPre) || !m.HasData(u, PeriodPost) {
			continue
		}
		preSum, preCount := m.Totals(u, PeriodPre)
		postSum, postCount := m.Totals(u, PeriodPost)
		obs = append(obs, PairedObservation{
			Arm:  u.Arm,
			Pre:  preSum / preCount,
			Post: postSum / postCount,
		})
	}
	return obs
}
