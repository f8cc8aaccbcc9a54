package metrics

import (
	"time"
)

// RecordTrial records one finished trial with its duration.
func (r *Registry) RecordTrial(attack, status string, duration time.Duration) {
	r.TrialsTotal.WithLabelValues(attack, status).Inc()
	r.TrialDuration.WithLabelValues(attack).Observe(duration.Seconds())
}

// RecordAnnouncements records import verdict counts from one engine run.
func (r *Registry) RecordAnnouncements(accepted, rejected int) {
	r.AnnouncementsTotal.WithLabelValues("accepted").Add(float64(accepted))
	r.AnnouncementsTotal.WithLabelValues("rejected").Add(float64(rejected))
}

// RecordOutcome adds classified-AS counts for one trial.
func (r *Registry) RecordOutcome(attack, policy, outcome string, count int) {
	r.OutcomesTotal.WithLabelValues(attack, policy, outcome).Add(float64(count))
}

// SetGraphInfo publishes the dimensions of the loaded topology.
func (r *Registry) SetGraphInfo(ases, ranks int) {
	r.GraphASes.Set(float64(ases))
	r.GraphRanks.Set(float64(ranks))
}
