package seed

import "github.com/prometheus/client_golang/prometheus"

var (
	// seedRecords counts generated records by kind and outcome
	// (accepted, dropped, inserted).
	seedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_records_total",
			Help: "Sample records processed by the seeder.",
		},
		[]string{"kind", "outcome"},
	)

	// seedRuns counts seed passes by result (ok, failed, rejected).
	seedRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seed_runs_total",
			Help: "Seed passes by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(seedRecords, seedRuns)
}

func observeReport(r *Report) {
	for k, n := range r.Accepted {
		seedRecords.WithLabelValues(string(k), "accepted").Add(float64(n))
	}
	for k, n := range r.Dropped {
		seedRecords.WithLabelValues(string(k), "dropped").Add(float64(n))
	}
	for k, n := range r.Inserted {
		seedRecords.WithLabelValues(string(k), "inserted").Add(float64(n))
	}
}
