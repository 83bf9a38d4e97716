package wqloader

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	batches  *prometheus.CounterVec
	rows     *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wqloader_batches_total",
			Help: "Processed source files by outcome.",
		}, []string{"handler", "status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wqloader_rows_loaded_total",
			Help: "Rows upserted into the warehouse.",
		}, []string{"handler"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wqloader_batch_failures_total",
			Help: "Failed source files by error kind.",
		}, []string{"handler", "kind"}),
	}

	if r == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.batches, m.rows, m.failures} {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *metrics) observe(res *Result) {
	name := res.Handler.Name

	switch {
	case res.Error != nil:
		m.batches.WithLabelValues(name, "failed").Inc()
		m.failures.WithLabelValues(name, string(KindOf(res.Error))).Inc()
	case res.Excluded:
		m.batches.WithLabelValues(name, "excluded").Inc()
	default:
		m.batches.WithLabelValues(name, "loaded").Inc()
		m.rows.WithLabelValues(name).Add(float64(res.Rows))
	}
}
