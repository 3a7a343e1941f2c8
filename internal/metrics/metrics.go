package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"prizewheel/internal/models"
)

const labelPrize = "prize_id"

// Metrics holds the wheel's prometheus collectors.
type Metrics struct {
	Spins    prometheus.Counter
	Ignored  prometheus.Counter
	Outcomes *prometheus.CounterVec
	Stock    *prometheus.GaugeVec
	SoldOut  prometheus.Gauge
	Sessions prometheus.Gauge
	Logins   *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Spins:    f.NewCounter(prometheus.CounterOpts{Name: "prizewheel_spins_total", Help: "Accepted spins"}),
		Ignored:  f.NewCounter(prometheus.CounterOpts{Name: "prizewheel_spins_ignored_total", Help: "Spin requests ignored while a spin was in flight"}),
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{Name: "prizewheel_outcomes_total", Help: "Finalized spins per prize"}, []string{labelPrize, "win"}),
		Stock:    f.NewGaugeVec(prometheus.GaugeOpts{Name: "prizewheel_stock", Help: "Remaining quantity per prize"}, []string{labelPrize}),
		SoldOut:  f.NewGauge(prometheus.GaugeOpts{Name: "prizewheel_sold_out", Help: "1 when every winning prize is out of stock"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{Name: "prizewheel_admin_sessions", Help: "Live admin sessions"}),
		Logins:   f.NewCounterVec(prometheus.CounterOpts{Name: "prizewheel_admin_logins_total", Help: "Admin login attempts"}, []string{"result"}),
	}
}

// ObserveInventory replaces the stock gauges with the current list.
func (m *Metrics) ObserveInventory(prizes []models.Prize, soldOut bool) {
	if m == nil {
		return
	}
	m.Stock.Reset()
	for _, p := range prizes {
		m.Stock.With(prometheus.Labels{labelPrize: p.ID}).Set(float64(p.Quantity))
	}
	m.SoldOut.Set(boolGauge(soldOut))
}

func (m *Metrics) ObserveOutcome(p models.Prize) {
	if m == nil {
		return
	}
	win := "false"
	if p.IsWin {
		win = "true"
	}
	m.Outcomes.With(prometheus.Labels{labelPrize: p.ID, "win": win}).Inc()
}

func (m *Metrics) ObserveLogin(ok bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if ok {
		result = "accepted"
	}
	m.Logins.WithLabelValues(result).Inc()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
