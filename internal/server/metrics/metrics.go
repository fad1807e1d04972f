// Package metrics collects Prometheus metrics for the authentication flows
// and exposes them for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidInput = "invalid_input"
	OutcomeDuplicate    = "duplicate"
	OutcomeBadCreds     = "bad_credentials"
	OutcomeExpired      = "expired"
	OutcomeInvalid      = "invalid"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

// MetricsCollector is what the service layer records into.
type MetricsCollector interface {
	RecordRegistration(outcome string)
	RecordLogin(outcome string)
	RecordTokenVerification(outcome string)
	ObserveHashDuration(op string, d time.Duration)
}

// Collector is the Prometheus-backed MetricsCollector.
type Collector struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	verifications *prometheus.CounterVec
	hashDuration  *prometheus.HistogramVec
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
// Panics if registration fails.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_token_verifications_total",
			Help: "Session token verifications by outcome",
		}, []string{"outcome"}),
		hashDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophauth_password_hash_duration_seconds",
			Help:    "Time spent hashing or verifying passwords",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"op"}),
	}

	reg.MustRegister(c.registrations, c.logins, c.verifications, c.hashDuration)
	return c
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordTokenVerification(outcome string) {
	c.verifications.WithLabelValues(outcome).Inc()
}

// ObserveHashDuration records one hash ("hash") or verify ("verify") call.
func (c *Collector) ObserveHashDuration(op string, d time.Duration) {
	c.hashDuration.WithLabelValues(op).Observe(d.Seconds())
}

// Nop discards everything.
type Nop struct{}

var _ MetricsCollector = Nop{}

func (Nop) RecordRegistration(string)                 {}
func (Nop) RecordLogin(string)                        {}
func (Nop) RecordTokenVerification(string)            {}
func (Nop) ObserveHashDuration(string, time.Duration) {}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
