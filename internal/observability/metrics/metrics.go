package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures metric registration.
type Config struct {
	ServiceName string
	Environment string
	Registerer  prometheus.Registerer
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "image-lizard"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

// Metrics exposes application-level instruments.
type Metrics struct {
	purchases        *prometheus.CounterVec
	creditsGranted   *prometheus.CounterVec
	creditsSpent     prometheus.Counter
	generations      *prometheus.CounterVec
	rateLimitDenied  *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
}

var (
	appMetricsOnce sync.Once
	appMetrics     *Metrics
)

// New registers the domain instruments once per process.
func New(cfg Config) *Metrics {
	appMetricsOnce.Do(func() {
		appMetrics = newMetrics(cfg.Registerer, cfg)
	})
	return appMetrics
}

func newMetrics(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "imagelizard_purchases_total",
		Help:        "Credit purchases recorded by outcome.",
		ConstLabels: labels,
	}, []string{"outcome"})
	creditsGranted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "imagelizard_credits_granted_total",
		Help:        "Credits granted to user balances.",
		ConstLabels: labels,
	}, []string{"source"})
	creditsSpent := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "imagelizard_credits_spent_total",
		Help:        "Credits deducted for image generations.",
		ConstLabels: labels,
	})
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "imagelizard_generations_total",
		Help:        "Image generations by model and outcome.",
		ConstLabels: labels,
	}, []string{"model", "outcome"})
	rateLimitDenied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "imagelizard_rate_limit_denied_total",
		Help:        "Requests rejected by the per-user rate limiter.",
		ConstLabels: labels,
	}, []string{"route"})
	checkoutSessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "imagelizard_checkout_sessions_total",
		Help:        "Checkout sessions by lifecycle event.",
		ConstLabels: labels,
	}, []string{"event"})

	for _, collector := range []prometheus.Collector{
		purchases, creditsGranted, creditsSpent, generations, rateLimitDenied, checkoutSessions,
	} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return &Metrics{
		purchases:        purchases,
		creditsGranted:   creditsGranted,
		creditsSpent:     creditsSpent,
		generations:      generations,
		rateLimitDenied:  rateLimitDenied,
		checkoutSessions: checkoutSessions,
	}
}

// RecordPurchase counts a purchase attempt outcome: "recorded",
// "already_processed" or "failed".
func (m *Metrics) RecordPurchase(outcome string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(outcome).Inc()
}

// RecordCreditsGranted counts credits added to balances by source
// ("purchase", "signup", "refund").
func (m *Metrics) RecordCreditsGranted(source string, credits int64) {
	if m == nil || credits <= 0 {
		return
	}
	m.creditsGranted.WithLabelValues(source).Add(float64(credits))
}

// RecordCreditsSpent counts credits deducted for generations.
func (m *Metrics) RecordCreditsSpent(credits int64) {
	if m == nil || credits <= 0 {
		return
	}
	m.creditsSpent.Add(float64(credits))
}

// RecordGeneration counts an image generation by model and outcome.
func (m *Metrics) RecordGeneration(model, outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(model, outcome).Inc()
}

// RecordRateLimitDenied counts a rate-limited request.
func (m *Metrics) RecordRateLimitDenied(route string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.WithLabelValues(route).Inc()
}

// RecordCheckoutSession counts checkout session events ("created",
// "completed", "expired").
func (m *Metrics) RecordCheckoutSession(event string) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(event).Inc()
}

// ResetForTest resets the metrics singleton for tests.
func ResetForTest() {
	appMetricsOnce = sync.Once{}
	appMetrics = nil
}
