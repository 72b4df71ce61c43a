package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the wishlist engine does. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	WishlistsCreated  prometheus.Counter
	SessionsCreated   prometheus.Counter
	EmailsSent        *prometheus.CounterVec
	MailLimited       prometheus.Counter
	TokenChecks       *prometheus.CounterVec
	Reservations      *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WishlistsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_wishlists_created_total",
			Help: "Total number of wishlists created",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_sessions_created_total",
			Help: "Total number of browser sessions created",
		}),
		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishlist_emails_sent_total",
			Help: "Emails handed to the mail transport, by kind",
		}, []string{"kind"}),
		MailLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "wishlist_mail_rate_limited_total",
			Help: "Emails refused because the recipient was mailed too recently",
		}),
		TokenChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishlist_token_checks_total",
			Help: "Token verifications by token class and result",
		}, []string{"class", "result"}),
		Reservations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishlist_reservations_total",
			Help: "Item reservation changes by action",
		}, []string{"action"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wishlist_operation_duration_seconds",
			Help:    "Duration of engine operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

func (m *Metrics) IncWishlistCreated() {
	if m == nil {
		return
	}
	m.WishlistsCreated.Inc()
}

func (m *Metrics) IncSessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}

func (m *Metrics) IncEmailSent(kind string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncMailLimited() {
	if m == nil {
		return
	}
	m.MailLimited.Inc()
}

// IncTokenCheck records a verification; class is "manage", "share" or "any".
func (m *Metrics) IncTokenCheck(class string, ok bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if ok {
		result = "accepted"
	}
	m.TokenChecks.WithLabelValues(class, result).Inc()
}

// IncReservation records "claim", "release" or "refused".
func (m *Metrics) IncReservation(action string) {
	if m == nil {
		return
	}
	m.Reservations.WithLabelValues(action).Inc()
}

// ObserveOperation records the duration of op.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
