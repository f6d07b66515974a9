package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignupsTotal counts signup requests by outcome (created, resent, rejected).
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "critique_signups_total",
		Help: "Signup requests by outcome",
	}, []string{"outcome"})

	// TokensIssued counts bearer tokens minted from confirmation codes.
	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "critique_tokens_issued_total",
		Help: "Bearer tokens issued",
	})

	// ConfirmationEmails counts confirmation email deliveries by result.
	ConfirmationEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "critique_confirmation_emails_total",
		Help: "Confirmation email deliveries by result",
	}, []string{"result"})

	// ContentWrites counts review and comment writes.
	ContentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "critique_content_writes_total",
		Help: "Review and comment writes by kind and operation",
	}, []string{"kind", "operation"})
)
