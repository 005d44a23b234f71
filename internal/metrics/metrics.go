package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensIssued counts minted verification/reset tokens by purpose.
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogd_tokens_issued_total",
		Help: "Number of verification and password-reset tokens issued.",
	}, []string{"purpose"})

	// TokensConsumed counts successful consuming validations by purpose.
	TokensConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogd_tokens_consumed_total",
		Help: "Number of tokens consumed by a successful validation.",
	}, []string{"purpose"})

	// TokensSwept counts rows removed by the janitor.
	TokensSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogd_tokens_swept_total",
		Help: "Number of expired or inactive token rows deleted by the janitor.",
	})
)
