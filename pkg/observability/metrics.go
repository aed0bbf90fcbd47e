package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "metrics handler not initialized",
			})
		}
	}
}

// AccountMetrics counts account and session lifecycle events.
// A nil *AccountMetrics records nothing.
type AccountMetrics struct {
	registrations   otelmetric.Int64Counter
	authentications otelmetric.Int64Counter
	sessionsPurged  otelmetric.Int64Counter
}

// NewAccountMetrics registers the account instruments on meter
func NewAccountMetrics(meter otelmetric.Meter) (*AccountMetrics, error) {
	registrations, err := meter.Int64Counter("accounts.registrations",
		otelmetric.WithDescription("Successful account registrations"))
	if err != nil {
		return nil, fmt.Errorf("failed to create registrations counter: %w", err)
	}

	authentications, err := meter.Int64Counter("accounts.authentications",
		otelmetric.WithDescription("Authentication attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create authentications counter: %w", err)
	}

	sessionsPurged, err := meter.Int64Counter("sessions.purged",
		otelmetric.WithDescription("Expired sessions removed"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions purged counter: %w", err)
	}

	return &AccountMetrics{
		registrations:   registrations,
		authentications: authentications,
		sessionsPurged:  sessionsPurged,
	}, nil
}

func (m *AccountMetrics) RecordRegistration(ctx context.Context) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1)
}

func (m *AccountMetrics) RecordAuthentication(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.authentications.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AccountMetrics) RecordSessionsPurged(ctx context.Context, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.sessionsPurged.Add(ctx, n)
}
