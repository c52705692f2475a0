package metrics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics captures low-cardinality HTTP server metrics.
type HTTPMetrics struct {
	requestDuration metric.Float64Histogram
	inFlight        metric.Int64UpDownCounter
}

// NewHTTPMetrics creates HTTP metrics instruments on the global provider.
func NewHTTPMetrics(serviceName string) (*HTTPMetrics, error) {
	name := strings.TrimSpace(serviceName)
	if name == "" {
		name = "neopos"
	}
	meter := otel.GetMeterProvider().Meter(name + "/http")

	requestDuration, err := meter.Float64Histogram("http.server.duration_ms")
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter("http.server.in_flight")
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestDuration: requestDuration,
		inFlight:        inFlight,
	}, nil
}

// GinMiddleware records request duration and in-flight metrics.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		endpoint := normalizeEndpoint(c.FullPath())
		ctx := c.Request.Context()

		m.inFlight.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
		start := time.Now()
		c.Next()
		m.inFlight.Add(ctx, -1, metric.WithAttributes(attribute.String("endpoint", endpoint)))

		m.record(ctx, endpoint, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func (m *HTTPMetrics) record(ctx context.Context, endpoint, method string, status int, elapsed time.Duration) {
	m.requestDuration.Record(ctx, float64(elapsed.Milliseconds()),
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("method", method),
			attribute.String("status", strconv.Itoa(status)),
		),
	)
}

func normalizeEndpoint(fullPath string) string {
	if strings.TrimSpace(fullPath) == "" {
		return "unmatched"
	}
	return fullPath
}
