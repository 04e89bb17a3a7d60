package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const unmatchedRoute = "unmatched"

var (
	httpTracer = otel.Tracer("smsledger/http")
	httpMeter  = otel.Meter("smsledger/http")

	requestDuration, _ = httpMeter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	requestTotal, _ = httpMeter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total HTTP requests"),
	)
	requestsInFlight, _ = httpMeter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests currently being served"),
	)
)

// Tracing opens a server span per request and records duration and count
// keyed by the matched ServeMux pattern, never the raw path, so pending ids
// do not become label values.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := httpTracer.Start(r.Context(), r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.Int64("http.request_content_length", r.ContentLength),
			),
		)
		defer span.End()

		methodAttr := metric.WithAttributes(attribute.String("http.method", r.Method))
		requestsInFlight.Add(ctx, 1, methodAttr)
		defer requestsInFlight.Add(ctx, -1, methodAttr)

		rw := wrapResponseWriter(w)
		req := r.WithContext(ctx)
		next.ServeHTTP(rw, req)

		// The mux sets Pattern on the request value it received, which is req.
		route := req.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		status := rw.statusOrOK()

		// Method-qualified patterns ("PUT /api/rules/") already name the span.
		name := route
		if !strings.Contains(route, " ") {
			name = r.Method + " " + route
		}
		span.SetName(name)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		requestTotal.Add(ctx, 1, attrs)
	})
}
