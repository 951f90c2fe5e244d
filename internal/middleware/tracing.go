package middleware

import (
	"fmt"

	"makerboards/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// LocalTraceID holds the request's trace ID in Fiber locals.
const LocalTraceID = "traceID"

var untracedPaths = map[string]bool{
	"/metrics":      true,
	"/health/live":  true,
	"/health/ready": true,
}

// TracingMiddleware opens a server span per request. Once routing is done the span is
// renamed after the matched route, so every board page reports as "GET /boards/:id/".
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if untracedPaths[c.Path()] {
			return c.Next()
		}

		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.Path()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals(LocalTraceID, traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		if route, ok := matchedRoute(c); ok {
			span.SetName(c.Method() + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}

		// Session middleware runs after tracing, so the user is only known now
		if userID, ok := c.Locals(LocalUserID).(uint); ok {
			span.SetAttributes(attribute.Int("forum.user_id", int(userID)))
		}

		return err
	}
}

// matchedRoute returns the pattern of the route that handled the request. Middleware
// mounted with Use reports "/", so that only counts when the request was for "/".
func matchedRoute(c *fiber.Ctx) (string, bool) {
	r := c.Route()
	if r == nil || r.Path == "" {
		return "", false
	}
	if r.Path == "/" && c.Path() != "/" {
		return "", false
	}
	return r.Path, true
}
