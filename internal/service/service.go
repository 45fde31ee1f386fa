// Package service holds the business operations of the shop: catalog
// maintenance, stock-consistent sales, the repair order lifecycle, reports
// and the activity feed. Services depend on repository interfaces only.
package service

import (
	"context"
	"time"

	"repair-desk/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repair-desk/service")

// Clock returns the current time. Tests replace it to pin dates.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// fail marks span as failed unless err is an ordinary domain outcome
func fail(span trace.Span, err error) error {
	if !domain.IsExpected(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
