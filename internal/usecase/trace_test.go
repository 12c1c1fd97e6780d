package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecordSpanError_OnlyMarksUnexpectedFailures(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, expected := tracer.Start(context.Background(), "expected")
	recordSpanError(expected, fmt.Errorf("%w: jornada %q has started matches", ErrConflict, "week-1"))
	expected.End()

	_, unexpected := tracer.Start(context.Background(), "unexpected")
	recordSpanError(unexpected, errors.New("mongo: server selection timeout"))
	unexpected.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Unset {
		t.Fatalf("conflict must not mark span as error, got %v", spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) == 0 {
		t.Fatalf("expected error status with recorded event, got %v", spans[1].Status())
	}
}

func TestStartUsecaseSpan_NoParentIsNoop(t *testing.T) {
	ctx, span := startUsecaseSpan(context.Background(), "usecase.CoinService.AssignForJornada")
	if span.SpanContext().IsValid() {
		t.Fatal("expected noop span without a parent")
	}
	if ctx != context.Background() {
		t.Fatal("expected context to be returned unchanged")
	}
}
