package runctx

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithSubject(ctx, "fly01")
	ctx = WithStage(ctx, "classify")
	ctx = WithRequestID(ctx, "req-1")

	if v, ok := RunIDFromContext(ctx); !ok || v != "run-1" {
		t.Fatalf("run id = %q %v", v, ok)
	}
	if v, ok := SubjectFromContext(ctx); !ok || v != "fly01" {
		t.Fatalf("subject = %q %v", v, ok)
	}
	if v, ok := StageFromContext(ctx); !ok || v != "classify" {
		t.Fatalf("stage = %q %v", v, ok)
	}
	if v, ok := RequestIDFromContext(ctx); !ok || v != "req-1" {
		t.Fatalf("request id = %q %v", v, ok)
	}
}

func TestEmptyValuesAreIgnored(t *testing.T) {
	ctx := context.Background()
	if WithStage(ctx, "") != ctx || WithSubject(ctx, "") != ctx {
		t.Fatal("empty values should return the parent context")
	}
	if _, ok := RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
}
