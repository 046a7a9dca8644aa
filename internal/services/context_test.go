package services_test

import (
	"context"
	"testing"

	"decant/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemKey(ctx, "A")
	ctx = services.WithStage(ctx, "relocate")
	ctx = services.WithService(ctx, "vam")
	ctx = services.WithRequestID(ctx, "req-123")

	if key, ok := services.ItemKeyFromContext(ctx); !ok || key != "A" {
		t.Fatalf("unexpected item key: %v %v", key, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "relocate" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if service, ok := services.ServiceFromContext(ctx); !ok || service != "vam" {
		t.Fatalf("unexpected service: %v %v", service, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithItemKey(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.ItemKeyFromContext(ctx); ok {
		t.Fatal("expected no item key value")
	}
}
