package context

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithCorrelationID(t *testing.T) {
	tests := []struct {
		name          string
		correlationID string
	}{
		{
			name:          "adds correlation ID to context",
			correlationID: "cycle-123",
		},
		{
			name:          "handles empty correlation ID",
			correlationID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithCorrelationID(context.Background(), tt.correlationID)

			if got := GetCorrelationID(ctx); got != tt.correlationID {
				t.Errorf("expected %q, got %q", tt.correlationID, got)
			}
		})
	}
}

func TestGetCorrelationID_Missing(t *testing.T) {
	if got := GetCorrelationID(context.Background()); got != "" {
		t.Errorf("expected empty correlation ID, got %q", got)
	}
}

func TestNewCorrelationID(t *testing.T) {
	ctx, id := NewCorrelationID(context.Background())

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a UUID, got %q: %v", id, err)
	}

	if got := GetCorrelationID(ctx); got != id {
		t.Errorf("expected context to carry %q, got %q", id, got)
	}

	_, other := NewCorrelationID(context.Background())
	if other == id {
		t.Error("expected distinct correlation IDs")
	}
}
