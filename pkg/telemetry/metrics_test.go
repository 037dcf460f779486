package telemetry

import (
	"context"
	"testing"
)

func TestNewOrchestrationMetrics(t *testing.T) {
	m, err := NewOrchestrationMetrics()
	if err != nil {
		t.Fatalf("NewOrchestrationMetrics failed: %v", err)
	}

	// No SDK installed: instruments are no-ops but must not panic.
	ctx := context.Background()
	m.RecordDispatch(ctx, "parallel")
	m.RecordInvocation(ctx, "researcher", false)
	m.RecordInvocation(ctx, "writer", true)
	m.RecordPromptSource(ctx, "researcher", "store")
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *OrchestrationMetrics
	ctx := context.Background()
	m.RecordDispatch(ctx, "single")
	m.RecordInvocation(ctx, "r", false)
	m.RecordPromptSource(ctx, "r", "default")
	m.RecordCacheLookup(ctx, false)
}
