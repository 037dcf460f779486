// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides logging and metrics for the Choreo runtime.
// Exporter wiring is left to the host process; the instruments below work
// against the global meter, which is a no-op until an SDK is installed.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OrchestrationMetrics tracks dispatch, role invocation, prompt resolution
// and tool cache behavior for production monitoring.
type OrchestrationMetrics struct {
	// dispatchCounter tracks topology executions by pattern
	dispatchCounter metric.Int64Counter

	// invocationCounter tracks role invocations by role and outcome
	invocationCounter metric.Int64Counter

	// promptSourceCounter tracks which resolution source supplied a prompt
	promptSourceCounter metric.Int64Counter

	// cacheCounter tracks tool cache hits and misses
	cacheCounter metric.Int64Counter
}

// NewOrchestrationMetrics creates an orchestration metrics tracker with OTEL meters.
func NewOrchestrationMetrics() (*OrchestrationMetrics, error) {
	meter := otel.Meter("choreo/runtime")

	dispatchCounter, err := meter.Int64Counter(
		"choreo.dispatch.total",
		metric.WithDescription("Topology executions by execution pattern"),
	)
	if err != nil {
		return nil, err
	}

	invocationCounter, err := meter.Int64Counter(
		"choreo.role.invocations",
		metric.WithDescription("Role invocations by role name and outcome"),
	)
	if err != nil {
		return nil, err
	}

	promptSourceCounter, err := meter.Int64Counter(
		"choreo.prompt.source",
		metric.WithDescription("Prompt resolutions by winning source"),
	)
	if err != nil {
		return nil, err
	}

	cacheCounter, err := meter.Int64Counter(
		"choreo.tools.cache",
		metric.WithDescription("Tool cache lookups by result (hit/miss)"),
	)
	if err != nil {
		return nil, err
	}

	return &OrchestrationMetrics{
		dispatchCounter:     dispatchCounter,
		invocationCounter:   invocationCounter,
		promptSourceCounter: promptSourceCounter,
		cacheCounter:        cacheCounter,
	}, nil
}

// RecordDispatch counts one topology execution for the given pattern.
func (m *OrchestrationMetrics) RecordDispatch(ctx context.Context, pattern string) {
	if m == nil || m.dispatchCounter == nil {
		return
	}
	m.dispatchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pattern", pattern),
	))
}

// RecordInvocation counts one role invocation and its outcome.
func (m *OrchestrationMetrics) RecordInvocation(ctx context.Context, role string, failed bool) {
	if m == nil || m.invocationCounter == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.invocationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("outcome", outcome),
	))
}

// RecordPromptSource counts one prompt resolution won by the named source.
func (m *OrchestrationMetrics) RecordPromptSource(ctx context.Context, role, source string) {
	if m == nil || m.promptSourceCounter == nil {
		return
	}
	m.promptSourceCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("source", source),
	))
}

// RecordCacheLookup counts one tool cache lookup.
func (m *OrchestrationMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil || m.cacheCounter == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}
