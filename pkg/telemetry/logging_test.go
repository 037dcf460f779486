// Copyright 2026 © The Choreo Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestHandlerStampsDispatchIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSlogHandler(&buf, "info", "json"))

	ctx := WithDispatch(context.Background(), "req-42", "parallel")
	logger.InfoContext(ctx, "dispatching request", "roles", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if got := record["request_id"]; got != "req-42" {
		t.Errorf("request_id = %v, want req-42", got)
	}
	if got := record["pattern"]; got != "parallel" {
		t.Errorf("pattern = %v, want parallel", got)
	}
}

func TestHandlerKeepsExplicitAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSlogHandler(&buf, "info", "json"))

	ctx := WithDispatch(context.Background(), "req-ctx", "single")
	logger.InfoContext(ctx, "m", "request_id", "req-explicit")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if got := record["request_id"]; got != "req-explicit" {
		t.Errorf("request_id = %v, want req-explicit", got)
	}
}

func TestHandlerWithoutDispatchContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSlogHandler(&buf, "info", "json"))

	logger.InfoContext(context.Background(), "m")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if _, ok := record["request_id"]; ok {
		t.Error("request_id stamped without dispatch context")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLogLevel(tc.in); got != tc.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
