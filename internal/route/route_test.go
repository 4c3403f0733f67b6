package route

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cxd309/tms-timetable/internal/graph"
)

func newValidator(t *testing.T, log *zap.SugaredLogger) *Validator {
	t.Helper()
	g, err := graph.New(graph.NetworkData{
		"a": {"b": 20, "capacity": 1},
		"b": {"a": 20, "c": 20, "d": 20, "capacity": 1},
		"c": {"b": 20, "capacity": 1},
		"d": {"b": 20, "e": 20, "g": 20, "capacity": 1},
		"e": {"d": 20, "h": 20, "f": 20, "k": 20, "capacity": 1},
		"h": {"e": 20, "g": 20, "capacity": 1},
		"g": {"d": 20, "h": 20, "capacity": 1},
		"f": {"e": 20, "k": 20, "capacity": 2},
		"k": {"e": 20, "f": 20, "capacity": 2},
		"lonely": {"capacity": 3},
	})
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	return NewValidator(g, log)
}

func TestValidRoutes(t *testing.T) {
	v := newValidator(t, zaptest.NewLogger(t).Sugar())
	routes := [][]string{
		{"a", "b"},
		{"a", "b", "d", "e", "f"},
		{"k", "f", "e", "h"},
		{"g", "h", "g", "d", "b"},
	}
	for _, r := range routes {
		if err := v.Validate(r); err != nil {
			t.Errorf("Validate(%v) = %v, want nil", r, err)
		}
	}
}

func TestInvalidRoutes(t *testing.T) {
	v := newValidator(t, zaptest.NewLogger(t).Sugar())
	tests := []struct {
		name  string
		route []string
		want  *InvalidError
	}{
		{"not adjacent", []string{"a", "c"},
			&InvalidError{Hop: 0, From: "a", To: "c", Reason: ReasonNoLink, Via: []string{"a", "b", "c"}}},
		{"self loop", []string{"a", "a"},
			&InvalidError{Hop: 0, From: "a", To: "a", Reason: ReasonNoLink}},
		{"broken later hop", []string{"k", "f", "h", "f"},
			&InvalidError{Hop: 1, From: "f", To: "h", Reason: ReasonNoLink, Via: []string{"f", "e", "h"}}},
		{"first hop broken", []string{"g", "b", "d"},
			&InvalidError{Hop: 0, From: "g", To: "b", Reason: ReasonNoLink, Via: []string{"g", "d", "b"}}},
		{"unknown from", []string{"z", "a"},
			&InvalidError{Hop: 0, From: "z", To: "a", Reason: ReasonUnknownStation}},
		{"unknown to", []string{"a", "z"},
			&InvalidError{Hop: 0, From: "a", To: "z", Reason: ReasonUnknownStation}},
		{"station without neighbours", []string{"lonely", "a"},
			&InvalidError{Hop: 0, From: "lonely", To: "a", Reason: ReasonNoNeighbours}},
		{"single station", []string{"d"}, &InvalidError{Reason: ReasonTooShort}},
		{"empty", nil, &InvalidError{Reason: ReasonTooShort}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.route)
			var ie *InvalidError
			if !errors.As(err, &ie) {
				t.Fatalf("Validate(%v) = %v, want *InvalidError", tt.route, err)
			}
			if diff := cmp.Diff(tt.want, ie); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			if v.Valid(tt.route) {
				t.Errorf("Valid(%v) = true", tt.route)
			}
		})
	}
}

func TestValidateLogsFirstBrokenHop(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	v := newValidator(t, zap.New(core).Sugar())

	v.Validate([]string{"a", "b"})
	if logs.Len() != 0 {
		t.Fatalf("valid route logged %d entries", logs.Len())
	}
	v.Validate([]string{"a", "c", "z"})
	entries := logs.TakeAll()
	if len(entries) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(entries))
	}
	reason, _ := entries[0].ContextMap()["reason"].(string)
	if want := `hop 0 "a"->"c": no direct link (connected via a-b-c)`; reason != want {
		t.Errorf("reason = %q, want %q", reason, want)
	}
}
