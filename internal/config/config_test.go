package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cxd309/tms-timetable/internal/graph"
	"github.com/cxd309/tms-timetable/internal/train"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TEST_RAILWAY_ENV", "set.db")
	if got := EnvOr("TEST_RAILWAY_ENV", "default"); got != "set.db" {
		t.Errorf("EnvOr with set env: got %q, want %q", got, "set.db")
	}
	t.Setenv("TEST_RAILWAY_EMPTY", "")
	if got := EnvOr("TEST_RAILWAY_EMPTY", "default"); got != "default" {
		t.Errorf("EnvOr with empty env: got %q, want %q", got, "default")
	}
}

func TestLoadNetwork(t *testing.T) {
	want := graph.NetworkData{
		"d": {"e": 20, "capacity": 1},
		"e": {"d": 20, "f": 20, "capacity": 2},
		"f": {"e": 20},
	}
	tests := []struct {
		name, file, content string
	}{
		{"json", "railway_config.conf",
			`{"d": {"e": 20, "capacity": 1}, "e": {"d": 20, "f": 20, "capacity": 2}, "f": {"e": 20}}`},
		{"yaml", "network.yaml", `
d: {e: 20, capacity: 1}
e:
  d: 20
  f: 20
  capacity: 2
f: {e: 20}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadNetwork(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadNetwork: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadNetworkErrors(t *testing.T) {
	if _, err := LoadNetwork(filepath.Join(t.TempDir(), "missing.conf")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadNetwork(writeFile(t, "bad.conf", `{"d": {"e": "far"}}`)); err == nil {
		t.Error("expected error for non-numeric distance")
	}
	if _, err := LoadNetwork(writeFile(t, "empty.conf", `{}`)); err == nil {
		t.Error("expected error for empty network")
	}
}

func TestLoadRoutes(t *testing.T) {
	want := []train.Train{
		{ID: "256", Route: []string{"d", "e", "f", "k"}, Speed: 20},
		{ID: "734", Route: []string{"e", "d"}, Speed: 20},
	}
	tests := []struct {
		name, file, content string
	}{
		{"json lines", "routes.conf", `{"train_number": "256", "speed": 20, "route": ["d", "e", "f", "k"]}
{"train_number": 734, "speed": 20, "route": ["e", "d"]}

`},
		{"json array", "routes.json", `[
  {"train_number": "256", "speed": 20, "route": ["d", "e", "f", "k"]},
  {"train_number": "734", "speed": 20, "route": ["e", "d"]}
]`},
		{"yaml", "routes.yml", `
- train_number: "256"
  speed: 20
  route: [d, e, f, k]
- train_number: "734"
  speed: 20
  route: [e, d]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadRoutes(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadRoutes: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRoutesReportsRecord(t *testing.T) {
	_, err := DecodeRoutes(strings.NewReader(`{"train_number": "1", "speed": 1, "route": ["a", "b"]}
{"train_number": "2", "speed": "fast"}`))
	if err == nil || !strings.Contains(err.Error(), "record 1") {
		t.Fatalf("err = %v, want error naming record 1", err)
	}
}
