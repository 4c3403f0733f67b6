package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cxd309/tms-timetable/internal/engine"
	"github.com/cxd309/tms-timetable/internal/store"
)

const testNetwork = `{
  "d": {"e": 20, "capacity": 1},
  "e": {"d": 20, "f": 20, "capacity": 2},
  "f": {"e": 20, "capacity": 1}
}`

const testRoutes = `{"train_number": "256", "speed": 20, "route": ["d", "e", "f"]}
{"train_number": "734", "speed": 20, "route": ["e", "d"]}
{"train_number": "900", "speed": 20, "route": ["d", "f"]}
`

func writeInputs(t *testing.T) options {
	t.Helper()
	dir := t.TempDir()
	opts := options{
		networkPath: filepath.Join(dir, "railway_config.conf"),
		routesPath:  filepath.Join(dir, "routes.conf"),
		quantum:     1e-9,
		printJSON:   true,
	}
	if err := os.WriteFile(opts.networkPath, []byte(testNetwork), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(opts.routesPath, []byte(testRoutes), 0o644); err != nil {
		t.Fatal(err)
	}
	return opts
}

func TestRunPrintsReport(t *testing.T) {
	opts := writeInputs(t)
	var out bytes.Buffer
	if err := run(opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var report engine.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	want := []engine.Verdict{engine.VerdictScheduled, engine.VerdictAccident, engine.VerdictInvalidRoute}
	if len(report.Trains) != len(want) {
		t.Fatalf("got %d train results, want %d", len(report.Trains), len(want))
	}
	for i, v := range want {
		if report.Trains[i].Verdict != v {
			t.Errorf("train %s: verdict %s, want %s", report.Trains[i].TrainID, report.Trains[i].Verdict, v)
		}
	}
	if report.FirstAccident == nil || report.FirstAccident.Time != 0.5 {
		t.Errorf("first accident = %+v, want time 0.5", report.FirstAccident)
	}
}

func TestRunSavesToStore(t *testing.T) {
	opts := writeInputs(t)
	opts.printJSON = false
	opts.dbPath = filepath.Join(t.TempDir(), "runs.db")
	if err := run(opts, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	s, err := store.New(opts.dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer s.Close()
	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Trains != 3 || runs[0].Accidents != 1 {
		t.Fatalf("runs = %+v, want one run with 3 trains and 1 accident", runs)
	}
}

func TestRunMissingNetwork(t *testing.T) {
	opts := writeInputs(t)
	opts.networkPath = filepath.Join(t.TempDir(), "missing.conf")
	if err := run(opts, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for a missing network file")
	}
}

func TestRunInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	in := `{"network": ` + testNetwork + `, "trains": [{"train_number": "256", "speed": 20, "route": ["d", "e"]}]}`
	if err := os.WriteFile(path, []byte(in), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := runInput(path, &out); err != nil {
		t.Fatalf("runInput: %v", err)
	}
	var report engine.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Trains) != 1 || report.Trains[0].Verdict != engine.VerdictScheduled {
		t.Fatalf("trains = %+v, want one scheduled train", report.Trains)
	}
}
