// Command tms-timetable reads a railway network and a batch of route
// submissions, builds the timetable and reports every conflict it finds.
//
// With -input, it instead reads a combined {"network": ..., "trains": ...}
// JSON document from a file (or "-" for stdin) and writes the report JSON to
// stdout, the same contract the WASM build exposes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/cxd309/tms-timetable/internal/config"
	"github.com/cxd309/tms-timetable/internal/engine"
	"github.com/cxd309/tms-timetable/internal/graph"
	"github.com/cxd309/tms-timetable/internal/store"
	"github.com/cxd309/tms-timetable/internal/timetable"
)

type options struct {
	networkPath string
	routesPath  string
	inputPath   string
	dbPath      string
	quantum     float64
	printJSON   bool
}

func main() {
	defer zap.S().Sync()
	var opts options
	flag.StringVar(&opts.networkPath, "config", config.DefaultNetworkPath, "network description (JSON or YAML)")
	flag.StringVar(&opts.routesPath, "routes", config.DefaultRoutesPath, "route submissions (JSON lines, JSON array or YAML)")
	flag.StringVar(&opts.inputPath, "input", "", `combined input JSON file, "-" for stdin; overrides -config and -routes`)
	flag.StringVar(&opts.dbPath, "db", config.EnvOr(config.EnvDB, ""), "SQLite database to save the report to")
	flag.Float64Var(&opts.quantum, "quantum", timetable.DefaultTimeQuantum, "width of the bucket station events must share to be simultaneous")
	flag.BoolVar(&opts.printJSON, "json", false, "print the report as JSON")
	level := zap.LevelFlag("log-level", zap.InfoLevel, "set log level")
	flag.Parse()

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(*level)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)

	if opts.inputPath != "" {
		if err := runInput(opts.inputPath, os.Stdout); err != nil {
			zap.S().Fatalw("run failed", "error", err)
		}
		return
	}
	if err := run(opts, os.Stdout); err != nil {
		zap.S().Fatalw("run failed", "error", err)
	}
}

func runInput(path string, w io.Writer) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result, err := engine.RunJSON(string(data))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, result)
	return err
}

func run(opts options, w io.Writer) error {
	log := zap.S()

	network, err := config.LoadNetwork(opts.networkPath)
	if err != nil {
		return err
	}
	g, err := graph.New(network)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	trains, err := config.LoadRoutes(opts.routesPath)
	if err != nil {
		return err
	}
	log.Infow("loaded inputs",
		"stations", len(g.Stations()),
		"links", len(g.Links()),
		"trains", len(trains))

	report, err := engine.New(g,
		engine.WithLogger(log),
		engine.WithTimeQuantum(opts.quantum),
	).Run(trains)
	if err != nil {
		return err
	}

	if opts.dbPath != "" {
		s, err := store.New(opts.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		if err := save(s, report); err != nil {
			return err
		}
		log.Infow("report saved", "db", opts.dbPath, "run", report.RunID)
	}

	if opts.printJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	summarize(log, report)
	return nil
}

func save(s store.Reports, report engine.Report) error {
	if err := s.SaveReport(report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func summarize(log *zap.SugaredLogger, report engine.Report) {
	counts := map[engine.Verdict]int{}
	for _, r := range report.Trains {
		counts[r.Verdict]++
	}
	log.Infow("run complete",
		"run", report.RunID,
		"trains", len(report.Trains),
		"scheduled", counts[engine.VerdictScheduled],
		"invalid_routes", counts[engine.VerdictInvalidRoute],
		"accidents", counts[engine.VerdictAccident])
	if report.FirstAccident == nil {
		log.Info("no accidents")
		return
	}
	for _, rec := range report.FirstAccident.Records {
		log.Warnw("first accident",
			"time", report.FirstAccident.Time,
			"kind", rec.Kind,
			"location", rec.Location,
			"trains", rec.Trains)
	}
}
