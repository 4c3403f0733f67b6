// Package engine builds the timetable for a batch of trains and collects the
// conflicts it contains.
//
// Trains are committed strictly in submission order. Committing a train has
// three stages:
//
//  1. Validation - the route must be a walk over direct links. An invalid
//     route skips the train; nothing is recorded for it.
//
//  2. Walk - for each hop, in order: record the section occupancy, record
//     presence at the departure station, check the section, record presence
//     at the arrival station. Each station presence is checked as it is
//     recorded. Times start at 0 and every arrival is the next departure.
//
//  3. Outcome - the first conflict ends the train's walk. The conflict is
//     added to the accident ledger and the batch moves on to the next train.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cxd309/tms-timetable/internal/accident"
	"github.com/cxd309/tms-timetable/internal/conflict"
	"github.com/cxd309/tms-timetable/internal/graph"
	"github.com/cxd309/tms-timetable/internal/kinematics"
	"github.com/cxd309/tms-timetable/internal/route"
	"github.com/cxd309/tms-timetable/internal/timetable"
	"github.com/cxd309/tms-timetable/internal/train"
)

// New constructs a Builder over the network g with empty logs.
func New(g *graph.Graph, opts ...Option) *Builder {
	b := &Builder{
		runID:   uuid.New(),
		quantum: timetable.DefaultTimeQuantum,
		log:     zap.S(),
		graph:   g,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.validator = route.NewValidator(g, b.log)
	b.detector = conflict.New(b.log)
	b.sections = timetable.NewSections()
	b.stations = timetable.NewStations(g, b.quantum)
	b.ledger = accident.NewLedger()
	return b
}

// RunID returns the identifier of this run.
func (b *Builder) RunID() uuid.UUID { return b.runID }

// Run checks every train's structure, then commits them in order and returns
// the report. Only malformed input or an inconsistent network aborts the
// run; conflicts and invalid routes are part of the report.
func (b *Builder) Run(trains []train.Train) (Report, error) {
	for i, t := range trains {
		if err := t.Validate(); err != nil {
			return Report{}, fmt.Errorf("submission %d: %w", i, err)
		}
	}
	for _, t := range trains {
		if _, err := b.Commit(t); err != nil {
			return Report{}, fmt.Errorf("train %q: %w", t.ID, err)
		}
	}

	report := b.Report()
	if report.FirstAccident != nil {
		b.log.Infow("first accident",
			"time", report.FirstAccident.Time,
			"records", report.FirstAccident.Records)
	}
	b.log.Debugw("accidents", "entries", report.Accidents)
	b.log.Debugw("stations timing", "stations", report.Stations)
	b.log.Debugw("sections timetable", "sections", report.Sections)
	return report, nil
}

// Commit validates t and walks its route into the timetable. Conflicts and
// invalid routes are reported in the result; the error is non-nil when t is
// malformed or the network and the timetable disagree on a section's length.
func (b *Builder) Commit(t train.Train) (TrainResult, error) {
	if err := t.Validate(); err != nil {
		return TrainResult{}, err
	}
	res := TrainResult{TrainID: t.ID}
	if err := b.validator.Validate(t.Route); err != nil {
		res.Verdict = VerdictInvalidRoute
		res.Reason = err.Error()
		b.results = append(b.results, res)
		return res, nil
	}

	hops, rec, err := b.walk(t)
	if err != nil {
		return TrainResult{}, err
	}
	res.HopsCommitted = hops
	if rec == nil {
		res.Verdict = VerdictScheduled
	} else {
		res.Verdict = VerdictAccident
		res.Reason = rec.Message
		res.Accident = rec
		b.ledger.Add(*rec)
		b.log.Errorw("route has a problem",
			"train", t.ID,
			"kind", rec.Kind,
			"location", rec.Location,
			"time", rec.Time,
			"trains", rec.Trains,
			"detail", rec.Message)
	}
	b.results = append(b.results, res)
	return res, nil
}

// walk commits t hop by hop. The departure time is carried as a local
// accumulator so nothing leaks from one train to the next. It returns the
// number of hops committed before the first conflict, if any.
func (b *Builder) walk(t train.Train) (int, *accident.Record, error) {
	var m kinematics.MotionModel = kinematics.ConstantSpeed{V: t.Speed}
	hops := t.Hops()
	departure := 0.0
	for i, hop := range hops {
		length, ok := b.graph.Distance(hop.Left, hop.Right)
		if !ok {
			return i, nil, fmt.Errorf("hop %q->%q vanished from the network", hop.Left, hop.Right)
		}
		arrival := departure + m.TravelTime(length)
		rec, err := b.commitHop(t, hop, departure, arrival, length)
		if err != nil || rec != nil {
			return i, rec, err
		}
		departure = arrival
	}
	return len(hops), nil, nil
}

func (b *Builder) commitHop(t train.Train, hop train.Hop, departure, arrival, length float64) (*accident.Record, error) {
	key := timetable.SectionKeyOf(hop.Left, hop.Right)
	sec, err := b.sections.Record(key, timetable.Interval{
		Departure: departure,
		Arrival:   arrival,
		Left:      hop.Left,
		Right:     hop.Right,
		Train:     t,
	}, length)
	if err != nil {
		return nil, err
	}
	if rec := b.detector.Station(b.stations.Visit(hop.Left, departure, t.ID)); rec != nil {
		return rec, nil
	}
	if rec := b.detector.Section(sec); rec != nil {
		return rec, nil
	}
	return b.detector.Station(b.stations.Visit(hop.Right, arrival, t.ID)), nil
}

// Report snapshots the run so far.
func (b *Builder) Report() Report {
	r := Report{
		RunID:     b.runID.String(),
		Trains:    append([]TrainResult(nil), b.results...),
		Sections:  b.sections.All(),
		Stations:  b.stations.All(),
		Accidents: b.ledger.Entries(),
	}
	if first, ok := b.ledger.First(); ok {
		r.FirstAccident = &first
	}
	return r
}

// RunJSON is the entry point shared by the CLI and WASM targets.
// It accepts a JSON-encoded Input, runs the batch, and returns a
// JSON-encoded Report.
func RunJSON(jsonInput string, opts ...Option) (string, error) {
	var input Input
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	g, err := graph.New(input.Network)
	if err != nil {
		return "", fmt.Errorf("building graph: %w", err)
	}

	report, err := New(g, opts...).Run(input.Trains)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
