package engine

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cxd309/tms-timetable/internal/accident"
	"github.com/cxd309/tms-timetable/internal/conflict"
	"github.com/cxd309/tms-timetable/internal/graph"
	"github.com/cxd309/tms-timetable/internal/route"
	"github.com/cxd309/tms-timetable/internal/timetable"
	"github.com/cxd309/tms-timetable/internal/train"
)

// Input is the JSON-serialisable input to the engine.
type Input struct {
	Network graph.NetworkData `json:"network"`
	Trains  []train.Train     `json:"trains"`
}

// Verdict is the outcome of committing one train.
type Verdict string

const (
	VerdictScheduled    Verdict = "scheduled"
	VerdictInvalidRoute Verdict = "invalid-route"
	VerdictAccident     Verdict = "accident"
)

// TrainResult is what happened to one submitted train.
type TrainResult struct {
	TrainID string  `json:"train_number"`
	Verdict Verdict `json:"verdict"`
	// HopsCommitted counts the hops that passed every check. On an accident
	// the failing hop is not counted, although its section occupancy and
	// departure are already in the logs.
	HopsCommitted int              `json:"hops_committed"`
	Reason        string           `json:"reason,omitempty"`
	Accident      *accident.Record `json:"accident,omitempty"`
}

// Report is the complete output of a batch run.
type Report struct {
	RunID         string                 `json:"run_id"`
	Trains        []TrainResult          `json:"trains"`
	Sections      []timetable.Section    `json:"sections"`
	Stations      []timetable.StationLog `json:"stations"`
	Accidents     []accident.Entry       `json:"accidents"`
	FirstAccident *accident.Entry        `json:"first_accident,omitempty"`
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for diagnostics. The default is zap.S().
func WithLogger(log *zap.SugaredLogger) Option {
	return func(b *Builder) {
		if log == nil {
			log = zap.S()
		}
		b.log = log
	}
}

// WithTimeQuantum sets the width of the bucket station events must share to
// count as simultaneous. Zero groups only bit-identical times.
func WithTimeQuantum(q float64) Option {
	return func(b *Builder) { b.quantum = q }
}

// WithRunID fixes the run ID instead of generating a random one.
func WithRunID(id uuid.UUID) Option {
	return func(b *Builder) { b.runID = id }
}

// Builder commits trains into the timetable one at a time and records every
// conflict it finds. It is not safe for concurrent use.
type Builder struct {
	runID   uuid.UUID
	quantum float64
	log     *zap.SugaredLogger

	graph     *graph.Graph
	validator *route.Validator
	detector  *conflict.Detector
	sections  *timetable.Sections
	stations  *timetable.Stations
	ledger    *accident.Ledger
	results   []TrainResult
}
