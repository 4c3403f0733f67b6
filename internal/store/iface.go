package store

import (
	"github.com/cxd309/tms-timetable/internal/accident"
	"github.com/cxd309/tms-timetable/internal/engine"
)

// Reports is the set of store operations the CLI depends on.
type Reports interface {
	Close() error

	SaveReport(r engine.Report) error
	GetRun(id string) (*Run, error)
	ListRuns() ([]Run, error)

	ListAccidents(runID string) ([]accident.Record, error)
	FirstAccident(runID string) (*accident.Entry, error)

	ListOccupancy(runID, section string) ([]Occupancy, error)
	ListPresence(runID, station string) (map[float64][]string, error)
}

var _ Reports = (*Store)(nil)
