// Package accident records detected timetable conflicts for one batch run.
//
// A Ledger groups records by the simulated time of the conflict. The earliest
// time in the ledger is the run's first accident.
package accident

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Kind classifies a conflict.
type Kind string

const (
	KindSectionCollision    Kind = "section-collision"
	KindStationOvercrowding Kind = "station-overcrowding"
)

// Record is one detected conflict.
type Record struct {
	Kind     Kind     `json:"kind"`
	Location string   `json:"location"` // section key or station name
	Time     float64  `json:"time"`
	Trains   []string `json:"trains"` // sorted train IDs
	// Offset is how far from the section's first station (in key order) the
	// collision happens. Zero for station records.
	Offset  float64 `json:"offset,omitempty"`
	Message string  `json:"message"`
}

func (r Record) String() string {
	return fmt.Sprintf("%s at %q t=%g trains=%v", r.Kind, r.Location, r.Time, r.Trains)
}

// NewRecord builds a record with its train list deduplicated and sorted.
func NewRecord(kind Kind, location string, t float64, trains []string, message string) Record {
	ids := slices.Clone(trains)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return Record{Kind: kind, Location: location, Time: t, Trains: ids, Message: message}
}

// Entry is every record sharing one conflict time.
type Entry struct {
	Time    float64  `json:"time"`
	Records []Record `json:"records"`
}

// Ledger maps conflict time to the records raised at that time.
// It is owned by a single run and is not safe for concurrent use.
type Ledger struct {
	byTime map[float64][]Record
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byTime: make(map[float64][]Record)}
}

// Add appends r under r.Time.
func (l *Ledger) Add(r Record) {
	l.byTime[r.Time] = append(l.byTime[r.Time], r)
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	n := 0
	for _, rs := range l.byTime {
		n += len(rs)
	}
	return n
}

// Entries returns the ledger ordered by time; records within a time keep the
// order they were added in.
func (l *Ledger) Entries() []Entry {
	times := l.times()
	slices.Sort(times)
	out := make([]Entry, 0, len(times))
	for _, t := range times {
		out = append(out, Entry{Time: t, Records: slices.Clone(l.byTime[t])})
	}
	return out
}

// First returns the entry with the minimum time. The boolean is false when
// the ledger is empty.
func (l *Ledger) First() (Entry, bool) {
	if len(l.byTime) == 0 {
		return Entry{}, false
	}
	first := slices.Min(l.times())
	return Entry{Time: first, Records: slices.Clone(l.byTime[first])}, true
}

func (l *Ledger) times() []float64 {
	out := make([]float64, 0, len(l.byTime))
	for t := range l.byTime {
		out = append(out, t)
	}
	return out
}
