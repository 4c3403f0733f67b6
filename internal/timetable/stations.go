package timetable

import (
	"math"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/cxd309/tms-timetable/internal/graph"
)

// DefaultTimeQuantum is the width of the bucket two station events must fall
// into to count as the same instant. Times are computed as sums of
// distance/speed quotients, so mathematically equal instants can differ in
// their last bits.
const DefaultTimeQuantum = 1e-9

// Presence is the set of trains at a station at one instant, in the order
// they were seen.
type Presence struct {
	Time   float64  `json:"time"`
	Trains []string `json:"trains"`
}

func (p *Presence) add(id string) {
	if !slices.Contains(p.Trains, id) {
		p.Trains = append(p.Trains, id)
	}
}

// Station is one station's presence log.
type Station struct {
	Name     string
	Capacity int
	// HasCapacity is false when the network declares no capacity for the
	// station; such a station is never overcrowded.
	HasCapacity bool

	presence         map[float64]*Presence
	capacityReported bool
}

// ReportMissingCapacity returns true the first time it is called for a
// station without a declared capacity, so the gap is diagnosed once.
func (s *Station) ReportMissingCapacity() bool {
	if s.HasCapacity || s.capacityReported {
		return false
	}
	s.capacityReported = true
	return true
}

// Log returns the presence log ordered by time.
func (s *Station) Log() []Presence {
	out := make([]Presence, 0, len(s.presence))
	for _, p := range s.presence {
		out = append(out, Presence{Time: p.Time, Trains: slices.Clone(p.Trains)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// StationLog is the exported snapshot of one station.
type StationLog struct {
	Name     string     `json:"name"`
	Capacity *int       `json:"capacity"`
	Presence []Presence `json:"presence"`
}

// Stations is the per-station timeline of a run. Not safe for concurrent use.
type Stations struct {
	graph   *graph.Graph
	quantum float64
	byName  map[string]*Station
}

// NewStations returns an empty timeline whose capacities come from g.
// Event times are grouped into buckets of width quantum; a quantum of zero
// groups only bit-identical times.
func NewStations(g *graph.Graph, quantum float64) *Stations {
	if quantum < 0 || math.IsNaN(quantum) {
		quantum = 0
	}
	return &Stations{graph: g, quantum: quantum, byName: make(map[string]*Station)}
}

func (s *Stations) bucket(t float64) float64 {
	if s.quantum == 0 {
		return t
	}
	return math.Round(t / s.quantum)
}

// Visit records that train id is at the station at time t (arriving or
// departing) and returns the station and the presence set for that instant.
func (s *Stations) Visit(name string, t float64, id string) (*Station, *Presence) {
	st, ok := s.byName[name]
	if !ok {
		capacity, has := s.graph.Capacity(name)
		st = &Station{
			Name:        name,
			Capacity:    capacity,
			HasCapacity: has,
			presence:    make(map[float64]*Presence),
		}
		s.byName[name] = st
	}
	key := s.bucket(t)
	p, ok := st.presence[key]
	if !ok {
		p = &Presence{Time: t}
		st.presence[key] = p
	}
	p.add(id)
	return st, p
}

// Get returns the station named name, if any train has visited it.
func (s *Stations) Get(name string) (*Station, bool) {
	st, ok := s.byName[name]
	return st, ok
}

// All returns the log of every visited station, ordered by name.
func (s *Stations) All() []StationLog {
	out := make([]StationLog, 0, len(s.byName))
	for _, st := range s.byName {
		l := StationLog{Name: st.Name, Presence: st.Log()}
		if st.HasCapacity {
			c := st.Capacity
			l.Capacity = &c
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
