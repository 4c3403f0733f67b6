// Package timetable keeps the occupancy logs a batch run builds up: for every
// section the ordered list of trains that used it, and for every station the
// trains present at each instant.
//
// The logs only store; deciding whether an entry conflicts with another is
// left to the conflict package.
package timetable

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cxd309/tms-timetable/internal/train"
)

// ErrLengthMismatch is returned when a section is recorded with a length
// different from the one it was created with.
var ErrLengthMismatch = errors.New("section length mismatch")

// SectionKey identifies a section independent of travel direction: A is the
// lexicographically smaller endpoint.
type SectionKey struct {
	A string `json:"a"`
	B string `json:"b"`
}

// SectionKeyOf returns the canonical key for the section between a and b.
// SectionKeyOf(a, b) == SectionKeyOf(b, a).
func SectionKeyOf(a, b string) SectionKey {
	if b < a {
		a, b = b, a
	}
	return SectionKey{A: a, B: b}
}

// String renders the key as the concatenation of its endpoints, e.g. "de".
func (k SectionKey) String() string { return k.A + k.B }

// Interval is the span during which one train occupies one section, moving
// from Left towards Right.
type Interval struct {
	Departure float64     `json:"departure"`
	Arrival   float64     `json:"arrival"`
	Left      string      `json:"left"`
	Right     string      `json:"right"`
	Train     train.Train `json:"train"`
}

// Section is the occupancy log of one section.
type Section struct {
	Key      SectionKey `json:"key"`
	Name     string     `json:"name"`
	Length   float64    `json:"length"`
	Schedule []Interval `json:"schedule"` // insertion order
}

// Latest returns the most recently recorded interval.
func (s *Section) Latest() Interval { return s.Schedule[len(s.Schedule)-1] }

// Sections is the per-section timetable of a run. Not safe for concurrent use.
type Sections struct {
	byKey map[SectionKey]*Section
}

// NewSections returns an empty section timetable.
func NewSections() *Sections {
	return &Sections{byKey: make(map[SectionKey]*Section)}
}

// Record appends iv to the section's schedule, creating the section with the
// given length the first time the key is seen.
func (s *Sections) Record(key SectionKey, iv Interval, length float64) (*Section, error) {
	sec, ok := s.byKey[key]
	if !ok {
		sec = &Section{Key: key, Name: key.String(), Length: length}
		s.byKey[key] = sec
	} else if sec.Length != length {
		return nil, fmt.Errorf("%w: %q has length %v, got %v", ErrLengthMismatch, key.String(), sec.Length, length)
	}
	sec.Schedule = append(sec.Schedule, iv)
	return sec, nil
}

// Get returns the section for key.
func (s *Sections) Get(key SectionKey) (*Section, bool) {
	sec, ok := s.byKey[key]
	return sec, ok
}

// Schedule returns the intervals recorded for key, in insertion order.
func (s *Sections) Schedule(key SectionKey) []Interval {
	sec, ok := s.byKey[key]
	if !ok {
		return nil
	}
	out := make([]Interval, len(sec.Schedule))
	copy(out, sec.Schedule)
	return out
}

// All returns a copy of every section, ordered by key.
func (s *Sections) All() []Section {
	out := make([]Section, 0, len(s.byKey))
	for _, sec := range s.byKey {
		cp := *sec
		cp.Schedule = s.Schedule(sec.Key)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.A != out[j].Key.A {
			return out[i].Key.A < out[j].Key.A
		}
		return out[i].Key.B < out[j].Key.B
	})
	return out
}
