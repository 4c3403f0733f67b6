// Package conflict decides whether a freshly recorded timetable entry clashes
// with what is already scheduled.
//
// Two kinds of conflict exist:
//
//  1. Section collision - two different trains on the same section during a
//     shared open span of time. The reported time is where the trains meet,
//     from constant-speed point kinematics.
//
//  2. Station overcrowding - more distinct trains at a station at one instant
//     than the station's declared capacity.
package conflict

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cxd309/tms-timetable/internal/accident"
	"github.com/cxd309/tms-timetable/internal/kinematics"
	"github.com/cxd309/tms-timetable/internal/timetable"
)

// Intersects reports whether a and b belong to different trains and share a
// genuinely open span of time. Touching endpoints (one train arriving exactly
// when the other departs) do not intersect.
func Intersects(a, b timetable.Interval) bool {
	if a.Train.ID == b.Train.ID {
		return false
	}
	return a.Departure < b.Arrival && b.Departure < a.Arrival
}

// CollisionTime returns when the trains of two intersecting intervals on a
// section of the given length meet. Trains entering from the same station
// catch up with each other; trains entering from opposite ends meet head-on.
// The result is clamped to the window both trains are on the section.
func CollisionTime(prior, latest timetable.Interval, length float64) float64 {
	a := kinematics.Mover{Departure: prior.Departure, Speed: prior.Train.Speed}
	b := kinematics.Mover{Departure: latest.Departure, Speed: latest.Train.Speed}

	var t float64
	if prior.Left == latest.Left {
		t = kinematics.CatchUpTime(a, b)
	} else {
		t = kinematics.MeetTime(a, b, length)
	}

	lo := math.Max(prior.Departure, latest.Departure)
	hi := math.Min(prior.Arrival, latest.Arrival)
	return math.Min(math.Max(t, lo), hi)
}

// offset returns how far from key.A the train of iv is at time t.
func offset(sec *timetable.Section, iv timetable.Interval, t float64) float64 {
	var m kinematics.MotionModel = kinematics.ConstantSpeed{V: iv.Train.Speed}
	pos := math.Min(m.Position(iv.Departure, t), sec.Length)
	if iv.Left == sec.Key.A {
		return pos
	}
	return sec.Length - pos
}

// Detector runs the conflict checks and emits diagnostics for configuration
// gaps it runs into.
type Detector struct {
	log *zap.SugaredLogger
}

// New returns a Detector logging through log; a nil log uses zap.S().
func New(log *zap.SugaredLogger) *Detector {
	if log == nil {
		log = zap.S()
	}
	return &Detector{log: log}
}

// Section checks the section's most recent interval against every earlier
// one, in insertion order, and returns the first collision found, or nil.
func (d *Detector) Section(sec *timetable.Section) *accident.Record {
	if len(sec.Schedule) < 2 {
		return nil
	}
	latest := sec.Latest()
	for _, prior := range sec.Schedule[:len(sec.Schedule)-1] {
		if !Intersects(prior, latest) {
			continue
		}
		t := CollisionTime(prior, latest, sec.Length)
		msg := fmt.Sprintf("section %q: train %s (%s->%s, %g-%g) and train %s (%s->%s, %g-%g) collide",
			sec.Name,
			prior.Train.ID, prior.Left, prior.Right, prior.Departure, prior.Arrival,
			latest.Train.ID, latest.Left, latest.Right, latest.Departure, latest.Arrival)
		r := accident.NewRecord(accident.KindSectionCollision, sec.Name, t,
			[]string{prior.Train.ID, latest.Train.ID}, msg)
		r.Offset = offset(sec, latest, t)
		return &r
	}
	return nil
}

// Station checks one presence set against the station's capacity. A station
// without a declared capacity never overcrowds; the missing configuration is
// logged the first time it matters.
func (d *Detector) Station(st *timetable.Station, p *timetable.Presence) *accident.Record {
	if !st.HasCapacity {
		if st.ReportMissingCapacity() {
			d.log.Errorw("station has no capacity configured; overcrowding checks disabled",
				"station", st.Name)
		}
		return nil
	}
	if len(p.Trains) <= st.Capacity {
		return nil
	}
	msg := fmt.Sprintf("station %q: %d trains at t=%g exceed capacity %d",
		st.Name, len(p.Trains), p.Time, st.Capacity)
	r := accident.NewRecord(accident.KindStationOvercrowding, st.Name, p.Time, p.Trains, msg)
	return &r
}
