package kinematics

import "math"

// Mover is a train's entry into a section: when it entered and how fast it moves.
type Mover struct {
	Departure float64
	Speed     float64
}

// CatchUpTime returns when two trains that entered a section from the same
// end occupy the same point:
//
//	t = max(d1, d2) + |d1 - d2| * min(v1, v2) / |v1 - v2|
//
// With equal speeds the gap never closes and the later departure instant is
// returned instead.
func CatchUpTime(a, b Mover) float64 {
	start := math.Max(a.Departure, b.Departure)
	dv := math.Abs(a.Speed - b.Speed)
	if dv == 0 {
		return start
	}
	return start + math.Abs(a.Departure-b.Departure)*math.Min(a.Speed, b.Speed)/dv
}

// MeetTime returns the collision time for two trains that entered a section
// of the given length from opposite ends:
//
//	t = max(d1, d2) + length / (v1 + v2)
func MeetTime(a, b Mover, length float64) float64 {
	return math.Max(a.Departure, b.Departure) + length/(a.Speed+b.Speed)
}
