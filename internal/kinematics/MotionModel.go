// Package kinematics holds the point-motion formulas used by the timetable:
// how long a train needs for a link, and when two trains sharing a link meet.
//
// Trains are points moving at constant speed. There is no acceleration,
// braking or train length; a train is on a section from the instant it
// departs one end until the instant it arrives at the other.
package kinematics

// MotionModel is the physics contract for a train moving along one section.
// Distances and speeds share whatever unit the network is declared in; time
// is distance divided by speed.
type MotionModel interface {
	// TravelTime returns the time needed to cover distance.
	TravelTime(distance float64) float64

	// Position returns how far along the section the train is at time t,
	// given it entered at departure. It is 0 before departure.
	Position(departure, t float64) float64
}
