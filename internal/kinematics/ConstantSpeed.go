package kinematics

// ConstantSpeed implements MotionModel for a train that moves at V from the
// moment it departs.
type ConstantSpeed struct {
	V float64 `json:"speed"`
}

func (c ConstantSpeed) TravelTime(distance float64) float64 { return distance / c.V }

func (c ConstantSpeed) Position(departure, t float64) float64 {
	if t <= departure {
		return 0
	}
	return c.V * (t - departure)
}
