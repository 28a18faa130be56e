package safety

// Number of driver torque samples the rolling window covers. A burst of
// driver input ages out of the extrema after this many subsequent samples.
const TorqueSampleWindow = 6

// torqueSamples tracks driver steering torque over the last
// TorqueSampleWindow samples. Extrema are recomputed over the whole window
// on every update; sustained one-sided driver input moves both bounds to
// that side, which is what lets the transmit validator derate commands that
// oppose the driver.
type torqueSamples struct {
	values [TorqueSampleWindow]int
	min    int
	max    int
}

func (t *torqueSamples) update(sample int) {
	for i := TorqueSampleWindow - 1; i > 0; i-- {
		t.values[i] = t.values[i-1]
	}
	t.values[0] = sample

	t.min = t.values[0]
	t.max = t.values[0]
	for _, v := range t.values[1:] {
		if v < t.min {
			t.min = v
		}
		if v > t.max {
			t.max = v
		}
	}
}

func (t *torqueSamples) reset() {
	*t = torqueSamples{}
}

// VehicleState is the rolling model of vehicle state derived from inbound
// frames. It is owned by a Session; hooks mutate it through Session setters
// while the Session lock is held.
type VehicleState struct {
	torqueDriver     torqueSamples
	wheelSpeeds      [4]float64
	brakePressed     bool
	gasPressed       bool
	cruiseEngaged    bool
	cruiseMainSwitch bool
	yawRate          float64
}

// moving reports whether any wheel is turning faster than the standstill
// threshold.
func (s *VehicleState) moving(threshold float64) bool {
	for _, v := range s.wheelSpeeds {
		if v > threshold {
			return true
		}
	}
	return false
}

func (s *VehicleState) reset() {
	*s = VehicleState{}
}
