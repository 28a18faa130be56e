package safety

// SteerLimits bounds a commanded steering torque. Immutable after hook
// selection.
type SteerLimits struct {
	Max             int // absolute torque ceiling
	RateUp          int // max increase away from zero per message
	RateDown        int // max decrease toward zero per message
	DriverAllowance int // driver counter-torque tolerated before derate
	DriverFactor    int // proportional derate per unit of driver torque
}

func maxLimitCheck(val, highest, lowest int) bool {
	return (val > highest) || (val < lowest)
}

// driverLimitCheck validates a commanded torque against the rate limits and
// the tracked driver torque extrema. Above the allowance, driver input
// opposing the command always wins: the allowed envelope collapses toward
// zero proportionally to measured driver torque.
func driverLimitCheck(desired, desiredLast int, driver *torqueSamples, lim SteerLimits) bool {
	// rate limits relative to the last commanded torque
	highestRate := max(desiredLast, 0) + lim.RateUp
	lowestRate := min(desiredLast, 0) - lim.RateUp

	// driver torque derate
	driverMax := lim.Max + lim.DriverAllowance + driver.max*lim.DriverFactor
	driverMin := -lim.Max - lim.DriverAllowance + driver.min*lim.DriverFactor

	// once past the driver limit the command must move toward zero
	highest := min(highestRate, max(desiredLast-lim.RateDown, max(driverMax, 0)))
	lowest := max(lowestRate, min(desiredLast+lim.RateDown, min(driverMin, 0)))

	return maxLimitCheck(desired, highest, lowest)
}

// steerTorqueCheck is the full steering-torque admission check. It mutates
// the last-commanded-torque tracking, so callers must hold the session lock.
func (s *Session) steerTorqueCheck(desired int) bool {
	violation := false

	if s.ctrl.allowed {
		if maxLimitCheck(desired, s.steer.Max, -s.steer.Max) {
			violation = true
		}
		if driverLimitCheck(desired, s.steerTorqueLast, &s.state.torqueDriver, s.steer) {
			violation = true
		}
	} else if desired != 0 {
		// only a neutral command may pass while not engaged
		violation = true
	}

	if violation || !s.ctrl.allowed {
		s.steerTorqueLast = 0
	} else {
		s.steerTorqueLast = desired
	}

	return !violation
}

// buttonCheck gates cruise button transmission: a pure cancel press is
// always transmittable, set/resume only while authority is held.
func (s *Session) buttonCheck(cancel, set, resume bool) bool {
	return (cancel && !set && !resume) || s.ctrl.allowed
}
