package safety

import "testing"

var testLimits = SteerLimits{
	Max:             300,
	RateUp:          4,
	RateDown:        10,
	DriverAllowance: 80,
	DriverFactor:    3,
}

func TestMaxLimitCheck(t *testing.T) {
	tests := []struct {
		val, highest, lowest int
		violation            bool
	}{
		{0, 300, -300, false},
		{300, 300, -300, false},
		{301, 300, -300, true},
		{-300, 300, -300, false},
		{-301, 300, -300, true},
	}

	for _, tt := range tests {
		if got := maxLimitCheck(tt.val, tt.highest, tt.lowest); got != tt.violation {
			t.Errorf("maxLimitCheck(%d, %d, %d): expected %v, got %v",
				tt.val, tt.highest, tt.lowest, tt.violation, got)
		}
	}
}

func TestDriverLimitCheck_RateUp(t *testing.T) {
	var driver torqueSamples

	// from zero the command may only rise by RateUp
	if driverLimitCheck(4, 0, &driver, testLimits) {
		t.Error("rise of RateUp must pass")
	}
	if !driverLimitCheck(5, 0, &driver, testLimits) {
		t.Error("rise beyond RateUp must fail")
	}
	if driverLimitCheck(-4, 0, &driver, testLimits) {
		t.Error("negative rise of RateUp must pass")
	}
	if !driverLimitCheck(-5, 0, &driver, testLimits) {
		t.Error("negative rise beyond RateUp must fail")
	}
}

func TestDriverLimitCheck_DriverOverride(t *testing.T) {
	var driver torqueSamples
	for i := 0; i < TorqueSampleWindow; i++ {
		driver.update(-100)
	}

	// derated ceiling: Max + Allowance + min*Factor applied on the opposing
	// side collapses the positive envelope to 300 + 80 - 300 = 80
	if driverLimitCheck(80, 80, &driver, testLimits) {
		t.Error("command at the derated ceiling must pass")
	}
	if !driverLimitCheck(85, 85, &driver, testLimits) {
		t.Error("command above the derated ceiling must fail")
	}

	// commands alongside the driver are not derated
	if driverLimitCheck(-104, -100, &driver, testLimits) {
		t.Error("command with the driver must pass")
	}
}

func TestDriverLimitCheck_MoveTowardZero(t *testing.T) {
	var driver torqueSamples
	for i := 0; i < TorqueSampleWindow; i++ {
		driver.update(-100)
	}

	// past the driver limit the command must fall by at least RateDown
	if !driverLimitCheck(200, 200, &driver, testLimits) {
		t.Error("holding above the derated ceiling must fail")
	}
	if driverLimitCheck(190, 200, &driver, testLimits) {
		t.Error("falling by RateDown must pass")
	}
}

func TestSteerTorqueCheck_RequiresAuthority(t *testing.T) {
	s := newTestSession(t, ModelVWMeb, 0)

	if s.CanTransmit(mebSteerCmdMsg(4)) {
		t.Error("nonzero torque without authority must be rejected")
	}
	if !s.CanTransmit(mebSteerCmdMsg(0)) {
		t.Error("neutral torque must pass without authority")
	}
}

func TestSteerTorqueCheck_AbsoluteMax(t *testing.T) {
	s := newTestSession(t, ModelVWMeb, 0)
	engage(t, s)

	if s.CanTransmit(mebSteerCmdMsg(301)) {
		t.Error("torque above the absolute limit must be rejected")
	}
}

func TestSteerTorqueCheck_RateLimitAcrossMessages(t *testing.T) {
	s := newTestSession(t, ModelVWMeb, 0)
	engage(t, s)

	if !s.CanTransmit(mebSteerCmdMsg(4)) {
		t.Fatal("first ramp step must pass")
	}
	if !s.CanTransmit(mebSteerCmdMsg(8)) {
		t.Fatal("second ramp step must pass")
	}
	if s.CanTransmit(mebSteerCmdMsg(20)) {
		t.Error("jump beyond RateUp must be rejected")
	}
}

func TestSteerTorqueCheck_ViolationResetsRamp(t *testing.T) {
	s := newTestSession(t, ModelVWMeb, 0)
	engage(t, s)

	if !s.CanTransmit(mebSteerCmdMsg(4)) {
		t.Fatal("ramp step must pass")
	}
	if s.CanTransmit(mebSteerCmdMsg(100)) {
		t.Fatal("jump must be rejected")
	}
	// the ramp reference reset to zero with the violation
	if s.CanTransmit(mebSteerCmdMsg(8)) {
		t.Error("ramp must restart from zero after a violation")
	}
	if !s.CanTransmit(mebSteerCmdMsg(4)) {
		t.Error("small step after violation must pass")
	}
}

func TestButtonCheck(t *testing.T) {
	tests := []struct {
		name                string
		allowed             bool
		cancel, set, resume bool
		want                bool
	}{
		{"cancel while disabled", false, true, false, false, true},
		{"set while disabled", false, false, true, false, false},
		{"resume while disabled", false, false, false, true, false},
		{"cancel plus set while disabled", false, true, true, false, false},
		{"set while allowed", true, false, true, false, true},
		{"resume while allowed", true, false, false, true, true},
	}

	for _, tt := range tests {
		s := newTestSession(t, ModelVWMeb, 0)
		s.SetControlsAllowed(tt.allowed)
		got := s.CanTransmit(vwButtonsMsg(BusVehicle, MebGRAACC01, tt.cancel, tt.set, tt.resume))
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
