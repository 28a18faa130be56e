package safety

import "testing"

// testLogger implements Logger for testing
type testLogger struct{}

func (l *testLogger) Printf(format string, v ...interface{}) {}
func (l *testLogger) Debug(format string, v ...interface{})  {}
func (l *testLogger) Info(format string, v ...interface{})   {}
func (l *testLogger) Warn(format string, v ...interface{})   {}
func (l *testLogger) Error(format string, v ...interface{})  {}

func newTestSession(t *testing.T, model Model, param uint32) *Session {
	t.Helper()
	s, err := NewSession(model, param, &testLogger{})
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	return s
}

func msg(bus int, addr uint32, signals map[string]float64) Message {
	return Message{Bus: bus, Addr: addr, Signals: signals}
}

// --- Volkswagen message builders, vehicle bus unless stated otherwise ---

func vwTorqueDriverMsg(addr uint32, torque int) Message {
	sign := 0.0
	if torque < 0 {
		sign = 1
		torque = -torque
	}
	return msg(BusVehicle, addr, map[string]float64{
		"EPS_Lenkmoment":    float64(torque),
		"EPS_VZ_Lenkmoment": sign,
	})
}

func vwButtonsMsg(bus int, addr uint32, cancel, set, resume bool) Message {
	b := func(v bool) float64 {
		if v {
			return 1
		}
		return 0
	}
	return msg(bus, addr, map[string]float64{
		"GRA_Abbrechen":          b(cancel),
		"GRA_Tip_Setzen":         b(set),
		"GRA_Tip_Wiederaufnahme": b(resume),
	})
}

func mebTskStatusMsg(enable, mainSwitch bool) Message {
	status := 0.0
	if mainSwitch {
		status = 2
		if enable {
			status = 3
		}
	}
	return msg(BusVehicle, MebMotor51, map[string]float64{"TSK_Status": status})
}

func mebBrakeMsg(pressed bool) Message {
	v := 0.0
	if pressed {
		v = 1
	}
	return msg(BusVehicle, MebMotor14, map[string]float64{"MO_Fahrer_bremst": v})
}

func mebSpeedMsg(speed float64) Message {
	return msg(BusVehicle, MebESC51, map[string]float64{
		"VL_Radgeschw": speed,
		"VR_Radgeschw": speed,
		"HL_Radgeschw": speed,
		"HR_Radgeschw": speed,
	})
}

func mebSteerCmdMsg(torque int) Message {
	sign := 0.0
	if torque < 0 {
		sign = 1
		torque = -torque
	}
	return msg(BusVehicle, MebHCA03, map[string]float64{
		"HCA_Lenkmoment":    float64(torque),
		"HCA_VZ_Lenkmoment": sign,
	})
}

// engage brings a session into the allowed state through the production
// escalation path.
func engage(t *testing.T, s *Session) {
	t.Helper()
	s.OnReceive(mebTskStatusMsg(false, true))
	s.OnReceive(mebTskStatusMsg(true, true))
	if !s.ControlsAllowed() {
		t.Fatal("expected controls allowed after engagement")
	}
}
