package safety

import "testing"

func mqbTskStatusMsg(enable, mainSwitch bool) Message {
	status := 0.0
	if mainSwitch {
		status = 2
		if enable {
			status = 3
		}
	}
	return msg(BusVehicle, MqbTSK06, map[string]float64{"TSK_Status": status})
}

func mqbSteerCmdMsg(torque int) Message {
	sign := 0.0
	if torque < 0 {
		sign = 1
		torque = -torque
	}
	return msg(BusVehicle, MqbHCA01, map[string]float64{
		"HCA_01_LM_Offset":  float64(torque),
		"HCA_01_LM_OffSign": sign,
	})
}

func engageMqb(t *testing.T, s *Session) {
	t.Helper()
	s.OnReceive(mqbTskStatusMsg(false, true))
	s.OnReceive(mqbTskStatusMsg(true, true))
	if !s.ControlsAllowed() {
		t.Fatal("expected controls allowed after engagement")
	}
}

func TestMqbLongControlWhitelist(t *testing.T) {
	base := newTestSession(t, ModelVWMqb, 0)
	long := newTestSession(t, ModelVWMqb, FlagLongControl)
	engageMqb(t, base)
	engageMqb(t, long)

	for _, addr := range []uint32{MqbACC02, MqbACC06, MqbACC07} {
		if base.CanTransmit(msg(BusVehicle, addr, nil)) {
			t.Errorf("addr 0x%03X must be blocked without the long control flag", addr)
		}
		if !long.CanTransmit(msg(BusVehicle, addr, nil)) {
			t.Errorf("addr 0x%03X must be transmittable with the long control flag", addr)
		}
	}
}

func TestMqbLongControlRequiresAuthority(t *testing.T) {
	s := newTestSession(t, ModelVWMqb, FlagLongControl)

	if s.CanTransmit(msg(BusVehicle, MqbACC06, nil)) {
		t.Error("acceleration requests without authority must be rejected")
	}
	engageMqb(t, s)
	if !s.CanTransmit(msg(BusVehicle, MqbACC06, nil)) {
		t.Error("acceleration requests with authority must pass")
	}
}

func TestMqbSteerCheck(t *testing.T) {
	s := newTestSession(t, ModelVWMqb, 0)
	engageMqb(t, s)

	if !s.CanTransmit(mqbSteerCmdMsg(4)) {
		t.Error("ramp step must pass")
	}
	if s.CanTransmit(mqbSteerCmdMsg(301)) {
		t.Error("torque above the absolute limit must be rejected")
	}
}

func TestMqbBrakeDisengages(t *testing.T) {
	s := newTestSession(t, ModelVWMqb, 0)
	engageMqb(t, s)

	s.OnReceive(msg(BusVehicle, MqbESP05, map[string]float64{"ESP_Fahrer_bremst": 1}))
	if s.ControlsAllowed() {
		t.Error("brake press must disable controls")
	}
}

func TestMqbStandstillThreshold(t *testing.T) {
	s := newTestSession(t, ModelVWMqb, 0)

	// creeping below the threshold still counts as standstill
	s.OnReceive(msg(BusVehicle, MqbESP19, map[string]float64{
		"ESP_VL_Radgeschw_02": 0.8,
		"ESP_VR_Radgeschw_02": 0.8,
		"ESP_HL_Radgeschw_02": 0.8,
		"ESP_HR_Radgeschw_02": 0.8,
	}))
	if s.VehicleMoving() {
		t.Error("speeds below the threshold must count as standstill")
	}

	s.OnReceive(msg(BusVehicle, MqbESP19, map[string]float64{
		"ESP_VL_Radgeschw_02": 1.5,
		"ESP_VR_Radgeschw_02": 1.5,
		"ESP_HL_Radgeschw_02": 1.5,
		"ESP_HR_Radgeschw_02": 1.5,
	}))
	if !s.VehicleMoving() {
		t.Error("speeds above the threshold must count as moving")
	}
}

func TestMqbDriverTorqueTracked(t *testing.T) {
	s := newTestSession(t, ModelVWMqb, 0)
	s.OnReceive(vwTorqueDriverMsg(MqbLHEPS03, -75))
	if got := s.TorqueDriverMin(); got != -75 {
		t.Errorf("torque min: expected -75, got %d", got)
	}
}

func TestMqbRelayMalfunction(t *testing.T) {
	s := newTestSession(t, ModelVWMqb, 0)
	engageMqb(t, s)

	s.OnReceive(msg(BusVehicle, MqbHCA01, nil))
	if !s.RelayMalfunction() {
		t.Fatal("expected relay malfunction latch")
	}
	if s.CanTransmit(msg(BusVehicle, MqbLDW02, nil)) {
		t.Error("relay malfunction must block all transmission")
	}
}
