package safety

// Volkswagen MQB platform message addresses
const (
	MqbLHEPS03  = 0x9F  // RX from EPS, driver steering torque
	MqbESP19    = 0xB2  // RX, wheel speeds
	MqbESP02    = 0x101 // RX, yaw rate
	MqbESP05    = 0x106 // RX, brake switch
	MqbTSK06    = 0x120 // RX, TSK engagement state
	MqbMotor20  = 0x121 // RX, accelerator pedal
	MqbACC06    = 0x122 // TX (long control), acceleration request
	MqbHCA01    = 0x126 // TX, Heading Control Assist steering torque
	MqbACC07    = 0x12E // TX (long control), acceleration request
	MqbGRAACC01 = 0x12B // TX, cruise control buttons for cancel/resume
	MqbACC02    = 0x30C // TX (long control), ACC HUD status
	MqbLDW02    = 0x397 // TX, lane recognition and text alerts
)

type mqbHooks struct {
	longControl bool
	txMsgs      []BusAddr
	fwd         ForwardingRule
}

func newMqbHooks(param uint32) *mqbHooks {
	longControl := param&FlagLongControl != 0

	txMsgs := []BusAddr{
		{BusVehicle, MqbHCA01},
		{BusVehicle, MqbGRAACC01},
		{BusCamera, MqbGRAACC01},
		{BusVehicle, MqbLDW02},
	}
	if longControl {
		txMsgs = append(txMsgs,
			BusAddr{BusVehicle, MqbACC02},
			BusAddr{BusVehicle, MqbACC06},
			BusAddr{BusVehicle, MqbACC07},
		)
	}

	return &mqbHooks{
		longControl: longControl,
		txMsgs:      txMsgs,
		fwd:         forwardingRuleFromTx(txMsgs),
	}
}

func (h *mqbHooks) Name() string {
	if h.longControl {
		return "volkswagen-mqb-long"
	}
	return "volkswagen-mqb"
}

func (h *mqbHooks) TxMsgs() []BusAddr { return h.txMsgs }

func (h *mqbHooks) RelayMalfunctionAddrs() []BusAddr {
	return []BusAddr{{BusVehicle, MqbHCA01}}
}

func (h *mqbHooks) ForwardingRule() ForwardingRule { return h.fwd }

func (h *mqbHooks) SteerLimits() SteerLimits {
	return SteerLimits{
		Max:             300,
		RateUp:          4,
		RateDown:        10,
		DriverAllowance: 80,
		DriverFactor:    3,
	}
}

func (h *mqbHooks) StandstillThreshold() float64 { return 1 }

func (h *mqbHooks) Rx(s *Session, m Message) {
	if m.Bus != BusVehicle {
		return
	}

	switch m.Addr {
	case MqbLHEPS03:
		torque := int(m.Signal("EPS_Lenkmoment"))
		if m.Bool("EPS_VZ_Lenkmoment") {
			torque = -torque
		}
		s.setDriverTorque(torque)

	case MqbESP19:
		s.setWheelSpeeds(
			m.Signal("ESP_VL_Radgeschw_02"),
			m.Signal("ESP_VR_Radgeschw_02"),
			m.Signal("ESP_HL_Radgeschw_02"),
			m.Signal("ESP_HR_Radgeschw_02"),
		)

	case MqbESP02:
		s.setYawRate(m.Signal("ESP_Gierrate"))

	case MqbESP05:
		s.setBrakePressed(m.Bool("ESP_Fahrer_bremst"))

	case MqbTSK06:
		status := int(m.Signal("TSK_Status"))
		s.setCruise(tskEngaged(status), tskMainSwitch(status))

	case MqbMotor20:
		s.setGasPressed(m.Signal("MO_Fahrpedalrohwert_01") > 0)

	case MqbGRAACC01:
		if m.Bool("GRA_Abbrechen") {
			s.cancelCommand()
		}
	}
}

func (h *mqbHooks) Tx(s *Session, m Message) bool {
	switch m.Addr {
	case MqbHCA01:
		torque := int(m.Signal("HCA_01_LM_Offset"))
		if m.Bool("HCA_01_LM_OffSign") {
			torque = -torque
		}
		return s.steerTorqueCheck(torque)

	case MqbGRAACC01:
		return s.buttonCheck(
			m.Bool("GRA_Abbrechen"),
			m.Bool("GRA_Tip_Setzen"),
			m.Bool("GRA_Tip_Wiederaufnahme"),
		)

	case MqbACC02, MqbACC06, MqbACC07:
		// longitudinal actuation requires authority
		return s.ctrl.allowed

	default:
		// LDW_02: advisory only, whitelist is sufficient
		return true
	}
}
