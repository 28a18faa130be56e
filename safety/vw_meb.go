package safety

// Volkswagen MEB platform message addresses
const (
	MebLHEPS03  = 0x9F  // RX from EPS, driver steering torque
	MebESC51    = 0xFC  // RX, wheel speeds
	MebESC50    = 0x102 // RX, yaw rate
	MebMotor51  = 0x10B // RX, TSK engagement state
	MebGRAACC01 = 0x12B // TX, cruise control buttons for cancel/resume
	MebMotor54  = 0x14C // RX, accelerator pedal
	MebACC18    = 0x14D // RX from ECU, ACC status
	MebEA01     = 0x1A4 // TX, EA mitigation
	MebEA02     = 0x1F0 // TX, EA mitigation
	MebHCA03    = 0x303 // TX, Heading Control Assist steering torque
	MebLDW02    = 0x397 // TX, lane recognition and text alerts
	MebMotor14  = 0x3BE // RX, brake pedal switch
)

// TSK (drivetrain coordinator) status values carried in Motor_51. Status 0
// and 1 mean the main switch is off; 2 is standby; 3 through 5 are active
// engagement states.
const (
	tskStatusOff        = 0
	tskStatusInit       = 1
	tskStatusStandby    = 2
	tskStatusActive     = 3
	tskStatusOverride   = 4
	tskStatusStandstill = 5
)

func tskEngaged(status int) bool {
	return status == tskStatusActive || status == tskStatusOverride || status == tskStatusStandstill
}

func tskMainSwitch(status int) bool {
	return status >= tskStatusStandby
}

type mebHooks struct {
	txMsgs []BusAddr
	fwd    ForwardingRule
}

func newMebHooks(param uint32) *mebHooks {
	_ = param // no variant flags for MEB yet

	txMsgs := []BusAddr{
		{BusVehicle, MebHCA03},
		{BusVehicle, MebLDW02},
		{BusVehicle, MebGRAACC01},
		{BusVehicle, MebEA01},
		{BusVehicle, MebEA02},
		{BusCamera, MebGRAACC01},
	}

	return &mebHooks{
		txMsgs: txMsgs,
		fwd:    forwardingRuleFromTx(txMsgs),
	}
}

func (h *mebHooks) Name() string { return "volkswagen-meb" }

func (h *mebHooks) TxMsgs() []BusAddr { return h.txMsgs }

func (h *mebHooks) RelayMalfunctionAddrs() []BusAddr {
	return []BusAddr{{BusVehicle, MebHCA03}}
}

func (h *mebHooks) ForwardingRule() ForwardingRule { return h.fwd }

func (h *mebHooks) SteerLimits() SteerLimits {
	return SteerLimits{
		Max:             300,
		RateUp:          4,
		RateDown:        10,
		DriverAllowance: 80,
		DriverFactor:    3,
	}
}

func (h *mebHooks) StandstillThreshold() float64 { return 0 }

func (h *mebHooks) Rx(s *Session, m Message) {
	if m.Bus != BusVehicle {
		return
	}

	switch m.Addr {
	case MebLHEPS03:
		torque := int(m.Signal("EPS_Lenkmoment"))
		if m.Bool("EPS_VZ_Lenkmoment") {
			torque = -torque
		}
		s.setDriverTorque(torque)

	case MebESC51:
		s.setWheelSpeeds(
			m.Signal("VL_Radgeschw"),
			m.Signal("VR_Radgeschw"),
			m.Signal("HL_Radgeschw"),
			m.Signal("HR_Radgeschw"),
		)

	case MebESC50:
		s.setYawRate(m.Signal("ESP_Gierrate"))

	case MebMotor51:
		status := int(m.Signal("TSK_Status"))
		s.setCruise(tskEngaged(status), tskMainSwitch(status))

	case MebMotor54:
		s.setGasPressed(m.Signal("Accelerator_Pressure") > 0)

	case MebMotor14:
		s.setBrakePressed(m.Bool("MO_Fahrer_bremst"))

	case MebGRAACC01:
		// driver-issued cancel on the vehicle bus
		if m.Bool("GRA_Abbrechen") {
			s.cancelCommand()
		}
	}
}

func (h *mebHooks) Tx(s *Session, m Message) bool {
	switch m.Addr {
	case MebHCA03:
		torque := int(m.Signal("HCA_Lenkmoment"))
		if m.Bool("HCA_VZ_Lenkmoment") {
			torque = -torque
		}
		return s.steerTorqueCheck(torque)

	case MebGRAACC01:
		return s.buttonCheck(
			m.Bool("GRA_Abbrechen"),
			m.Bool("GRA_Tip_Setzen"),
			m.Bool("GRA_Tip_Wiederaufnahme"),
		)

	default:
		// LDW_02, EA_01, EA_02: advisory only, whitelist is sufficient
		return true
	}
}
