package codec

import "gatekeeper-service/safety"

// Shared layouts for messages common to the Volkswagen platforms.
var (
	vwDriverTorqueSignals = []Signal{
		{Name: "EPS_Lenkmoment", Start: 16, Size: 10, Factor: 1},
		{Name: "EPS_VZ_Lenkmoment", Start: 26, Size: 1, Factor: 1},
	}
	vwGraButtonSignals = []Signal{
		{Name: "GRA_Abbrechen", Start: 13, Size: 1, Factor: 1},
		{Name: "GRA_Tip_Setzen", Start: 16, Size: 1, Factor: 1},
		{Name: "GRA_Tip_Wiederaufnahme", Start: 19, Size: 1, Factor: 1},
	}
)

var mebMessages = []MessageDef{
	{Addr: safety.MebLHEPS03, Name: "LH_EPS_03", Signals: vwDriverTorqueSignals},
	{Addr: safety.MebESC51, Name: "ESC_51", Signals: []Signal{
		{Name: "VL_Radgeschw", Start: 0, Size: 16, Factor: 0.0075},
		{Name: "VR_Radgeschw", Start: 16, Size: 16, Factor: 0.0075},
		{Name: "HL_Radgeschw", Start: 32, Size: 16, Factor: 0.0075},
		{Name: "HR_Radgeschw", Start: 48, Size: 16, Factor: 0.0075},
	}},
	{Addr: safety.MebESC50, Name: "ESC_50", Signals: []Signal{
		{Name: "ESP_Gierrate", Start: 16, Size: 14, Factor: 0.01, Signed: true},
	}},
	{Addr: safety.MebMotor51, Name: "Motor_51", Signals: []Signal{
		{Name: "TSK_Status", Start: 24, Size: 4, Factor: 1},
	}},
	{Addr: safety.MebMotor54, Name: "Motor_54", Signals: []Signal{
		{Name: "Accelerator_Pressure", Start: 32, Size: 8, Factor: 0.4},
	}},
	{Addr: safety.MebMotor14, Name: "Motor_14", Signals: []Signal{
		{Name: "MO_Fahrer_bremst", Start: 28, Size: 1, Factor: 1},
	}},
	{Addr: safety.MebGRAACC01, Name: "GRA_ACC_01", Signals: vwGraButtonSignals},
	{Addr: safety.MebHCA03, Name: "HCA_03", Signals: []Signal{
		{Name: "HCA_Lenkmoment", Start: 16, Size: 12, Factor: 1},
		{Name: "HCA_VZ_Lenkmoment", Start: 31, Size: 1, Factor: 1},
	}},
}

var mqbMessages = []MessageDef{
	{Addr: safety.MqbLHEPS03, Name: "LH_EPS_03", Signals: vwDriverTorqueSignals},
	{Addr: safety.MqbESP19, Name: "ESP_19", Signals: []Signal{
		{Name: "ESP_VL_Radgeschw_02", Start: 0, Size: 16, Factor: 0.0075},
		{Name: "ESP_VR_Radgeschw_02", Start: 16, Size: 16, Factor: 0.0075},
		{Name: "ESP_HL_Radgeschw_02", Start: 32, Size: 16, Factor: 0.0075},
		{Name: "ESP_HR_Radgeschw_02", Start: 48, Size: 16, Factor: 0.0075},
	}},
	{Addr: safety.MqbESP02, Name: "ESP_02", Signals: []Signal{
		{Name: "ESP_Gierrate", Start: 16, Size: 14, Factor: 0.01, Signed: true},
	}},
	{Addr: safety.MqbESP05, Name: "ESP_05", Signals: []Signal{
		{Name: "ESP_Fahrer_bremst", Start: 26, Size: 1, Factor: 1},
	}},
	{Addr: safety.MqbTSK06, Name: "TSK_06", Signals: []Signal{
		{Name: "TSK_Status", Start: 24, Size: 4, Factor: 1},
	}},
	{Addr: safety.MqbMotor20, Name: "Motor_20", Signals: []Signal{
		{Name: "MO_Fahrpedalrohwert_01", Start: 12, Size: 8, Factor: 0.4},
	}},
	{Addr: safety.MqbGRAACC01, Name: "GRA_ACC_01", Signals: vwGraButtonSignals},
	{Addr: safety.MqbHCA01, Name: "HCA_01", Signals: []Signal{
		{Name: "HCA_01_LM_Offset", Start: 16, Size: 12, Factor: 1},
		{Name: "HCA_01_LM_OffSign", Start: 31, Size: 1, Factor: 1},
	}},
}
