package safety

type Fault uint32

const (
	FaultNone Fault = iota
	FaultRelayMalfunction
	FaultRxTimeout
)

type FaultSeverity int

const (
	SeverityWarning FaultSeverity = iota
	SeverityCritical
)

type FaultConfig struct {
	Code        Fault
	Description string
	Severity    FaultSeverity
	Latched     bool
}

var faultConfigs = map[Fault]FaultConfig{
	FaultRelayMalfunction: {FaultRelayMalfunction, "Bypass relay malfunction", SeverityCritical, true},
	FaultRxTimeout:        {FaultRxTimeout, "Vehicle state reception timeout", SeverityWarning, false},
}

func GetFaultConfig(fault Fault) (FaultConfig, bool) {
	config, ok := faultConfigs[fault]
	return config, ok
}
