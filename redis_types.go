package main

// Redis message types for gatekeeper status updates
type RedisControls struct {
	Allowed          bool
	RelayMalfunction bool
}

type RedisDriver struct {
	TorqueMin    int
	TorqueMax    int
	BrakePressed bool
	GasPressed   bool
}

type RedisMotion struct {
	WheelSpeeds [4]float64
	YawRate     float64
	Moving      bool
}

type RedisCruise struct {
	Engaged    bool
	MainSwitch bool
}

type RedisCounters struct {
	TxAllowed  uint64
	TxRejected uint64
	Forwarded  uint64
}
