package safety

import "log"

// Model selects the per-vehicle policy
type Model int

const (
	ModelVWMeb Model = iota
	ModelVWMqb
)

// Variant parameter bits, passed alongside the model at session start.
const (
	// FlagLongControl extends the transmit whitelist with the longitudinal
	// control messages of the vehicle family, where supported.
	FlagLongControl uint32 = 1
)

// VehicleHooks is the per-vehicle policy: message addresses, signal names
// and bounds for one vehicle. Implementations are immutable after selection;
// all mutable state lives in the Session.
type VehicleHooks interface {
	// Name returns the human-readable policy name
	Name() string

	// TxMsgs returns the transmit whitelist
	TxMsgs() []BusAddr

	// RelayMalfunctionAddrs returns the (bus, addr) pairs that must never be
	// observed on the receive path
	RelayMalfunctionAddrs() []BusAddr

	// ForwardingRule returns the cross-bus relay policy
	ForwardingRule() ForwardingRule

	// SteerLimits returns the torque bounds for steering commands
	SteerLimits() SteerLimits

	// StandstillThreshold returns the wheel speed below which the vehicle
	// counts as stopped
	StandstillThreshold() float64

	// Rx applies a received vehicle-native message to session state
	Rx(s *Session, m Message)

	// Tx applies vehicle-specific content checks to a transmit candidate
	// that already passed the whitelist
	Tx(s *Session, m Message) bool
}

// NewVehicleHooks selects the policy for one vehicle. The returned hooks are
// shared, read-only configuration.
func NewVehicleHooks(model Model, param uint32) VehicleHooks {
	switch model {
	case ModelVWMeb:
		log.Printf("Creating Volkswagen MEB safety hooks")
		return newMebHooks(param)
	case ModelVWMqb:
		log.Printf("Creating Volkswagen MQB safety hooks")
		return newMqbHooks(param)
	default:
		log.Printf("Unknown vehicle model: %v", model)
		return nil
	}
}
