package safety

// Bus numbering follows the harness wiring: the vehicle's own powertrain
// network is bus 0, the camera/gateway segment is bus 2.
const (
	BusVehicle = 0
	BusCamera  = 2
)

// Message is a CAN frame after signal decode: identified by (bus, address)
// with named signal values. Wire-level packing is handled outside this
// package; hooks only read signal values by name.
type Message struct {
	Bus     int
	Addr    uint32
	Signals map[string]float64
}

// Signal returns the value of a named signal, or 0 if absent.
func (m Message) Signal(name string) float64 {
	return m.Signals[name]
}

// Bool reports whether a named signal is set (non-zero).
func (m Message) Bool(name string) bool {
	return m.Signals[name] != 0
}

// BusAddr identifies a message endpoint on one bus segment.
type BusAddr struct {
	Bus  int
	Addr uint32
}
