package safety

// relayMonitor watches for safety-relevant outbound addresses arriving on
// the bus where the gatekeeper itself would transmit them. Seeing one means
// the isolation relay has not switched to bypass mode, so another node is
// still sourcing actuation commands. The fault latches until the session is
// reset.
type relayMonitor struct {
	watched map[BusAddr]bool
	tripped bool
}

func newRelayMonitor(addrs []BusAddr) relayMonitor {
	watched := make(map[BusAddr]bool, len(addrs))
	for _, ba := range addrs {
		watched[ba] = true
	}
	return relayMonitor{watched: watched}
}

// observe records a received (bus, addr) pair and reports whether the
// malfunction latch is set afterwards.
func (r *relayMonitor) observe(bus int, addr uint32) bool {
	if r.watched[BusAddr{Bus: bus, Addr: addr}] {
		r.tripped = true
	}
	return r.tripped
}

func (r *relayMonitor) reset() {
	r.tripped = false
}
