package safety

// ForwardingRule is the static relay policy between bus segments: a source
// bus to destination bus map plus a per-destination blacklist of addresses
// that must never be relayed onto that bus. Every address the transmit
// validator may place on a bus is blacklisted for that bus, so gateway
// output can never loop back as vehicle-native input.
type ForwardingRule struct {
	BusLookup map[int]int
	Blacklist map[int]map[uint32]bool
}

// forwardingRuleFromTx builds the standard gateway relay rule (bus 0 and
// bus 2 swap) with every transmit-whitelisted address blacklisted on its
// own bus.
func forwardingRuleFromTx(tx []BusAddr) ForwardingRule {
	blacklist := map[int]map[uint32]bool{
		BusVehicle: {},
		BusCamera:  {},
	}
	for _, ba := range tx {
		if set, ok := blacklist[ba.Bus]; ok {
			set[ba.Addr] = true
		}
	}
	return ForwardingRule{
		BusLookup: map[int]int{BusVehicle: BusCamera, BusCamera: BusVehicle},
		Blacklist: blacklist,
	}
}

// Targets returns the destination buses a frame received as (bus, addr)
// must be replicated onto. Unknown buses and blacklisted addresses forward
// nowhere.
func (r ForwardingRule) Targets(bus int, addr uint32) []int {
	dest, ok := r.BusLookup[bus]
	if !ok {
		return nil
	}
	if r.Blacklist[dest][addr] {
		return nil
	}
	return []int{dest}
}
