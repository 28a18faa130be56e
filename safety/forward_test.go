package safety

import "testing"

func TestForwardingRule_Targets(t *testing.T) {
	s := newTestSession(t, ModelVWMeb, 0)

	// plain vehicle traffic crosses to the camera bus and back
	if got := s.ForwardTargets(BusVehicle, MebESC51); len(got) != 1 || got[0] != BusCamera {
		t.Errorf("expected [%d], got %v", BusCamera, got)
	}
	if got := s.ForwardTargets(BusCamera, MebACC18); len(got) != 1 || got[0] != BusVehicle {
		t.Errorf("expected [%d], got %v", BusVehicle, got)
	}

	// unknown source buses forward nowhere
	if got := s.ForwardTargets(1, MebESC51); got != nil {
		t.Errorf("expected nil for unmapped bus, got %v", got)
	}
}

func TestForwardingRule_CameraSteeringNotRelayed(t *testing.T) {
	s := newTestSession(t, ModelVWMeb, 0)

	// the camera's own steering command must not reach the vehicle bus;
	// the gatekeeper re-issues it through the transmit gate instead
	if got := s.ForwardTargets(BusCamera, MebHCA03); got != nil {
		t.Errorf("expected nil for gated steering address, got %v", got)
	}
	if got := s.ForwardTargets(BusCamera, MebLDW02); got != nil {
		t.Errorf("expected nil for gated LDW address, got %v", got)
	}
}

// No address the transmit gate may emit onto a bus is ever forwarded onto
// that same bus, for any supported vehicle. Otherwise gatekeeper output
// could reappear as vehicle-native input.
func TestForwardingRule_NeverForwardsOwnOutput(t *testing.T) {
	for _, model := range []Model{ModelVWMeb, ModelVWMqb} {
		for _, param := range []uint32{0, FlagLongControl} {
			hooks := NewVehicleHooks(model, param)
			rule := hooks.ForwardingRule()
			for _, ba := range hooks.TxMsgs() {
				for src, dst := range rule.BusLookup {
					if dst != ba.Bus {
						continue
					}
					for _, target := range rule.Targets(src, ba.Addr) {
						if target == ba.Bus {
							t.Errorf("%s: addr 0x%03X would be forwarded onto its own tx bus %d",
								hooks.Name(), ba.Addr, ba.Bus)
						}
					}
				}
			}
		}
	}
}
