package safety

import "testing"

func TestControls_EngagementEdge(t *testing.T) {
	var c controls

	// steady engaged state without an edge never escalates
	c.cruiseEngagedPrev = true
	c.updateCruise(true, true)
	if c.allowed {
		t.Error("no rising edge, must stay disabled")
	}

	c = controls{}
	c.updateCruise(true, true)
	if !c.allowed {
		t.Error("rising edge with main switch on must enable")
	}
}

func TestControls_EngagementRequiresMainSwitch(t *testing.T) {
	var c controls
	c.updateCruise(true, false)
	if c.allowed {
		t.Error("engagement without main switch must not enable")
	}
}

func TestControls_DisengageOnCruiseLoss(t *testing.T) {
	var c controls
	c.updateCruise(true, true)
	c.updateCruise(false, true)
	if c.allowed {
		t.Error("cruise loss must disable")
	}

	// re-engagement requires a new rising edge
	c.updateCruise(true, true)
	if !c.allowed {
		t.Error("new rising edge must enable again")
	}
}

func TestControls_DisengageOnMainSwitchLoss(t *testing.T) {
	var c controls
	c.updateCruise(true, true)
	c.updateCruise(true, false)
	if c.allowed {
		t.Error("main switch loss must disable")
	}
}

func TestControls_BrakeRisingEdge(t *testing.T) {
	var c controls
	c.updateCruise(true, true)

	c.updateBrake(true, false)
	if c.allowed {
		t.Error("brake rising edge must disable even at standstill")
	}
}

func TestControls_BrakeHeldAtStandstill(t *testing.T) {
	var c controls

	// brake held since before engagement
	c.updateBrake(true, false)
	c.updateCruise(true, true)

	c.updateBrake(true, false)
	if !c.allowed {
		t.Error("brake held from before engagement must not disable at standstill")
	}

	c.updateBrake(true, true)
	if c.allowed {
		t.Error("held brake while moving must disable")
	}
}

func TestControls_CancelAlwaysDeescalates(t *testing.T) {
	var c controls
	c.cancel()
	if c.allowed {
		t.Error("cancel from disabled stays disabled")
	}

	c.updateCruise(true, true)
	c.cancel()
	if c.allowed {
		t.Error("cancel must disable")
	}
}

func TestControls_Reset(t *testing.T) {
	var c controls
	c.updateCruise(true, true)
	c.updateBrake(true, true)
	c.reset()
	if c.allowed || c.cruiseEngagedPrev || c.brakePressedPrev {
		t.Error("expected neutral controls after reset")
	}
}
