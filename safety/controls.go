package safety

// controls tracks whether the assistance computer currently holds actuation
// authority. Authority is granted only on a rising edge of vehicle-native
// cruise engagement with the main switch on; every other input can only
// revoke it.
type controls struct {
	allowed           bool
	cruiseEngagedPrev bool
	brakePressedPrev  bool
}

// updateCruise applies a cruise engagement sample from the vehicle's own
// cruise subsystem.
func (c *controls) updateCruise(engaged, mainSwitch bool) {
	if engaged && mainSwitch && !c.cruiseEngagedPrev {
		c.allowed = true
	}
	if !engaged || !mainSwitch {
		c.allowed = false
	}
	c.cruiseEngagedPrev = engaged
}

// updateBrake applies a brake switch sample. A brake press revokes authority
// on the rising edge, or at any time while the vehicle is moving. A brake
// held since before engagement does not revoke at standstill.
func (c *controls) updateBrake(pressed, moving bool) {
	if pressed && (!c.brakePressedPrev || moving) {
		c.allowed = false
	}
	c.brakePressedPrev = pressed
}

// cancel revokes authority. Cancel commands may de-escalate regardless of
// origin; they can never escalate.
func (c *controls) cancel() {
	c.allowed = false
}

func (c *controls) reset() {
	*c = controls{}
}
