package safety

import (
	"fmt"
	"sync"
	"time"
)

// Session is the per-drive admission-control state: the tracked vehicle
// model, the controls authority machine and the relay monitor, bound to one
// vehicle policy. All state is owned here; there are no package globals.
//
// The receive path and the transmit gate may run on different goroutines, so
// state is guarded by a mutex. Critical sections are table lookups and
// arithmetic only; nothing blocks while the lock is held.
type Session struct {
	mu     sync.RWMutex
	logger Logger
	hooks  VehicleHooks

	state VehicleState
	ctrl  controls
	relay relayMonitor

	txAllowed       map[BusAddr]bool
	steer           SteerLimits
	steerTorqueLast int
	lastRx          time.Time
}

// NewSession creates a neutral session for one vehicle. The model and
// variant parameter are fixed for the session lifetime.
func NewSession(model Model, param uint32, logger Logger) (*Session, error) {
	hooks := NewVehicleHooks(model, param)
	if hooks == nil {
		return nil, fmt.Errorf("no safety hooks for vehicle model %v", model)
	}

	if logger == nil {
		logger = nopLogger{}
	}

	txAllowed := make(map[BusAddr]bool, len(hooks.TxMsgs()))
	for _, ba := range hooks.TxMsgs() {
		txAllowed[ba] = true
	}

	s := &Session{
		logger:    logger,
		hooks:     hooks,
		relay:     newRelayMonitor(hooks.RelayMalfunctionAddrs()),
		txAllowed: txAllowed,
		steer:     hooks.SteerLimits(),
		lastRx:    time.Now(),
	}

	logger.Info("Safety session initialized: policy=%s tx-whitelist=%d", hooks.Name(), len(txAllowed))
	return s, nil
}

// Hooks returns the selected vehicle policy.
func (s *Session) Hooks() VehicleHooks {
	return s.hooks
}

// OnReceive classifies one inbound frame and updates tracked state. It never
// fails: messages with no tracked signals are no-ops.
func (s *Session) OnReceive(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRx = time.Now()

	if s.relay.watched[BusAddr{Bus: m.Bus, Addr: m.Addr}] && !s.relay.tripped {
		s.logger.Error("Relay malfunction: addr 0x%03X observed on bus %d", m.Addr, m.Bus)
	}
	s.relay.observe(m.Bus, m.Addr)

	s.hooks.Rx(s, m)

	// the latch outranks any engagement edge the hooks may have acted on
	if s.relay.tripped {
		s.ctrl.allowed = false
	}
}

// CanTransmit decides whether an outbound frame candidate may be placed on
// the bus. A false result carries no error: the frame is simply not sent.
func (s *Session) CanTransmit(m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.relay.tripped {
		return false
	}
	if !s.txAllowed[BusAddr{Bus: m.Bus, Addr: m.Addr}] {
		return false
	}
	return s.hooks.Tx(s, m)
}

// ForwardTargets returns the buses a received frame must be replicated onto.
// Forwarding stops entirely while the relay malfunction latch is set.
func (s *Session) ForwardTargets(bus int, addr uint32) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.relay.tripped {
		return nil
	}
	return s.hooks.ForwardingRule().Targets(bus, addr)
}

// CheckRxTimeout revokes authority when no frame has been received within
// the timeout. Unlike a relay malfunction this does not latch; a valid
// re-engagement restores authority once frames flow again.
func (s *Session) CheckRxTimeout(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastRx) <= timeout {
		return false
	}
	if s.ctrl.allowed {
		s.logger.Warn("Vehicle state stale, revoking controls")
		s.ctrl.allowed = false
	}
	return true
}

// Reset returns the session to its neutral initial state, clearing tracked
// signals, authority and the relay malfunction latch.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.reset()
	s.ctrl.reset()
	s.relay.reset()
	s.steerTorqueLast = 0
	s.lastRx = time.Now()
	s.logger.Info("Safety session reset")
}

// --- setters used by vehicle hooks on the receive path (lock held) ---

func (s *Session) setDriverTorque(torque int) {
	s.state.torqueDriver.update(torque)
}

func (s *Session) setWheelSpeeds(fl, fr, rl, rr float64) {
	for i, v := range []float64{fl, fr, rl, rr} {
		if v < 0 {
			v = 0
		}
		s.state.wheelSpeeds[i] = v
	}
}

func (s *Session) setBrakePressed(pressed bool) {
	s.state.brakePressed = pressed
	s.ctrl.updateBrake(pressed, s.state.moving(s.hooks.StandstillThreshold()))
}

func (s *Session) setGasPressed(pressed bool) {
	s.state.gasPressed = pressed
}

func (s *Session) setCruise(engaged, mainSwitch bool) {
	s.state.cruiseEngaged = engaged
	s.state.cruiseMainSwitch = mainSwitch
	s.ctrl.updateCruise(engaged, mainSwitch)
}

func (s *Session) setYawRate(rate float64) {
	s.state.yawRate = rate
}

func (s *Session) cancelCommand() {
	s.ctrl.cancel()
}

// --- introspection, used by the IPC surface and the test harness ---

func (s *Session) ControlsAllowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctrl.allowed
}

// SetControlsAllowed forces the authority flag. Verification surface only;
// production escalation goes through the cruise engagement path.
func (s *Session) SetControlsAllowed(allowed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.allowed = allowed
	if allowed {
		// pretend a prior engagement edge so self-transitions hold
		s.ctrl.cruiseEngagedPrev = true
	}
}

func (s *Session) TorqueDriverMin() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.torqueDriver.min
}

func (s *Session) TorqueDriverMax() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.torqueDriver.max
}

func (s *Session) RelayMalfunction() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.relay.tripped
}

func (s *Session) WheelSpeeds() [4]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.wheelSpeeds
}

func (s *Session) VehicleMoving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.moving(s.hooks.StandstillThreshold())
}

func (s *Session) BrakePressed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.brakePressed
}

func (s *Session) GasPressed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.gasPressed
}

func (s *Session) CruiseEngaged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.cruiseEngaged
}

func (s *Session) CruiseMainSwitch() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.cruiseMainSwitch
}

func (s *Session) YawRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.yawRate
}
