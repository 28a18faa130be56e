package main

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brutella/can"
	"github.com/go-redis/redis/v8"

	"gatekeeper-service/codec"
	"gatekeeper-service/safety"
)

// Channel on which the command-issuing layer requests transmissions. The
// payload format is "<bus> <addr-hex> <data-hex>"; rejected requests are
// dropped silently, the decision is only visible in the counters.
const ipcTxRequestChannel = "gatekeeper:tx"

type IPCRx struct {
	log     *LeveledLogger
	redis   *redis.Client
	session *safety.Session
	decoder *codec.Decoder
	bridge  *Bridge
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc

	txAllowed  uint64
	txRejected uint64

	txSubscription      *redis.PubSub
	vehicleSubscription *redis.PubSub
}

func NewIPCRx(logger *LeveledLogger, redis *redis.Client, session *safety.Session, decoder *codec.Decoder, bridge *Bridge) *IPCRx {
	ctx, cancel := context.WithCancel(context.Background())

	rx := &IPCRx{
		log:     logger,
		redis:   redis,
		session: session,
		decoder: decoder,
		bridge:  bridge,
		ctx:     ctx,
		cancel:  cancel,
	}

	// Setup initial subscriptions
	if err := rx.setupSubscriptions(); err != nil {
		rx.log.Error("Failed to setup subscriptions: %v", err)
		rx.Destroy()
		return nil
	}

	// Initial state read
	rx.readInitialState()

	return rx
}

func (rx *IPCRx) setupSubscriptions() error {
	// Subscribe to vehicle updates
	rx.vehicleSubscription = rx.redis.Subscribe(rx.ctx, "vehicle")

	// Start vehicle handler
	go rx.handleVehicleSubscription()

	// Subscribe to transmit requests
	rx.txSubscription = rx.redis.Subscribe(rx.ctx, ipcTxRequestChannel)

	// Start transmit request handler
	go rx.handleTxSubscription()

	return nil
}

func (rx *IPCRx) handleVehicleSubscription() {
	rx.log.Info("Starting vehicle subscription handler")

	for {
		msg, err := rx.vehicleSubscription.Receive(rx.ctx)
		if err != nil {
			if err == context.Canceled {
				return
			}
			// Check for closed client - panic to trigger systemd restart
			if err.Error() == "redis: client is closed" {
				rx.log.Error("Redis connection lost on vehicle subscription - restarting service")
				panic("Redis disconnected")
			}
			rx.log.Error("Vehicle subscription error: %v", err)
			continue
		}

		switch m := msg.(type) {
		case *redis.Message:
			rx.log.Debug("Vehicle message received: channel=%s, payload=%s", m.Channel, m.Payload)

			// Check if state was updated
			state, err := rx.redis.HGet(rx.ctx, "vehicle", "state").Result()
			if err != nil && err != redis.Nil {
				rx.log.Error("Failed to get vehicle state: %v", err)
				continue
			}

			if err != redis.Nil {
				rx.handleVehicleState(state)
			}

		case *redis.Subscription:
			rx.log.Debug("Vehicle subscription event: %s %s", m.Channel, m.Kind)
		}
	}
}

func (rx *IPCRx) handleTxSubscription() {
	rx.log.Info("Starting transmit request handler")

	for {
		msg, err := rx.txSubscription.Receive(rx.ctx)
		if err != nil {
			if err == context.Canceled {
				return
			}
			// Check for closed client - panic to trigger systemd restart
			if err.Error() == "redis: client is closed" {
				rx.log.Error("Redis connection lost on tx subscription - restarting service")
				panic("Redis disconnected")
			}
			rx.log.Error("Transmit subscription error: %v", err)
			continue
		}

		switch m := msg.(type) {
		case *redis.Message:
			rx.handleTxRequest(m.Payload)

		case *redis.Subscription:
			rx.log.Debug("Transmit subscription event: %s %s", m.Channel, m.Kind)
		}
	}
}

// handleTxRequest runs one candidate frame through the transmit gate.
// Malformed requests and denied frames are dropped; neither is an error.
func (rx *IPCRx) handleTxRequest(payload string) {
	fields := strings.Fields(payload)
	if len(fields) != 3 {
		rx.log.Warn("Malformed transmit request: %q", payload)
		return
	}

	bus, err := strconv.Atoi(fields[0])
	if err != nil {
		rx.log.Warn("Malformed transmit request bus: %q", payload)
		return
	}

	addr, err := strconv.ParseUint(fields[1], 16, 32)
	if err != nil {
		rx.log.Warn("Malformed transmit request address: %q", payload)
		return
	}

	data, err := hex.DecodeString(fields[2])
	if err != nil || len(data) > 8 {
		rx.log.Warn("Malformed transmit request data: %q", payload)
		return
	}

	frame := can.Frame{ID: uint32(addr), Length: uint8(len(data))}
	copy(frame.Data[:], data)

	// Content checks run on decoded signals; addresses without signal
	// definitions carry no checkable content and pass on whitelist alone.
	msg, ok := rx.decoder.Decode(bus, frame)
	if !ok {
		msg = safety.Message{Bus: bus, Addr: frame.ID}
	}

	if !rx.session.CanTransmit(msg) {
		atomic.AddUint64(&rx.txRejected, 1)
		rx.log.Debug("Transmit rejected: bus=%d addr=0x%03X", bus, frame.ID)
		return
	}

	if err := rx.bridge.Publish(bus, frame); err != nil {
		rx.log.Error("Failed to transmit frame 0x%03X on bus %d: %v", frame.ID, bus, err)
		return
	}
	atomic.AddUint64(&rx.txAllowed, 1)
}

func (rx *IPCRx) readInitialState() {
	// Read vehicle state
	state, err := rx.redis.HGet(rx.ctx, "vehicle", "state").Result()
	if err != nil && err != redis.Nil {
		rx.log.Error("Failed to read initial vehicle state: %v", err)
	} else if err != redis.Nil {
		rx.log.Info("Initial vehicle state: %s", state)
		rx.handleVehicleState(state)
	}
}

// handleVehicleState restarts the safety session when the vehicle leaves the
// driving state. A relay malfunction latch only clears here.
func (rx *IPCRx) handleVehicleState(state string) {
	if state == "ready-to-drive" {
		rx.log.Info("Vehicle state changed to: ready-to-drive")
		return
	}

	rx.log.Info("Vehicle state changed to: %s -> resetting safety session", state)
	rx.session.Reset()
}

// Counters returns the transmit gate decision counts.
func (rx *IPCRx) Counters() (allowed, rejected uint64) {
	return atomic.LoadUint64(&rx.txAllowed), atomic.LoadUint64(&rx.txRejected)
}

func (rx *IPCRx) Destroy() {
	rx.mu.Lock()
	defer rx.mu.Unlock()

	if rx.cancel != nil {
		rx.cancel()
	}

	if rx.txSubscription != nil {
		rx.txSubscription.Close()
	}

	if rx.vehicleSubscription != nil {
		rx.vehicleSubscription.Close()
	}
}
