package main

import (
	"sync"
	"sync/atomic"

	"github.com/brutella/can"

	"gatekeeper-service/safety"
)

// Bridge replicates received frames across bus segments according to the
// session's forwarding policy. Publishers are registered per bus number once
// the CAN devices are up.
type Bridge struct {
	log        *LeveledLogger
	session    *safety.Session
	mu         sync.RWMutex
	publishers map[int]func(can.Frame) error
	forwarded  uint64
}

func NewBridge(logger *LeveledLogger, session *safety.Session) *Bridge {
	return &Bridge{
		log:        logger,
		session:    session,
		publishers: make(map[int]func(can.Frame) error),
	}
}

func (b *Bridge) Destroy() {}

// SetPublisher registers the transmit function for one bus number.
func (b *Bridge) SetPublisher(bus int, publish func(can.Frame) error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.publishers[bus] = publish
}

// Publish places a frame on one bus, if that bus is attached.
func (b *Bridge) Publish(bus int, frame can.Frame) error {
	b.mu.RLock()
	publish := b.publishers[bus]
	b.mu.RUnlock()

	if publish == nil {
		b.log.Debug("No publisher for bus %d, dropping frame 0x%03X", bus, frame.ID)
		return nil
	}

	b.log.DebugCAN("TX", bus, frame.ID, frame.Data[:], frame.Length)
	return publish(frame)
}

// HandleReceived relays one received frame to its forwarding destinations.
func (b *Bridge) HandleReceived(bus int, frame can.Frame) {
	for _, dest := range b.session.ForwardTargets(bus, frame.ID) {
		if err := b.Publish(dest, frame); err != nil {
			b.log.Error("Failed to forward frame 0x%03X from bus %d to bus %d: %v", frame.ID, bus, dest, err)
			continue
		}
		atomic.AddUint64(&b.forwarded, 1)
	}
}

// Forwarded returns the number of frames relayed so far.
func (b *Bridge) Forwarded() uint64 {
	return atomic.LoadUint64(&b.forwarded)
}
