package main

import (
	"log"
	"sync"
	"time"
)

// BusCount covers the two gateway segments: index 0 is the vehicle bus,
// index 1 the camera bus.
const BusCount = 2

const busLinkTimeout = 2 * time.Second

type BusLink struct {
	Configured bool
	LastFrame  time.Time
}

// Buses tracks per-segment link health from frame arrival times.
type Buses struct {
	log   *log.Logger
	links [BusCount]BusLink
	mu    sync.RWMutex
}

func NewBuses(logger *log.Logger) *Buses {
	return &Buses{
		log: logger,
	}
}

func (b *Buses) Destroy() {}

func (b *Buses) Configure(idx int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx < 0 || idx >= BusCount {
		b.log.Printf("Invalid bus index: %d (bus count: %d)", idx, BusCount)
		return
	}

	b.links[idx].Configured = true
}

func (b *Buses) MarkFrame(idx int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if idx < 0 || idx >= BusCount {
		b.log.Printf("Invalid bus index: %d (bus count: %d)", idx, BusCount)
		return
	}

	b.links[idx].LastFrame = time.Now()
}

// Up reports whether a configured segment has seen traffic recently.
func (b *Buses) Up(idx int) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if idx < 0 || idx >= BusCount {
		return false
	}
	link := b.links[idx]
	return link.Configured && time.Since(link.LastFrame) <= busLinkTimeout
}

// AllUp reports whether every configured segment is healthy.
func (b *Buses) AllUp() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, link := range b.links {
		if link.Configured && time.Since(link.LastFrame) > busLinkTimeout {
			return false
		}
	}
	return true
}
