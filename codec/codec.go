// Package codec extracts named signal values from raw CAN frames for the
// gatekeeper service. It covers exactly the signals the safety hooks
// consume; it is not a general message-definition compiler. The safety core
// itself never imports this package.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/brutella/can"

	"gatekeeper-service/safety"
)

// Signal describes one field of a frame payload, little-endian bit order.
type Signal struct {
	Name   string
	Start  uint8 // bit offset into the 64-bit little-endian payload word
	Size   uint8 // width in bits, at most 32
	Factor float64
	Offset float64
	Signed bool
}

// MessageDef binds an address to its signal layout.
type MessageDef struct {
	Addr    uint32
	Name    string
	Signals []Signal
}

// Decoder turns raw frames into decoded signal maps for one vehicle.
type Decoder struct {
	byAddr map[uint32]MessageDef
}

func NewDecoder(defs []MessageDef) *Decoder {
	byAddr := make(map[uint32]MessageDef, len(defs))
	for _, def := range defs {
		byAddr[def.Addr] = def
	}
	return &Decoder{byAddr: byAddr}
}

// ForModel returns the decoder for one vehicle model.
func ForModel(model safety.Model) (*Decoder, error) {
	switch model {
	case safety.ModelVWMeb:
		return NewDecoder(mebMessages), nil
	case safety.ModelVWMqb:
		return NewDecoder(mqbMessages), nil
	default:
		return nil, fmt.Errorf("no signal definitions for vehicle model %v", model)
	}
}

// Decode extracts the signal map of a received frame. It returns false for
// addresses without definitions and for payloads too short to carry the
// defined signals; both cases are ignored, never errors.
func (d *Decoder) Decode(bus int, frame can.Frame) (safety.Message, bool) {
	def, ok := d.byAddr[frame.ID]
	if !ok {
		return safety.Message{}, false
	}

	word := binary.LittleEndian.Uint64(frame.Data[:])
	signals := make(map[string]float64, len(def.Signals))
	for _, sig := range def.Signals {
		if uint16(sig.Start)+uint16(sig.Size) > uint16(frame.Length)*8 {
			return safety.Message{}, false
		}
		raw := (word >> sig.Start) & ((1 << sig.Size) - 1)
		value := float64(raw)
		if sig.Signed && raw&(1<<(sig.Size-1)) != 0 {
			value = float64(int64(raw) - (1 << sig.Size))
		}
		signals[sig.Name] = value*sig.Factor + sig.Offset
	}

	return safety.Message{Bus: bus, Addr: frame.ID, Signals: signals}, true
}

// Encode packs named signal values into a frame payload. Values without a
// definition are ignored. Used by the transmit request path and by tests.
func (d *Decoder) Encode(addr uint32, values map[string]float64) (can.Frame, bool) {
	def, ok := d.byAddr[addr]
	if !ok {
		return can.Frame{}, false
	}

	var word uint64
	var length uint8 = 8
	for _, sig := range def.Signals {
		raw := int64((values[sig.Name] - sig.Offset) / sig.Factor)
		mask := uint64(1)<<sig.Size - 1
		word |= (uint64(raw) & mask) << sig.Start
	}

	frame := can.Frame{ID: addr, Length: length}
	binary.LittleEndian.PutUint64(frame.Data[:], word)
	return frame, true
}
