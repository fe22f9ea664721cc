// Package circuit is the gnark representation of a Wormhole VAA that carries a Pyth
// accumulator root.
//
// The byte layout follows the VAA body and the "AUWV" oracle payload exactly:
//
//	body    = timestamp(4) nonce(4) emitter_chain(2) emitter_address(32)
//	          sequence(8) consistency_level(1) payload(49)
//	payload = magic(4) payload_type(1) slot(8) ring_size(4) root(20)
//
// All integers are big-endian. Codecs (New*, Bytes) only slice and concatenate; the
// ValueOf* allocators validate untrusted input before a witness is ever built.
package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/jimzk/zklink-oracle/accumulator"
)

const (
	LenMagic       = 4
	LenPayloadType = 1
	LenSlot        = 8
	LenRingSize    = 4
	LenRoot        = accumulator.RootLen
	LenPayload     = LenMagic + LenPayloadType + LenSlot + LenRingSize + LenRoot

	// PayloadTypeMerkle is the only payload variant the circuit implements.
	PayloadTypeMerkle = accumulator.PayloadTypeMerkle
)

// Payload is the oracle message committed by the VAA body.
type Payload struct {
	Magic [LenMagic]uints.U8
	// PayloadType is compiled into the circuit and never read from the witness.
	PayloadType [LenPayloadType]uints.U8 `gnark:"-"`
	Slot        [LenSlot]uints.U8
	RingSize    [LenRingSize]uints.U8
	Root        [LenRoot]uints.U8
}

func NewPayload(bytes [LenPayload]uints.U8) Payload {
	var p Payload
	offset := 0
	offset += copy(p.Magic[:], bytes[offset:offset+LenMagic])
	offset += copy(p.PayloadType[:], bytes[offset:offset+LenPayloadType])
	offset += copy(p.Slot[:], bytes[offset:offset+LenSlot])
	offset += copy(p.RingSize[:], bytes[offset:offset+LenRingSize])
	copy(p.Root[:], bytes[offset:offset+LenRoot])
	return p
}

// NewPayloadFromSlice is NewPayload for a slice of unchecked length.
func NewPayloadFromSlice(bytes []uints.U8) (Payload, error) {
	if len(bytes) != LenPayload {
		return Payload{}, &LengthError{What: "payload", Want: LenPayload, Got: len(bytes)}
	}
	return NewPayload([LenPayload]uints.U8(bytes)), nil
}

// Bytes returns the wire encoding of p.
func (p *Payload) Bytes() [LenPayload]uints.U8 {
	var bytes [LenPayload]uints.U8
	offset := 0
	offset += copy(bytes[offset:], p.Magic[:])
	offset += copy(bytes[offset:], p.PayloadType[:])
	offset += copy(bytes[offset:], p.Slot[:])
	offset += copy(bytes[offset:], p.RingSize[:])
	copy(bytes[offset:], p.Root[:])
	return bytes
}

// AssertConstants constrains the magic and the payload type to the supported values.
func (p *Payload) AssertConstants(api frontend.API) {
	for i := range p.Magic {
		api.AssertIsEqual(p.Magic[i].Val, accumulator.Magic[i])
	}
	api.AssertIsEqual(p.PayloadType[0].Val, PayloadTypeMerkle)
}

// PlaceholderPayload returns a payload shaped for circuit compilation.
func PlaceholderPayload() Payload {
	return Payload{PayloadType: payloadTypeConstant()}
}

func payloadTypeConstant() [LenPayloadType]uints.U8 {
	return [LenPayloadType]uints.U8{uints.NewU8(PayloadTypeMerkle)}
}

// ValueOfPayload allocates the witness of a decoded oracle message. Only Merkle
// payloads under the AUWV magic are accepted.
func ValueOfPayload(msg *accumulator.WormholeMessage) (Payload, error) {
	if msg == nil {
		return Payload{}, &FormatError{Reason: "missing oracle message"}
	}
	if msg.Magic != accumulator.Magic {
		return Payload{}, &FormatError{Reason: "unexpected magic " + hexString(msg.Magic[:])}
	}
	merkle, ok := msg.Payload.(accumulator.MerklePayload)
	if !ok {
		return Payload{}, &FormatError{Reason: unsupportedPayloadReason(msg.Payload)}
	}

	var p Payload
	copy(p.Magic[:], uints.NewU8Array(msg.Magic[:]))
	p.PayloadType = payloadTypeConstant()
	copy(p.Slot[:], uints.NewU8Array(bigEndian(merkle.Slot, LenSlot)))
	copy(p.RingSize[:], uints.NewU8Array(bigEndian(uint64(merkle.RingSize), LenRingSize)))
	copy(p.Root[:], uints.NewU8Array(merkle.Root[:]))
	return p, nil
}

func unsupportedPayloadReason(p accumulator.Payload) string {
	if p == nil {
		return "missing payload"
	}
	return "payload type " + hexString([]byte{p.Type()}) + " is not merkle"
}
