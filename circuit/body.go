package circuit

import (
	"github.com/consensys/gnark/std/math/uints"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/jimzk/zklink-oracle/accumulator"
)

const (
	LenTimestamp        = 4
	LenNonce            = 4
	LenEmitterChain     = 2
	LenEmitterAddress   = 32
	LenSequence         = 8
	LenConsistencyLevel = 1
	LenBody             = LenTimestamp + LenNonce + LenEmitterChain + LenEmitterAddress +
		LenSequence + LenConsistencyLevel + LenPayload
)

// Body is the signed part of a VAA.
type Body struct {
	Timestamp        [LenTimestamp]uints.U8
	Nonce            [LenNonce]uints.U8
	EmitterChain     [LenEmitterChain]uints.U8
	EmitterAddress   [LenEmitterAddress]uints.U8
	Sequence         [LenSequence]uints.U8
	ConsistencyLevel [LenConsistencyLevel]uints.U8
	Payload          Payload
}

func NewBody(bytes [LenBody]uints.U8) Body {
	var b Body
	offset := 0
	offset += copy(b.Timestamp[:], bytes[offset:offset+LenTimestamp])
	offset += copy(b.Nonce[:], bytes[offset:offset+LenNonce])
	offset += copy(b.EmitterChain[:], bytes[offset:offset+LenEmitterChain])
	offset += copy(b.EmitterAddress[:], bytes[offset:offset+LenEmitterAddress])
	offset += copy(b.Sequence[:], bytes[offset:offset+LenSequence])
	offset += copy(b.ConsistencyLevel[:], bytes[offset:offset+LenConsistencyLevel])
	b.Payload = NewPayload([LenPayload]uints.U8(bytes[offset : offset+LenPayload]))
	return b
}

func NewBodyFromSlice(bytes []uints.U8) (Body, error) {
	if len(bytes) != LenBody {
		return Body{}, &LengthError{What: "body", Want: LenBody, Got: len(bytes)}
	}
	return NewBody([LenBody]uints.U8(bytes)), nil
}

// Bytes returns the wire encoding of b, which is also the preimage of the VAA digest.
func (b *Body) Bytes() [LenBody]uints.U8 {
	var bytes [LenBody]uints.U8
	offset := 0
	offset += copy(bytes[offset:], b.Timestamp[:])
	offset += copy(bytes[offset:], b.Nonce[:])
	offset += copy(bytes[offset:], b.EmitterChain[:])
	offset += copy(bytes[offset:], b.EmitterAddress[:])
	offset += copy(bytes[offset:], b.Sequence[:])
	offset += copy(bytes[offset:], b.ConsistencyLevel[:])
	payload := b.Payload.Bytes()
	copy(bytes[offset:], payload[:])
	return bytes
}

func PlaceholderBody() Body {
	return Body{Payload: PlaceholderPayload()}
}

// ValueOfBody allocates the witness of the body of v. The payload must decode as a
// Merkle oracle message.
func ValueOfBody(v *vaa.VAA) (Body, error) {
	if v == nil {
		return Body{}, &FormatError{Reason: "missing vaa"}
	}
	msg, err := accumulator.Unmarshal(v.Payload)
	if err != nil {
		return Body{}, &FormatError{Reason: "decode oracle payload", Err: err}
	}
	payload, err := ValueOfPayload(msg)
	if err != nil {
		return Body{}, err
	}

	var b Body
	copy(b.Timestamp[:], uints.NewU8Array(bigEndian(uint64(v.Timestamp.Unix()), LenTimestamp)))
	copy(b.Nonce[:], uints.NewU8Array(bigEndian(uint64(v.Nonce), LenNonce)))
	copy(b.EmitterChain[:], uints.NewU8Array(bigEndian(uint64(v.EmitterChain), LenEmitterChain)))
	copy(b.EmitterAddress[:], uints.NewU8Array(v.EmitterAddress[:]))
	copy(b.Sequence[:], uints.NewU8Array(bigEndian(v.Sequence, LenSequence)))
	b.ConsistencyLevel[0] = uints.NewU8(v.ConsistencyLevel)
	b.Payload = payload
	return b, nil
}
