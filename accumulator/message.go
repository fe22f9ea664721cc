// Package accumulator decodes the oracle message that Pythnet publishes through
// Wormhole: a 4-byte "AUWV" tag followed by a typed payload. Only the Merkle payload
// (type 0) carries a meaning today; any other tag decodes to UnknownPayload so that
// callers decide how to reject it.
package accumulator

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// PayloadTypeMerkle tags a payload holding a keccak160 Merkle root over a slot's
	// price messages.
	PayloadTypeMerkle uint8 = 0

	MagicLen      = 4
	RootLen       = 20
	merkleBodyLen = 8 + 4 + RootLen
	minMessageLen = MagicLen + 1
)

// Magic is the "AUWV" tag of an accumulator update Wormhole message.
var Magic = [MagicLen]byte{'A', 'U', 'W', 'V'}

var (
	ErrShortMessage   = errors.New("accumulator: message too short")
	ErrBadMagic       = errors.New("accumulator: invalid magic")
	ErrTrailingData   = errors.New("accumulator: trailing data after payload")
	ErrMissingPayload = errors.New("accumulator: message has no payload")
)

type (
	// WormholeMessage is the oracle payload carried in the body of a VAA.
	WormholeMessage struct {
		Magic   [MagicLen]byte
		Payload Payload
	}

	// Payload is one of MerklePayload or UnknownPayload.
	Payload interface {
		Type() uint8
	}

	// MerklePayload commits to all price messages produced at Slot.
	MerklePayload struct {
		Slot     uint64
		RingSize uint32
		Root     [RootLen]byte
	}

	// UnknownPayload keeps the raw bytes of a payload type this package does not model.
	UnknownPayload struct {
		Tag  uint8
		Data []byte
	}
)

func (MerklePayload) Type() uint8 { return PayloadTypeMerkle }

func (p UnknownPayload) Type() uint8 { return p.Tag }

// Unmarshal decodes a Wormhole message. A Merkle payload must fill the input exactly.
func Unmarshal(data []byte) (*WormholeMessage, error) {
	if len(data) < minMessageLen {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrShortMessage, len(data), minMessageLen)
	}
	m := &WormholeMessage{}
	copy(m.Magic[:], data[:MagicLen])
	if m.Magic != Magic {
		return nil, fmt.Errorf("%w: %x", ErrBadMagic, m.Magic)
	}

	tag := data[MagicLen]
	rest := data[minMessageLen:]
	if tag != PayloadTypeMerkle {
		m.Payload = UnknownPayload{Tag: tag, Data: append([]byte(nil), rest...)}
		return m, nil
	}

	if len(rest) < merkleBodyLen {
		return nil, fmt.Errorf("%w: merkle payload has %d bytes, need %d", ErrShortMessage, len(rest), merkleBodyLen)
	}
	if len(rest) > merkleBodyLen {
		return nil, fmt.Errorf("%w: %d extra bytes", ErrTrailingData, len(rest)-merkleBodyLen)
	}

	reader := bytes.NewReader(rest)
	p := MerklePayload{}
	if err := binary.Read(reader, binary.BigEndian, &p.Slot); err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	if err := binary.Read(reader, binary.BigEndian, &p.RingSize); err != nil {
		return nil, fmt.Errorf("failed to read ring size: %w", err)
	}
	if n, err := reader.Read(p.Root[:]); err != nil || n != RootLen {
		return nil, fmt.Errorf("failed to read root [%d]: %w", n, err)
	}
	m.Payload = p
	return m, nil
}

// Marshal returns the wire encoding of m. A message without a payload has no
// encoding.
func (m *WormholeMessage) Marshal() ([]byte, error) {
	out := append([]byte(nil), m.Magic[:]...)
	switch p := m.Payload.(type) {
	case MerklePayload:
		out = append(out, PayloadTypeMerkle)
		out = binary.BigEndian.AppendUint64(out, p.Slot)
		out = binary.BigEndian.AppendUint32(out, p.RingSize)
		out = append(out, p.Root[:]...)
	case UnknownPayload:
		out = append(out, p.Tag)
		out = append(out, p.Data...)
	case nil:
		return nil, ErrMissingPayload
	default:
		return nil, fmt.Errorf("accumulator: cannot encode payload %T", p)
	}
	return out, nil
}

// NewMerkleMessage wraps a Merkle payload in a message with the standard magic.
func NewMerkleMessage(slot uint64, ringSize uint32, root [RootLen]byte) *WormholeMessage {
	return &WormholeMessage{
		Magic:   Magic,
		Payload: MerklePayload{Slot: slot, RingSize: ringSize, Root: root},
	}
}
