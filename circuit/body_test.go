package circuit

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/consensys/gnark/std/math/uints"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimzk/zklink-oracle/accumulator"
	"github.com/jimzk/zklink-oracle/internal/devnet"
)

func TestBodyFromKnownBytes(t *testing.T) {
	b, err := NewBodyFromSlice(u8s(t, devnet.KnownBodyHex))
	require.NoError(t, err)

	assert.Equal(t, "655ccff8", hex.EncodeToString(rawBytes(t, b.Timestamp[:])))
	assert.Equal(t, "00000000", hex.EncodeToString(rawBytes(t, b.Nonce[:])))
	assert.Equal(t, "001a", hex.EncodeToString(rawBytes(t, b.EmitterChain[:])))
	assert.Equal(t, "e101faedac5851e32b9b23b5f9411a8c2bac4aae3ed4dd7b811dd1a72ea4aa71", hex.EncodeToString(rawBytes(t, b.EmitterAddress[:])))
	assert.Equal(t, "000000000195faa4", hex.EncodeToString(rawBytes(t, b.Sequence[:])))
	assert.Equal(t, "01", hex.EncodeToString(rawBytes(t, b.ConsistencyLevel[:])))

	payload := b.Payload.Bytes()
	assert.Equal(t, devnet.KnownPayloadHex, hex.EncodeToString(rawBytes(t, payload[:])))

	out := b.Bytes()
	assert.Equal(t, devnet.KnownBodyHex, hex.EncodeToString(rawBytes(t, out[:])))
}

func TestBodyFromSliceLength(t *testing.T) {
	full := u8s(t, devnet.KnownBodyHex)
	for _, n := range []int{0, LenBody - 1, LenBody + 1} {
		in := make([]uints.U8, n)
		copy(in, full)
		_, err := NewBodyFromSlice(in)

		var lerr *LengthError
		require.ErrorAs(t, err, &lerr, "length %d", n)
		assert.Equal(t, "body", lerr.What)
		assert.Equal(t, LenBody, lerr.Want)
		assert.Equal(t, n, lerr.Got)
	}
}

func TestValueOfBodyMatchesWire(t *testing.T) {
	v, err := devnet.KnownVAA()
	require.NoError(t, err)

	b, err := ValueOfBody(v)
	require.NoError(t, err)
	out := b.Bytes()
	assert.Equal(t, devnet.KnownBodyHex, hex.EncodeToString(rawBytes(t, out[:])))
}

func TestValueOfBodyRejects(t *testing.T) {
	_, err := ValueOfBody(nil)
	var ferr *FormatError
	assert.ErrorAs(t, err, &ferr)

	v, err := devnet.KnownVAA()
	require.NoError(t, err)
	v.Payload = v.Payload[:len(v.Payload)-1]
	_, err = ValueOfBody(v)
	require.ErrorAs(t, err, &ferr)
	assert.True(t, errors.Is(err, accumulator.ErrShortMessage))

	v.Payload = append([]byte("AUWV"), 1, 0xaa)
	_, err = ValueOfBody(v)
	assert.ErrorAs(t, err, &ferr)
}
