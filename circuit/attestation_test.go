package circuit

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimzk/zklink-oracle/internal/devnet"
)

type recoverCircuit struct {
	Vaa     Vaa
	Valid   []frontend.Variable
	Signers []frontend.Variable
}

func (c *recoverCircuit) Define(api frontend.API) error {
	keys, err := c.Vaa.Ecrecover(api)
	if err != nil {
		return err
	}
	for i, key := range keys {
		api.AssertIsEqual(key.Valid, c.Valid[i])
		addr, err := SignerAddress(api, key.PublicKey)
		if err != nil {
			return err
		}
		api.AssertIsEqual(api.Select(key.Valid, addr, 0), c.Signers[i])
	}
	return nil
}

func TestEcrecover(t *testing.T) {
	v, addrs := devnetVAA(t, 2)
	w, err := ValueOf(v, 2)
	require.NoError(t, err)

	circuit := &recoverCircuit{
		Vaa:     PlaceholderVaa(2),
		Valid:   make([]frontend.Variable, 2),
		Signers: make([]frontend.Variable, 2),
	}
	assignment := &recoverCircuit{
		Vaa:     w,
		Valid:   []frontend.Variable{1, 1},
		Signers: []frontend.Variable{addrs[0].Big(), addrs[1].Big()},
	}
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))

	// keys come back in signature order
	assignment.Signers = []frontend.Variable{addrs[1].Big(), addrs[0].Big()}
	assert.Error(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))
}

func TestAttestationCircuit(t *testing.T) {
	v, addrs := devnetVAA(t, 3)
	assignment, err := NewAttestationAssignment(v, 2)
	require.NoError(t, err)

	for i := range assignment.Signers {
		assert.Equal(t, 0, addrs[i].Big().Cmp(assignment.Signers[i].(*big.Int)))
		assert.Equal(t, uint8(i), assignment.GuardianIndices[i])
	}
	assert.Equal(t, uint64(110729532), assignment.Slot)
	assert.Equal(t, uint32(10000), assignment.RingSize)

	circuit := PlaceholderAttestation(2)
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))

	t.Run("wrong root", func(t *testing.T) {
		bad, err := NewAttestationAssignment(v, 2)
		require.NoError(t, err)
		bad.Root[0] = assignment.Root[0].(byte) ^ 0xff
		assert.Error(t, test.IsSolved(circuit, bad, ecc.BN254.ScalarField()))
	})

	t.Run("wrong signer", func(t *testing.T) {
		bad, err := NewAttestationAssignment(v, 2)
		require.NoError(t, err)
		bad.Signers[1] = addrs[2].Big()
		assert.Error(t, test.IsSolved(circuit, bad, ecc.BN254.ScalarField()))
	})

	t.Run("wrong guardian index", func(t *testing.T) {
		bad, err := NewAttestationAssignment(v, 2)
		require.NoError(t, err)
		bad.GuardianIndices[0] = 5
		assert.Error(t, test.IsSolved(circuit, bad, ecc.BN254.ScalarField()))
	})

	t.Run("wrong slot", func(t *testing.T) {
		bad, err := NewAttestationAssignment(v, 2)
		require.NoError(t, err)
		bad.Slot = 110729533
		assert.Error(t, test.IsSolved(circuit, bad, ecc.BN254.ScalarField()))
	})
}

func TestAttestationUnrecoverableSignature(t *testing.T) {
	v, addrs := devnetVAA(t, 2)
	// x = 5 is not the abscissa of any secp256k1 point
	r := make([]byte, LenSignatureScalar)
	r[LenSignatureScalar-1] = 5
	copy(v.Signatures[1].Signature[:LenSignatureScalar], r)

	assignment, err := NewAttestationAssignment(v, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, addrs[0].Big().Cmp(assignment.Signers[0].(*big.Int)))
	assert.Equal(t, 0, assignment.Signers[1])
	assert.Equal(t, 1, assignment.Vaa.Signatures[1].Failure)

	circuit := PlaceholderAttestation(2)
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))

	// a recoverable signature cannot be flagged as failed to drop its signer
	forged, err := NewAttestationAssignment(v, 2)
	require.NoError(t, err)
	forged.Vaa.Signatures[0].Failure = 1
	forged.Signers[0] = 0
	assert.Error(t, test.IsSolved(circuit, forged, ecc.BN254.ScalarField()))
}

func TestAttestationKnownVAA(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 13-signature recovery in short mode")
	}
	v, err := devnet.KnownVAA()
	require.NoError(t, err)

	assignment, err := NewAttestationAssignment(v, devnet.KnownSignatures)
	require.NoError(t, err)
	for i := range assignment.Signers {
		assert.NotEqual(t, 0, assignment.Signers[i], "signature %d did not recover", i)
	}

	circuit := PlaceholderAttestation(devnet.KnownSignatures)
	require.NoError(t, test.IsSolved(circuit, assignment, ecc.BN254.ScalarField()))
}
