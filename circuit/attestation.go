package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/jimzk/zklink-oracle/accumulator"
)

// AttestationCircuit proves that a VAA carrying an accumulator root was signed by
// the listed signers. It publishes what the VAA commits to and who signed it; the
// verifier compares Signers and GuardianIndices with the guardian set it trusts.
type AttestationCircuit struct {
	Vaa Vaa

	Root     [LenRoot]frontend.Variable `gnark:",public"`
	Slot     frontend.Variable          `gnark:",public"`
	RingSize frontend.Variable          `gnark:",public"`
	// GuardianIndices and Signers are parallel to Vaa.Signatures. A signer is 0
	// when its signature does not recover a key.
	GuardianIndices []frontend.Variable `gnark:",public"`
	Signers         []frontend.Variable `gnark:",public"`
}

// PlaceholderAttestation returns the circuit shape for quorum signatures.
func PlaceholderAttestation(quorum int) *AttestationCircuit {
	return &AttestationCircuit{
		Vaa:             PlaceholderVaa(quorum),
		GuardianIndices: make([]frontend.Variable, quorum),
		Signers:         make([]frontend.Variable, quorum),
	}
}

func (c *AttestationCircuit) Define(api frontend.API) error {
	payload := &c.Vaa.Body.Payload
	payload.AssertConstants(api)

	root := c.Vaa.MerkleRoot()
	for i := range root {
		api.AssertIsEqual(root[i].Val, c.Root[i])
	}
	api.AssertIsEqual(bytesToVariable(api, payload.Slot[:]), c.Slot)
	api.AssertIsEqual(bytesToVariable(api, payload.RingSize[:]), c.RingSize)

	keys, err := c.Vaa.Ecrecover(api)
	if err != nil {
		return err
	}
	for i, key := range keys {
		addr, err := SignerAddress(api, key.PublicKey)
		if err != nil {
			return err
		}
		api.AssertIsEqual(api.Select(key.Valid, addr, 0), c.Signers[i])
		api.AssertIsEqual(c.Vaa.Signatures[i].GuardianIndex.Val, c.GuardianIndices[i])
	}
	return nil
}

// NewAttestationAssignment builds the full assignment for v, recovering the
// signer addresses off-circuit.
func NewAttestationAssignment(v *vaa.VAA, quorum int) (*AttestationCircuit, error) {
	w, err := ValueOf(v, quorum)
	if err != nil {
		return nil, err
	}
	msg, err := msgOf(v)
	if err != nil {
		return nil, err
	}

	a := &AttestationCircuit{
		Vaa:             w,
		Slot:            msg.Slot,
		RingSize:        msg.RingSize,
		GuardianIndices: make([]frontend.Variable, quorum),
		Signers:         make([]frontend.Variable, quorum),
	}
	for i := range a.Root {
		a.Root[i] = msg.Root[i]
	}

	digest := v.SigningDigest()
	for i := 0; i < quorum; i++ {
		sig := v.Signatures[i]
		a.GuardianIndices[i] = sig.Index
		a.Signers[i] = 0
		if pub, err := eth_crypto.Ecrecover(digest.Bytes(), sig.Signature[:]); err == nil {
			a.Signers[i] = new(big.Int).SetBytes(eth_crypto.Keccak256(pub[1:])[LenDigest-LenAddress:])
		}
	}
	return a, nil
}

func msgOf(v *vaa.VAA) (accumulator.MerklePayload, error) {
	msg, err := accumulator.Unmarshal(v.Payload)
	if err != nil {
		return accumulator.MerklePayload{}, &FormatError{Reason: "decode oracle payload", Err: err}
	}
	p, ok := msg.Payload.(accumulator.MerklePayload)
	if !ok {
		return accumulator.MerklePayload{}, &FormatError{Reason: unsupportedPayloadReason(msg.Payload)}
	}
	return p, nil
}
