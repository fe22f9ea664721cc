package circuit

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/evmprecompiles"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

const (
	LenSignatureScalar = 32
	LenSignature       = 2*LenSignatureScalar + 1
)

var (
	errRecoveryID  = errors.New("recovery id must be 0 or 1")
	errScalarRange = errors.New("signature scalar out of range")
)

// Signature is one guardian signature over the VAA digest.
type Signature struct {
	GuardianIndex uints.U8
	R             [LenSignatureScalar]uints.U8
	S             [LenSignatureScalar]uints.U8
	V             uints.U8
	// Failure is 1 when public key recovery is expected to fail. ECRecover
	// constrains it, so a prover cannot flag a recoverable signature.
	Failure frontend.Variable
}

// ValueOfSignature allocates the witness of sig, a signature over digest.
func ValueOfSignature(sig *vaa.Signature, digest []byte) (Signature, error) {
	if sig == nil {
		return Signature{}, errors.New("missing signature")
	}
	raw := sig.Signature
	if v := raw[LenSignature-1]; v > 1 {
		return Signature{}, errRecoveryID
	}
	n := eth_crypto.S256().Params().N
	for _, scalar := range [][]byte{raw[:LenSignatureScalar], raw[LenSignatureScalar : 2*LenSignatureScalar]} {
		k := new(big.Int).SetBytes(scalar)
		if k.Sign() == 0 || k.Cmp(n) >= 0 {
			return Signature{}, errScalarRange
		}
	}

	s := Signature{
		GuardianIndex: uints.NewU8(sig.Index),
		V:             uints.NewU8(raw[LenSignature-1]),
		Failure:       0,
	}
	copy(s.R[:], uints.NewU8Array(raw[:LenSignatureScalar]))
	copy(s.S[:], uints.NewU8Array(raw[LenSignatureScalar:2*LenSignatureScalar]))
	if _, err := eth_crypto.Ecrecover(digest, raw[:]); err != nil {
		s.Failure = 1
	}
	return s, nil
}

// recover runs the ECRECOVER gadget for s over msg.
func (s *Signature) recover(api frontend.API, fr *emulated.Field[emulated.Secp256k1Fr], msg *emulated.Element[emulated.Secp256k1Fr]) RecoveredKey {
	api.AssertIsBoolean(s.Failure)
	r := bytesToElement(api, fr, s.R[:])
	sc := bytesToElement(api, fr, s.S[:])
	v := api.Add(s.V.Val, 27)
	pk := evmprecompiles.ECRecover(api, *msg, v, *r, *sc, 0, s.Failure)
	return RecoveredKey{
		Valid:     api.Sub(1, s.Failure),
		PublicKey: pk,
	}
}
