package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	keccak "github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

// LenDigest is the size of a keccak256 output.
const LenDigest = 32

// RecoveredKey is the outcome of public key recovery for one signature. PublicKey is
// meaningful only when Valid is 1.
type RecoveredKey struct {
	Valid     frontend.Variable
	PublicKey *sw_emulated.AffinePoint[emulated.Secp256k1Fp]
}

// DigestBytes computes keccak256(keccak256(body)), the message guardians sign.
func (v *Vaa) DigestBytes(api frontend.API) ([]uints.U8, error) {
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return nil, err
	}
	body := v.Body.Bytes()
	in := make([]uints.U8, len(body))
	for i := range body {
		in[i] = uapi.ByteValueOf(body[i].Val)
	}

	h, err := keccak.NewLegacyKeccak256(api)
	if err != nil {
		return nil, err
	}
	h.Write(in)
	inner := h.Sum()

	h, err = keccak.NewLegacyKeccak256(api)
	if err != nil {
		return nil, err
	}
	h.Write(inner)
	return h.Sum(), nil
}

// Digest is DigestBytes read as one big-endian integer in the secp256k1 scalar field.
func (v *Vaa) Digest(api frontend.API) (*emulated.Element[emulated.Secp256k1Fr], error) {
	fr, err := emulated.NewField[emulated.Secp256k1Fr](api)
	if err != nil {
		return nil, err
	}
	return v.digest(api, fr)
}

func (v *Vaa) digest(api frontend.API, fr *emulated.Field[emulated.Secp256k1Fr]) (*emulated.Element[emulated.Secp256k1Fr], error) {
	digest, err := v.DigestBytes(api)
	if err != nil {
		return nil, err
	}
	return bytesToElement(api, fr, digest), nil
}

// Ecrecover recovers one public key per signature, in signature order. It makes no
// statement about who the signers are.
func (v *Vaa) Ecrecover(api frontend.API) ([]RecoveredKey, error) {
	fr, err := emulated.NewField[emulated.Secp256k1Fr](api)
	if err != nil {
		return nil, err
	}
	msg, err := v.digest(api, fr)
	if err != nil {
		return nil, err
	}
	keys := make([]RecoveredKey, len(v.Signatures))
	for i := range v.Signatures {
		keys[i] = v.Signatures[i].recover(api, fr, msg)
	}
	return keys, nil
}
