package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	keccak "github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

// LenAddress is the size of a guardian (Ethereum-style) address.
const LenAddress = 20

// SignerAddress derives the address of pk: the last 20 bytes of keccak256(X || Y),
// packed big-endian into one variable.
func SignerAddress(api frontend.API, pk *sw_emulated.AffinePoint[emulated.Secp256k1Fp]) (frontend.Variable, error) {
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return nil, err
	}
	fp, err := emulated.NewField[emulated.Secp256k1Fp](api)
	if err != nil {
		return nil, err
	}

	pxBits := fp.ToBitsCanonical(&pk.X)
	pyBits := fp.ToBitsCanonical(&pk.Y)
	pkBytes := make([]uints.U8, 64)
	for i := 0; i < 32; i++ {
		pkBytes[i] = uapi.ByteValueOf(api.FromBinary(pxBits[(31-i)*8 : (32-i)*8]...))
		pkBytes[32+i] = uapi.ByteValueOf(api.FromBinary(pyBits[(31-i)*8 : (32-i)*8]...))
	}

	h, err := keccak.NewLegacyKeccak256(api)
	if err != nil {
		return nil, err
	}
	h.Write(pkBytes)
	pkHash := h.Sum()
	return bytesToVariable(api, pkHash[LenDigest-LenAddress:]), nil
}
