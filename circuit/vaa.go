package circuit

import (
	"github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// Vaa is the circuit representation of a Wormhole VAA. Only the first Quorum()
// signatures of the original message are kept, in their original order.
type Vaa struct {
	Signatures []Signature
	Body       Body
}

// PlaceholderVaa returns a Vaa shaped for a circuit verifying quorum signatures.
func PlaceholderVaa(quorum int) Vaa {
	return Vaa{
		Signatures: make([]Signature, quorum),
		Body:       PlaceholderBody(),
	}
}

// ValueOf allocates the witness of v for a circuit verifying quorum signatures.
//
// The body is allocated first so that structural errors are reported before
// signature errors. Callers wanting a particular subset of signers must filter
// v.Signatures beforehand; the first quorum signatures are always taken.
func ValueOf(v *vaa.VAA, quorum int) (Vaa, error) {
	if quorum < 1 {
		return Vaa{}, ErrInvalidQuorum
	}
	body, err := ValueOfBody(v)
	if err != nil {
		return Vaa{}, err
	}
	if len(v.Signatures) < quorum {
		return Vaa{}, &QuorumError{Required: quorum, Actual: len(v.Signatures)}
	}

	digest := v.SigningDigest()
	signatures := make([]Signature, quorum)
	for i := range signatures {
		s, err := ValueOfSignature(v.Signatures[i], digest.Bytes())
		if err != nil {
			return Vaa{}, &SignatureError{Index: i, Err: err}
		}
		signatures[i] = s
	}

	log := logger.Logger()
	log.Debug().
		Int("quorum", quorum).
		Int("signatures", len(v.Signatures)).
		Str("digest", digest.Hex()).
		Msg("allocated vaa witness")

	return Vaa{Signatures: signatures, Body: body}, nil
}

// Quorum is the number of signatures the circuit verifies.
func (v *Vaa) Quorum() int { return len(v.Signatures) }

// MerkleRoot is the accumulator root committed by the VAA payload.
func (v *Vaa) MerkleRoot() *[LenRoot]uints.U8 { return &v.Body.Payload.Root }
