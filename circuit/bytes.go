package circuit

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

// bigEndian returns the low n bytes of v, most significant first.
func bigEndian(v uint64, n int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[8-n:]
}

func hexString(b []byte) string { return hex.EncodeToString(b) }

// bytesToElement reads big-endian bytes as one emulated field element.
func bytesToElement[T emulated.FieldParams](api frontend.API, f *emulated.Field[T], bytes []uints.U8) *emulated.Element[T] {
	n := len(bytes)
	bits := make([]frontend.Variable, n*8)
	for i := 0; i < n; i++ {
		b := api.ToBinary(bytes[n-1-i].Val, 8)
		copy(bits[i*8:], b)
	}
	return f.FromBits(bits...)
}

// bytesToVariable packs big-endian bytes into one native field element.
func bytesToVariable(api frontend.API, bytes []uints.U8) frontend.Variable {
	var acc frontend.Variable = 0
	for i := range bytes {
		acc = api.Add(api.Mul(acc, 256), bytes[i].Val)
	}
	return acc
}
