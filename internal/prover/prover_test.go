package prover

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/jimzk/zklink-oracle/circuit"
	"github.com/jimzk/zklink-oracle/internal/devnet"
)

func signedVAA(t testing.TB, guardians int, slot uint64) *vaa.VAA {
	t.Helper()
	keys, err := devnet.GuardianKeys(guardians)
	require.NoError(t, err)
	v, err := devnet.NewSignedVAA(devnet.Attestation{
		Slot:      slot,
		RingSize:  10000,
		Messages:  [][]byte{[]byte("BTC/USD"), []byte("ETH/USD")},
		Sequence:  1,
		Timestamp: time.Unix(1700581368, 0),
	}, keys)
	require.NoError(t, err)
	return v
}

func TestCompileRejectsQuorum(t *testing.T) {
	_, err := Compile(ecc.BN254, 0)
	assert.ErrorIs(t, err, circuit.ErrInvalidQuorum)
}

type failingWriter struct{ err error }

func (w failingWriter) WriteTo(io.Writer) (int64, error) { return 0, w.err }

type flakyCloseWriter struct{}

// WriteTo closes the destination under the writer, so the deferred close fails.
func (flakyCloseWriter) WriteTo(w io.Writer) (int64, error) {
	return 0, w.(*os.File).Close()
}

func TestWriteFileReportsErrors(t *testing.T) {
	dir := t.TempDir()

	err := writeFile(filepath.Join(dir, "missing", "x"), failingWriter{})
	assert.Error(t, err)

	boom := errors.New("boom")
	err = writeFile(filepath.Join(dir, "write"), failingWriter{err: boom})
	assert.ErrorIs(t, err, boom)

	err = writeFile(filepath.Join(dir, "close"), flakyCloseWriter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestCheck(t *testing.T) {
	v := signedVAA(t, 1, 7)
	require.NoError(t, Check(ecc.BN254, v, 1))

	_, err := PublicWitness(ecc.BN254, v, 2)
	var qerr *circuit.QuorumError
	assert.ErrorAs(t, err, &qerr)
}

func TestProveAndVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping groth16 round trip in short mode")
	}
	const quorum = 1
	v := signedVAA(t, quorum, 7)

	cs, err := Compile(ecc.BN254, quorum)
	require.NoError(t, err)
	keys, err := Setup(cs)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Save(dir, cs, keys))
	cs, err = LoadCircuit(ecc.BN254, dir)
	require.NoError(t, err)
	keys, err = LoadKeys(ecc.BN254, dir)
	require.NoError(t, err)

	proof, public, err := Prove(cs, keys.PK, v, quorum)
	require.NoError(t, err)
	proofPath := filepath.Join(dir, "attestation.proof")
	require.NoError(t, WriteProof(proofPath, proof))
	proof, err = ReadProof(ecc.BN254, proofPath)
	require.NoError(t, err)

	require.NoError(t, Verify(keys.VK, proof, public))

	// the verifier rebuilds the same public inputs from the VAA alone
	rebuilt, err := PublicWitness(ecc.BN254, v, quorum)
	require.NoError(t, err)
	require.NoError(t, Verify(keys.VK, proof, rebuilt))

	// and rejects the proof for a different slot
	other, err := PublicWitness(ecc.BN254, signedVAA(t, quorum, 8), quorum)
	require.NoError(t, err)
	assert.Error(t, Verify(keys.VK, proof, other))
}

func BenchmarkAttestation(b *testing.B) {
	for _, quorum := range []int{1, 4} {
		v := signedVAA(b, quorum, 7)

		cs, err := Compile(ecc.BN254, quorum)
		if err != nil {
			b.Fatalf("compilation failed: %v", err)
		}
		b.Logf("quorum %d: %d constraints", quorum, cs.GetNbConstraints())
		keys, err := Setup(cs)
		if err != nil {
			b.Fatalf("setup failed: %v", err)
		}
		proof, public, err := Prove(cs, keys.PK, v, quorum)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("Prove/quorum_%d", quorum), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			start := time.Now()
			for i := 0; i < b.N; i++ {
				if _, _, err := Prove(cs, keys.PK, v, quorum); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()
			avgTime := time.Since(start) / time.Duration(b.N)
			b.Logf("-> Avg. time per op: %s", avgTime.Round(time.Millisecond))
		})

		b.Run(fmt.Sprintf("Verify/quorum_%d", quorum), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := Verify(keys.VK, proof, public); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
