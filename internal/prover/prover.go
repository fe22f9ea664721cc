// Package prover compiles the attestation circuit and runs groth16 over it.
package prover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"
	"github.com/consensys/gnark/test"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/jimzk/zklink-oracle/circuit"
)

const (
	CircuitFile      = "attestation.r1cs"
	ProvingKeyFile   = "attestation.pk"
	VerifyingKeyFile = "attestation.vk"
)

// Compile builds the constraint system of an attestation circuit for quorum
// signatures over the scalar field of curve.
func Compile(curve ecc.ID, quorum int) (constraint.ConstraintSystem, error) {
	if quorum < 1 {
		return nil, circuit.ErrInvalidQuorum
	}
	log := logger.Logger()
	start := time.Now()
	cs, err := frontend.Compile(curve.ScalarField(), r1cs.NewBuilder, circuit.PlaceholderAttestation(quorum))
	if err != nil {
		return nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	log.Info().
		Int("quorum", quorum).
		Int("constraints", cs.GetNbConstraints()).
		Dur("took", time.Since(start)).
		Msg("compiled attestation circuit")
	return cs, nil
}

// Check runs the circuit on v without proving. It is the quickest way to tell
// whether a proof for v would succeed.
func Check(curve ecc.ID, v *vaa.VAA, quorum int) error {
	assignment, err := circuit.NewAttestationAssignment(v, quorum)
	if err != nil {
		return err
	}
	return test.IsSolved(circuit.PlaceholderAttestation(quorum), assignment, curve.ScalarField())
}

// Keys is a groth16 key pair for one compiled circuit.
type Keys struct {
	PK groth16.ProvingKey
	VK groth16.VerifyingKey
}

// Setup runs a single-party groth16 setup. The toxic waste is not destroyed in any
// verifiable way, so the keys are for development only.
func Setup(cs constraint.ConstraintSystem) (*Keys, error) {
	log := logger.Logger()
	start := time.Now()
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("failed to setup groth16: %w", err)
	}
	log.Info().Dur("took", time.Since(start)).Msg("groth16 setup done")
	return &Keys{PK: pk, VK: vk}, nil
}

// Prove proves that v carries quorum recoverable signatures, and returns the proof
// together with its public witness.
func Prove(cs constraint.ConstraintSystem, pk groth16.ProvingKey, v *vaa.VAA, quorum int) (groth16.Proof, witness.Witness, error) {
	assignment, err := circuit.NewAttestationAssignment(v, quorum)
	if err != nil {
		return nil, nil, err
	}
	field := cs.Field()
	full, err := frontend.NewWitness(assignment, field)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create witness: %w", err)
	}
	public, err := full.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract public witness: %w", err)
	}

	log := logger.Logger()
	start := time.Now()
	proof, err := groth16.Prove(cs, pk, full)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prove: %w", err)
	}
	log.Info().
		Str("vaa", v.MessageID()).
		Dur("took", time.Since(start)).
		Msg("generated attestation proof")
	return proof, public, nil
}

// PublicWitness rebuilds the public inputs a verifier expects for v.
func PublicWitness(curve ecc.ID, v *vaa.VAA, quorum int) (witness.Witness, error) {
	assignment, err := circuit.NewAttestationAssignment(v, quorum)
	if err != nil {
		return nil, err
	}
	return frontend.NewWitness(assignment, curve.ScalarField(), frontend.PublicOnly())
}

func Verify(vk groth16.VerifyingKey, proof groth16.Proof, public witness.Witness) error {
	if err := groth16.Verify(proof, vk, public); err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	return nil
}

// Save writes the constraint system and both keys into dir.
func Save(dir string, cs constraint.ConstraintSystem, keys *Keys) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, obj := range map[string]io.WriterTo{
		CircuitFile:      cs,
		ProvingKeyFile:   keys.PK,
		VerifyingKeyFile: keys.VK,
	} {
		if err := writeFile(filepath.Join(dir, name), obj); err != nil {
			return err
		}
	}
	return nil
}

// LoadCircuit reads a constraint system written by Save.
func LoadCircuit(curve ecc.ID, dir string) (constraint.ConstraintSystem, error) {
	cs := groth16.NewCS(curve)
	if err := readFile(filepath.Join(dir, CircuitFile), cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// LoadKeys reads the key pair written by Save.
func LoadKeys(curve ecc.ID, dir string) (*Keys, error) {
	pk := groth16.NewProvingKey(curve)
	if err := readFile(filepath.Join(dir, ProvingKeyFile), pk); err != nil {
		return nil, err
	}
	vk, err := LoadVerifyingKey(curve, dir)
	if err != nil {
		return nil, err
	}
	return &Keys{PK: pk, VK: vk}, nil
}

func LoadVerifyingKey(curve ecc.ID, dir string) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(curve)
	if err := readFile(filepath.Join(dir, VerifyingKeyFile), vk); err != nil {
		return nil, err
	}
	return vk, nil
}

func WriteProof(path string, proof groth16.Proof) error {
	return writeFile(path, proof)
}

func ReadProof(curve ecc.ID, path string) (groth16.Proof, error) {
	proof := groth16.NewProof(curve)
	if err := readFile(path, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

func writeFile(path string, obj io.WriterTo) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if _, err := obj.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readFile(path string, obj io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.ReadFrom(f); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return nil
}
