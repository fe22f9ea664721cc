package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/jimzk/zklink-oracle/accumulator"
	"github.com/jimzk/zklink-oracle/internal/config"
	"github.com/jimzk/zklink-oracle/internal/devnet"
	"github.com/jimzk/zklink-oracle/internal/prover"
)

var (
	vaaFlag = &cli.StringFlag{
		Name:     "vaa",
		Usage:    "Hex encoded VAA (0x prefix optional)",
		Required: true,
	}
	proofFlag = &cli.StringFlag{
		Name:  "proof",
		Usage: "Path of the proof file",
		Value: "attestation.proof",
	}
)

func main() {
	app := &cli.App{
		Name:  "oracle-circuit",
		Usage: "Proves that a Wormhole VAA carrying a Pyth accumulator root was signed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Optional path to a config file (yaml, json or toml)",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(config.Options{FilePath: c.String("config")})
			if err != nil {
				return err
			}
			lvl, _ := cfg.Level()
			logger.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
				Level(lvl).With().Timestamp().Logger())
			c.App.Metadata = map[string]interface{}{"config": cfg}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "inspect",
				Usage:  "Decode a VAA and print what the circuit would see",
				Flags:  []cli.Flag{vaaFlag},
				Action: inspect,
			},
			{
				Name:   "check",
				Usage:  "Run the circuit on a VAA without proving",
				Flags:  []cli.Flag{vaaFlag},
				Action: check,
			},
			{
				Name:   "setup",
				Usage:  "Compile the circuit and write development groth16 keys to key_dir",
				Action: setup,
			},
			{
				Name:   "prove",
				Usage:  "Prove a VAA with the keys in key_dir",
				Flags:  []cli.Flag{vaaFlag, proofFlag},
				Action: prove,
			},
			{
				Name:   "verify",
				Usage:  "Verify a proof against the public inputs of a VAA",
				Flags:  []cli.Flag{vaaFlag, proofFlag},
				Action: verify,
			},
			{
				Name:  "generate",
				Usage: "Print an accumulator VAA signed by development guardians",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "guardians", Usage: "Number of signing guardians", Value: 13},
					&cli.Uint64Flag{Name: "slot", Usage: "Pythnet slot", Value: 1},
					&cli.UintFlag{Name: "ring-size", Usage: "Accumulator ring size", Value: 10000},
					&cli.StringSliceFlag{Name: "message", Usage: "Price message committed by the root (repeatable)"},
				},
				Action: generate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Logger().Error().Err(err).Msg("oracle-circuit failed")
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func readVAA(c *cli.Context) (*vaa.VAA, error) {
	v, err := decodeVAA(c.String(vaaFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", vaaFlag.Name, err)
	}
	return v, nil
}

// decodeVAA parses a hex encoded VAA with an optional 0x prefix.
func decodeVAA(s string) (*vaa.VAA, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.New("empty vaa")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	v, err := vaa.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vaa: %w", err)
	}
	return v, nil
}

func ringSize(n uint) (uint32, error) {
	if uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("ring size %d does not fit in 32 bits", n)
	}
	return uint32(n), nil
}

func inspect(c *cli.Context) error {
	v, err := readVAA(c)
	if err != nil {
		return err
	}
	fmt.Printf("message id:      %s\n", v.MessageID())
	fmt.Printf("guardian set:    %d\n", v.GuardianSetIndex)
	fmt.Printf("timestamp:       %s\n", v.Timestamp.UTC().Format(time.RFC3339))
	fmt.Printf("signing digest:  %s\n", v.SigningDigest().Hex())
	for _, sig := range v.Signatures {
		fmt.Printf("signature %2d:    %s\n", sig.Index, hex.EncodeToString(sig.Signature[:]))
	}

	msg, err := accumulator.Unmarshal(v.Payload)
	if err != nil {
		return fmt.Errorf("failed to decode oracle payload: %w", err)
	}
	switch p := msg.Payload.(type) {
	case accumulator.MerklePayload:
		fmt.Printf("slot:            %d\n", p.Slot)
		fmt.Printf("ring size:       %d\n", p.RingSize)
		fmt.Printf("merkle root:     %s\n", hex.EncodeToString(p.Root[:]))
	default:
		fmt.Printf("payload type:    %d (not supported by the circuit)\n", p.Type())
	}
	return nil
}

func check(c *cli.Context) error {
	cfg := loadConfig(c)
	curve, _ := cfg.CurveID()
	v, err := readVAA(c)
	if err != nil {
		return err
	}
	if err := prover.Check(curve, v, cfg.Quorum); err != nil {
		return err
	}
	fmt.Println("circuit is satisfied")
	return nil
}

func setup(c *cli.Context) error {
	cfg := loadConfig(c)
	curve, _ := cfg.CurveID()
	logger.Logger().Warn().Msg("single-party setup, keys are for development only")

	cs, err := prover.Compile(curve, cfg.Quorum)
	if err != nil {
		return err
	}
	keys, err := prover.Setup(cs)
	if err != nil {
		return err
	}
	if err := prover.Save(cfg.KeyDir, cs, keys); err != nil {
		return err
	}
	logger.Logger().Info().Str("dir", cfg.KeyDir).Msg("wrote circuit and keys")
	return nil
}

func prove(c *cli.Context) error {
	cfg := loadConfig(c)
	curve, _ := cfg.CurveID()
	v, err := readVAA(c)
	if err != nil {
		return err
	}
	cs, err := prover.LoadCircuit(curve, cfg.KeyDir)
	if err != nil {
		return err
	}
	keys, err := prover.LoadKeys(curve, cfg.KeyDir)
	if err != nil {
		return err
	}
	proof, _, err := prover.Prove(cs, keys.PK, v, cfg.Quorum)
	if err != nil {
		return err
	}
	return prover.WriteProof(c.String(proofFlag.Name), proof)
}

func verify(c *cli.Context) error {
	cfg := loadConfig(c)
	curve, _ := cfg.CurveID()
	v, err := readVAA(c)
	if err != nil {
		return err
	}
	vk, err := prover.LoadVerifyingKey(curve, cfg.KeyDir)
	if err != nil {
		return err
	}
	proof, err := prover.ReadProof(curve, c.String(proofFlag.Name))
	if err != nil {
		return err
	}
	public, err := prover.PublicWitness(curve, v, cfg.Quorum)
	if err != nil {
		return err
	}
	if err := prover.Verify(vk, proof, public); err != nil {
		return err
	}
	fmt.Println("proof is valid")
	return nil
}

func generate(c *cli.Context) error {
	ring, err := ringSize(c.Uint("ring-size"))
	if err != nil {
		return err
	}
	keys, err := devnet.GuardianKeys(c.Int("guardians"))
	if err != nil {
		return err
	}
	messages := [][]byte{}
	for _, m := range c.StringSlice("message") {
		messages = append(messages, []byte(m))
	}
	if len(messages) == 0 {
		messages = append(messages, []byte("devnet price message"))
	}

	v, err := devnet.NewSignedVAA(devnet.Attestation{
		Slot:      c.Uint64("slot"),
		RingSize:  ring,
		Messages:  messages,
		Sequence:  c.Uint64("slot"),
		Timestamp: time.Now().Truncate(time.Second),
	}, keys)
	if err != nil {
		return err
	}
	raw, err := v.Marshal()
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(raw))
	return nil
}
