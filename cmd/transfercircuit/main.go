// Command transfercircuit drives the covenant transfer circuit from the
// shell: compile stats, Groth16 setup, proving over a JSON witness, and
// proof verification.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/covenantzk/transfercircuit"
	"github.com/covenantzk/transfercircuit/backend"
	"github.com/covenantzk/transfercircuit/transfer"
)

var (
	log     zerolog.Logger
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:          "transfercircuit",
		Short:        "covenant transfer circuit toolchain",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(compileCmd(), setupCmd(), keygenCmd(), proveCmd(), verifyCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newProver() (*transfercircuit.Prover, error) {
	return transfercircuit.NewProver(transfer.DefaultConfig(), log)
}

func compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile",
		Short: "compile the circuit and print its stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProver()
			if err != nil {
				return err
			}
			s := p.Stats()
			log.Info().
				Int("constraints", s.Constraints).
				Int("r1csSize", s.R1CSSize).
				Int("publicSignals", s.PublicSignals).
				Int("secretInputs", s.SecretInputs).
				Msg("compiled")
			return nil
		},
	}
}

func setupCmd() *cobra.Command {
	var pkPath, vkPath string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "run the Groth16 trusted setup and write the key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProver()
			if err != nil {
				return err
			}
			keys, err := p.System.Setup()
			if err != nil {
				return err
			}
			pkf, err := os.Create(pkPath)
			if err != nil {
				return err
			}
			defer pkf.Close()
			vkf, err := os.Create(vkPath)
			if err != nil {
				return err
			}
			defer vkf.Close()
			if err := keys.WriteKeys(pkf, vkf); err != nil {
				return err
			}
			log.Info().Str("pk", pkPath).Str("vk", vkPath).Msg("keys written")
			return nil
		},
	}
	cmd.Flags().StringVar(&pkPath, "pk", "transfer.pk", "proving key output path")
	cmd.Flags().StringVar(&vkPath, "vk", "transfer.vk", "verifying key output path")
	return cmd
}

func keygenCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "generate an owner EdDSA key",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := transfercircuit.GenerateOwnerKey(rand.Reader)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, []byte(hex.EncodeToString(key.Bytes())), 0o600); err != nil {
				return err
			}
			x, y := backend.PublicKeyCoords(key.PublicKey)
			log.Info().
				Str("file", out).
				Str("pubX", x.String()).
				Str("pubY", y.String()).
				Msg("owner key written")
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "owner.key", "key output path")
	return cmd
}

func loadOwnerKey(path string) (*eddsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("owner key %s: %w", path, err)
	}
	var key eddsa.PrivateKey
	if _, err := key.SetBytes(b); err != nil {
		return nil, fmt.Errorf("owner key %s: %w", path, err)
	}
	return &key, nil
}

func loadKeys(pkPath, vkPath string) (*backend.Keys, error) {
	pkf, err := os.Open(pkPath)
	if err != nil {
		return nil, err
	}
	defer pkf.Close()
	vkf, err := os.Open(vkPath)
	if err != nil {
		return nil, err
	}
	defer vkf.Close()
	return backend.ReadKeys(pkf, vkf)
}

func proveCmd() *cobra.Command {
	var pkPath, vkPath, keyPath, witnessPath, out string
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "prove a transfer witness and sign the exported message",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProver()
			if err != nil {
				return err
			}
			keys, err := loadKeys(pkPath, vkPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(witnessPath)
			if err != nil {
				return err
			}
			w, err := transfer.ParseWitnessJSON(p.Circuit.Cfg, raw)
			if err != nil {
				return err
			}
			var ownerKey *eddsa.PrivateKey
			if keyPath != "" {
				if ownerKey, err = loadOwnerKey(keyPath); err != nil {
					return err
				}
			}
			bundle, err := p.Prove(keys, w, ownerKey)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			log.Info().Str("bundle", out).Msg("proof written")
			return nil
		},
	}
	cmd.Flags().StringVar(&pkPath, "pk", "transfer.pk", "proving key path")
	cmd.Flags().StringVar(&vkPath, "vk", "transfer.vk", "verifying key path")
	cmd.Flags().StringVar(&keyPath, "key", "", "owner key path; omit to skip signing")
	cmd.Flags().StringVar(&witnessPath, "witness", "witness.json", "witness JSON path")
	cmd.Flags().StringVar(&out, "out", "proof.json", "proof bundle output path")
	return cmd
}

func verifyCmd() *cobra.Command {
	var vkPath, bundlePath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "verify a proof bundle, signature included",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProver()
			if err != nil {
				return err
			}
			vkf, err := os.Open(vkPath)
			if err != nil {
				return err
			}
			defer vkf.Close()
			vk, err := backend.ReadVerifyingKey(vkf)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(bundlePath)
			if err != nil {
				return err
			}
			var bundle backend.Bundle
			if err := json.Unmarshal(raw, &bundle); err != nil {
				return err
			}
			if err := p.Verify(vk, &bundle); err != nil {
				return err
			}
			log.Info().Msg("proof ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&vkPath, "vk", "transfer.vk", "verifying key path")
	cmd.Flags().StringVar(&bundlePath, "bundle", "proof.json", "proof bundle path")
	return cmd
}
