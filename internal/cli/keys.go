package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/crypto"
)

var (
	keySeed       string
	keyPassphrase string
	signSequence  uint32
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing key",
	Long: `Generate a secp256k1 signing key and print its seed, public key
(the identity used as Account) and account id. Without flags the seed
is random.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := resolveSeed(true)
		if err != nil {
			return err
		}
		kp, err := crypto.KeypairFromSeed(seed)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"master_seed": strings.ToUpper(hex.EncodeToString(seed)),
			"public_key":  kp.Identity().String(),
			"account_id":  kp.AccountID().String(),
			"key_type":    "secp256k1",
		})
	},
}

var signCmd = &cobra.Command{
	Use:   "sign [file]",
	Short: "Sign a transaction offline",
	Long: `Sign the transaction JSON in file, or on standard input, and print
{"tx_json": ..., "hash": ...}. The output can be passed to submit as is.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSign,
}

func init() {
	rootCmd.AddCommand(keygenCmd, signCmd)
	for _, c := range []*cobra.Command{keygenCmd, signCmd} {
		c.Flags().StringVar(&keySeed, "seed", "", "hex-encoded 16-byte seed")
		c.Flags().StringVar(&keyPassphrase, "passphrase", "", "derive the seed from a passphrase (testing only)")
	}
	signCmd.Flags().Uint32Var(&signSequence, "sequence", 0, "set the Sequence field before signing")
}

// resolveSeed returns the seed selected by --seed or --passphrase. A
// random seed is generated only when allowRandom is set.
func resolveSeed(allowRandom bool) ([]byte, error) {
	switch {
	case keySeed != "" && keyPassphrase != "":
		return nil, fmt.Errorf("--seed and --passphrase are mutually exclusive")
	case keySeed != "":
		seed, err := hex.DecodeString(keySeed)
		if err != nil || len(seed) != crypto.SeedSize {
			return nil, crypto.ErrInvalidSeed
		}
		return seed, nil
	case keyPassphrase != "":
		return crypto.SeedFromPassphrase(keyPassphrase), nil
	case allowRandom:
		return crypto.GenerateSeed()
	default:
		return nil, fmt.Errorf("one of --seed or --passphrase is required")
	}
}

func runSign(cmd *cobra.Command, args []string) error {
	seed, err := resolveSeed(false)
	if err != nil {
		return err
	}
	kp, err := crypto.KeypairFromSeed(seed)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	txn, err := tx.FromJSON(data)
	if err != nil {
		return fmt.Errorf("parse transaction: %w", err)
	}
	if acc := txn.GetCommon().Account; !acc.IsZero() && acc != kp.Identity() {
		return fmt.Errorf("transaction Account %s does not match the signing key %s", acc, kp.Identity())
	}
	txn.GetCommon().Account = kp.Identity()
	if signSequence != 0 {
		txn.GetCommon().Sequence = signSequence
	}
	if err := txn.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	if err := tx.Sign(txn, kp); err != nil {
		return err
	}
	hash, err := tx.TransactionHash(txn)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"tx_json": txn,
		"hash":    hash.String(),
	})
}
