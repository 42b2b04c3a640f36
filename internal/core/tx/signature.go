package tx

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/crypto"
	common "github.com/LeJamon/goBountySplit/internal/crypto/common"
)

// Signature verification errors
var (
	ErrMissingSignature = errors.New("transaction is not signed")
	ErrInvalidSignature = errors.New("signature is invalid")
)

// Hash prefixes
var (
	prefixTransactionID  = []byte{'T', 'X', 'N', 0x00}
	prefixTransactionSig = []byte{'S', 'T', 'X', 0x00}
)

// CanonicalJSON re-encodes a JSON object with sorted keys and no
// insignificant whitespace, dropping the named top-level fields.
func CanonicalJSON(data []byte, omit ...string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}
	if fields == nil {
		return nil, errors.New("canonical json: not an object")
	}
	for _, name := range omit {
		delete(fields, name)
	}
	return json.Marshal(fields)
}

// serialize returns the JSON form used for hashing.
func serialize(tx Transaction) ([]byte, error) {
	if raw := tx.GetRawBytes(); len(raw) > 0 {
		return raw, nil
	}
	return json.Marshal(tx)
}

// SigningHash returns the digest a caller signs: the canonical JSON of
// the transaction without its signature.
func SigningHash(tx Transaction) ([32]byte, error) {
	data, err := serialize(tx)
	if err != nil {
		return [32]byte{}, err
	}
	canonical, err := CanonicalJSON(data, "TxnSignature")
	if err != nil {
		return [32]byte{}, err
	}
	return common.Sha512Half(prefixTransactionSig, canonical), nil
}

// TransactionHash returns the identifier of a signed transaction: the
// canonical JSON without TxnSignature followed by the decoded signature
// bytes. Re-encodings of the same signature (hex case, JSON layout)
// therefore share one identifier.
func TransactionHash(tx Transaction) (types.Hash256, error) {
	data, err := serialize(tx)
	if err != nil {
		return types.Hash256{}, err
	}
	canonical, err := CanonicalJSON(data, "TxnSignature")
	if err != nil {
		return types.Hash256{}, err
	}
	sig, err := hex.DecodeString(tx.GetCommon().TxnSignature)
	if err != nil {
		return types.Hash256{}, ErrInvalidSignature
	}
	return types.Hash256(common.Sha512Half(prefixTransactionID, canonical, sig)), nil
}

// Sign sets Account to the keypair's identity and fills TxnSignature.
func Sign(tx Transaction, kp *crypto.Keypair) error {
	c := tx.GetCommon()
	c.Account = kp.Identity()
	c.TxnSignature = ""
	c.RawBytes = nil

	digest, err := SigningHash(tx)
	if err != nil {
		return err
	}
	c.TxnSignature = hex.EncodeToString(kp.Sign(digest))
	return nil
}

// VerifySignature checks TxnSignature against the Account identity.
func VerifySignature(tx Transaction) error {
	c := tx.GetCommon()
	if c.TxnSignature == "" {
		return ErrMissingSignature
	}
	sig, err := hex.DecodeString(c.TxnSignature)
	if err != nil {
		return ErrInvalidSignature
	}
	digest, err := SigningHash(tx)
	if err != nil {
		return err
	}
	if err := crypto.Verify(c.Account, digest, sig); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
