package tx

import (
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/crypto"
)

// mapView is a minimal LedgerView. It does not implement BatchCommitter,
// so commits go through the per-entry path.
type mapView map[[32]byte][]byte

func (m mapView) Read(k keylet.Keylet) ([]byte, error) { return m[k.Key], nil }

func (m mapView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := m[k.Key]
	return ok, nil
}

func (m mapView) Insert(k keylet.Keylet, data []byte) error {
	m[k.Key] = data
	return nil
}

func (m mapView) Update(k keylet.Keylet, data []byte) error {
	m[k.Key] = data
	return nil
}

func (m mapView) Erase(k keylet.Keylet) error {
	delete(m, k.Key)
	return nil
}

func (m mapView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	for k, v := range m {
		if !fn(k, v) {
			return nil
		}
	}
	return nil
}

// stubTx is a transaction whose behaviour is supplied by the test.
type stubTx struct {
	BaseTx
	Note string `json:"Note,omitempty"`

	validateErr error
	apply       func(ctx *ApplyContext) Result
}

func newStubTx(account types.Identity, apply func(ctx *ApplyContext) Result) *stubTx {
	return &stubTx{BaseTx: *NewBaseTx(TypeRefund, account), apply: apply}
}

func (p *stubTx) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	return p.validateErr
}

func (p *stubTx) Apply(ctx *ApplyContext) Result {
	return p.apply(ctx)
}

func testKeypair(t *testing.T, name string) *crypto.Keypair {
	t.Helper()
	kp, err := crypto.KeypairFromSeed(crypto.SeedFromPassphrase(name))
	require.NoError(t, err)
	return kp
}

func testHolding(t *testing.T, owner byte, balance uint64) (keylet.Keylet, []byte) {
	t.Helper()
	mint, err := types.MintFromCode("USDC")
	require.NoError(t, err)
	h := &sle.Holding{Mint: mint, Owner: []byte{owner}, Balance: balance}
	data, err := sle.Encode(h)
	require.NoError(t, err)
	return keylet.Holding(mint, h.Owner), data
}

// highSSignature rewrites a signed transaction's low-S signature as its
// (R, N-S) twin, which verifies under plain ECDSA.
func highSSignature(t *testing.T, sigHex string) string {
	t.Helper()
	sig, err := hex.DecodeString(sigHex)
	require.NoError(t, err)

	rLen := int(sig[3])
	r := sig[4 : 4+rLen]
	sBytes := sig[4+rLen+2:]
	if sBytes[0] == 0 {
		sBytes = sBytes[1:]
	}

	var s secp256k1.ModNScalar
	require.False(t, s.SetByteSlice(sBytes))
	s.Negate()
	full := s.Bytes()
	high := full[:]
	for len(high) > 1 && high[0] == 0 {
		high = high[1:]
	}
	if high[0]&0x80 != 0 {
		high = append([]byte{0}, high...)
	}

	out := []byte{0x30, byte(4 + len(r) + len(high)), 0x02, byte(len(r))}
	out = append(out, r...)
	out = append(out, 0x02, byte(len(high)))
	out = append(out, high...)
	return hex.EncodeToString(out)
}
