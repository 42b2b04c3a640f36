package tx

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func nopCustody(LedgerView) Custody { return nil }

func newTestEngine(view LedgerView, skipSig bool) *Engine {
	return NewEngine(view, EngineConfig{
		SkipSignatureVerification: skipSig,
		Now:                       func() time.Time { return time.Unix(1700000000, 0) },
		Custody:                   nopCustody,
	})
}

func TestEngineAppliesAndRecords(t *testing.T) {
	view := mapView{}
	engine := newTestEngine(view, false)
	alice := testKeypair(t, "alice")
	k, data := testHolding(t, 1, 10)

	txn := newStubTx(alice.Identity(), func(ctx *ApplyContext) Result {
		require.NoError(t, ctx.View.Insert(k, data))
		ctx.Emit(ReleaseProposed{By: ctx.Caller})
		return TesSUCCESS
	})
	require.NoError(t, Sign(txn, alice))

	result := engine.Apply(txn)
	require.Equal(t, TesSUCCESS, result.Result, result.Message)
	assert.True(t, result.Applied)
	assert.False(t, result.Hash.IsZero())
	require.Len(t, result.Events, 1)
	assert.Equal(t, "ReleaseProposed", result.Events[0].EventType())

	// the holding plus the transaction record
	assert.Len(t, result.Metadata.AffectedNodes, 2)
	assert.Equal(t, TesSUCCESS, result.Metadata.TransactionResult)

	raw := view[keylet.Transaction(result.Hash).Key]
	require.NotNil(t, raw)
	record, err := sle.ParseTxRecord(raw)
	require.NoError(t, err)
	assert.Equal(t, "Refund", record.TransactionType)
	assert.Equal(t, alice.Identity(), record.Account)
	assert.Equal(t, int64(1700000000), record.AppliedAt)

	stored, err := sle.ParseHolding(view[k.Key])
	require.NoError(t, err)
	assert.Equal(t, result.Hash, stored.PreviousTxnID)
}

func TestEngineRejectsDuplicate(t *testing.T) {
	view := mapView{}
	engine := newTestEngine(view, true)
	var alice types.Identity
	alice[0] = 0x02

	calls := 0
	txn := newStubTx(alice, func(*ApplyContext) Result {
		calls++
		return TesSUCCESS
	})

	require.Equal(t, TesSUCCESS, engine.Apply(txn).Result)
	second := engine.Apply(txn)
	assert.Equal(t, TefALREADY, second.Result)
	assert.False(t, second.Applied)
	assert.Equal(t, 1, calls)

	txn.Sequence = 2
	assert.Equal(t, TesSUCCESS, engine.Apply(txn).Result)
}

func TestEngineRejectsReencodedSignature(t *testing.T) {
	view := mapView{}
	engine := newTestEngine(view, false)
	alice := testKeypair(t, "alice")

	calls := 0
	txn := newStubTx(alice.Identity(), func(*ApplyContext) Result {
		calls++
		return TesSUCCESS
	})
	require.NoError(t, Sign(txn, alice))
	first := engine.Apply(txn)
	require.Equal(t, TesSUCCESS, first.Result)

	t.Run("hex case", func(t *testing.T) {
		upper := *txn
		upper.TxnSignature = strings.ToUpper(txn.TxnSignature)
		require.NotEqual(t, txn.TxnSignature, upper.TxnSignature)
		require.NoError(t, VerifySignature(&upper))

		result := engine.Apply(&upper)
		assert.Equal(t, TefALREADY, result.Result)
		assert.Equal(t, first.Hash, result.Hash)
	})

	t.Run("high S", func(t *testing.T) {
		twin := *txn
		twin.TxnSignature = highSSignature(t, txn.TxnSignature)
		assert.ErrorIs(t, VerifySignature(&twin), ErrInvalidSignature)
		assert.Equal(t, TemBAD_SIGNATURE, engine.Apply(&twin).Result)
	})

	t.Run("bad hex unverified", func(t *testing.T) {
		bad := *txn
		bad.TxnSignature = "zz"
		assert.Equal(t, TemBAD_SIGNATURE, newTestEngine(mapView{}, true).Apply(&bad).Result)
	})

	assert.Equal(t, 1, calls)
}

func TestEngineDiscardsFailedApply(t *testing.T) {
	view := mapView{}
	engine := newTestEngine(view, true)
	var alice types.Identity
	alice[0] = 0x02
	k, data := testHolding(t, 1, 10)

	txn := newStubTx(alice, func(ctx *ApplyContext) Result {
		require.NoError(t, ctx.View.Insert(k, data))
		ctx.Emit(ReleaseProposed{})
		return TecINVALID_STATUS
	})

	result := engine.Apply(txn)
	assert.Equal(t, TecINVALID_STATUS, result.Result)
	assert.False(t, result.Applied)
	assert.Empty(t, result.Events)
	assert.Empty(t, view)
}

func TestEngineSignatureChecks(t *testing.T) {
	alice := testKeypair(t, "alice")
	bob := testKeypair(t, "bob")
	ok := func(*ApplyContext) Result { return TesSUCCESS }

	t.Run("unsigned", func(t *testing.T) {
		txn := newStubTx(alice.Identity(), ok)
		assert.Equal(t, TemBAD_SIGNATURE, newTestEngine(mapView{}, false).Apply(txn).Result)
	})

	t.Run("tampered", func(t *testing.T) {
		txn := newStubTx(alice.Identity(), ok)
		require.NoError(t, Sign(txn, alice))
		txn.Note = "changed"
		assert.Equal(t, TemBAD_SIGNATURE, newTestEngine(mapView{}, false).Apply(txn).Result)
	})

	t.Run("wrong key", func(t *testing.T) {
		txn := newStubTx(alice.Identity(), ok)
		require.NoError(t, Sign(txn, bob))
		txn.Account = alice.Identity()
		assert.Equal(t, TemBAD_SIGNATURE, newTestEngine(mapView{}, false).Apply(txn).Result)
	})

	t.Run("skipped", func(t *testing.T) {
		txn := newStubTx(alice.Identity(), ok)
		assert.Equal(t, TesSUCCESS, newTestEngine(mapView{}, true).Apply(txn).Result)
	})
}

func TestEnginePreflight(t *testing.T) {
	var alice types.Identity
	alice[0] = 0x02
	ok := func(*ApplyContext) Result { return TesSUCCESS }

	tests := []struct {
		name   string
		mutate func(p *stubTx)
		want   Result
	}{
		{"zero account", func(p *stubTx) { p.Account = types.Identity{} }, TemBAD_SRC_ACCOUNT},
		{"type mismatch", func(p *stubTx) { p.TransactionType = "Claim" }, TemINVALID},
		{"tem token", func(p *stubTx) { p.validateErr = errors.New("temZERO_SPLIT: split cannot be zero") }, TemZERO_SPLIT},
		{"tec token is not stateless", func(p *stubTx) { p.validateErr = errors.New("tecUNAUTHORIZED: no") }, TemINVALID},
		{"plain error", func(p *stubTx) { p.validateErr = errors.New("bad") }, TemINVALID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := newStubTx(alice, ok)
			tt.mutate(txn)
			assert.Equal(t, tt.want, newTestEngine(mapView{}, true).Apply(txn).Result)
		})
	}
}

func TestEngineRequiresCustody(t *testing.T) {
	var alice types.Identity
	alice[0] = 0x02
	engine := NewEngine(mapView{}, EngineConfig{SkipSignatureVerification: true})
	txn := newStubTx(alice, func(*ApplyContext) Result { return TesSUCCESS })
	assert.Equal(t, TefINTERNAL, engine.Apply(txn).Result)
}

func TestEngineBindsCustodyToStateTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var alice types.Identity
	alice[0] = 0x02
	mock := NewMockCustody(ctrl)
	mint := types.Mint{1}
	vault := types.Hash256{2}

	var bound LedgerView
	engine := NewEngine(mapView{}, EngineConfig{
		SkipSignatureVerification: true,
		Custody: func(view LedgerView) Custody {
			bound = view
			return mock
		},
	})

	mock.EXPECT().Withdraw(mint, vault, alice, uint64(5)).Return(ErrInsufficientFunds)

	txn := newStubTx(alice, func(ctx *ApplyContext) Result {
		if err := ctx.Custody.Withdraw(mint, vault, ctx.Caller, 5); errors.Is(err, ErrInsufficientFunds) {
			return TecINSUFFICIENT_FUNDS
		}
		return TesSUCCESS
	})

	result := engine.Apply(txn)
	assert.Equal(t, TecINSUFFICIENT_FUNDS, result.Result)
	_, isTable := bound.(*ApplyStateTable)
	assert.True(t, isTable)
}

func TestParseValidationError(t *testing.T) {
	assert.Equal(t, TemDUPLICATE_RECIPIENT, parseValidationError(errors.New("temDUPLICATE_RECIPIENT: recipient listed twice")))
	assert.Equal(t, TemMALFORMED, parseValidationError(errors.New("temMALFORMED")))
	assert.Equal(t, TemINVALID, parseValidationError(errors.New("something else")))
}

func TestEngineExclusive(t *testing.T) {
	view := mapView{}
	engine := newTestEngine(view, true)
	k, data := testHolding(t, 1, 10)

	meta, err := engine.Exclusive(func(v LedgerView) error {
		return v.Insert(k, data)
	})
	require.NoError(t, err)
	assert.Len(t, meta.AffectedNodes, 1)
	assert.NotNil(t, view[k.Key])

	k2, data2 := testHolding(t, 2, 10)
	_, err = engine.Exclusive(func(v LedgerView) error {
		require.NoError(t, v.Insert(k2, data2))
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")
	assert.Nil(t, view[k2.Key])
}
