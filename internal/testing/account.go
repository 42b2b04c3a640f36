package testing

import (
	"fmt"
	"sync"

	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/crypto"
)

// Account represents a test account with a deterministic keypair.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Keypair signs the account's transactions.
	Keypair *crypto.Keypair

	// Identity is the account's public key.
	Identity types.Identity

	// ID is the 20-byte account ID derived from the public key.
	ID types.AccountID
}

var accounts sync.Map // types.Identity -> *Account

// NewAccount creates a test account whose keypair is derived from name.
// Using the same name always produces the same account.
func NewAccount(name string) *Account {
	kp, err := crypto.KeypairFromSeed(crypto.SeedFromPassphrase(name))
	if err != nil {
		panic("failed to derive keypair for account " + name + ": " + err.Error())
	}
	acc := &Account{
		Name:     name,
		Keypair:  kp,
		Identity: kp.Identity(),
		ID:       kp.AccountID(),
	}
	actual, _ := accounts.LoadOrStore(acc.Identity, acc)
	return actual.(*Account)
}

// AccountFor returns the account created for id, if any.
func AccountFor(id types.Identity) (*Account, bool) {
	v, ok := accounts.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Account), true
}

// Identities returns the identities of accs in order.
func Identities(accs ...*Account) []types.Identity {
	out := make([]types.Identity, len(accs))
	for i, acc := range accs {
		out[i] = acc.Identity
	}
	return out
}

// String returns the name and identity of the account.
func (a *Account) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Identity)
}
