package tx

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownTransactionType is returned when a transaction type is unknown
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Factory creates an empty transaction of one type
type Factory func() Transaction

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)
)

// Register makes a transaction type known to FromJSON. Transaction
// packages call it from init().
func Register(t Type, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("tx: Register called twice for %s", t))
	}
	registry[t] = factory
}

// RegisteredTypes returns the registered transaction types in code order.
func RegisteredTypes() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NewFromType creates a new transaction of the given type
func NewFromType(txType Type) (Transaction, error) {
	registryMu.RLock()
	factory, ok := registry[txType]
	registryMu.RUnlock()
	if !ok {
		return nil, ErrUnknownTransactionType
	}
	return factory(), nil
}

// FromJSON creates a Transaction from a JSON object. The raw bytes are
// kept so the hash and signature cover exactly what was submitted.
func FromJSON(data []byte) (Transaction, error) {
	var raw struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	txType, ok := TypeFromName(raw.TransactionType)
	if !ok {
		return nil, ErrUnknownTransactionType
	}

	tx, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, tx); err != nil {
		return nil, err
	}
	tx.SetRawBytes(append([]byte(nil), data...))

	return tx, nil
}
