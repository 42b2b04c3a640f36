package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// Change is one committed mutation.
type Change struct {
	Key    [32]byte
	Action Action
	Data   []byte
}

// BatchCommitter is implemented by base views that can apply a change
// set atomically, e.g. in one storage batch.
type BatchCommitter interface {
	Commit(changes []Change) error
}

// ApplyStateTable wraps a LedgerView and tracks all modifications made
// while applying one transaction. Nothing reaches the base view until
// Apply is called, so discarding the table rolls the transaction back.
type ApplyStateTable struct {
	base   LedgerView
	items  map[[32]byte]*TrackedEntry
	txHash types.Hash256
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView, txHash types.Hash256) *ApplyStateTable {
	return &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		txHash: txHash,
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry not found (deleted)")
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry not found")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry already deleted")
		}
		if entry.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry not found")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// ForEach iterates over the base view with the table's changes applied.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	seen := make(map[[32]byte]struct{}, len(t.items))
	stopped := false
	err := t.base.ForEach(func(key [32]byte, data []byte) bool {
		if entry, ok := t.items[key]; ok {
			seen[key] = struct{}{}
			if entry.Action == ActionErase {
				return true
			}
			data = entry.Current
		}
		if !fn(key, data) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}
	for _, key := range t.sortedKeys() {
		entry := t.items[key]
		if _, ok := seen[key]; ok || entry.Action != ActionInsert {
			continue
		}
		if !fn(key, entry.Current) {
			return nil
		}
	}
	return nil
}

func (t *ApplyStateTable) sortedKeys() [][32]byte {
	keys := make([][32]byte, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	return keys
}

// Apply commits all changes to the base view and returns generated metadata.
// Entries written by the transaction get PreviousTxnID set to its hash.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	t.applyThreading()

	metadata := &Metadata{
		AffectedNodes: make([]AffectedNode, 0),
	}
	changes := make([]Change, 0, len(t.items))

	for _, key := range t.sortedKeys() {
		entry := t.items[key]
		var (
			node AffectedNode
			err  error
		)
		switch entry.Action {
		case ActionCache:
			continue
		case ActionInsert:
			node, err = buildCreatedNode(key, entry.Current)
		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			node, err = buildModifiedNode(key, entry.Original, entry.Current)
		case ActionErase:
			node, err = buildDeletedNode(key, entry.Original)
		}
		if err != nil {
			return nil, err
		}
		metadata.AffectedNodes = append(metadata.AffectedNodes, node)
		changes = append(changes, Change{Key: key, Action: entry.Action, Data: entry.Current})
	}

	if committer, ok := t.base.(BatchCommitter); ok {
		if err := committer.Commit(changes); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	for _, c := range changes {
		var err error
		switch c.Action {
		case ActionInsert:
			err = t.base.Insert(keylet.Unchecked(c.Key), c.Data)
		case ActionModify:
			err = t.base.Update(keylet.Unchecked(c.Key), c.Data)
		case ActionErase:
			err = t.base.Erase(keylet.Unchecked(c.Key))
		}
		if err != nil {
			return nil, err
		}
	}
	return metadata, nil
}

// applyThreading stamps PreviousTxnID on inserted and modified entries.
func (t *ApplyStateTable) applyThreading() {
	for _, entry := range t.items {
		if entry.Action != ActionInsert && entry.Action != ActionModify {
			continue
		}
		if entry.Action == ActionModify && bytes.Equal(entry.Original, entry.Current) {
			continue
		}
		decoded, err := sle.Decode(entry.Current)
		if err != nil {
			continue
		}
		switch e := decoded.(type) {
		case *sle.BountyEscrow:
			e.PreviousTxnID = t.txHash
		case *sle.Holding:
			e.PreviousTxnID = t.txHash
		default:
			continue
		}
		if data, err := sle.Encode(decoded); err == nil {
			entry.Current = data
		}
	}
}

func ledgerIndex(key [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(key[:]))
}

func buildCreatedNode(key [32]byte, data []byte) (AffectedNode, error) {
	name, fields, err := sle.Fields(data)
	if err != nil {
		return AffectedNode{}, err
	}
	return AffectedNode{
		NodeType:        "CreatedNode",
		LedgerEntryType: name,
		LedgerIndex:     ledgerIndex(key),
		NewFields:       fields,
	}, nil
}

func buildModifiedNode(key [32]byte, original, current []byte) (AffectedNode, error) {
	name, final, err := sle.Fields(current)
	if err != nil {
		return AffectedNode{}, err
	}
	_, prior, err := sle.Fields(original)
	if err != nil {
		return AffectedNode{}, err
	}

	previous := make(map[string]any)
	for k, v := range prior {
		if k == "previous_txn_id" {
			continue
		}
		if !reflect.DeepEqual(final[k], v) {
			previous[k] = v
		}
	}

	return AffectedNode{
		NodeType:        "ModifiedNode",
		LedgerEntryType: name,
		LedgerIndex:     ledgerIndex(key),
		FinalFields:     final,
		PreviousFields:  previous,
	}, nil
}

func buildDeletedNode(key [32]byte, original []byte) (AffectedNode, error) {
	name, fields, err := sle.Fields(original)
	if err != nil {
		return AffectedNode{}, err
	}
	return AffectedNode{
		NodeType:        "DeletedNode",
		LedgerEntryType: name,
		LedgerIndex:     ledgerIndex(key),
		FinalFields:     fields,
	}, nil
}
