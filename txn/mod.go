// Package txn implements the buffered write set of a transaction.
//
// A transaction keeps its pending writes in a private overlay. A key of the
// overlay maps either to a value, meaning "set this key on commit", or to a
// tombstone, meaning "delete this key on commit". A key absent from the
// overlay is untouched and the lookup defers to the enclosing level. The
// overlay is merged into its parent, or into the committed store for an
// outermost transaction, only when the transaction commits.
//
// Documentation Last Review: 28.08.2026
package txn

import (
	"github.com/rs/xid"
	"go.dedis.ch/tkv/store"
	"golang.org/x/xerrors"
)

// State is the type of the different possible states of a transaction.
type State byte

const (
	// Open is the state of a transaction that accepts reads and writes.
	Open State = iota

	// Committed is the terminal state of a transaction whose overlay has been
	// merged into its parent, or into the committed store.
	Committed

	// RolledBack is the terminal state of a transaction whose overlay has
	// been discarded.
	RolledBack
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// entry is a tagged overlay record so that a pending delete is
// distinguishable from any legitimate value, including an empty one.
type entry struct {
	value   []byte
	deleted bool
}

// Transaction is one level of buffered writes. It records the pending
// changes of its own level only and knows the transaction it is nested in,
// if any.
//
// - implements store.Writable
type Transaction struct {
	id      string
	parent  *Transaction
	state   State
	overlay map[string]entry
}

// New creates a new open transaction nested in the given parent, which can be
// nil for an outermost transaction.
func New(parent *Transaction) *Transaction {
	return &Transaction{
		id:      xid.New().String(),
		parent:  parent,
		state:   Open,
		overlay: make(map[string]entry),
	}
}

// ID returns the unique identifier of the transaction.
func (t *Transaction) ID() string {
	return t.id
}

// Parent returns the transaction this one is nested in, or nil if it is the
// outermost transaction of its session.
func (t *Transaction) Parent() *Transaction {
	return t.parent
}

// State returns the current state of the transaction.
func (t *Transaction) State() State {
	return t.state
}

// Lookup resolves the key against the overlays, starting with the own
// overlay of the transaction and walking the parents outwards. It stops at
// the first overlay mentioning the key and returns its pending value, with
// the deleted flag set when that overlay holds a tombstone. The found flag is
// false only when no overlay mentions the key at all, in which case the
// committed store is authoritative.
func (t *Transaction) Lookup(key []byte) (value []byte, deleted bool, found bool) {
	for cur := t; cur != nil; cur = cur.parent {
		e, ok := cur.overlay[string(key)]
		if ok {
			return e.value, e.deleted, true
		}
	}

	return nil, false, false
}

// Set implements store.Writable. It buffers the value in the overlay of the
// transaction. Nothing is visible outside the transaction until it commits.
func (t *Transaction) Set(key, value []byte) error {
	if t.state != Open {
		return xerrors.Errorf("transaction %s is %v", t.id, t.state)
	}

	t.overlay[string(key)] = entry{value: value}

	return nil
}

// Delete implements store.Writable. It buffers a tombstone in the overlay so
// that the key is removed when the transaction commits, and hidden from the
// lookups of this level in the meantime.
func (t *Transaction) Delete(key []byte) error {
	if t.state != Open {
		return xerrors.Errorf("transaction %s is %v", t.id, t.state)
	}

	t.overlay[string(key)] = entry{deleted: true}

	return nil
}

// Merge applies every overlay entry onto the target: a tombstone deletes the
// key from the target and a value sets it. The same mechanism serves both the
// merge into a parent transaction and the merge into the committed store. The
// target is left partially updated if one of the writes fails.
func (t *Transaction) Merge(target store.Writable) error {
	for key, e := range t.overlay {
		var err error
		if e.deleted {
			err = target.Delete([]byte(key))
		} else {
			err = target.Set([]byte(key), e.value)
		}

		if err != nil {
			return xerrors.Errorf("couldn't apply key %q: %v", key, err)
		}
	}

	return nil
}

// Commit moves the transaction to its committed terminal state. It returns
// an error if the transaction is already closed.
func (t *Transaction) Commit() error {
	if t.state != Open {
		return xerrors.Errorf("transaction %s is %v", t.id, t.state)
	}

	t.state = Committed

	return nil
}

// Rollback moves the transaction to its rolled back terminal state. It
// returns an error if the transaction is already closed.
func (t *Transaction) Rollback() error {
	if t.state != Open {
		return xerrors.Errorf("transaction %s is %v", t.id, t.state)
	}

	t.state = RolledBack

	return nil
}
