package db

import (
	"go.dedis.ch/tkv/txn"
	"golang.org/x/xerrors"
)

// Txn is the narrow surface handed to an Exec callback. Every operation
// targets the transaction opened for the callback.
type Txn interface {
	// Get returns the value visible from the transaction, or false if the
	// key is absent or pending deletion.
	Get(key []byte) ([]byte, bool)

	// Put buffers a write of the key in the transaction.
	Put(key []byte, value []byte) error

	// Delete buffers a deletion of the key in the transaction.
	Delete(key []byte) error
}

// Session is the per-goroutine context of the engine. It owns the stack of
// open nested transactions so that every operation implicitly targets the
// most recently begun one. Sessions of different goroutines only share the
// committed store.
type Session struct {
	db    *DB
	stack txn.Stack
}

// Begin opens a new transaction nested in the current one and returns its
// identifier. For an outermost transaction under the pessimistic strategy,
// it first acquires the engine-wide store lock and blocks until any other
// session has closed its own outermost transaction. Nested begins never
// lock.
func (s *Session) Begin() string {
	parent := s.stack.Peek()

	if parent == nil && s.db.strategy == Pessimistic {
		s.db.mutex.Lock()
		promLockHeld.Set(1)
	}

	t := txn.New(parent)
	s.stack.Push(t)

	promBegun.Inc()

	s.db.logger.Debug().
		Str("txn", t.ID()).
		Int("depth", s.stack.Len()).
		Msg("transaction begun")

	return t.ID()
}

// Get resolves the key through the overlays of the open transactions, from
// the innermost to the outermost, and falls back to the committed store when
// no overlay mentions the key. A pending deletion hides the key. With no
// open transaction it reads the committed store directly.
func (s *Session) Get(key []byte) ([]byte, bool) {
	top := s.stack.Peek()
	if top == nil {
		return s.db.Get(key)
	}

	value, deleted, found := top.Lookup(key)
	if found {
		if deleted {
			return nil, false
		}

		return value, true
	}

	// An open outermost transaction holds the store lock under the
	// pessimistic strategy, so the committed state is read directly.
	return s.db.store.Get(key)
}

// Put buffers a write of the key in the current transaction. It returns
// ErrNoTransaction if the session has no open transaction.
func (s *Session) Put(key, value []byte) error {
	top := s.stack.Peek()
	if top == nil {
		return ErrNoTransaction
	}

	err := top.Set(key, value)
	if err != nil {
		return xerrors.Errorf("couldn't write: %v", err)
	}

	return nil
}

// Delete buffers a deletion of the key in the current transaction. It
// returns ErrNoTransaction if the session has no open transaction.
func (s *Session) Delete(key []byte) error {
	top := s.stack.Peek()
	if top == nil {
		return ErrNoTransaction
	}

	err := top.Delete(key)
	if err != nil {
		return xerrors.Errorf("couldn't delete: %v", err)
	}

	return nil
}

// Commit closes the current transaction and merges its overlay one level
// down: into the parent transaction for a nested one, into the committed
// store for an outermost one. The outermost merge of the pessimistic
// strategy happens under the store lock acquired at Begin, and the lock is
// released on every path out of this call, merge failure included. The store
// offers no multi-key atomicity, so a failed merge leaves it partially
// updated.
func (s *Session) Commit() error {
	top := s.stack.Peek()
	if top == nil {
		return ErrNoTransaction
	}

	outermost := top.Parent() == nil

	if outermost && s.db.strategy == Pessimistic {
		defer func() {
			promLockHeld.Set(0)
			s.db.mutex.Unlock()
		}()
	}

	err := s.close(top, (*txn.Transaction).Commit)
	if err != nil {
		return err
	}

	if outermost {
		err = top.Merge(s.db.store)
		if err != nil {
			return xerrors.Errorf("couldn't merge into store: %v", err)
		}
	} else {
		err = top.Merge(top.Parent())
		if err != nil {
			return xerrors.Errorf("couldn't merge into parent: %v", err)
		}
	}

	promCommitted.Inc()

	s.db.logger.Debug().
		Str("txn", top.ID()).
		Bool("outermost", outermost).
		Msg("transaction committed")

	return nil
}

// Rollback closes the current transaction and discards its overlay. Neither
// the parent transaction nor the committed store is touched. For an
// outermost transaction under the pessimistic strategy it releases the store
// lock.
func (s *Session) Rollback() error {
	top := s.stack.Peek()
	if top == nil {
		return ErrNoTransaction
	}

	if top.Parent() == nil && s.db.strategy == Pessimistic {
		defer func() {
			promLockHeld.Set(0)
			s.db.mutex.Unlock()
		}()
	}

	err := s.close(top, (*txn.Transaction).Rollback)
	if err != nil {
		return err
	}

	promRolledBack.Inc()

	s.db.logger.Debug().
		Str("txn", top.ID()).
		Msg("transaction rolled back")

	return nil
}

// Exec opens a transaction around the callback. The transaction is committed
// when the callback returns nil, and rolled back otherwise.
func (s *Session) Exec(fn func(Txn) error) error {
	s.Begin()

	err := fn(execTxn{session: s})
	if err != nil {
		rbErr := s.Rollback()
		if rbErr != nil {
			return xerrors.Errorf("couldn't roll back: %v", rbErr)
		}

		return xerrors.Errorf("callback failed: %v", err)
	}

	return s.Commit()
}

// close moves the transaction to a terminal state and pops it, so that the
// stack never keeps a closed transaction even when the merge that follows
// fails.
func (s *Session) close(top *txn.Transaction, fn func(*txn.Transaction) error) error {
	err := fn(top)
	if err != nil {
		return xerrors.Errorf("couldn't close transaction: %v", err)
	}

	_, err = s.stack.Pop()
	if err != nil {
		return xerrors.Errorf("couldn't pop transaction: %v", err)
	}

	return nil
}

// execTxn gives an Exec callback access to the transaction opened for it.
//
// - implements db.Txn
type execTxn struct {
	session *Session
}

// Get implements db.Txn.
func (t execTxn) Get(key []byte) ([]byte, bool) {
	return t.session.Get(key)
}

// Put implements db.Txn.
func (t execTxn) Put(key, value []byte) error {
	return t.session.Put(key, value)
}

// Delete implements db.Txn.
func (t execTxn) Delete(key []byte) error {
	return t.session.Delete(key)
}
