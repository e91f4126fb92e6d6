package txn

import "golang.org/x/xerrors"

// Stack is the ordered list of open transactions of a single session, the
// innermost one on top. A stack is owned by exactly one session so it needs
// no synchronization: isolation between sessions comes from never sharing
// the stack, not from locking.
type Stack struct {
	txs []*Transaction
}

// Len returns the number of open transactions on the stack.
func (s *Stack) Len() int {
	return len(s.txs)
}

// Peek returns the most recently begun open transaction, or nil if the stack
// is empty. It has no side effect.
func (s *Stack) Peek() *Transaction {
	if len(s.txs) == 0 {
		return nil
	}

	return s.txs[len(s.txs)-1]
}

// Push appends the transaction as the new top of the stack. The parent of
// the transaction must be the previous top, which only an engine bug can
// break, so a violation panics instead of returning an error.
func (s *Stack) Push(t *Transaction) {
	if t.Parent() != s.Peek() {
		panic("transaction parent is not the top of the stack")
	}

	s.txs = append(s.txs, t)
}

// Pop removes and returns the top transaction. The transaction must have
// reached a terminal state before it is removed. It returns an error if no
// transaction is open.
func (s *Stack) Pop() (*Transaction, error) {
	if len(s.txs) == 0 {
		return nil, xerrors.New("transaction stack is empty")
	}

	top := s.txs[len(s.txs)-1]

	if top.State() == Open {
		return nil, xerrors.Errorf("transaction %s is still open", top.ID())
	}

	s.txs = s.txs[:len(s.txs)-1]

	return top, nil
}
