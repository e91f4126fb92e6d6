package txn

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStack_Peek(t *testing.T) {
	stack := &Stack{}

	require.Nil(t, stack.Peek())

	outer := New(nil)
	stack.Push(outer)

	require.Same(t, outer, stack.Peek())

	inner := New(outer)
	stack.Push(inner)

	require.Same(t, inner, stack.Peek())
	require.Equal(t, 2, stack.Len())
}

func TestStack_Push_Invalid(t *testing.T) {
	stack := &Stack{}

	require.PanicsWithValue(t, "transaction parent is not the top of the stack",
		func() {
			stack.Push(New(New(nil)))
		})
}

func TestStack_Pop(t *testing.T) {
	stack := &Stack{}

	_, err := stack.Pop()
	require.EqualError(t, err, "transaction stack is empty")

	tx := New(nil)
	stack.Push(tx)

	_, err = stack.Pop()
	require.EqualError(t, err,
		fmt.Sprintf("transaction %s is still open", tx.ID()))

	require.NoError(t, tx.Commit())

	popped, err := stack.Pop()
	require.NoError(t, err)
	require.Same(t, tx, popped)
	require.Equal(t, 0, stack.Len())
}
