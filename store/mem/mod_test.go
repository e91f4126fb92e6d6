package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestStore_Get_Set_Delete(t *testing.T) {
	s := NewStore()

	_, found := s.Get([]byte("ping"))
	require.False(t, found)

	require.NoError(t, s.Set([]byte("ping"), []byte("pong")))

	value, found := s.Get([]byte("ping"))
	require.True(t, found)
	require.Equal(t, []byte("pong"), value)

	// An empty value is still a stored value.
	require.NoError(t, s.Set([]byte("empty"), []byte{}))

	value, found = s.Get([]byte("empty"))
	require.True(t, found)
	require.Empty(t, value)

	require.NoError(t, s.Delete([]byte("ping")))
	require.NoError(t, s.Delete([]byte("unknown")))

	_, found = s.Get([]byte("ping"))
	require.False(t, found)

	require.Equal(t, 1, s.Len())
}

func TestStore_ForEach(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Set([]byte("a"), []byte("1")))
	require.NoError(t, s.Set([]byte("b"), []byte("2")))

	pairs := make(map[string][]byte)

	err := s.ForEach(func(key, value []byte) error {
		pairs[string(key)] = value
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, pairs)

	err = s.ForEach(func(key, value []byte) error {
		return xerrors.New("oops")
	})
	require.EqualError(t, err, "oops")
}

func TestStore_View(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Set([]byte("a"), []byte("1")))

	pairs := s.view()
	require.Equal(t, map[string][]byte{"a": []byte("1")}, pairs)

	// The view is detached from the store.
	pairs["b"] = []byte("2")
	require.Equal(t, 1, s.Len())
}
