package dictionary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("sorted distinct", func(t *testing.T) {
		d, err := New([]string{"Bot", "Person"})
		require.NoError(t, err)
		require.Equal(t, 2, d.Len())

		code, ok := d.Code("Person")
		require.True(t, ok)
		require.Equal(t, int64(1), code)

		v, ok := d.Value(0)
		require.True(t, ok)
		require.Equal(t, "Bot", v)
	})

	t.Run("unsorted input rejected", func(t *testing.T) {
		_, err := New([]string{"Person", "Bot"})
		require.Error(t, err)
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		_, err := New([]string{"Bot", "Bot"})
		require.Error(t, err)
	})
}

func TestFromValues(t *testing.T) {
	d := FromValues([]string{"Person", "Bot", "Person", "Person"})
	require.Equal(t, []string{"Bot", "Person"}, d.Values())

	require.Equal(t, []int64{1, 0, 1, 1}, d.Encode([]string{"Person", "Bot", "Person", "Person"}))
}

func TestEncodeDecode(t *testing.T) {
	d, err := New([]string{"a", "b", "c"})
	require.NoError(t, err)

	codes := d.Encode([]string{"c", "a", "missing"})
	require.Equal(t, []int64{2, 0, -1}, codes)

	require.Equal(t, []string{"c", "a", ""}, d.Decode(codes))

	_, ok := d.Value(99)
	require.False(t, ok)
}

func TestPlaceholder(t *testing.T) {
	d := Placeholder()
	require.True(t, d.IsPlaceholder())
	require.Equal(t, 1, d.Len())

	v, ok := d.Value(0)
	require.True(t, ok)
	require.Equal(t, " ", v)
}

func TestJSONRoundTrip(t *testing.T) {
	t.Run("regular", func(t *testing.T) {
		orig, err := New([]string{"x", "y"})
		require.NoError(t, err)

		data, err := json.Marshal(orig)
		require.NoError(t, err)

		var got Dictionary
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, orig.Values(), got.Values())
		require.False(t, got.IsPlaceholder())

		code, ok := got.Code("y")
		require.True(t, ok)
		require.Equal(t, int64(1), code)
	})

	t.Run("placeholder", func(t *testing.T) {
		data, err := json.Marshal(Placeholder())
		require.NoError(t, err)

		var got Dictionary
		require.NoError(t, json.Unmarshal(data, &got))
		require.True(t, got.IsPlaceholder())
	})
}
