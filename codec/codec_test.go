package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		require.Equal(t, name, c.Name())
	}

	_, ok := ByName("xml")
	require.False(t, ok)
}

func TestCodecsAgreeOnWireFormat(t *testing.T) {
	type payload struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}
	in := payload{Name: "x", Score: 0.5}

	a, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	b, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, string(a), string(b))

	var out payload
	require.NoError(t, GoJSON{}.Unmarshal(a, &out))
	require.Equal(t, in, out)
}

func TestMustMarshal(t *testing.T) {
	require.NotEmpty(t, MustMarshal(nil, map[string]int{"a": 1}))

	require.Panics(t, func() {
		MustMarshal(JSON{}, func() {})
	})
}
