package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(data))
}

func TestValue_RoundTrip(t *testing.T) {
	inputs := []string{
		`null`,
		`true`,
		`12.50`,
		`"text"`,
		`[1,"a",null,[false]]`,
		`{"a":{"b":[1,2,3]},"c":"d"}`,
		`340282366920938463463374607431768211456`,
	}

	for _, in := range inputs {
		var v Value
		require.NoError(t, json.Unmarshal([]byte(in), &v), in)

		out, err := json.Marshal(v)
		require.NoError(t, err, in)
		assert.JSONEq(t, in, string(out))
	}
}

func TestValue_BigNumberKeepsLiteral(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`340282366920938463463374607431768211456`), &v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `340282366920938463463374607431768211456`, string(out))
}

func TestValue_Accessors(t *testing.T) {
	obj := ObjectValue(map[string]Value{
		"z": StringValue("last"),
		"a": NumberValue("1"),
	})

	assert.Equal(t, KindObject, obj.Kind())
	assert.Equal(t, []string{"a", "z"}, obj.Keys())

	_, ok := obj.AsString()
	assert.False(t, ok)

	fields, ok := obj.AsObject()
	require.True(t, ok)
	s, ok := fields["z"].AsString()
	require.True(t, ok)
	assert.Equal(t, "last", s)

	arr := ArrayValue()
	items, ok := arr.AsArray()
	require.True(t, ok)
	assert.Empty(t, items)
	assert.Nil(t, arr.Keys())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
