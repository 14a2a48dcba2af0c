package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysUppercaseFirst(t *testing.T) {
	obj := IRObject{"a": IRInt(1), "A": IRInt(2), "aa": IRInt(3), "AA": IRInt(4)}

	// 'A' = 65 < 'a' = 97
	assert.Equal(t, []string{"A", "AA", "a", "aa"}, obj.SortedKeys())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  IRValue
		equal bool
	}{
		{"same strings", IRString("x"), IRString("x"), true},
		{"different strings", IRString("x"), IRString("y"), false},
		{"string vs int", IRString("1"), IRInt(1), false},
		{"int pair", IRArray{IRInt(1990), IRInt(1999)}, IRArray{IRInt(1990), IRInt(1999)}, true},
		{"int pair order", IRArray{IRInt(1999), IRInt(1990)}, IRArray{IRInt(1990), IRInt(1999)}, false},
		{"objects", IRObject{"a": IRBool(true)}, IRObject{"a": IRBool(true)}, true},
		{"object missing key", IRObject{"a": IRBool(true)}, IRObject{"b": IRBool(true)}, false},
		{"nulls", IRNull{}, IRNull{}, true},
		{"nil vs null", nil, IRNull{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.a, tt.b))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Tolkien", Format(IRString("Tolkien")))
	assert.Equal(t, "[1800,2000]", Format(IRArray{IRInt(1800), IRInt(2000)}))
	assert.Equal(t, "7", Format(IRInt(7)))
}

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"label":[1990,1999],"name":"wrote","flag":true,"none":null}`))
	require.NoError(t, err)

	obj, ok := v.(IRObject)
	require.True(t, ok)
	assert.Equal(t, IRArray{IRInt(1990), IRInt(1999)}, obj["label"])
	assert.Equal(t, IRString("wrote"), obj["name"])
	assert.Equal(t, IRBool(true), obj["flag"])
	assert.Equal(t, IRNull{}, obj["none"])
}

func TestUnmarshalIRValueRejectsFloats(t *testing.T) {
	_, err := UnmarshalIRValue([]byte(`{"x": 1.5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestFromAnyYAMLShapes(t *testing.T) {
	v, err := FromAny(map[string]any{
		"years": []any{1990, 1999},
		"name":  "x",
		"whole": float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"years": IRArray{IRInt(1990), IRInt(1999)},
		"name":  IRString("x"),
		"whole": IRInt(3),
	}, v)

	_, err = FromAny(2.5)
	require.Error(t, err)
}

func TestIRObjectJSONRoundTrip(t *testing.T) {
	original := IRObject{
		"b": IRArray{IRString("x"), IRInt(2)},
		"a": IRObject{"nested": IRBool(false)},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"nested":false},"b":["x",2]}`, string(data))

	var decoded IRObject
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, Equal(original, decoded))
}
