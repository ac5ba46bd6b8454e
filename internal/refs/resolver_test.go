package refs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRef(t *testing.T, raw string) Ref {
	t.Helper()
	var r Ref
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestResolve_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		single   string
		multiple []string
	}{
		{"null", `null`, "", []string{}},
		{"bare id", `"abc123"`, "abc123", []string{"abc123"}},
		{"embedded", `{"_id":"abc123","name":"Books"}`, "abc123", []string{"abc123"}},
		{"embedded with id alias", `{"id":"abc123"}`, "abc123", []string{"abc123"}},
		{"embedded without id", `{"name":"Books"}`, "", []string{}},
		{"numeric _id", `{"_id":42}`, "", []string{}},
		{"mixed list", `[{"_id":"abc123"},"def456"]`, "abc123", []string{"abc123", "def456"}},
		{"list with holes", `[null,{"name":"x"},"",7,"def456"]`, "def456", []string{"def456"}},
		{"nested list", `[["abc"]]`, "", []string{}},
		{"number", `12`, "", []string{}},
		{"boolean", `true`, "", []string{}},
		{"empty string", `""`, "", []string{}},
		{"not an id but a string", `"not a real id"`, "not a real id", []string{"not a real id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := decodeRef(t, tt.raw)
			assert.Equal(t, tt.single, Resolve(r))
			got := ResolveAll(r)
			require.NotNil(t, got)
			assert.Equal(t, tt.multiple, got)
		})
	}
}

func TestResolve_AbsentField(t *testing.T) {
	var holder struct {
		Brand Ref `json:"brand"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &holder))

	assert.True(t, holder.Brand.IsAbsent())
	assert.Equal(t, "", Resolve(holder.Brand))
	assert.Equal(t, []string{}, ResolveAll(holder.Brand))
}

func TestRef_MarshalKeepsShape(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
		want string
	}{
		{"absent", Absent(), `null`},
		{"id", ID("abc"), `"abc"`},
		{"embedded", Embedded("abc", "Shirts"), `{"_id":"abc","name":"Shirts"}`},
		{"list", List(ID("a"), Embedded("b", "")), `["a",{"_id":"b"}]`},
		{"empty list", IDs(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ref)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			back := decodeRef(t, string(data))
			assert.Equal(t, ResolveAll(tt.ref), ResolveAll(back))
		})
	}
}

func TestRef_Items(t *testing.T) {
	r := IDs("a", "b")
	items := r.Items()
	require.Len(t, items, 2)

	items[0] = ID("changed")
	assert.Equal(t, []string{"a", "b"}, ResolveAll(r))
	assert.Nil(t, ID("x").Items())
}
