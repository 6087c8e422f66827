package resultstree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsKeyOrder(t *testing.T) {
	root, err := Parse([]byte(`{"zeta": 1, "alpha": {"b": true, "a": null}, "mid": "x"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, root.Keys())
	assert.Equal(t, []string{"b", "a"}, root.Child("alpha").Keys())
	assert.Equal(t, Null, root.Get("alpha", "a").Kind())

	b, ok := root.Get("alpha", "b").Bool()
	require.True(t, ok)
	assert.True(t, b)

	s, ok := root.Child("mid").Text()
	require.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestParseDuplicateKeyTakesLastValue(t *testing.T) {
	root, err := Parse([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, root.Keys())
	f, ok := root.Child("a").Float()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"a": 1} {"b": 2}`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"a": `))
	require.Error(t, err)
}

func TestGetMissingPathIsNil(t *testing.T) {
	root, err := Parse([]byte(`{"a": {"b": 5}}`))
	require.NoError(t, err)

	assert.Nil(t, root.Get("a", "c", "d"))
	assert.Nil(t, root.Get("a", "b", "c"))
	assert.Nil(t, root.Get("x"))

	var missing *Node
	assert.Equal(t, 0, missing.Len())
	assert.False(t, missing.Has("a"))
	assert.Nil(t, missing.FloatPtr())
	assert.Nil(t, missing.Keys())
}

func TestFloatOnlyForNumbers(t *testing.T) {
	root, err := Parse([]byte(`{"n": 2.5, "s": "2.5", "b": false, "arr": [1, 2]}`))
	require.NoError(t, err)

	f, ok := root.Child("n").Float()
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	for _, key := range []string{"s", "b", "arr"} {
		_, ok := root.Child(key).Float()
		assert.False(t, ok, key)
	}
	assert.Len(t, root.Child("arr").Items(), 2)
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	src := `{"z":{"y":[1,"two",null,true]},"a":-0.5,"q":"say \"hi\""}`
	root, err := Parse([]byte(src))
	require.NoError(t, err)

	out, err := root.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestNewObjectBuilders(t *testing.T) {
	obj := NewObject(
		Member{Key: "b", Value: NewNumber(2)},
		Member{Key: "a", Value: NewString("x")},
		Member{Key: "b", Value: NewNumber(3)},
		Member{Key: "n", Value: nil},
	)
	assert.Equal(t, []string{"b", "a", "n"}, obj.Keys())
	assert.Equal(t, Null, obj.Child("n").Kind())

	f, ok := obj.Child("b").Float()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)
}

func TestLoadFileDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	data := []byte(`{"A": {"DUT": {}}}`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, Digest(data), doc.Digest)
	assert.Len(t, doc.Digest, 64)
	assert.True(t, doc.Root.Has("A"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "plain object", doc: `{"A": {"DUT": {}, "REF": {}}}`},
		{name: "coverage ok", doc: `{"Coverage Performance": {"Drive": {"DUT1_Run1": {"last_mos_value_coords": {"latitude": "1.0", "longitude": "2.0", "distance_to_base_station_km": 0.5}}}}}`},
		{name: "root array", doc: `[1, 2]`, wantErr: true},
		{name: "coverage scalar", doc: `{"Coverage Performance": {"Drive": 4}}`, wantErr: true},
		{name: "bad distance", doc: `{"Coverage Performance": {"Drive": {"DUT1_Run1": {"e": {"distance_to_base_station_km": "far"}}}}}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
