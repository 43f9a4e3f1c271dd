package artifact

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

func TestDir_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(sampleTree())
	require.NoError(t, err)

	assert.Equal(t, `{"readme":"hello","src":{"components":{},"utils":{}}}`, string(data))
}

func TestParseTree(t *testing.T) {
	tree, err := ParseTree([]byte(`{"src":{"components":{},"utils":{}},"readme":"hello"}`))
	require.NoError(t, err)

	assert.Equal(t, sampleTree(), tree)
}

func TestParseTree_Invalid(t *testing.T) {
	for _, doc := range []string{
		`[]`,
		`"just a string"`,
		`{"a":1}`,
		`{"a":{"b":null}}`,
		`{"a":true}`,
		`{"a":`,
	} {
		_, err := ParseTree([]byte(doc))
		assert.ErrorIs(t, err, schema.ErrValidation, doc)
	}
}

func TestDir_MkdirPath(t *testing.T) {
	root := NewDir().Set("a", File("was a file"))

	leaf := root.MkdirPath("a", "b", "c")
	leaf.Set("f", File("x"))

	again := root.MkdirPath("a", "b", "c")
	assert.Same(t, leaf, again)

	_, ok := dirAt(t, root, "a", "b").Get("c")
	assert.True(t, ok)
}

func TestDir_ZeroValueSet(t *testing.T) {
	var d Dir
	d.Set("x", File("y"))

	assert.Equal(t, 1, d.Len())
}
