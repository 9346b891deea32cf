package normalizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/value"
)

func TestNormalizeExpandsEmbeddedObjectString(t *testing.T) {
	root := value.NewObject()
	root.Set("payload", value.StringNode(`{"a":1}`))

	out, err := Normalize(root, DefaultOptions())
	require.NoError(t, err)

	payload, ok := out.Get("payload")
	require.True(t, ok)
	require.Equal(t, value.NodeObject, payload.Kind)
	a, ok := payload.Get("a")
	require.True(t, ok)
	require.True(t, a.Num.Equal(value.IntNode(1).Num))
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	root := value.NewObject()
	root.Set("payload", value.StringNode(`{"a":1}`))

	_, err := Normalize(root, DefaultOptions())
	require.NoError(t, err)

	payload, _ := root.Get("payload")
	require.Equal(t, value.NodeString, payload.Kind, "original tree must be untouched")
}

func TestNormalizeLeavesBareScalarStringsAlone(t *testing.T) {
	root := value.NewObject()
	root.Set("n", value.StringNode("123"))

	out, err := Normalize(root, DefaultOptions())
	require.NoError(t, err)

	n, _ := out.Get("n")
	require.Equal(t, value.NodeString, n.Kind)
	require.Equal(t, "123", n.Str)
}

func TestNormalizeRecursesIntoNestedEmbeddedJSON(t *testing.T) {
	root := value.StringNode(`{"inner":"{\"b\":2}"}`)

	out, err := Normalize(root, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, value.NodeObject, out.Kind)
	inner, ok := out.Get("inner")
	require.True(t, ok)
	require.Equal(t, value.NodeObject, inner.Kind)
	b, ok := inner.Get("b")
	require.True(t, ok)
	require.True(t, b.Num.Equal(value.IntNode(2).Num))
}

func TestNormalizeRespectsMaxDepth(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDepthPerString = 1
	root := value.StringNode(`{"inner":"{\"b\":2}"}`)

	out, err := Normalize(root, opts)
	require.NoError(t, err)

	inner, ok := out.Get("inner")
	require.True(t, ok)
	require.Equal(t, value.NodeString, inner.Kind, "depth cap must stop expansion one level early")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	root := value.NewObject()
	root.Set("payload", value.StringNode(`{"a":1}`))

	once, err := Normalize(root, DefaultOptions())
	require.NoError(t, err)
	twice, err := Normalize(once, DefaultOptions())
	require.NoError(t, err)

	require.True(t, once.Equal(twice))
}

func TestNormalizeReportsNodesVisitedLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxNodesVisited = 1
	root := value.ArrayNode(value.IntNode(1), value.IntNode(2))

	_, err := Normalize(root, opts)
	require.Error(t, err)
	var limErr *errors.LimitExceeded
	require.ErrorAs(t, err, &limErr)
	require.Equal(t, errors.LimitNodesVisited, limErr.Kind)
}

func TestNormalizeStrictFailsOnInvalidEmbeddedJSON(t *testing.T) {
	opts := DefaultOptions()
	opts.Strict = true
	root := value.StringNode(`{"a":}`)

	_, err := Normalize(root, opts)
	require.Error(t, err)
}

func TestNormalizeLenientKeepsInvalidEmbeddedJSONAsString(t *testing.T) {
	root := value.StringNode(`{"a":}`)

	out, err := Normalize(root, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, value.NodeString, out.Kind)
}

func TestExpandOnceParsesSingleLevel(t *testing.T) {
	out, err := ExpandOnce(`{"a":"{\"b\":1}"}`)
	require.NoError(t, err)
	require.Equal(t, value.NodeObject, out.Kind)
	a, ok := out.Get("a")
	require.True(t, ok)
	require.Equal(t, value.NodeString, a.Kind, "ExpandOnce must not recurse into nested JSON strings")
}
