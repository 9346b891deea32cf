package path

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jex-lang/jex/value"
)

func TestAssignCreatesIntermediateObjects(t *testing.T) {
	root := value.NewObject()
	require.NoError(t, Assign(root, "$.a.b", value.IntNode(5)))

	a, ok := root.Get("a")
	require.True(t, ok)
	b, ok := a.Get("b")
	require.True(t, ok)
	require.True(t, b.Num.Equal(value.IntNode(5).Num))
}

func TestAssignCreatesIntermediateArrays(t *testing.T) {
	root := value.NewObject()
	require.NoError(t, Assign(root, "$.items[2].name", value.StringNode("x")))

	items, ok := root.Get("items")
	require.True(t, ok)
	require.Equal(t, value.NodeArray, items.Kind)
	require.Equal(t, 3, len(items.Arr))
	require.True(t, items.Arr[0].IsNull())
	require.True(t, items.Arr[1].IsNull())

	name, ok := items.Arr[2].Get("name")
	require.True(t, ok)
	require.Equal(t, "x", name.Str)
}

func TestAssignOverwritesExistingValue(t *testing.T) {
	root := value.NewObject()
	root.Set("a", value.IntNode(1))
	require.NoError(t, Assign(root, "$.a", value.IntNode(2)))

	a, _ := root.Get("a")
	require.True(t, a.Num.Equal(value.IntNode(2).Num))
}

func TestAssignStripsRootMarker(t *testing.T) {
	root := value.NewObject()
	require.NoError(t, Assign(root, "out.a", value.IntNode(1)))
	a, ok := root.Get("a")
	require.True(t, ok)
	require.True(t, a.Num.Equal(value.IntNode(1).Num))
}

func TestAssignRejectsPropertyOnArray(t *testing.T) {
	root := value.ArrayNode()
	err := Assign(root, "$.a", value.IntNode(1))
	require.Error(t, err)
}

func TestRootOfDetectsInOutMeta(t *testing.T) {
	require.Equal(t, RootIn, RootOf("$in.a"))
	require.Equal(t, RootOut, RootOf("$out.a.b"))
	require.Equal(t, RootMeta, RootOf("$meta"))
	require.Equal(t, RootNone, RootOf("$.a.b"))
}

func TestLookupAllExpandsWildcard(t *testing.T) {
	root := value.NewObject()
	arr := value.ArrayNode(value.IntNode(1), value.IntNode(2), value.IntNode(3))
	root.Set("items", arr)

	results := LookupAll(root, "$.items[*]")
	require.Len(t, results, 3)
}

func TestLookupReturnsFalseForMissingPath(t *testing.T) {
	root := value.NewObject()
	_, ok := Lookup(root, "$.missing.deep")
	require.False(t, ok)
}

func TestLookupAllDelegatesDescendantQueriesToJSONPath(t *testing.T) {
	root := value.NewObject()
	a := value.NewObject()
	a.Set("x", value.IntNode(1))
	root.Set("a", a)

	results := LookupAll(root, "$..x")
	require.Len(t, results, 1)
	require.True(t, results[0].Num.Equal(value.IntNode(1).Num))
}

func TestExists(t *testing.T) {
	root := value.NewObject()
	root.Set("a", value.IntNode(1))
	require.True(t, Exists(root, "$.a"))
	require.False(t, Exists(root, "$.b"))
}

// A literal bracket key containing ':' is not mistaken for a slice query and
// must resolve through the hand-rolled segment walker, not theory/jsonpath.
func TestLookupQuotedColonKeyIsNotMisroutedToAdvancedQuery(t *testing.T) {
	root := value.NewObject()
	root.Set("k:v", value.IntNode(42))

	require.False(t, needsAdvancedQuery(`$['k:v']`))

	v, ok := Lookup(root, `$['k:v']`)
	require.True(t, ok)
	require.True(t, v.Num.Equal(value.IntNode(42).Num))
}
