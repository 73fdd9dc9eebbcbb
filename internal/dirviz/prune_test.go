package dirviz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sized attaches a child with fixed aggregates.
func sized(parent *Node, name string, size, count int64) *Node {
	child := parent.addChild(name, false)
	child.Size = size
	child.Count = count

	return child
}

// pruneFixture builds a tree where "small" holds a tiny share of the total.
func pruneFixture() *Node {
	tree := newNode(RootName, false)
	tree.Size, tree.Count = 1_000_000, 10_000

	proj := sized(tree, "proj", 1_000_000, 10_000)
	big := sized(proj, "big", 999_999, 9_999)
	sized(big, "inner", 999_999, 9_999)

	small := sized(proj, "small", 1, 1)
	tiny := sized(small, "tiny", 1, 1)
	sized(tiny, "tinier", 0, 0)
	sized(small, "zero", 0, 0)

	return tree
}

func TestPruneRemovesChildrenOfInsignificantNodes(t *testing.T) {
	tree := pruneFixture()

	Prune(tree)

	require.NotNil(t, tree.Lookup("proj", "big", "inner"))
	small := tree.Lookup("proj", "small")
	require.NotNil(t, small, "small is judged by its parent's share, which is large")
	assert.Empty(t, small.Children, "small's children share its tiny thickness")
}

func TestPruneIsAllOrNothingPerSiblingGroup(t *testing.T) {
	tree := newNode(RootName, false)
	tree.Size, tree.Count = 1_000_000, 10_000

	proj := sized(tree, "proj", 1_000_000, 10_000)
	mid := sized(proj, "mid", 100_000, 1_000)
	sized(mid, "significant", 99_999, 999)
	sized(mid, "negligible", 1, 1)

	Prune(tree)

	// Both children survive although one is far below the threshold on its own.
	assert.Len(t, tree.Lookup("proj", "mid").Children, 2)
}

func TestPruneKeepsAggregates(t *testing.T) {
	tree := pruneFixture()

	Prune(tree)

	small := tree.Lookup("proj", "small")
	assert.Equal(t, int64(1), small.Size)
	assert.Equal(t, int64(1_000_000), tree.Size)
}

func TestPruneIsIdempotent(t *testing.T) {
	once := pruneFixture()
	Prune(once)

	twice := pruneFixture()
	Prune(twice)
	Prune(twice)

	assert.Equal(t, once, twice)
}

func TestPruneEmptyTree(t *testing.T) {
	tree := newNode(RootName, false)
	proj := tree.addChild("proj", false)
	proj.addChild("a", false)

	assert.NotPanics(t, func() { Prune(tree) })
	assert.Empty(t, tree.Children, "an empty tree has nothing worth drawing")
}

func TestShare(t *testing.T) {
	assert.InDelta(t, 0.5, share(1, 2), 1e-12)
	assert.Zero(t, share(5, 0))
}
