package maps

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/amp-labs/duesort/sortable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blackHeight checks the red-black invariants below n and returns the number
// of black nodes on every path to a leaf.
func blackHeight[K sortable.Sortable[K], V any](t *testing.T, n *rbtNode[K, V]) int {
	t.Helper()

	if n == nil {
		return 1
	}

	if n.color == red {
		require.False(t, isRed(n.left), "red node %v has red left child", n)
		require.False(t, isRed(n.right), "red node %v has red right child", n)
	}

	if n.left != nil {
		require.Same(t, n, n.left.parent)
		require.True(t, n.left.key.LessThan(n.key))
	}

	if n.right != nil {
		require.Same(t, n, n.right.parent)
		require.True(t, n.key.LessThan(n.right.key))
	}

	lh := blackHeight(t, n.left)
	rh := blackHeight(t, n.right)
	require.Equal(t, lh, rh, "unequal black height under %v", n)

	if n.color == black {
		return lh + 1
	}

	return lh
}

func TestNewRedBlackTreeMap(t *testing.T) {
	t.Parallel()

	m := NewRedBlackTreeMap[sortable.String, int]()
	require.NotNil(t, m)
	assert.Equal(t, 0, m.Size())

	for range m.Seq() {
		require.FailNow(t, "empty map yielded an entry")
	}
}

func TestRedBlackTreeMap_Put(t *testing.T) {
	t.Parallel()

	t.Run("adds new key", func(t *testing.T) {
		t.Parallel()

		m := NewRedBlackTreeMap[sortable.String, string]()
		_, replaced := m.Put("2024-01-05-a", "first")

		assert.False(t, replaced)
		assert.Equal(t, 1, m.Size())
		assert.True(t, m.Contains("2024-01-05-a"))
	})

	t.Run("replaces existing key and reports the old value", func(t *testing.T) {
		t.Parallel()

		m := NewRedBlackTreeMap[sortable.String, string]()
		m.Put("k", "v1")

		prev, replaced := m.Put("k", "v2")
		assert.True(t, replaced)
		assert.Equal(t, "v1", prev)
		assert.Equal(t, 1, m.Size())

		val, found := m.Get("k")
		assert.True(t, found)
		assert.Equal(t, "v2", val)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		m := NewRedBlackTreeMap[sortable.String, string]()
		m.Put("k", "v")

		val, found := m.Get("nope")
		assert.False(t, found)
		assert.Empty(t, val)
		assert.False(t, m.Contains("nope"))
	})
}

func TestRedBlackTreeMap_Upsert(t *testing.T) {
	t.Parallel()

	m := NewRedBlackTreeMap[sortable.String, []int]()

	appendIdx := func(i int) func([]int, bool) []int {
		return func(old []int, _ bool) []int { return append(old, i) }
	}

	m.Upsert("b", appendIdx(0))
	m.Upsert("a", appendIdx(1))
	m.Upsert("b", appendIdx(2))

	assert.Equal(t, 2, m.Size())

	got, _ := m.Get("b")
	assert.Equal(t, []int{0, 2}, got)
}

func TestRedBlackTreeMap_Seq(t *testing.T) {
	t.Parallel()

	t.Run("yields ascending keys", func(t *testing.T) {
		t.Parallel()

		m := NewRedBlackTreeMap[sortable.String, int]()
		for i, k := range []string{"2024-01-05-b", "2024-01-01-a", "2024-01-05-a"} {
			m.Put(sortable.String(k), i)
		}

		var keys []string

		var vals []int

		for k, v := range m.Seq() {
			keys = append(keys, string(k))
			vals = append(vals, v)
		}

		assert.Equal(t, []string{"2024-01-01-a", "2024-01-05-a", "2024-01-05-b"}, keys)
		assert.Equal(t, []int{1, 2, 0}, vals)
	})

	t.Run("stops early", func(t *testing.T) {
		t.Parallel()

		m := NewRedBlackTreeMap[sortable.String, int]()
		for i := range 10 {
			m.Put(sortable.String(fmt.Sprintf("k%02d", i)), i)
		}

		count := 0

		for range m.Seq() {
			count++
			if count == 3 {
				break
			}
		}

		assert.Equal(t, 3, count)
	})
}

func TestRedBlackTreeMap_Balanced(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order func(n int) []int
	}{
		{"ascending", func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}

			return out
		}},
		{"descending", func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = n - i
			}

			return out
		}},
		{"shuffled", func(n int) []int {
			r := rand.New(rand.NewPCG(1, 2)) //nolint:gosec
			return r.Perm(n)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewRedBlackTreeMap[sortable.String, int]()
			input := tt.order(500)

			for _, i := range input {
				m.Put(sortable.String(fmt.Sprintf("%05d", i)), i)
			}

			require.Equal(t, len(input), m.Size())
			assert.Equal(t, black, m.root.color)
			blackHeight(t, m.root)

			keys := make([]sortable.String, 0, m.Size())
			for k := range m.Seq() {
				keys = append(keys, k)
			}

			assert.True(t, slices.IsSortedFunc(keys, sortable.Compare[sortable.String]))
		})
	}
}
