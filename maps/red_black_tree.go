// Package maps provides RedBlackTreeMap, an ordered map backed by a
// red-black tree. Keys are kept in ascending order, so ranging over the map
// yields entries already sorted, and every insert or lookup costs O(log n).
//
// The tree maintains the usual invariants:
//  1. Every node is either red or black
//  2. The root is always black
//  3. All leaves (nil nodes) are considered black
//  4. Red nodes cannot have red children
//  5. Every path from root to leaf contains the same number of black nodes
//
// The map is insert-only: it is built once, iterated, and thrown away.
// It is not safe for concurrent use.
package maps

import (
	"fmt"
	"iter"

	"github.com/amp-labs/duesort/sortable"
)

// visitor traverses tree nodes. Visit returns false to stop early.
type visitor[K sortable.Sortable[K], V any] interface {
	Visit(node *rbtNode[K, V]) bool
}

// color of a node. Black is true so a zero-value node is red.
type color bool

// direction of a node relative to its parent.
type direction byte

func (c color) String() string {
	if c == black {
		return "Black"
	}

	return "Red"
}

const (
	black, red color = true, false

	left direction = iota
	right
	nodir
)

type rbtNode[K sortable.Sortable[K], V any] struct {
	key    K
	value  V
	color  color
	left   *rbtNode[K, V]
	right  *rbtNode[K, V]
	parent *rbtNode[K, V]
}

func (n *rbtNode[K, V]) String() string {
	return fmt.Sprintf("(%#v : %s)", n.key, n.color)
}

// RedBlackTreeMap is an ordered map from K to V.
type RedBlackTreeMap[K sortable.Sortable[K], V any] struct {
	root *rbtNode[K, V]
	size int
}

// NewRedBlackTreeMap creates an empty map.
func NewRedBlackTreeMap[K sortable.Sortable[K], V any]() *RedBlackTreeMap[K, V] {
	return &RedBlackTreeMap[K, V]{}
}

// lookup walks down from the root and returns the node holding key, or the
// parent under which key would be attached and on which side.
func (t *RedBlackTreeMap[K, V]) lookup(key K) (node *rbtNode[K, V], parent *rbtNode[K, V], dir direction) {
	dir = nodir

	for this := t.root; this != nil; {
		switch {
		case key.Equals(this.key):
			return this, parent, dir
		case key.LessThan(this.key):
			parent, dir, this = this, left, this.left
		default:
			parent, dir, this = this, right, this.right
		}
	}

	return nil, parent, dir
}

// Get returns the value stored under key.
func (t *RedBlackTreeMap[K, V]) Get(key K) (value V, found bool) {
	node, _, _ := t.lookup(key)
	if node == nil {
		return value, false
	}

	return node.value, true
}

// Contains reports whether key is present.
func (t *RedBlackTreeMap[K, V]) Contains(key K) bool {
	node, _, _ := t.lookup(key)

	return node != nil
}

// Put stores value under key. If the key was already present its value is
// replaced and the previous value is returned with replaced=true.
func (t *RedBlackTreeMap[K, V]) Put(key K, value V) (previous V, replaced bool) {
	t.Upsert(key, func(old V, exists bool) V {
		previous, replaced = old, exists

		return value
	})

	return previous, replaced
}

// Upsert sets the value under key to f(old, exists), where old is the value
// currently stored (zero if absent). It is the building block for multi-value
// buckets that append instead of overwrite.
func (t *RedBlackTreeMap[K, V]) Upsert(key K, f func(old V, exists bool) V) {
	node, parent, dir := t.lookup(key)
	if node != nil {
		node.value = f(node.value, true)

		return
	}

	var zero V

	newNode := &rbtNode[K, V]{key: key, parent: parent, value: f(zero, false)}
	t.size++

	switch dir {
	case left:
		parent.left = newNode
	case right:
		parent.right = newNode
	case nodir:
		newNode.color = black
		t.root = newNode

		return
	}

	t.fixupPut(newNode)
}

// Size returns the number of keys in the map.
func (t *RedBlackTreeMap[K, V]) Size() int {
	return t.size
}

// seqVisitor yields key-value pairs in order.
type seqVisitor[K sortable.Sortable[K], V any] struct {
	yield func(K, V) bool
}

// Visit traverses in-order (left, current, right).
func (s *seqVisitor[K, V]) Visit(node *rbtNode[K, V]) bool {
	if node == nil {
		return true
	}

	if !s.Visit(node.left) {
		return false
	}

	if !s.yield(node.key, node.value) {
		return false
	}

	return s.Visit(node.right)
}

// Seq returns an iterator over the entries in ascending key order.
func (t *RedBlackTreeMap[K, V]) Seq() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		t.walk(&seqVisitor[K, V]{yield: yield})
	}
}

func (t *RedBlackTreeMap[K, V]) walk(v visitor[K, V]) {
	v.Visit(t.root)
}

// rotateRight performs a right rotation around node y:
//
//	    y              x
//	   / \            / \
//	  x   C   =>     A   y
//	 / \                / \
//	A   B              B   C
//
// nolint:dupword,varnamelen // ASCII art; standard RB tree variable names
func (t *RedBlackTreeMap[K, V]) rotateRight(y *rbtNode[K, V]) {
	if y == nil || y.left == nil {
		return
	}

	x := y.left
	y.left = x.right

	if x.right != nil {
		x.right.parent = y
	}

	x.parent = y.parent

	switch {
	case y.parent == nil:
		t.root = x
	case y == y.parent.left:
		y.parent.left = x
	default:
		y.parent.right = x
	}

	x.right = y
	y.parent = x
}

// rotateLeft performs a left rotation around node x:
//
//	  x                y
//	 / \              / \
//	A   y      =>    x   C
//	   / \          / \
//	  B   C        A   B
//
// nolint:varnamelen // Standard red-black tree variable names
func (t *RedBlackTreeMap[K, V]) rotateLeft(x *rbtNode[K, V]) {
	if x == nil || x.right == nil {
		return
	}

	y := x.right
	x.right = y.left

	if y.left != nil {
		y.left.parent = x
	}

	y.parent = x.parent

	switch {
	case x.parent == nil:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}

	y.left = x
	x.parent = y
}

// isRed treats nil nodes as black.
func isRed[K sortable.Sortable[K], V any](n *rbtNode[K, V]) bool {
	return n != nil && n.color == red
}

// fixupPut restores the red-black invariants after z was inserted red.
// Red uncle: recolor and continue from the grandparent. Black uncle: rotate
// into the outer position, then rotate the grandparent.
//
// nolint:varnamelen // Standard red-black tree variable names
func (t *RedBlackTreeMap[K, V]) fixupPut(z *rbtNode[K, V]) {
	for z.parent != nil && z.parent.color == red {
		grandparent := z.parent.parent

		if z.parent == grandparent.left { //nolint:nestif
			y := grandparent.right
			if isRed(y) {
				z.parent.color = black
				y.color = black
				grandparent.color = red
				z = grandparent

				continue
			}

			if z == z.parent.right {
				z = z.parent
				t.rotateLeft(z)
			}

			z.parent.color = black
			grandparent.color = red
			t.rotateRight(grandparent)
		} else {
			y := grandparent.left
			if isRed(y) {
				z.parent.color = black
				y.color = black
				grandparent.color = red
				z = grandparent

				continue
			}

			if z == z.parent.left {
				z = z.parent
				t.rotateRight(z)
			}

			z.parent.color = black
			grandparent.color = red
			t.rotateLeft(grandparent)
		}
	}

	t.root.color = black
}
