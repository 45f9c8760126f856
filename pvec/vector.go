// Package pvec implements an immutable, structurally-shared vector of Cells.
//
// Internally it is a 32-way bit-partitioned trie plus a tail buffer: the last
// partial block lives outside the trie and is absorbed only when full, which
// keeps Conj and Pop O(1) amortized. Every derivation copies only the nodes
// on the path from the root to the changed leaf; untouched siblings are
// shared with the parent vector.
package pvec

import (
	"iter"
	"slices"
	"strings"

	"github.com/immergo/immergo"
	"github.com/immergo/immergo/cell"
)

const (
	nodeBits  = 5
	nodeWidth = 1 << nodeBits
	nodeMask  = nodeWidth - 1
)

// owner is an identity token shared by every node a live transient may
// mutate in place. It must not be zero-sized: distinct tokens need distinct
// addresses.
type owner struct{ _ int8 }

// node is either interior (children set) or a leaf (vals set). Both slices
// always have length nodeWidth when present.
type node struct {
	owner    *owner
	children []*node
	vals     []cell.Cell
}

func newInterior(o *owner) *node {
	return &node{owner: o, children: make([]*node, nodeWidth)}
}

func (n *node) clone() *node {
	ret := &node{}
	if n.children != nil {
		ret.children = slices.Clone(n.children)
	}
	if n.vals != nil {
		ret.vals = slices.Clone(n.vals)
	}
	return ret
}

// Vector is a persistent, densely-indexed sequence of Cells. The zero-ish
// Empty vector is shared; no Vector is ever mutated after construction, so
// Vectors are safe for concurrent readers without locking.
type Vector struct {
	count int
	shift uint
	root  *node
	tail  []cell.Cell
}

var emptyRoot = newInterior(nil)
var empty = &Vector{shift: nodeBits, root: emptyRoot}

func Empty() *Vector { return empty }

// New builds a vector of the given cells through one transient commit.
func New(xs ...cell.Cell) *Vector {
	return Empty().BatchConj(xs)
}

func (v *Vector) Count() int    { return v.count }
func (v *Vector) IsEmpty() bool { return v.count == 0 }

// tailoff is the index of the first element held in the tail buffer.
func (v *Vector) tailoff() int {
	if v.count < nodeWidth {
		return 0
	}
	return ((v.count - 1) >> nodeBits) << nodeBits
}

func (v *Vector) leafFor(i int) []cell.Cell {
	if i >= v.tailoff() {
		return v.tail
	}
	n := v.root
	for level := v.shift; level > 0; level -= nodeBits {
		n = n.children[(i>>level)&nodeMask]
	}
	return n.vals
}

// Nth returns the element at i, or ErrIndexOutOfRange when i is negative or
// at or beyond Count. Indexes are never clamped or wrapped.
func (v *Vector) Nth(i int) (cell.Cell, error) {
	if i < 0 || i >= v.count {
		return cell.Nil(), immergo.ErrIndexOutOfRange{Index: i, Count: v.count}
	}
	return v.leafFor(i)[i&nodeMask], nil
}

// Conj returns a new vector with x appended. The receiver is unchanged.
func (v *Vector) Conj(x cell.Cell) *Vector {
	if v.count-v.tailoff() < nodeWidth {
		newTail := make([]cell.Cell, len(v.tail)+1)
		copy(newTail, v.tail)
		newTail[len(v.tail)] = x
		return &Vector{v.count + 1, v.shift, v.root, newTail}
	}
	// Tail is full: absorb it into the trie.
	tailNode := &node{vals: v.tail}
	newShift := v.shift
	var newRoot *node
	if (v.count >> nodeBits) > (1 << v.shift) {
		newRoot = newInterior(nil)
		newRoot.children[0] = v.root
		newRoot.children[1] = newPath(nil, v.shift, tailNode)
		newShift += nodeBits
	} else {
		newRoot = v.pushTail(v.shift, v.root, tailNode)
	}
	return &Vector{v.count + 1, newShift, newRoot, []cell.Cell{x}}
}

func (v *Vector) pushTail(level uint, parent, tailNode *node) *node {
	ret := parent.clone()
	subidx := ((v.count - 1) >> level) & nodeMask
	if level == nodeBits {
		ret.children[subidx] = tailNode
	} else if child := parent.children[subidx]; child != nil {
		ret.children[subidx] = v.pushTail(level-nodeBits, child, tailNode)
	} else {
		ret.children[subidx] = newPath(nil, level-nodeBits, tailNode)
	}
	return ret
}

func newPath(o *owner, level uint, n *node) *node {
	if level == 0 {
		return n
	}
	ret := newInterior(o)
	ret.children[0] = newPath(o, level-nodeBits, n)
	return ret
}

// Pop returns a new vector without the last element. Popping an empty vector
// returns the empty vector; this is not an error.
func (v *Vector) Pop() *Vector {
	switch v.count {
	case 0:
		return v
	case 1:
		return Empty()
	}
	if v.count-v.tailoff() > 1 {
		newTail := make([]cell.Cell, len(v.tail)-1)
		copy(newTail, v.tail)
		return &Vector{v.count - 1, v.shift, v.root, newTail}
	}
	// Tail holds a single element: the last full leaf becomes the new tail.
	newTail := slices.Clone(v.leafFor(v.count - 2))
	newRoot := v.popTail(v.shift, v.root)
	newShift := v.shift
	if newRoot == nil {
		newRoot = emptyRoot
	}
	if v.shift > nodeBits && newRoot.children[1] == nil {
		newRoot = newRoot.children[0]
		newShift -= nodeBits
	}
	return &Vector{v.count - 1, newShift, newRoot, newTail}
}

func (v *Vector) popTail(level uint, n *node) *node {
	subidx := ((v.count - 2) >> level) & nodeMask
	if level > nodeBits {
		child := v.popTail(level-nodeBits, n.children[subidx])
		if child == nil && subidx == 0 {
			return nil
		}
		ret := n.clone()
		ret.children[subidx] = child
		return ret
	}
	if subidx == 0 {
		return nil
	}
	ret := n.clone()
	ret.children[subidx] = nil
	return ret
}

// Assoc returns a new vector with index i replaced by x. Unlike Conj it
// never extends the vector: i must be below Count.
func (v *Vector) Assoc(i int, x cell.Cell) (*Vector, error) {
	if i < 0 || i >= v.count {
		return nil, immergo.ErrIndexOutOfRange{Index: i, Count: v.count}
	}
	if i >= v.tailoff() {
		newTail := slices.Clone(v.tail)
		newTail[i&nodeMask] = x
		return &Vector{v.count, v.shift, v.root, newTail}, nil
	}
	return &Vector{v.count, v.shift, assocNode(v.shift, v.root, i, x), v.tail}, nil
}

func assocNode(level uint, n *node, i int, x cell.Cell) *node {
	ret := n.clone()
	if level == 0 {
		ret.vals[i&nodeMask] = x
	} else {
		sub := (i >> level) & nodeMask
		ret.children[sub] = assocNode(level-nodeBits, n.children[sub], i, x)
	}
	return ret
}

// First returns the first element. The second return is false on an empty
// vector; absence is not an error.
func (v *Vector) First() (cell.Cell, bool) {
	if v.count == 0 {
		return cell.Nil(), false
	}
	return v.leafFor(0)[0], true
}

// Last returns the last element, with the same absence convention as First.
func (v *Vector) Last() (cell.Cell, bool) {
	if v.count == 0 {
		return cell.Nil(), false
	}
	i := v.count - 1
	return v.leafFor(i)[i&nodeMask], true
}

// ToSlice materializes a dense snapshot of the vector.
func (v *Vector) ToSlice() []cell.Cell {
	out := make([]cell.Cell, 0, v.count)
	for i := 0; i < v.count; {
		leaf := v.leafFor(i)
		out = append(out, leaf...)
		i += len(leaf)
	}
	return out
}

// All iterates elements in index order.
func (v *Vector) All() iter.Seq2[int, cell.Cell] {
	return func(yield func(int, cell.Cell) bool) {
		for i := 0; i < v.count; {
			leaf := v.leafFor(i)
			for j, c := range leaf {
				if !yield(i+j, c) {
					return
				}
			}
			i += len(leaf)
		}
	}
}

// ReduceFunc folds an accumulator over (element, index). Returning done=true
// stops the fold and keeps the returned accumulator.
type ReduceFunc func(acc, x cell.Cell, i int) (_ cell.Cell, done bool)

// Reduce folds left to right. On an empty vector init is returned and fn is
// never called.
func (v *Vector) Reduce(fn ReduceFunc, init cell.Cell) cell.Cell {
	acc := init
	for i, x := range v.All() {
		var done bool
		acc, done = fn(acc, x, i)
		if done {
			break
		}
	}
	return acc
}

// Equiv reports elementwise equivalence with another vector. Anything that
// is not a *Vector compares false; cross-type comparison is never an error.
func (v *Vector) Equiv(other any) bool {
	o, ok := other.(*Vector)
	if !ok || o == nil {
		return false
	}
	if v.count != o.count {
		return false
	}
	for i, x := range v.All() {
		y, _ := o.Nth(i)
		if !cell.Equal(x, y) {
			return false
		}
	}
	return true
}

// BatchConj appends all values through one transient commit.
func (v *Vector) BatchConj(xs []cell.Cell) *Vector {
	t := v.Transient()
	for _, x := range xs {
		_ = t.Conj(x)
	}
	out, _ := t.Persistent()
	return out
}

// BatchAssoc applies all updates through one transient commit. Out-of-range
// indexes are skipped silently; batch updates are deliberately lenient where
// the single-operation Assoc is strict.
func (v *Vector) BatchAssoc(updates map[int]cell.Cell) *Vector {
	t := v.Transient()
	for i, x := range updates {
		if i >= 0 && i < t.Count() {
			_ = t.Assoc(i, x)
		}
	}
	out, _ := t.Persistent()
	return out
}

func (v *Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range v.All() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(x.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
