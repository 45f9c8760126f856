package pvec

import (
	"github.com/immergo/immergo"
	"github.com/immergo/immergo/cell"
)

// Transient is a single-owner mutable staging view over a vector. A node is
// edited in place only when it carries this transient's owner token;
// anything else is copied first, so the source vector and every other
// persistent vector stay untouched. Transients are not safe for concurrent
// use.
type Transient struct {
	count int
	shift uint
	root  *node
	tail  []cell.Cell
	o     *owner
}

// Transient captures temporary mutation rights over a private copy of the
// vector's root.
func (v *Vector) Transient() *Transient {
	tail := make([]cell.Cell, len(v.tail), nodeWidth)
	copy(tail, v.tail)
	return &Transient{
		count: v.count,
		shift: v.shift,
		root:  v.root,
		tail:  tail,
		o:     &owner{},
	}
}

func (t *Transient) Count() int { return t.count }

func (t *Transient) tailoff() int {
	if t.count < nodeWidth {
		return 0
	}
	return ((t.count - 1) >> nodeBits) << nodeBits
}

func (t *Transient) edit(n *node) *node {
	if n.owner == t.o {
		return n
	}
	ret := n.clone()
	ret.owner = t.o
	return ret
}

// Conj appends x in place.
func (t *Transient) Conj(x cell.Cell) error {
	if t.o == nil {
		return immergo.ErrUseAfterFreeze{Op: "pvec.Transient.Conj"}
	}
	if t.count-t.tailoff() < nodeWidth {
		t.tail = append(t.tail, x)
		t.count++
		return nil
	}
	tailNode := &node{owner: t.o, vals: t.tail}
	if (t.count >> nodeBits) > (1 << t.shift) {
		newRoot := newInterior(t.o)
		newRoot.children[0] = t.root
		newRoot.children[1] = newPath(t.o, t.shift, tailNode)
		t.root = newRoot
		t.shift += nodeBits
	} else {
		t.root = t.pushTail(t.shift, t.root, tailNode)
	}
	newTail := make([]cell.Cell, 0, nodeWidth)
	t.tail = append(newTail, x)
	t.count++
	return nil
}

func (t *Transient) pushTail(level uint, parent, tailNode *node) *node {
	ret := t.edit(parent)
	subidx := ((t.count - 1) >> level) & nodeMask
	if level == nodeBits {
		ret.children[subidx] = tailNode
	} else if child := ret.children[subidx]; child != nil {
		ret.children[subidx] = t.pushTail(level-nodeBits, child, tailNode)
	} else {
		ret.children[subidx] = newPath(t.o, level-nodeBits, tailNode)
	}
	return ret
}

// Assoc replaces index i in place. Like the persistent Assoc it never
// extends the vector.
func (t *Transient) Assoc(i int, x cell.Cell) error {
	if t.o == nil {
		return immergo.ErrUseAfterFreeze{Op: "pvec.Transient.Assoc"}
	}
	if i < 0 || i >= t.count {
		return immergo.ErrIndexOutOfRange{Index: i, Count: t.count}
	}
	if i >= t.tailoff() {
		t.tail[i&nodeMask] = x
		return nil
	}
	t.root = t.assocNode(t.shift, t.root, i, x)
	return nil
}

func (t *Transient) assocNode(level uint, n *node, i int, x cell.Cell) *node {
	ret := t.edit(n)
	if level == 0 {
		ret.vals[i&nodeMask] = x
	} else {
		sub := (i >> level) & nodeMask
		ret.children[sub] = t.assocNode(level-nodeBits, ret.children[sub], i, x)
	}
	return ret
}

// Persistent freezes the transient into an immutable vector. The transient
// is invalidated: every later call returns ErrUseAfterFreeze.
func (t *Transient) Persistent() (*Vector, error) {
	if t.o == nil {
		return nil, immergo.ErrUseAfterFreeze{Op: "pvec.Transient.Persistent"}
	}
	t.o = nil
	tail := make([]cell.Cell, len(t.tail))
	copy(tail, t.tail)
	return &Vector{t.count, t.shift, t.root, tail}, nil
}
