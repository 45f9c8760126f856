package pmap

import (
	"math/bits"

	"github.com/immergo/immergo"
	"github.com/immergo/immergo/cell"
)

// Transient is the single-owner mutable staging view over a map. Nodes
// carrying this transient's owner token are edited in place; shared nodes
// are copied first. Not safe for concurrent use.
type Transient struct {
	count int
	root  *node
	o     *owner
}

// Transient captures temporary mutation rights over a private copy of the
// map's root.
func (m *Map) Transient() *Transient {
	return &Transient{count: m.count, root: m.root, o: &owner{}}
}

func (t *Transient) Len() int { return t.count }

func (t *Transient) edit(n *node) *node {
	if n.owner == t.o {
		return n
	}
	ret := n.clone()
	ret.owner = t.o
	return ret
}

func (t *Transient) find(k cell.Cell) (*entry, bool) {
	if t.root == nil {
		return nil, false
	}
	if e, ok := t.root.get(cell.Hash(k), k, 0); ok {
		return e, true
	}
	if k.Tag() == cell.TagObject {
		return t.root.scanEquiv(k)
	}
	return nil, false
}

// Assoc binds k to v in place, with the same equivalence-based key
// canonicalization as the persistent Assoc.
func (t *Transient) Assoc(k, v cell.Cell) error {
	if t.o == nil {
		return immergo.ErrUseAfterFreeze{Op: "pmap.Transient.Assoc"}
	}
	if k.Tag() == cell.TagObject {
		if e, ok := t.find(k); ok {
			k = e.key
		}
	}
	if t.root == nil {
		t.root = &node{owner: t.o}
	}
	newRoot, added := t.put(t.root, cell.Hash(k), k, v, 0)
	t.root = newRoot
	if added {
		t.count++
	}
	return nil
}

// Dissoc removes k in place. Removing an absent key is a no-op.
func (t *Transient) Dissoc(k cell.Cell) error {
	if t.o == nil {
		return immergo.ErrUseAfterFreeze{Op: "pmap.Transient.Dissoc"}
	}
	if t.root == nil {
		return nil
	}
	if k.Tag() == cell.TagObject {
		e, ok := t.find(k)
		if !ok {
			return nil
		}
		k = e.key
	}
	newRoot, removed := t.del(t.root, cell.Hash(k), k, 0)
	if removed {
		t.root = newRoot
		t.count--
	}
	return nil
}

// Persistent freezes the transient into an immutable map and invalidates
// the transient.
func (t *Transient) Persistent() (*Map, error) {
	if t.o == nil {
		return nil, immergo.ErrUseAfterFreeze{Op: "pmap.Transient.Persistent"}
	}
	t.o = nil
	return &Map{count: t.count, root: t.root}, nil
}

func (t *Transient) put(n *node, h uint32, k, v cell.Cell, shift uint) (*node, bool) {
	n = t.edit(n)
	if shift >= maxShift {
		for i, it := range n.items {
			if e, ok := it.(*entry); ok && cell.Equal(e.key, k) {
				n.items[i] = &entry{hash: h, key: k, val: v}
				return n, false
			}
		}
		n.items = append(n.items, &entry{hash: h, key: k, val: v})
		return n, true
	}
	bit := uint32(1) << ((h >> shift) & hashMask)
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	if n.bitmap&bit == 0 {
		n.bitmap |= bit
		n.items = append(n.items, nil)
		copy(n.items[pos+1:], n.items[pos:])
		n.items[pos] = &entry{hash: h, key: k, val: v}
		return n, true
	}
	switch it := n.items[pos].(type) {
	case *entry:
		if it.hash == h && cell.Equal(it.key, k) {
			n.items[pos] = &entry{hash: h, key: k, val: v}
			return n, false
		}
		child := &node{owner: t.o}
		child, _ = t.put(child, it.hash, it.key, it.val, shift+hashBits)
		child, _ = t.put(child, h, k, v, shift+hashBits)
		n.items[pos] = child
		return n, true
	case *node:
		newChild, added := t.put(it, h, k, v, shift+hashBits)
		n.items[pos] = newChild
		return n, added
	}
	return n, false
}

func (t *Transient) del(n *node, h uint32, k cell.Cell, shift uint) (*node, bool) {
	if shift >= maxShift {
		for i, it := range n.items {
			if e, ok := it.(*entry); ok && cell.Equal(e.key, k) {
				n = t.edit(n)
				n.items = append(n.items[:i], n.items[i+1:]...)
				return n, true
			}
		}
		return n, false
	}
	bit := uint32(1) << ((h >> shift) & hashMask)
	if n.bitmap&bit == 0 {
		return n, false
	}
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	switch it := n.items[pos].(type) {
	case *entry:
		if it.hash != h || !cell.Equal(it.key, k) {
			return n, false
		}
		n = t.edit(n)
		n.bitmap &^= bit
		n.items = append(n.items[:pos], n.items[pos+1:]...)
		return n, true
	case *node:
		newChild, removed := t.del(it, h, k, shift+hashBits)
		if !removed {
			return n, false
		}
		n = t.edit(n)
		switch {
		case len(newChild.items) == 0:
			n.bitmap &^= bit
			n.items = append(n.items[:pos], n.items[pos+1:]...)
		default:
			n.items[pos] = newChild
			if len(newChild.items) == 1 {
				if e, ok := newChild.items[0].(*entry); ok {
					n.items[pos] = e
				}
			}
		}
		return n, true
	}
	return n, false
}
