// Package pmap implements an immutable, structurally-shared map of Cells to
// Cells, as a hash array mapped trie over cell.Hash.
//
// Key matching is equivalence-based: lookup goes through the trie first, and
// object-keyed searches that miss fall back to a linear scan that consults
// the keys' Equiver capability. The scan is O(n) by nature; arbitrary opaque
// keys without a usable hash cannot do better, and callers holding such keys
// should keep their representations canonical.
package pmap

import (
	"iter"
	"math/bits"
	"slices"
	"strings"

	"github.com/immergo/immergo/cell"
)

const (
	hashBits = 5
	fanout   = 1 << hashBits
	hashMask = fanout - 1
	// Past this shift the hash is exhausted and entries live in a
	// collision bucket searched linearly.
	maxShift = 32
)

// owner is the transient edit token; see pvec for the sizing constraint.
type owner struct{ _ int8 }

type entry struct {
	hash uint32
	key  cell.Cell
	val  cell.Cell
}

// node holds *entry and *node items ordered by the bitmap's set bits. At
// shift >= maxShift the bitmap is unused and items is a collision bucket.
type node struct {
	owner  *owner
	bitmap uint32
	items  []any
}

func (n *node) clone() *node {
	return &node{bitmap: n.bitmap, items: slices.Clone(n.items)}
}

// Map is a persistent mapping of Cell keys to Cell values. Keys are unique
// under cell.Equal. Maps are safe for concurrent readers without locking.
type Map struct {
	count int
	root  *node
}

var empty = &Map{}

func Empty() *Map { return empty }

func (m *Map) Len() int      { return m.count }
func (m *Map) IsEmpty() bool { return m.count == 0 }

// find locates the entry for k: direct trie lookup first, then the
// equivalence scan for object keys.
func (m *Map) find(k cell.Cell) (*entry, bool) {
	if m.root == nil {
		return nil, false
	}
	if e, ok := m.root.get(cell.Hash(k), k, 0); ok {
		return e, true
	}
	if k.Tag() == cell.TagObject {
		return m.root.scanEquiv(k)
	}
	return nil, false
}

// Get returns the value for k. The second return is false for a missing
// key; absence is not an error.
func (m *Map) Get(k cell.Cell) (cell.Cell, bool) {
	e, ok := m.find(k)
	if !ok {
		return cell.Nil(), false
	}
	return e.val, true
}

func (m *Map) Has(k cell.Cell) bool {
	_, ok := m.find(k)
	return ok
}

// Assoc returns a new map with k bound to v. An equivalent existing key is
// overwritten in place of growing the map; object keys are canonicalized
// onto the stored key they are equivalent to.
func (m *Map) Assoc(k, v cell.Cell) *Map {
	if k.Tag() == cell.TagObject {
		if e, ok := m.find(k); ok {
			k = e.key
		}
	}
	root := m.root
	if root == nil {
		root = &node{}
	}
	newRoot, added := root.put(cell.Hash(k), k, v, 0)
	count := m.count
	if added {
		count++
	}
	return &Map{count: count, root: newRoot}
}

// Dissoc returns a new map without k. Removing an absent key returns the
// receiver unchanged.
func (m *Map) Dissoc(k cell.Cell) *Map {
	if m.root == nil {
		return m
	}
	if k.Tag() == cell.TagObject {
		e, ok := m.find(k)
		if !ok {
			return m
		}
		k = e.key
	}
	newRoot, removed := m.root.remove(cell.Hash(k), k, 0)
	if !removed {
		return m
	}
	return &Map{count: m.count - 1, root: newRoot}
}

// Entry is one key/value pair of a map.
type Entry struct {
	Key cell.Cell
	Val cell.Cell
}

// All iterates entries. Order is unspecified but stable for a given Map.
func (m *Map) All() iter.Seq2[cell.Cell, cell.Cell] {
	return func(yield func(cell.Cell, cell.Cell) bool) {
		if m.root != nil {
			m.root.scan(func(e *entry) bool {
				return yield(e.key, e.val)
			})
		}
	}
}

func (m *Map) Keys() []cell.Cell {
	out := make([]cell.Cell, 0, m.count)
	for k := range m.All() {
		out = append(out, k)
	}
	return out
}

func (m *Map) Values() []cell.Cell {
	out := make([]cell.Cell, 0, m.count)
	for _, v := range m.All() {
		out = append(out, v)
	}
	return out
}

func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, m.count)
	for k, v := range m.All() {
		out = append(out, Entry{Key: k, Val: v})
	}
	return out
}

// ReduceFunc folds an accumulator over entries. The fold is seeded by one
// call with a nil entry before any entry is visited, even on an empty map.
// Returning done=true stops the fold.
type ReduceFunc func(acc cell.Cell, ent *Entry) (_ cell.Cell, done bool)

// Reduce folds over all entries. The first call is fn(init, nil) with no
// entry; each later call receives one entry. Entry order follows All.
func (m *Map) Reduce(fn ReduceFunc, init cell.Cell) cell.Cell {
	acc, done := fn(init, nil)
	if done {
		return acc
	}
	for k, v := range m.All() {
		ent := Entry{Key: k, Val: v}
		acc, done = fn(acc, &ent)
		if done {
			break
		}
	}
	return acc
}

// Equiv reports entrywise equivalence with another map: same size, and every
// key of the receiver finds an equivalent key in other bound to an equal
// value. Anything that is not a *Map compares false, never an error.
func (m *Map) Equiv(other any) bool {
	o, ok := other.(*Map)
	if !ok || o == nil {
		return false
	}
	if m.count != o.count {
		return false
	}
	equal := true
	if m.root != nil {
		m.root.scan(func(e *entry) bool {
			oe, found := o.find(e.key)
			if !found || !cell.Equal(e.val, oe.val) {
				equal = false
				return false
			}
			return true
		})
	}
	return equal
}

func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for k, v := range m.All() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(k.String())
		sb.WriteByte(' ')
		sb.WriteString(v.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// --- trie nodes ---

func (n *node) get(h uint32, k cell.Cell, shift uint) (*entry, bool) {
	if shift >= maxShift {
		for _, it := range n.items {
			if e, ok := it.(*entry); ok && cell.Equal(e.key, k) {
				return e, true
			}
		}
		return nil, false
	}
	bit := uint32(1) << ((h >> shift) & hashMask)
	if n.bitmap&bit == 0 {
		return nil, false
	}
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	switch it := n.items[pos].(type) {
	case *entry:
		if it.hash == h && cell.Equal(it.key, k) {
			return it, true
		}
		return nil, false
	case *node:
		return it.get(h, k, shift+hashBits)
	}
	return nil, false
}

func (n *node) put(h uint32, k, v cell.Cell, shift uint) (*node, bool) {
	ret := n.clone()
	if shift >= maxShift {
		for i, it := range ret.items {
			if e, ok := it.(*entry); ok && cell.Equal(e.key, k) {
				ret.items[i] = &entry{hash: h, key: k, val: v}
				return ret, false
			}
		}
		ret.items = append(ret.items, &entry{hash: h, key: k, val: v})
		return ret, true
	}
	bit := uint32(1) << ((h >> shift) & hashMask)
	pos := bits.OnesCount32(n.bitmap & (bit - 1))
	if n.bitmap&bit == 0 {
		ret.bitmap |= bit
		ret.items = append(ret.items, nil)
		copy(ret.items[pos+1:], ret.items[pos:])
		ret.items[pos] = &entry{hash: h, key: k, val: v}
		return ret, true
	}
	switch it := n.items[pos].(type) {
	case *entry:
		if it.hash == h && cell.Equal(it.key, k) {
			ret.items[pos] = &entry{hash: h, key: k, val: v}
			return ret, false
		}
		// Two distinct keys in one slot: push both down a level.
		child := &node{}
		child, _ = child.put(it.hash, it.key, it.val, shift+hashBits)
		child, _ = child.put(h, k, v, shift+hashBits)
		ret.items[pos] = child
		return ret, true
	case *node:
		newChild, added := it.put(h, k, v, shift+hashBits)
		ret.items[pos] = newChild
		return ret, added
	}
	return ret, false
}

func (n *node) remove(h uint32, k cell.Cell, shift uint) (*node, bool) {
	if shift >= maxShift {
		for i, it := range n.items {
			if e, ok := it.(*entry); ok && cell.Equal(e.key, k) {
				ret := &node{bitmap: n.bitmap, items: make([]any, len(n.items)-1)}
				copy(ret.items[:i], n.items[:i])
				copy(ret.items[i:], n.items[i+1:])
				return ret, true
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
		ret := &node{bitmap: n.bitmap &^ bit, items: make([]any, len(n.items)-1)}
		copy(ret.items[:pos], n.items[:pos])
		copy(ret.items[pos:], n.items[pos+1:])
		return ret, true
	case *node:
		newChild, removed := it.remove(h, k, shift+hashBits)
		if !removed {
			return n, false
		}
		if len(newChild.items) == 0 {
			ret := &node{bitmap: n.bitmap &^ bit, items: make([]any, len(n.items)-1)}
			copy(ret.items[:pos], n.items[:pos])
			copy(ret.items[pos:], n.items[pos+1:])
			return ret, true
		}
		ret := n.clone()
		if len(newChild.items) == 1 {
			// A lone leaf entry is pulled up a level.
			if e, ok := newChild.items[0].(*entry); ok {
				ret.items[pos] = e
				return ret, true
			}
		}
		ret.items[pos] = newChild
		return ret, true
	}
	return n, false
}

// scan visits every entry; fn returning false stops the walk.
func (n *node) scan(fn func(*entry) bool) bool {
	for _, it := range n.items {
		switch x := it.(type) {
		case *entry:
			if !fn(x) {
				return false
			}
		case *node:
			if !x.scan(fn) {
				return false
			}
		}
	}
	return true
}

// scanEquiv is the O(n) fallback for object-keyed lookups: the stored key's
// Equiver capability decides, so equivalent keys with distinct identities
// still match.
func (n *node) scanEquiv(k cell.Cell) (*entry, bool) {
	var found *entry
	n.scan(func(e *entry) bool {
		if e.key.Tag() == cell.TagObject && cell.Equal(e.key, k) {
			found = e
			return false
		}
		return true
	})
	return found, found != nil
}
