package cell

import (
	"fmt"
	"sync/atomic"
)

var handleSeq atomic.Uint64

// Handle is a shared, opaque reference to a host-managed object. Identity is
// assigned when the host object is wrapped; two Handles wrapping the same
// host object at different times are distinct identities, and only the
// Equiver capability can reconcile them.
type Handle struct {
	id  uint64
	val any
}

func NewHandle(v any) *Handle {
	return &Handle{id: handleSeq.Add(1), val: v}
}

func (h *Handle) ID() uint64 { return h.id }
func (h *Handle) Value() any { return h.val }

func (h *Handle) String() string {
	return fmt.Sprintf("object#%d", h.id)
}

// Equiver is implemented by host objects that can judge value equivalence
// against another host value, e.g. keyword-like values whose identity is
// their name rather than their allocation.
type Equiver interface {
	Equiv(other any) bool
}

// handleEqual compares two object references. Identity wins; otherwise the
// left object's Equiver capability is consulted. Any panic out of the
// capability is swallowed and treated as not equal.
func handleEqual(a, b *Handle) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b || a.id == b.id {
		return true
	}
	ev, ok := a.val.(Equiver)
	if !ok {
		return false
	}
	return callEquiv(ev, b.val)
}

func callEquiv(ev Equiver, other any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return ev.Equiv(other)
}
