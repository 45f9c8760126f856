// Package cell implements the tagged value storage shared by the persistent
// collection engines. A Cell holds Nil, Bool and Number inline; String and
// Object payloads are shared by pointer, so copying a Cell is O(1) and never
// duplicates string bytes or object identity.
package cell

import (
	"fmt"
	"strconv"
)

// Tag identifies which variant a Cell holds.
type Tag uint8

const (
	TagNil Tag = iota
	TagBool
	TagNumber
	TagString
	TagObject
)

func (t Tag) String() string {
	switch t {
	case TagNil:
		return "Nil"
	case TagBool:
		return "Bool"
	case TagNumber:
		return "Number"
	case TagString:
		return "String"
	case TagObject:
		return "Object"
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Cell is a tagged variant over the open value domain.
// Bool is packed into the number field, so the zero Cell is Nil and
// primitive Cells never allocate.
type Cell struct {
	tag Tag
	num float64
	str *string
	obj *Handle
}

func Nil() Cell { return Cell{} }

func Bool(b bool) Cell {
	var n float64
	if b {
		n = 1
	}
	return Cell{tag: TagBool, num: n}
}

func Number(f float64) Cell { return Cell{tag: TagNumber, num: f} }

// String copies s into a fresh shared payload. Callers converting many host
// strings should intern the payload and use SharedString instead.
func String(s string) Cell { return Cell{tag: TagString, str: &s} }

// SharedString builds a string Cell around an already-shared payload.
func SharedString(p *string) Cell {
	if p == nil {
		return Nil()
	}
	return Cell{tag: TagString, str: p}
}

// Object builds a Cell referencing a host-managed object.
func Object(h *Handle) Cell {
	if h == nil {
		return Nil()
	}
	return Cell{tag: TagObject, obj: h}
}

func (c Cell) Tag() Tag    { return c.tag }
func (c Cell) IsNil() bool { return c.tag == TagNil }

// AsBool returns the boolean payload, or false for any other tag.
func (c Cell) AsBool() bool { return c.tag == TagBool && c.num != 0 }

// AsNumber returns the numeric payload, or 0 for any other tag.
func (c Cell) AsNumber() float64 {
	if c.tag != TagNumber {
		return 0
	}
	return c.num
}

// AsString returns the string payload, or "" for any other tag.
func (c Cell) AsString() string {
	if c.tag != TagString {
		return ""
	}
	return *c.str
}

// AsObject returns the object handle, or nil for any other tag.
func (c Cell) AsObject() *Handle {
	if c.tag != TagObject {
		return nil
	}
	return c.obj
}

func (c Cell) String() string {
	switch c.tag {
	case TagNil:
		return "nil"
	case TagBool:
		return strconv.FormatBool(c.num != 0)
	case TagNumber:
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	case TagString:
		return strconv.Quote(*c.str)
	case TagObject:
		return c.obj.String()
	}
	return fmt.Sprintf("Cell(%v)", c.tag)
}
