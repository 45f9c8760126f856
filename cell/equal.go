package cell

import "strings"

// Equal reports value equivalence between two Cells. Tags must match;
// Nil/Bool/Number/String compare structurally, Object by reference identity
// with the Equiver capability as a fallback.
func Equal(a, b Cell) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagNil:
		return true
	case TagBool, TagNumber:
		return a.num == b.num
	case TagString:
		return a.str == b.str || *a.str == *b.str
	case TagObject:
		return handleEqual(a.obj, b.obj)
	}
	return false
}

// Compare is a total order over Cells: tag first, then the tag-specific
// payload order. It exists for internal consistency only and does not
// consult the Equiver capability.
func Compare(a, b Cell) int {
	if a.tag != b.tag {
		return int(a.tag) - int(b.tag)
	}
	switch a.tag {
	case TagNil:
		return 0
	case TagBool, TagNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case TagString:
		return strings.Compare(*a.str, *b.str)
	case TagObject:
		switch {
		case a.obj.id < b.obj.id:
			return -1
		case a.obj.id > b.obj.id:
			return 1
		}
		return 0
	}
	return 0
}
