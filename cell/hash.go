package cell

import (
	"encoding/binary"
	"math"

	"github.com/immergo/immergo"
)

// Hash returns a 32-bit hash that agrees with Equal: equal Cells hash equal.
// Object Cells hash by handle identity, so two objects that are only
// capability-equivalent may hash apart; map lookups compensate with an
// equivalence scan.
func Hash(c Cell) uint32 {
	switch c.tag {
	case TagNil:
		return mix(uint32(TagNil), 0)
	case TagBool:
		return mix(uint32(TagBool), uint32(c.num))
	case TagNumber:
		bits := math.Float64bits(c.num)
		if c.num == 0 {
			bits = 0 // -0.0 == 0.0 must hash equal
		}
		return mix(uint32(TagNumber), uint32(bits)^uint32(bits>>32))
	case TagString:
		sum := immergo.Hash(nil, []byte(*c.str))
		return mix(uint32(TagString), binary.LittleEndian.Uint32(sum[:4]))
	case TagObject:
		return mix(uint32(TagObject), uint32(c.obj.id)^uint32(c.obj.id>>32))
	}
	return 0
}

func mix(tag, h uint32) uint32 {
	x := tag*0x9e3779b9 + h
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	return x
}
