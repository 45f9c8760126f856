package immergo

import (
	"lukechampine.com/blake3"
)

const (
	// HashSize is the size in bytes of a full value digest.
	HashSize = 32
)

// ID is a full-width value digest.
type ID = [HashSize]byte

// Hash calculates the hash of x.
// If tag == nil, then the hash is unkeyed.
// If tag != nil, then the hash will be keyed with the tag.
func Hash(tag *ID, x []byte) (ret ID) {
	var key []byte
	if tag != nil {
		key = tag[:]
	}
	h := blake3.New(HashSize, key)
	h.Write(x)
	h.Sum(ret[:0])
	return ret
}
