package util

// CloneSlice clones slice with cloneSize.
// This function will use src length as the clone size if cloneSize is 0.
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}

// PutUintBE stores the low len(dst) bytes of v into dst, most significant byte first.
//
// Bits of v that do not fit into dst are discarded; callers validate ranges beforehand.
func PutUintBE(dst []byte, v uint32) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}

// UintBE decodes src as a big-endian unsigned integer of at most 4 bytes.
func UintBE(src []byte) uint32 {
	var v uint32
	for _, b := range src {
		v = v<<8 | uint32(b)
	}

	return v
}
