package xdr

// Uint32Len is the encoded size of an XDR int, unsigned int, bool or enum.
const Uint32Len = 4

// Uint64Len is the encoded size of an XDR hyper or unsigned hyper.
const Uint64Len = 8

// Pad returns the number of zero bytes that follow n bytes of variable-length
// data to reach the next 4-byte boundary.
//
// Example: Pad(5) = 3, Pad(8) = 0
func Pad(n int) int {
	return (4 - (n % 4)) % 4
}

// OpaqueLen returns the encoded size of variable-length opaque data of n bytes:
// the 4-byte length prefix, the data, and the padding.
func OpaqueLen(n int) int {
	return Uint32Len + n + Pad(n)
}

// BytesLen returns the encoded size of b as variable-length opaque data.
func BytesLen(b []byte) int {
	return OpaqueLen(len(b))
}

// StringLen returns the encoded size of s as an XDR string.
//
//	"abc"  -> 8  ([00 00 00 03][61 62 63][00])
//	"test" -> 8  ([00 00 00 04][74 65 73 74])
//	""     -> 4  ([00 00 00 00])
func StringLen(s string) int {
	return OpaqueLen(len(s))
}
