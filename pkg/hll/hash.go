package hll

import "math/bits"

// jenkinsMix is Bob Jenkins' classic 96-bit (3x32-bit word) integer mix,
// the same finalizer family WebGraph-style HyperLogLog implementations
// seed their register hash with. It is re-derived here rather than reused
// from pkg/alg/internal/hashutil's splitmix64 finalizer because that
// mixer was built for a single-hash-per-sketch design: this array needs
// a mix whose low log2m bits cleanly select a register independently of
// the high bits that feed the rank, which is exactly what running the
// mix over three words and reassembling two of them as the final 64-bit
// hash gives us.
func jenkinsMix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= b
	a -= c
	a ^= c >> 13
	b -= c
	b -= a
	b ^= a << 8
	c -= a
	c -= b
	c ^= b >> 13
	a -= b
	a -= c
	a ^= c >> 12
	b -= c
	b -= a
	b ^= a << 16
	c -= a
	c -= b
	c ^= b >> 5
	a -= b
	a -= c
	a ^= c >> 3
	b -= c
	b -= a
	b ^= a << 10
	c -= a
	c -= b
	c ^= b >> 15

	return a, b, c
}

// jenkinsInitial is Jenkins' golden-ratio seed for the mixing state.
const jenkinsInitial = 0x9e3779b9

// jenkinsHash64 hashes a 64-bit value under the given seed, returning a
// 64-bit result with full avalanche: every output bit depends on every
// input bit of v and seed.
func jenkinsHash64(v, seed uint64) uint64 {
	a := uint32(jenkinsInitial) + uint32(seed)
	b := uint32(jenkinsInitial) + uint32(seed>>32)
	c := uint32(v)
	d := uint32(v >> 32)

	a, b, c = jenkinsMix(a+d, b, c)

	return uint64(b)<<32 | uint64(c)
}

// trailingZeros64 counts trailing zero bits; bits.TrailingZeros64(0) == 64,
// which is the correct "all remaining bits are zero" case for the rank
// computation in Add.
func trailingZeros64(v uint64) int {
	return bits.TrailingZeros64(v)
}
