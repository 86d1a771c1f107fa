// Package hll implements a bit-packed HyperLogLog register array: a dense
// vertex-id -> HLL-counter mapping that supports in-place register-wise
// union over packed registers, dynamic growth, cloning, transfer, and
// extraction of sub-arrays.
//
// Unlike a one-sketch-per-value HyperLogLog (see the byte-per-register
// design this package replaced), every counter here shares a single
// backing store of 64-bit words, chunked so no single allocation has to
// grow past 2^30 registers regardless of how many counters the array
// eventually holds. The packing and the register-wise max are the
// load-bearing correctness property of this package; the max is computed
// one register at a time, not with the broadword word-level formula (see
// union.go).
package hll

import (
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
)

const (
	// minLog2m and maxLog2m bound the number of registers per counter
	// (m = 2^log2m) to the range the spec allows.
	minLog2m = 4
	maxLog2m = 30

	// minRegisterSize is the floor for registerSize, regardless of how
	// small the expected-cardinality upper bound n is.
	minRegisterSize = 5

	// chunkRegisterBits is the log2 of the maximum number of registers
	// packed into a single chunk (2^30), bounding any one chunk
	// allocation's size regardless of total counter count.
	chunkRegisterBits = 30

	wordBits = 64
)

// Params fixes the shape shared by every array that will ever be unioned
// or compared: the register count exponent, the per-register bit width,
// and the hash seed. All three must match exactly for Union to succeed.
type Params struct {
	// LogM is log2(m), the number of registers per counter; m = 1<<LogM.
	LogM uint8

	// RegisterSize is the bit width of each register.
	RegisterSize uint8

	// Seed seeds the Jenkins mix; two arrays that will ever be unioned
	// must share the same seed.
	Seed uint64
}

// RegisterSizeFor derives registerSize = max(5, ceil(log2(log2(n)))) for
// an expected-element upper bound n, per the spec's sizing rule.
func RegisterSizeFor(n uint64) uint8 {
	if n <= 1 {
		return minRegisterSize
	}

	ll := math.Log2(math.Log2(float64(n)))
	rs := int(math.Ceil(ll))

	if rs < minRegisterSize {
		rs = minRegisterSize
	}

	return uint8(rs)
}

// Array is a dense vertex-id -> HLL-counter mapping, packed into
// fixed-capacity chunks of 64-bit words.
type Array struct {
	params Params

	m            uint64
	registerSize uint8

	counterBits      uint64 // m * registerSize
	counterLongwords uint64 // ceil(counterBits / 64)
	longwordAligned  bool

	countersPerChunkLog2 uint8
	countersPerChunk     uint64
	chunkMask            uint64

	size  uint64 // logical number of counters currently addressable
	limit uint64 // allocated capacity, in counters

	chunks [][]uint64

	// msbMask/lsbMask are fully expanded to counterLongwords entries;
	// never indexed modulo a shorter registerSize-length array (see
	// Design Notes resolution (b)).
	msbMask []uint64
	lsbMask []uint64

	sentinelMask uint64
}

// New creates an Array of the given shape sized to hold exactly `size`
// counters (all reading as zero initially).
func New(params Params, size uint64) (*Array, error) {
	if params.LogM < minLog2m || params.LogM > maxLog2m {
		return nil, fmt.Errorf("hll: log2m %d out of [%d,%d]: %w", params.LogM, minLog2m, maxLog2m, hberrors.ErrInvalidArgument)
	}

	if params.RegisterSize < minRegisterSize {
		return nil, fmt.Errorf("hll: registerSize %d below minimum %d: %w", params.RegisterSize, minRegisterSize, hberrors.ErrInvalidArgument)
	}

	a := &Array{params: params}
	a.deriveConstants()

	if err := a.growTo(size); err != nil {
		return nil, err
	}

	a.size = size

	return a, nil
}

// deriveConstants recomputes every value that depends only on
// (log2m, registerSize) — masks, chunk shift, alignment — in one place,
// per Design Notes §9's "derive all of them ... in a single
// constructor-time routine; never memoise at module scope".
func (a *Array) deriveConstants() {
	a.m = uint64(1) << a.params.LogM
	a.registerSize = a.params.RegisterSize
	a.counterBits = a.m * uint64(a.registerSize)
	a.counterLongwords = (a.counterBits + wordBits - 1) / wordBits
	a.longwordAligned = a.counterBits%wordBits == 0

	shift := chunkRegisterBits - int(a.params.LogM)
	if shift < 0 {
		shift = 0
	}

	a.countersPerChunkLog2 = uint8(shift)
	a.countersPerChunk = uint64(1) << a.countersPerChunkLog2
	a.chunkMask = a.countersPerChunk - 1

	// sentinelMask bounds numberOfTrailingZeros of the hashed rank bits
	// so the stored rank never exceeds 2^registerSize-2 before the +1.
	maxRank := (uint64(1) << a.registerSize) - 2
	a.sentinelMask = uint64(1) << maxRank

	a.rebuildMasks()
}

// rebuildMasks materialises msbMask/lsbMask at full counterLongwords
// length. Runs on every grow and on every clone.
func (a *Array) rebuildMasks() {
	a.msbMask = make([]uint64, a.counterLongwords)
	a.lsbMask = make([]uint64, a.counterLongwords)

	rs := uint64(a.registerSize)

	for j := uint64(0); j < a.m; j++ {
		lsbBit := j * rs
		msbBit := (j+1)*rs - 1

		a.lsbMask[lsbBit/wordBits] |= uint64(1) << (lsbBit % wordBits)
		a.msbMask[msbBit/wordBits] |= uint64(1) << (msbBit % wordBits)
	}
}

// Params returns the shape of this array.
func (a *Array) Params() Params { return a.params }

// Size returns the number of logical counters.
func (a *Array) Size() uint64 { return a.size }

// M returns the register count per counter.
func (a *Array) M() uint64 { return a.m }

// chunkAndOffset locates counter k's chunk index and its bit offset
// within that chunk's word slice.
func (a *Array) chunkAndOffset(k uint64) (chunkIdx int, bitOffset uint64) {
	chunkIdx = int(k >> a.countersPerChunkLog2)
	counterInChunk := k & a.chunkMask
	bitOffset = counterInChunk * a.counterBits

	return chunkIdx, bitOffset
}

// sameShape reports whether two arrays may be unioned or compared.
func sameShape(a, b *Array) bool {
	return a.params == b.params
}

func errShapeMismatch(op string) error {
	return fmt.Errorf("hll: %s: %w", op, hberrors.ErrIncompatibleShape)
}

func errOutOfRange(op string, k, size uint64) error {
	return fmt.Errorf("hll: %s: counter %d >= size %d: %w", op, k, size, hberrors.ErrInvalidArgument)
}

// Add hashes v with the seeded Jenkins mix and folds it into counter k's
// registers: j = hash & (m-1) selects the register, r = trailing-zero
// count of the remaining bits (sentinel-masked) + 1 is the candidate
// rank, and register j is raised to max(old, r).
func (a *Array) Add(k uint64, v uint64) error {
	if k >= a.size {
		return fmt.Errorf("hll: add: counter %d >= size %d: %w", k, a.size, hberrors.ErrInvalidArgument)
	}

	hash := jenkinsHash64(v, a.params.Seed)
	j := hash & (a.m - 1)
	remaining := (hash >> a.params.LogM) | a.sentinelMask
	r := uint64(trailingZeros64(remaining)) + 1

	a.setRegisterIfGreater(k, j, r)

	return nil
}

// setRegisterIfGreater performs the single-register max update used by
// Add. Union instead works on whole counters at once (see union.go).
func (a *Array) setRegisterIfGreater(k, j, r uint64) {
	chunkIdx, base := a.chunkAndOffset(k)
	bitPos := base + j*uint64(a.registerSize)

	old := getBits(a.chunks[chunkIdx], bitPos, a.registerSize)
	if r > old {
		setBits(a.chunks[chunkIdx], bitPos, a.registerSize, r)
	}
}

// getRegister reads register j of counter k.
func (a *Array) getRegister(k, j uint64) uint64 {
	chunkIdx, base := a.chunkAndOffset(k)
	bitPos := base + j*uint64(a.registerSize)

	return getBits(a.chunks[chunkIdx], bitPos, a.registerSize)
}

// Count computes the HyperLogLog cardinality estimate for counter k using
// alpha_m*m^2/sum(2^-R_j), with the small-range correction
// m*ln(m/zeros) when some register is empty and the raw estimate is
// below 5m/2.
func (a *Array) Count(k uint64) (float64, error) {
	if k >= a.size {
		return 0, nil //nolint:nilerr // NotFound on query is a zero estimate, not an error (spec §7).
	}

	var (
		sum   float64
		zeros int
	)

	for j := uint64(0); j < a.m; j++ {
		r := a.getRegister(k, j)
		if r == 0 {
			zeros++
		}

		sum += 1.0 / float64(uint64(1)<<r)
	}

	mf := float64(a.m)
	raw := alpha(a.m) * mf * mf / sum

	if zeros > 0 && raw < 2.5*mf {
		return mf * math.Log(mf/float64(zeros)), nil
	}

	return raw, nil
}

// alpha returns the HyperLogLog bias-correction constant for m registers.
func alpha(m uint64) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/float64(m))
	}
}
