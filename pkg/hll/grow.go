package hll

import (
	"fmt"

	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
)

// growthNumerator and growthDenominator express the 1.1x geometric growth
// policy as an exact rational so growth is deterministic across
// platforms (floating-point 1.1 compounded many times would drift).
const (
	growthNumerator   = 11
	growthDenominator = 10
)

// nextLimit returns the smallest capacity >= want, stepping the current
// limit by 1.1x compounded (floor) until it clears want.
func nextLimit(limit, want uint64) uint64 {
	if limit == 0 {
		limit = 1
	}

	for limit < want {
		next := limit * growthNumerator / growthDenominator
		if next <= limit {
			next = limit + 1
		}

		limit = next
	}

	return limit
}

// growTo ensures the array's backing chunks can address `want` counters,
// allocating new chunks and copying old chunks verbatim. Mask
// recomputation happens here and in Clone, per Design Notes §9.
func (a *Array) growTo(want uint64) error {
	newLimit := nextLimit(a.limit, want)

	neededChunks := 0
	if newLimit > 0 {
		neededChunks = int((newLimit-1)>>a.countersPerChunkLog2) + 1
	}

	for len(a.chunks) < neededChunks {
		a.chunks = append(a.chunks, nil)
	}

	for i := range a.chunks {
		countersInChunk := a.countersPerChunk
		if i == len(a.chunks)-1 {
			lastChunkStart := uint64(i) * a.countersPerChunk
			if newLimit-lastChunkStart < countersInChunk {
				countersInChunk = newLimit - lastChunkStart
			}
		}

		wantWords := int((countersInChunk*a.counterBits + wordBits - 1) / wordBits)
		if len(a.chunks[i]) < wantWords {
			grown := make([]uint64, wantWords)
			copy(grown, a.chunks[i])
			a.chunks[i] = grown
		}
	}

	a.limit = newLimit
	a.rebuildMasks()

	return nil
}

// AddCounters grows the array by n logical counters, which read as zero.
// Capacity increases by the 1.1x compounding policy until it covers the
// new size. A negative n is a shrink request, which always fails.
func (a *Array) AddCounters(n int64) error {
	if n < 0 {
		return fmt.Errorf("hll: addCounters: shrink request (n=%d): %w", n, hberrors.ErrInvalidArgument)
	}

	newSize := a.size + uint64(n)
	if newSize > a.limit {
		if err := a.growTo(newSize); err != nil {
			return err
		}
	}

	a.size = newSize

	return nil
}

// Clone returns a deep copy: subsequent mutation of one does not affect
// the other, and Count values agree at clone time.
func (a *Array) Clone() *Array {
	clone := &Array{params: a.params}
	clone.deriveConstants()

	clone.size = a.size
	clone.limit = a.limit
	clone.chunks = make([][]uint64, len(a.chunks))

	for i, chunk := range a.chunks {
		clone.chunks[i] = append([]uint64(nil), chunk...)
	}

	return clone
}

// Extract builds a fresh array of length k populated from the current
// array at the given indices. Since it shares this array's seed, it can
// later be unioned back with Union.
func (a *Array) Extract(indices []uint64, k uint64) (*Array, error) {
	if uint64(len(indices)) > k {
		return nil, fmt.Errorf("hll: extract: %d indices for capacity %d: %w", len(indices), k, hberrors.ErrInvalidArgument)
	}

	out, err := New(a.params, k)
	if err != nil {
		return nil, err
	}

	buf := make([]uint64, a.counterLongwords)

	for dst, src := range indices {
		if src >= a.size {
			continue
		}

		if err := a.GetCounter(src, buf); err != nil {
			return nil, err
		}

		if err := out.SetCounter(buf, uint64(dst)); err != nil {
			return nil, err
		}
	}

	return out, nil
}
