package hll

import (
	"fmt"

	"github.com/Sumatoshi-tech/hyperball/pkg/hberrors"
)

// getBits reads a width-bit field (width <= 64) starting at bitPos from a
// packed word slice. The field may straddle two words.
func getBits(words []uint64, bitPos uint64, width uint8) uint64 {
	wordIdx := bitPos / wordBits
	bitInWord := bitPos % wordBits

	lo := words[wordIdx] >> bitInWord

	bitsFromLo := wordBits - bitInWord
	if bitsFromLo >= uint64(width) {
		return lo & mask(width)
	}

	hi := words[wordIdx+1] << bitsFromLo

	return (lo | hi) & mask(width)
}

// setBits writes the low `width` bits of val into a width-bit field
// starting at bitPos, leaving surrounding bits untouched. The field may
// straddle two words.
func setBits(words []uint64, bitPos uint64, width uint8, val uint64) {
	wordIdx := bitPos / wordBits
	bitInWord := bitPos % wordBits
	val &= mask(width)

	clearLo := ^(mask(width) << bitInWord)
	words[wordIdx] = (words[wordIdx] & clearLo) | (val << bitInWord)

	bitsInLo := wordBits - bitInWord
	if bitsInLo >= uint64(width) {
		return
	}

	bitsInHi := uint64(width) - bitsInLo
	clearHi := ^mask(uint8(bitsInHi))
	words[wordIdx+1] = (words[wordIdx+1] & clearHi) | (val >> bitsInLo)
}

// mask returns a width-bit all-ones mask. Per Design Notes §9(a), a
// 64-bit shift by 64 must behave as a full-width shift yielding zero;
// Go's shift semantics already give us exactly that (unlike Java, which
// wraps shift counts modulo 64). The width >= 64 branch returns the
// all-ones mask directly rather than relying on (1<<64)-1 wrapping.
func mask(width uint8) uint64 {
	if width >= wordBits {
		return ^uint64(0)
	}

	return (uint64(1) << width) - 1
}

// counterWords returns the chunk slice and starting bit offset for
// counter k, without bounds-checking k against Size (callers that accept
// raw indices, like Extract's source array, validate separately).
func (a *Array) counterWords(k uint64) ([]uint64, uint64) {
	chunkIdx, bitOffset := a.chunkAndOffset(k)

	return a.chunks[chunkIdx], bitOffset
}

// GetCounter copies counter k's raw longwords into dest, a buffer of at
// least counterLongwords entries. Handles both the longword-aligned case
// (a straight copy) and the unaligned case (a bit-shifted copy with a
// residual mask applied to the last word so it doesn't pick up bits from
// the following counter).
func (a *Array) GetCounter(k uint64, dest []uint64) error {
	if uint64(len(dest)) < a.counterLongwords {
		return fmt.Errorf("hll: getCounter: dest has %d words, need %d: %w", len(dest), a.counterLongwords, hberrors.ErrInvalidArgument)
	}

	words, bitOffset := a.counterWords(k)

	if a.longwordAligned {
		wordOffset := bitOffset / wordBits
		copy(dest[:a.counterLongwords], words[wordOffset:wordOffset+a.counterLongwords])

		return nil
	}

	for i := uint64(0); i < a.counterLongwords; i++ {
		width := uint8(wordBits)
		remaining := a.counterBits - i*wordBits

		if remaining < wordBits {
			width = uint8(remaining)
		}

		dest[i] = getBits(words, bitOffset+i*wordBits, width)
	}

	return nil
}

// SetCounter copies counterLongwords entries from src into counter k,
// preserving bits outside the counter's span in the owning chunk.
func (a *Array) SetCounter(src []uint64, k uint64) error {
	if uint64(len(src)) < a.counterLongwords {
		return fmt.Errorf("hll: setCounter: src has %d words, need %d: %w", len(src), a.counterLongwords, hberrors.ErrInvalidArgument)
	}

	words, bitOffset := a.counterWords(k)

	if a.longwordAligned {
		wordOffset := bitOffset / wordBits
		copy(words[wordOffset:wordOffset+a.counterLongwords], src[:a.counterLongwords])

		return nil
	}

	for i := uint64(0); i < a.counterLongwords; i++ {
		width := uint8(wordBits)
		remaining := a.counterBits - i*wordBits

		if remaining < wordBits {
			width = uint8(remaining)
		}

		setBits(words, bitOffset+i*wordBits, width, src[i])
	}

	return nil
}

// Transfer copies counter k from src to dst, two parallel chunk-shaped
// arrays of identical params, preserving the surrounding bits of dst.
func Transfer(src, dst *Array, k uint64) error {
	if !sameShape(src, dst) {
		return errShapeMismatch("transfer")
	}

	buf := make([]uint64, src.counterLongwords)
	if err := src.GetCounter(k, buf); err != nil {
		return err
	}

	return dst.SetCounter(buf, k)
}

// ClearCounter zeroes the counterBits bits belonging to counter k,
// leaving the surrounding bits of its chunk intact.
func (a *Array) ClearCounter(k uint64) error {
	if k >= a.size {
		return fmt.Errorf("hll: clearCounter: counter %d >= size %d: %w", k, a.size, hberrors.ErrInvalidArgument)
	}

	words, bitOffset := a.counterWords(k)

	for i := uint64(0); i < a.counterLongwords; i++ {
		width := uint8(wordBits)
		remaining := a.counterBits - i*wordBits

		if remaining < wordBits {
			width = uint8(remaining)
		}

		setBits(words, bitOffset+i*wordBits, width, 0)
	}

	return nil
}
