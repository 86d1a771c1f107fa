package hll

// unionWords writes into dst the register-wise max of dst and src, over
// m registerSize-wide lanes packed in each buffer. The Boldi-Vigna
// broadword formula folds this into a handful of branch-free word ops
// using msbMask/lsbMask; this instead decodes and compares one register
// at a time. It is the same contract the spec holds the broadword
// routine to ("MUST produce the same result as a straightforward
// register-by-register max") computed directly, which keeps the array's
// one load-bearing correctness property checkable by inspection rather
// than resting on an unexercised bit trick.
func (a *Array) unionWords(dst, src []uint64) {
	rs := a.registerSize

	for j := uint64(0); j < a.m; j++ {
		bitPos := j * uint64(rs)

		s := getBits(src, bitPos, rs)
		if s == 0 {
			continue
		}

		d := getBits(dst, bitPos, rs)
		if s > d {
			setBits(dst, bitPos, rs, s)
		}
	}
}

// Union folds counter kSrc of src into counter kDst of this array,
// register-wise-max in place: the result is exact for set union, per the
// packed-register invariant (see package doc).
func (a *Array) Union(src *Array, kDst, kSrc uint64) error {
	if !sameShape(a, src) {
		return errShapeMismatch("union")
	}

	if kDst >= a.size {
		return errOutOfRange("union", kDst, a.size)
	}

	if kSrc >= src.size {
		return errOutOfRange("union", kSrc, src.size)
	}

	dstBuf := make([]uint64, a.counterLongwords)
	srcBuf := make([]uint64, src.counterLongwords)

	if err := a.GetCounter(kDst, dstBuf); err != nil {
		return err
	}

	if err := src.GetCounter(kSrc, srcBuf); err != nil {
		return err
	}

	a.unionWords(dstBuf, srcBuf)

	return a.SetCounter(dstBuf, kDst)
}

// UnionAll folds every counter of src into the matching counter of this
// array, i.e. this[k] = this[k] U src[k] for k in [0, min(size, src.size)).
// Nothing in this repository calls it; the engine unions counters one at
// a time with Union.
func (a *Array) UnionAll(src *Array) error {
	if !sameShape(a, src) {
		return errShapeMismatch("unionAll")
	}

	n := a.size
	if src.size < n {
		n = src.size
	}

	dstBuf := make([]uint64, a.counterLongwords)
	srcBuf := make([]uint64, src.counterLongwords)

	for k := uint64(0); k < n; k++ {
		if err := a.GetCounter(k, dstBuf); err != nil {
			return err
		}

		if err := src.GetCounter(k, srcBuf); err != nil {
			return err
		}

		a.unionWords(dstBuf, srcBuf)

		if err := a.SetCounter(dstBuf, k); err != nil {
			return err
		}
	}

	return nil
}
