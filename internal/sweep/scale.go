/*
   ivtracer - scale computer (C7).

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package sweep

// scales is the (v_scale, i_scale) pair computed from an (Isc, Voc)
// measurement, used to weight a Manhattan distance over the sweep.
type scales struct {
	vScale int16
	iScale int16
}

// computeScales derives v_scale and i_scale from Isc, Voc, and the
// configured aspect ratio, integer-only.
//
// The raw products are built cross-wise (the width aspect against
// Isc, the height aspect against Voc) before the shared shift-and-
// round step, so the axis with the larger ADC span ends up with the
// larger per-count scale: equal Manhattan distances then correspond
// to equal pixel spacing on the rendered aspect ratio.
func computeScales(isc, voc int16, aspectWidth, aspectHeight int) scales {
	productIsc := int32(aspectWidth) * int32(isc)
	productVoc := int32(aspectHeight) * int32(voc)

	vocIsLarger := productVoc >= productIsc
	lg, sm := productIsc, productVoc
	if vocIsLarger {
		lg, sm = productVoc, productIsc
	}

	lgScale, smScale := scalePair(lg, sm)

	if lgScale+smScale > 16 {
		lgScale >>= 1
		smScale >>= 1
	}
	if smScale == 0 {
		smScale = 1
	}
	if lgScale == 16 {
		lgScale = 15
	}

	if vocIsLarger {
		return scales{vScale: int16(lgScale), iScale: int16(smScale)}
	}
	return scales{vScale: int16(smScale), iScale: int16(lgScale)}
}

// scalePair computes the shift-and-round scale for lg and applies the
// same shift/rounding bit to sm.
func scalePair(lg, sm int32) (lgScale, smScale int32) {
	b := highestSetBit(lg)
	if b < 4 {
		b = 4
	}
	if b > 15 {
		b = 15
	}
	s := uint(b - 3)
	roundUpMask := int32(1) << uint(b-4)

	lgScale = (lg >> s)
	if lg&roundUpMask != 0 {
		lgScale++
	}
	smScale = (sm >> s)
	if sm&roundUpMask != 0 {
		smScale++
	}
	return lgScale, smScale
}

// highestSetBit returns the 0-based index of the most significant set
// bit of v, or 0 if v is zero.
func highestSetBit(v int32) int {
	b := 0
	for v > 1 {
		v >>= 1
		b++
	}
	return b
}
