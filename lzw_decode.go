package gif

// LZW decode, implemented from scratch per spec.md §4.3.2 — see
// DESIGN.md for why this is not delegated to an existing LZW package.
// The decode-side dictionary entry packs (prevLength, prevCode, byte)
// into one struct per spec.md §3/§9; the dictionary walk writes into the
// output slice back-to-front, exactly as the Design Notes direct, so the
// hot path never allocates or reverses a temporary buffer.

const maxLZWCodes = 4096

type lzwDictEntry struct {
	prevCode   uint16
	prevLength uint16 // length of prevCode's expansion; this entry's own length is prevLength+1
	lastByte   byte
}

func (e lzwDictEntry) length() int { return int(e.prevLength) + 1 }

// lzwDecode reads a minCodeSize-led, sub-blocked LZW code stream from br
// and returns exactly outLen decoded index bytes, or a Malformed/
// Truncated/Io error per spec.md §4.3.2 and §8 properties 4-5.
func lzwDecode(br *subblockBitReader, minCodeSize int, outLen int) ([]byte, error) {
	if minCodeSize < 2 || minCodeSize > 8 {
		return nil, invalidArgument("lzwDecode", "min_code_size must be in 2..=8")
	}

	clearCode := uint16(1 << uint(minCodeSize))
	endCode := clearCode + 1

	dict := make([]lzwDictEntry, maxLZWCodes)
	for i := uint16(0); i < clearCode; i++ {
		dict[i] = lzwDictEntry{prevCode: endCode, prevLength: 0, lastByte: byte(i)}
	}

	out := make([]byte, outLen)
	pos := 0

	// expandChain writes code's expansion into out[at:at+dict[code].length()],
	// back-to-front, following the prevCode chain to its root.
	expandChain := func(code uint16, at int) {
		writePos := at + dict[code].length()
		c := code
		for {
			writePos--
			out[writePos] = dict[c].lastByte
			if dict[c].prevLength == 0 {
				break
			}
			c = dict[c].prevCode
		}
	}

	var freeCode, codeSize, prevCode, prevLength = endCode, uint(minCodeSize) + 1, endCode, uint16(0)
	reset := func() {
		freeCode, codeSize, prevCode, prevLength = endCode, uint(minCodeSize)+1, endCode, 0
	}

	for {
		code, err := br.readCode(codeSize)
		if err != nil {
			return nil, err
		}

		if code == endCode {
			if err := br.finish(); err != nil {
				return nil, err
			}
			if pos != outLen {
				return nil, malformed("lzw decode", "too little data")
			}
			return out, nil
		}

		if code == clearCode {
			reset()
			continue
		}

		if code > freeCode {
			return nil, malformed("lzw decode", "invalid LZW code")
		}

		var length int
		if code == freeCode {
			// KωK case: code isn't installed yet; its expansion is the
			// previous expansion followed by its own first byte.
			if prevCode == endCode {
				return nil, malformed("lzw decode", "invalid LZW code")
			}
			length = dict[prevCode].length() + 1
			if pos+length > outLen {
				return nil, malformed("lzw decode", "too much data")
			}
			expandChain(prevCode, pos)
			out[pos+length-1] = out[pos]
		} else {
			length = dict[code].length()
			if pos+length > outLen {
				return nil, malformed("lzw decode", "too much data")
			}
			expandChain(code, pos)
		}
		firstByte := out[pos]
		pos += length

		if freeCode < maxLZWCodes {
			dict[freeCode] = lzwDictEntry{prevCode: prevCode, prevLength: prevLength, lastByte: firstByte}
			freeCode++
			if freeCode < maxLZWCodes && freeCode >= (1<<codeSize) {
				codeSize++
			}
		}
		prevCode = code
		prevLength = uint16(length)
	}
}
