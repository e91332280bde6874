package gif

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripLZW encodes data at minCodeSize, then decodes the result,
// returning the decoded buffer and the encoded byte stream.
func roundTripLZW(t *testing.T, minCodeSize int, data []byte) ([]byte, []byte) {
	t.Helper()
	var buf bytes.Buffer
	bw := newSubblockBitWriter(&buf)
	require.NoError(t, lzwEncode(bw, minCodeSize, data))
	require.NoError(t, bw.Finish())

	br := newSubblockBitReader(bytes.NewReader(buf.Bytes()))
	out, err := lzwDecode(br, minCodeSize, len(data))
	require.NoError(t, err)
	return out, buf.Bytes()
}

func TestLZWRoundTrip(t *testing.T) {
	cases := []struct {
		name        string
		minCodeSize int
		data        []byte
	}{
		{"single pixel", 2, []byte{0}},
		{"single nonzero pixel", 2, []byte{3}},
		{"four distinct indices", 2, []byte{0, 1, 2, 3}},
		{"repeated run", 4, bytes.Repeat([]byte{5}, 300)},
		{"ramp", 8, func() []byte {
			b := make([]byte, 512)
			for i := range b {
				b[i] = byte(i % 256)
			}
			return b
		}()},
		{"alternating", 3, func() []byte {
			b := make([]byte, 200)
			for i := range b {
				b[i] = byte(i % 2)
			}
			return b
		}()},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _ := roundTripLZW(t, c.minCodeSize, c.data)
			assert.Equal(t, c.data, out)
		})
	}
}

// TestLZWDeterminism covers spec property 3: encoding the same buffer
// twice produces byte-identical output.
func TestLZWDeterminism(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte((i * 37) % 256)
	}

	var buf1, buf2 bytes.Buffer
	bw1 := newSubblockBitWriter(&buf1)
	require.NoError(t, lzwEncode(bw1, 8, data))
	require.NoError(t, bw1.Finish())

	bw2 := newSubblockBitWriter(&buf2)
	require.NoError(t, lzwEncode(bw2, 8, data))
	require.NoError(t, bw2.Finish())

	assert.Equal(t, buf1.Bytes(), buf2.Bytes())
}

// TestLZWFullDictionaryStress covers spec §8's "full-dictionary stress"
// scenario: an input large enough to force the encoder through the
// deferred-clear path (dictionary fills, current match is non-literal).
// The dictionary fills once; every match after that is non-literal, so
// the rest of the input is emitted at the full code size without a clear.
func TestLZWFullDictionaryStress(t *testing.T) {
	const width, height = 1087, 64
	data := make([]byte, width*height)
	// A pattern with enough local repetition to grow long matches (and
	// so exhaust the 4096-entry dictionary) but not so regular that the
	// whole buffer collapses into one run.
	for i := range data {
		data[i] = byte((i / 3) % 251 % 256)
	}

	out, _ := roundTripLZW(t, 8, data)
	assert.Equal(t, data, out)
}

// TestLZWFullDictionaryStressEndsOnLiteral covers spec.md §4.3.3 step
// 3's deferred-clear rule applying uniformly whether a match stops
// because the next byte didn't extend it or because the input simply
// ran out: the buffer is large enough to fill the dictionary and is
// built so the final byte is a literal that was never extended.
func TestLZWFullDictionaryStressEndsOnLiteral(t *testing.T) {
	const width, height = 1087, 64
	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte((i / 3) % 251 % 256)
	}
	data[len(data)-1] = 255 // a byte value the preceding pattern never produces

	out, _ := roundTripLZW(t, 8, data)
	assert.Equal(t, data, out)
}

// TestLZWDecodeRejectsOverflow covers spec property 4.
func TestLZWDecodeRejectsOverflow(t *testing.T) {
	data := []byte{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3}
	var buf bytes.Buffer
	bw := newSubblockBitWriter(&buf)
	require.NoError(t, lzwEncode(bw, 2, data))
	require.NoError(t, bw.Finish())

	br := newSubblockBitReader(bytes.NewReader(buf.Bytes()))
	_, err := lzwDecode(br, 2, len(data)-1) // declare a shorter buffer than the stream actually holds
	require.Error(t, err)
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}

// TestLZWDecodeRejectsUnderflow covers spec property 5: a stream that
// reaches the end code before the output buffer is filled is Malformed.
func TestLZWDecodeRejectsUnderflow(t *testing.T) {
	const minCodeSize = 2
	var buf bytes.Buffer
	bw := newSubblockBitWriter(&buf)
	clearCode := uint16(1 << minCodeSize)
	endCode := clearCode + 1
	require.NoError(t, bw.writeCode(clearCode, minCodeSize+1))
	require.NoError(t, bw.writeCode(0, minCodeSize+1)) // one literal byte only
	require.NoError(t, bw.writeCode(endCode, minCodeSize+1))
	require.NoError(t, bw.Finish())

	br := newSubblockBitReader(bytes.NewReader(buf.Bytes()))
	_, err := lzwDecode(br, minCodeSize, 5) // declare more bytes than the stream supplies
	require.Error(t, err)
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}

// TestLZWDecodeRejectsInvalidCode exercises the "code > free_code"
// Malformed path (spec.md §4.3.2 step 5).
func TestLZWDecodeRejectsInvalidCode(t *testing.T) {
	const minCodeSize = 2
	var buf bytes.Buffer
	bw := newSubblockBitWriter(&buf)
	clearCode := uint16(1 << minCodeSize)
	require.NoError(t, bw.writeCode(clearCode, minCodeSize+1))
	// free_code is end_code(5) right after a clear, so 6 (a value the
	// current 3-bit code size can carry) is beyond anything this
	// dictionary could have allocated yet.
	require.NoError(t, bw.writeCode(6, minCodeSize+1))
	require.NoError(t, bw.Finish())

	br := newSubblockBitReader(bytes.NewReader(buf.Bytes()))
	_, err := lzwDecode(br, minCodeSize, 10)
	require.Error(t, err)
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}

func TestMinCodeSizeFor(t *testing.T) {
	cases := []struct {
		data []byte
		want int
	}{
		{[]byte{0, 0, 0}, 2},
		{[]byte{0, 1, 2, 3}, 2},
		{[]byte{0, 1, 2, 3, 4}, 3},
		{[]byte{255}, 8},
		{[]byte{16}, 5},
		{nil, 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, minCodeSizeFor(c.data))
	}
}
