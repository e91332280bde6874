package gif

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubblockBitWriterFlushesAt255(t *testing.T) {
	var buf bytes.Buffer
	bw := newSubblockBitWriter(&buf)
	for i := 0; i < 255; i++ {
		require.NoError(t, bw.writeCode(uint16(i%2), 8))
	}
	require.NoError(t, bw.Finish())

	b := buf.Bytes()
	require.True(t, len(b) >= 256)
	assert.Equal(t, byte(255), b[0], "first sub-block should be a full 255-byte block")
}

func TestSubblockBitReaderWriterRoundTrip(t *testing.T) {
	codes := []struct {
		code uint16
		size uint
	}{
		{4, 3}, {0, 3}, {1, 3}, {5, 3},
	}

	var buf bytes.Buffer
	bw := newSubblockBitWriter(&buf)
	for _, c := range codes {
		require.NoError(t, bw.writeCode(c.code, c.size))
	}
	require.NoError(t, bw.Finish())

	br := newSubblockBitReader(bytes.NewReader(buf.Bytes()))
	for _, c := range codes {
		got, err := br.readCode(c.size)
		require.NoError(t, err)
		assert.Equal(t, c.code, got)
	}
}

func TestSubblockBitReaderRejectsTruncatedStream(t *testing.T) {
	// length byte 0x02, two data bytes, then the stream ends where the
	// next sub-block's length byte was expected.
	data := []byte{0x02, 0xff, 0xff}
	br := newSubblockBitReader(bytes.NewReader(data))
	// Consume the 16 bits available, then ask for more: the stream ends
	// (io.EOF) rather than hitting a zero-length sub-block, so this
	// exercises truncation; see TestSubblockBitReaderFillRejectsZeroLengthMidCode
	// for the zero-length-mid-code case.
	_, err := br.readCode(12)
	require.NoError(t, err)
	_, err = br.readCode(12)
	assert.Error(t, err)
}

func TestSubblockBitReaderFillRejectsZeroLengthMidCode(t *testing.T) {
	// First sub-block: one byte, not enough bits for a 12-bit code, and
	// the next sub-block is immediately the zero-length terminator.
	data := []byte{0x01, 0xff, 0x00}
	br := newSubblockBitReader(bytes.NewReader(data))
	_, err := br.readCode(12)
	require.Error(t, err)
	var malformed *MalformedError
	assert.ErrorAs(t, err, &malformed)
}
