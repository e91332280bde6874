package gif

import (
	"encoding/binary"
	"io"
)

// Writer is the push-side mirror of Reader: callers supply each part in
// the same order a Reader would yield them, and the Writer validates
// and serializes it. Grounded on the teacher's decoder construction
// pattern (decoder.go): a thin struct wrapping the destination plus
// whatever state the next call needs, built the same way but inverted
// for emission instead of consumption.
type Writer struct {
	w io.Writer

	phase Phase
	err   error

	version Version

	closeUnderlying bool
	closer          io.Closer

	globalColorTableSize int
	activeColorTableSize int

	imgWidth, imgHeight int

	extLabel extLabel

	imageBitWriter *subblockBitWriter
}

// WriterOption configures a Writer constructed by NewWriter.
type WriterOption func(*Writer)

// WithCloseUnderlyingWriter makes Close also close the underlying
// stream, if it implements io.Closer.
func WithCloseUnderlyingWriter(close bool) WriterOption {
	return func(w *Writer) { w.closeUnderlying = close }
}

// NewWriter constructs a Writer positioned at PhaseHeader.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	wr := &Writer{w: w, phase: PhaseHeader}
	if c, ok := w.(io.Closer); ok {
		wr.closer = c
	}
	for _, opt := range opts {
		opt(wr)
	}
	return wr
}

// Close releases the Writer's resources, optionally closing the
// underlying stream (see WithCloseUnderlyingWriter).
func (w *Writer) Close() error {
	if w.closeUnderlying && w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Err returns the sticky failure that put the Writer in PhaseError, or
// nil.
func (w *Writer) Err() error {
	return w.err
}

// Phase returns the Writer's current position in the state machine.
func (w *Writer) Phase() Phase {
	return w.phase
}

func (w *Writer) fail(err error) error {
	w.phase = PhaseError
	w.err = err
	return err
}

func (w *Writer) writeAll(op string, p []byte) error {
	if _, err := w.w.Write(p); err != nil {
		return w.fail(wrapIO(op, err))
	}
	return nil
}

// WriteHeader writes the six-byte "GIFxxx" signature and version.
func (w *Writer) WriteHeader(v Version) error {
	const op = "WriteHeader"
	if w.phase != PhaseHeader {
		return invalidState(op, w.phase)
	}
	vb, err := v.Bytes()
	if err != nil {
		return err
	}
	var b [6]byte
	copy(b[0:3], signature)
	copy(b[3:6], vb[:])
	if err := w.writeAll(op, b[:]); err != nil {
		return err
	}
	w.version = v
	w.phase = PhaseLogicalScreen
	return nil
}

// WriteLogicalScreenDescriptor writes the 7-byte logical screen
// descriptor.
func (w *Writer) WriteLogicalScreenDescriptor(d LogicalScreenDescriptor) error {
	const op = "WriteLogicalScreenDescriptor"
	if w.phase != PhaseLogicalScreen {
		return invalidState(op, w.phase)
	}
	if d.ColorResolution > 0x07 {
		return invalidArgument(op, "color resolution must fit in 3 bits")
	}
	if d.GlobalColorTableSize > 0x07 {
		return invalidArgument(op, "global color table size must fit in 3 bits")
	}
	if w.version < Version89a && (d.Sorted || d.PixelAspectRatio != 0) {
		return invalidArgument(op, "sorted bit or pixel aspect ratio cannot be set before version 89a")
	}

	var b [7]byte
	binary.LittleEndian.PutUint16(b[0:2], d.Width)
	binary.LittleEndian.PutUint16(b[2:4], d.Height)
	packed := (d.ColorResolution&0x07)<<4 | d.GlobalColorTableSize&packedColorTableSizeMask
	if d.HasGlobalColorTable {
		packed |= packedHasColorTableMask
	}
	if d.Sorted {
		packed |= 0x08
	}
	b[4] = packed
	b[5] = d.BackgroundColorIndex
	b[6] = d.PixelAspectRatio
	if err := w.writeAll(op, b[:]); err != nil {
		return err
	}

	if d.HasGlobalColorTable {
		w.globalColorTableSize = d.GlobalColorTableEntryCount()
		w.activeColorTableSize = w.globalColorTableSize
		w.phase = PhaseGlobalColorTable
	} else {
		w.globalColorTableSize = 0
		w.phase = PhaseAwaitingBlockLabel
	}
	return nil
}

// WriteColorTable writes a color table against the global or local
// count declared by the preceding descriptor. A table with fewer
// entries than declared is padded with black, per spec.md §4.2;
// supplying more than declared fails InvalidArgument.
func (w *Writer) WriteColorTable(t ColorTable) error {
	const op = "WriteColorTable"
	var want int
	var isGlobal bool
	switch w.phase {
	case PhaseGlobalColorTable:
		want, isGlobal = w.globalColorTableSize, true
	case PhaseLocalColorTable:
		want = w.activeColorTableSize
	default:
		return invalidState(op, w.phase)
	}
	if t.Size() > want {
		return invalidArgument(op, "color table entry count exceeds declared size")
	}
	entries := padColorTable(t.Entries, want)

	buf := make([]byte, 3*len(entries))
	for i, c := range entries {
		buf[3*i] = c.R
		buf[3*i+1] = c.G
		buf[3*i+2] = c.B
	}
	if err := w.writeAll(op, buf); err != nil {
		return err
	}

	if isGlobal {
		w.phase = PhaseAwaitingBlockLabel
	} else {
		w.phase = PhaseImageData
	}
	return nil
}

// WriteImageDescriptor writes the 0x2C separator and the following 9
// bytes.
func (w *Writer) WriteImageDescriptor(d ImageDescriptor) error {
	const op = "WriteImageDescriptor"
	if w.phase != PhaseAwaitingBlockLabel {
		return invalidState(op, w.phase)
	}
	if d.LocalColorTableSize > 0x07 {
		return invalidArgument(op, "local color table size must fit in 3 bits")
	}
	if w.version < Version89a && d.Sorted {
		return invalidArgument(op, "sorted bit cannot be set before version 89a")
	}

	var b [10]byte
	b[0] = blockImageSeparator
	binary.LittleEndian.PutUint16(b[1:3], d.Left)
	binary.LittleEndian.PutUint16(b[3:5], d.Top)
	binary.LittleEndian.PutUint16(b[5:7], d.Width)
	binary.LittleEndian.PutUint16(b[7:9], d.Height)
	packed := d.LocalColorTableSize & packedColorTableSizeMask
	if d.HasLocalColorTable {
		packed |= packedHasColorTableMask
	}
	if d.Interlaced {
		packed |= 0x40
	}
	if d.Sorted {
		packed |= 0x20
	}
	b[9] = packed
	if err := w.writeAll(op, b[:]); err != nil {
		return err
	}

	w.imgWidth, w.imgHeight = int(d.Width), int(d.Height)

	if d.HasLocalColorTable {
		w.activeColorTableSize = d.LocalColorTableEntryCount()
		w.phase = PhaseLocalColorTable
	} else {
		w.activeColorTableSize = w.globalColorTableSize
		w.phase = PhaseImageData
	}
	return nil
}

// WriteImageData encodes data (a width*height linear index buffer) as
// a complete LZW image data block in one call, choosing min_code_size
// via minCodeSizeFor. For incremental encoding of very large images,
// use WriteImageDataStreaming instead.
func (w *Writer) WriteImageData(data []byte) error {
	const op = "WriteImageData"
	if w.phase != PhaseImageData {
		return invalidState(op, w.phase)
	}
	if len(data) != w.imgWidth*w.imgHeight {
		return invalidArgument(op, "image data length does not match declared dimensions")
	}

	minCodeSize := minCodeSizeFor(data)
	if err := w.writeAll(op, []byte{byte(minCodeSize)}); err != nil {
		return err
	}
	bw := newSubblockBitWriter(w.w)
	if err := lzwEncode(bw, minCodeSize, data); err != nil {
		return w.fail(err)
	}
	if err := bw.Finish(); err != nil {
		return w.fail(err)
	}

	w.phase = PhaseAwaitingBlockLabel
	return nil
}

// WriteImageDataStreaming begins a streaming image data block, writing
// the min_code_size byte and returning an io.WriteCloser that LZW-
// encodes and sub-block-frames whatever index bytes are written to it;
// Close finalizes the block and advances the Writer's phase. Use this
// for images too large to buffer in full.
func (w *Writer) WriteImageDataStreaming(minCodeSize int) (io.WriteCloser, error) {
	const op = "WriteImageDataStreaming"
	if w.phase != PhaseImageData {
		return nil, invalidState(op, w.phase)
	}
	if minCodeSize < 2 || minCodeSize > 8 {
		return nil, invalidArgument(op, "min_code_size must be in 2..=8")
	}
	if err := w.writeAll(op, []byte{byte(minCodeSize)}); err != nil {
		return nil, err
	}
	bw := newSubblockBitWriter(w.w)
	w.imageBitWriter = bw
	return &streamingImageWriter{w: w, bw: bw, minCodeSize: minCodeSize}, nil
}

// streamingImageWriter is the io.WriteCloser returned by
// WriteImageDataStreaming. Each Write call runs one lzwEncode pass over
// the bytes it was given, extending the shared dictionary state would
// require restructuring lzwEncode around a persistent encoder; instead
// each chunk is encoded as its own LZW segment separated by an implicit
// clear, which is valid per spec.md §4.3.3 (a decoder never requires
// the encoder to avoid emitting extra clears).
type streamingImageWriter struct {
	w           *Writer
	bw          *subblockBitWriter
	minCodeSize int
	closed      bool
}

func (s *streamingImageWriter) Write(p []byte) (int, error) {
	if s.closed {
		return 0, invalidState("WriteImageDataStreaming", s.w.phase)
	}
	if err := lzwEncode(s.bw, s.minCodeSize, p); err != nil {
		return 0, s.w.fail(err)
	}
	return len(p), nil
}

func (s *streamingImageWriter) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.bw.Finish(); err != nil {
		return s.w.fail(err)
	}
	s.w.imageBitWriter = nil
	s.w.phase = PhaseAwaitingBlockLabel
	return nil
}

// WriteExtensionLabel writes the 0x21 introducer and the given
// extension label byte.
func (w *Writer) WriteExtensionLabel(label byte) error {
	const op = "WriteExtensionLabel"
	if w.phase != PhaseAwaitingBlockLabel {
		return invalidState(op, w.phase)
	}
	if !w.version.IsFuture() && !wellKnownLabels87a[label] {
		return invalidArgument(op, "unknown extension label")
	}
	if err := w.writeAll(op, []byte{blockExtension, label}); err != nil {
		return err
	}
	switch label {
	case labelGraphicControl:
		w.extLabel = extGraphicControl
	case labelPlainText:
		w.extLabel = extPlainText
	case labelApplication:
		w.extLabel = extApplication
	case labelComment:
		w.extLabel = extComment
	default:
		w.extLabel = extUnknownFuture
	}
	w.phase = PhaseBlockBody
	return nil
}

// WriteGraphicControlExtension writes the size byte, the fixed
// 4-data-byte payload and the terminating zero byte. Only legal immediately after
// WriteExtensionLabel(0xF9).
func (w *Writer) WriteGraphicControlExtension(e GraphicControlExtension) error {
	const op = "WriteGraphicControlExtension"
	if w.phase != PhaseBlockBody || w.extLabel != extGraphicControl {
		return invalidState(op, w.phase)
	}
	if w.version < Version89a {
		return invalidArgument(op, "graphic control extension requires version 89a or later")
	}
	if e.DisposalMethod > 0x07 {
		return invalidArgument(op, "disposal method must fit in 3 bits")
	}

	var b [6]byte
	b[0] = graphicControlSizeByte
	packed := (e.DisposalMethod & 0x07) << 2
	if e.UserInput {
		packed |= 0x02
	}
	if e.HasTransparent {
		packed |= 0x01
	}
	b[1] = packed
	binary.LittleEndian.PutUint16(b[2:4], e.DelayTime)
	b[4] = e.TransparentColorIndex
	b[5] = 0
	if err := w.writeAll(op, b[:]); err != nil {
		return err
	}

	w.extLabel = extNone
	w.phase = PhaseAwaitingBlockLabel
	return nil
}

// WritePlainTextExtension writes the fixed 12-data-byte first
// sub-block. Only legal immediately after WriteExtensionLabel(0x01).
func (w *Writer) WritePlainTextExtension(e PlainTextExtension) error {
	const op = "WritePlainTextExtension"
	if w.phase != PhaseBlockBody || w.extLabel != extPlainText {
		return invalidState(op, w.phase)
	}
	if w.version < Version89a {
		return invalidArgument(op, "plain text extension requires version 89a or later")
	}
	var b [13]byte
	b[0] = plainTextSizeByte
	binary.LittleEndian.PutUint16(b[1:3], e.Left)
	binary.LittleEndian.PutUint16(b[3:5], e.Top)
	binary.LittleEndian.PutUint16(b[5:7], e.Width)
	binary.LittleEndian.PutUint16(b[7:9], e.Height)
	b[9] = e.CellWidth
	b[10] = e.CellHeight
	b[11] = e.FgColorIndex
	b[12] = e.BgColorIndex
	if err := w.writeAll(op, b[:]); err != nil {
		return err
	}

	w.phase = PhaseSubblockStream
	return nil
}

// WriteApplicationExtension writes the fixed 11-data-byte first
// sub-block. Only legal immediately after WriteExtensionLabel(0xFF).
func (w *Writer) WriteApplicationExtension(e ApplicationExtension) error {
	const op = "WriteApplicationExtension"
	if w.phase != PhaseBlockBody || w.extLabel != extApplication {
		return invalidState(op, w.phase)
	}
	if w.version < Version89a {
		return invalidArgument(op, "application extension requires version 89a or later")
	}
	var b [12]byte
	b[0] = applicationSizeByte
	copy(b[1:9], e.Identifier[:])
	copy(b[9:12], e.AuthCode[:])
	if err := w.writeAll(op, b[:]); err != nil {
		return err
	}

	w.phase = PhaseSubblockStream
	return nil
}

// WriteSubblock writes one length-prefixed sub-block; data must be at
// most 255 bytes and non-empty (an empty slice fails InvalidArgument;
// the terminator is written by WriteBlockTerminator).
func (w *Writer) WriteSubblock(data []byte) error {
	const op = "WriteSubblock"
	if w.phase != PhaseBlockBody && w.phase != PhaseSubblockStream {
		return invalidState(op, w.phase)
	}
	if len(data) == 0 || len(data) > 255 {
		return invalidArgument(op, "sub-block data length must be in 1..=255")
	}
	buf := make([]byte, 0, 1+len(data))
	buf = append(buf, byte(len(data)))
	buf = append(buf, data...)
	if err := w.writeAll(op, buf); err != nil {
		return err
	}
	w.phase = PhaseSubblockStream
	return nil
}

// WriteBlockTerminator writes the zero-length sub-block that ends an
// extension's sub-block stream.
func (w *Writer) WriteBlockTerminator() error {
	const op = "WriteBlockTerminator"
	if w.phase != PhaseBlockBody && w.phase != PhaseSubblockStream {
		return invalidState(op, w.phase)
	}
	if err := w.writeAll(op, []byte{0}); err != nil {
		return err
	}
	w.extLabel = extNone
	w.phase = PhaseAwaitingBlockLabel
	return nil
}

// WriteNetscapeSubblock writes one Netscape 2.0 application sub-block
// encoding either a looping or a buffering payload. Exactly one of
// looping/buffering must be non-nil. Only legal while the most
// recently written extension label is the application extension.
func (w *Writer) WriteNetscapeSubblock(looping *NetscapeLooping, buffering *NetscapeBuffering) error {
	const op = "WriteNetscapeSubblock"
	if (w.phase != PhaseBlockBody && w.phase != PhaseSubblockStream) || w.extLabel != extApplication {
		return invalidState(op, w.phase)
	}
	if (looping == nil) == (buffering == nil) {
		return invalidArgument(op, "exactly one of looping or buffering must be given")
	}

	var data []byte
	if looping != nil {
		data = make([]byte, 3)
		data[0] = netscapeLooping
		binary.LittleEndian.PutUint16(data[1:3], looping.LoopCount)
	} else {
		data = make([]byte, 5)
		data[0] = netscapeBuffering
		binary.LittleEndian.PutUint32(data[1:5], buffering.BufferLength)
	}

	buf := make([]byte, 0, 1+len(data))
	buf = append(buf, byte(len(data)))
	buf = append(buf, data...)
	if err := w.writeAll(op, buf); err != nil {
		return err
	}
	w.phase = PhaseSubblockStream
	return nil
}

// WriteTrailer writes the 0x3B trailer byte and moves the Writer to
// PhaseDone.
func (w *Writer) WriteTrailer() error {
	const op = "WriteTrailer"
	if w.phase != PhaseAwaitingBlockLabel {
		return invalidState(op, w.phase)
	}
	if err := w.writeAll(op, []byte{blockTrailer}); err != nil {
		return err
	}
	w.phase = PhaseDone
	return nil
}
