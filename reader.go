package gif

import (
	"encoding/binary"
	"io"
)

// Reader pulls one typed part at a time from a GIF byte stream, per
// spec.md §4.1. Grounded on the teacher's decoder struct (decoder.go):
// a small struct wrapping the input plus whatever state is needed to
// continue, constructed once via NewReader the way newDecoder wraps an
// io.Reader before any parsing begins — generalized from the teacher's
// single-shot, random-access directory parse to a strictly sequential
// pull parser, since GIF (unlike TIFF) has no up-front directory to
// read.
type Reader struct {
	r io.Reader

	phase Phase
	err   error

	version Version

	closeUnderlying bool
	closer          io.Closer

	globalColorTableSize int // entries; 0 if no GCT declared
	activeColorTableSize int // entries; size of the table governing the image in progress

	imgWidth, imgHeight int

	blockLabel blockLabel
	extLabel   extLabel

	peekedLabel byte
	havePeeked  bool
}

// ReaderOption configures a Reader constructed by NewReader.
type ReaderOption func(*Reader)

// WithCloseUnderlying makes Close also close the underlying stream, if
// it implements io.Closer.
func WithCloseUnderlying(close bool) ReaderOption {
	return func(r *Reader) { r.closeUnderlying = close }
}

// NewReader constructs a Reader positioned at PhaseHeader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	rd := &Reader{r: r, phase: PhaseHeader}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Close releases the Reader's resources, optionally closing the
// underlying stream (see WithCloseUnderlying).
func (r *Reader) Close() error {
	if r.closeUnderlying && r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Err returns the sticky failure that put the Reader in PhaseError, or
// nil.
func (r *Reader) Err() error {
	return r.err
}

// Phase returns the Reader's current position in the state machine.
func (r *Reader) Phase() Phase {
	return r.phase
}

// Version returns the container version read from the header. It is
// only meaningful once ReadHeader has returned successfully.
func (r *Reader) Version() Version {
	return r.version
}

func (r *Reader) fail(err error) error {
	r.phase = PhaseError
	r.err = err
	return err
}

func (r *Reader) readFull(op string, p []byte) error {
	if _, err := io.ReadFull(r.r, p); err != nil {
		return r.fail(wrapIO(op, err))
	}
	return nil
}

// PeekPart reports the kind of part the caller must read next, per
// spec.md §4.1. It is the only part of the Reader that consumes a byte
// without a matching exported Read method: while at
// PhaseAwaitingBlockLabel it reads and caches the one disambiguating
// framing byte, so repeated calls before the matching Read method is
// invoked are free.
func (r *Reader) PeekPart() (PartKind, error) {
	const op = "PeekPart"
	switch r.phase {
	case PhaseHeader:
		return PartHeader, nil
	case PhaseLogicalScreen:
		return PartLogicalScreenDescriptor, nil
	case PhaseGlobalColorTable:
		return PartGlobalColorTable, nil
	case PhaseImageDescriptor:
		return PartImageDescriptor, nil
	case PhaseLocalColorTable:
		return PartLocalColorTable, nil
	case PhaseImageData:
		return PartImageData, nil
	case PhaseExtensionLabel:
		return PartExtensionLabel, nil
	case PhaseBlockBody, PhaseSubblockStream:
		return PartSubblock, nil
	case PhaseDone:
		return PartTrailer, nil
	case PhaseAwaitingBlockLabel:
		if !r.havePeeked {
			var b [1]byte
			if err := r.readFull(op, b[:]); err != nil {
				return 0, err
			}
			r.peekedLabel = b[0]
			r.havePeeked = true
			switch b[0] {
			case blockExtension:
				r.blockLabel = labelExtensionIntroducer
			case blockImageSeparator:
				r.blockLabel = labelImageSeparator
			case blockTrailer:
				r.blockLabel = labelTrailer
			default:
				return 0, r.fail(malformed(op, "unknown block label"))
			}
		}
		return r.peekedKind(), nil
	default: // PhaseError, and phases the Reader never sets
		return 0, invalidState(op, r.phase)
	}
}

func (r *Reader) peekedKind() PartKind {
	switch r.peekedLabel {
	case blockExtension:
		return PartExtensionLabel
	case blockImageSeparator:
		return PartImageDescriptor
	default: // blockTrailer
		return PartTrailer
	}
}

// consumeBlockLabel returns the label most recently peeked at
// PhaseAwaitingBlockLabel, calling PeekPart first if necessary, and
// clears the peek cache so the next arrival at PhaseAwaitingBlockLabel
// starts fresh.
func (r *Reader) consumeBlockLabel(op string) (blockLabel, error) {
	if r.phase != PhaseAwaitingBlockLabel {
		return 0, invalidState(op, r.phase)
	}
	if !r.havePeeked {
		if _, err := r.PeekPart(); err != nil {
			return 0, err
		}
	}
	label := r.blockLabel
	r.havePeeked = false
	r.blockLabel = labelNone
	return label, nil
}

// ReadHeader reads the six-byte "GIFxxx" signature and version.
func (r *Reader) ReadHeader() (Version, error) {
	const op = "ReadHeader"
	if r.phase != PhaseHeader {
		return 0, invalidState(op, r.phase)
	}
	var b [6]byte
	if err := r.readFull(op, b[:]); err != nil {
		return 0, err
	}
	if string(b[0:3]) != signature {
		return 0, r.fail(malformed(op, "bad signature"))
	}
	v, err := ParseVersion([3]byte{b[3], b[4], b[5]})
	if err != nil {
		return 0, r.fail(err)
	}
	r.version = v
	r.phase = PhaseLogicalScreen
	return v, nil
}

// ReadLogicalScreenDescriptor reads the 7-byte logical screen
// descriptor.
func (r *Reader) ReadLogicalScreenDescriptor() (LogicalScreenDescriptor, error) {
	const op = "ReadLogicalScreenDescriptor"
	var d LogicalScreenDescriptor
	if r.phase != PhaseLogicalScreen {
		return d, invalidState(op, r.phase)
	}
	var b [7]byte
	if err := r.readFull(op, b[:]); err != nil {
		return d, err
	}
	d.Width = binary.LittleEndian.Uint16(b[0:2])
	d.Height = binary.LittleEndian.Uint16(b[2:4])
	packed := b[4]
	d.HasGlobalColorTable = packed&packedHasColorTableMask != 0
	d.ColorResolution = (packed >> 4) & 0x07
	d.Sorted = packed&0x08 != 0
	d.GlobalColorTableSize = packed & packedColorTableSizeMask
	d.BackgroundColorIndex = b[5]
	d.PixelAspectRatio = b[6]

	if r.version < Version89a && (d.Sorted || d.PixelAspectRatio != 0) {
		return LogicalScreenDescriptor{}, r.fail(malformed(op, "sorted bit or pixel aspect ratio set before version 89a"))
	}

	if d.HasGlobalColorTable {
		r.globalColorTableSize = d.GlobalColorTableEntryCount()
		r.activeColorTableSize = r.globalColorTableSize
		r.phase = PhaseGlobalColorTable
	} else {
		r.globalColorTableSize = 0
		r.phase = PhaseAwaitingBlockLabel
	}
	return d, nil
}

// ReadColorTable reads 3*N bytes as RGB triples, where N is the global
// or local entry count recorded by the preceding descriptor.
func (r *Reader) ReadColorTable() (ColorTable, error) {
	const op = "ReadColorTable"
	var entryCount int
	var isGlobal bool
	switch r.phase {
	case PhaseGlobalColorTable:
		entryCount, isGlobal = r.globalColorTableSize, true
	case PhaseLocalColorTable:
		entryCount = r.activeColorTableSize
	default:
		return ColorTable{}, invalidState(op, r.phase)
	}

	buf := make([]byte, 3*entryCount)
	if err := r.readFull(op, buf); err != nil {
		return ColorTable{}, err
	}
	entries := make([]Color, entryCount)
	for i := range entries {
		entries[i] = Color{R: buf[3*i], G: buf[3*i+1], B: buf[3*i+2]}
	}

	if isGlobal {
		r.phase = PhaseAwaitingBlockLabel
	} else {
		r.phase = PhaseImageData
	}
	return ColorTable{Entries: entries}, nil
}

// ReadImageDescriptor consumes the already-peeked 0x2C separator and
// reads the following 9 bytes.
func (r *Reader) ReadImageDescriptor() (ImageDescriptor, error) {
	const op = "ReadImageDescriptor"
	var d ImageDescriptor
	if r.phase == PhaseAwaitingBlockLabel {
		label, err := r.consumeBlockLabel(op)
		if err != nil {
			return d, err
		}
		if label != labelImageSeparator {
			r.havePeeked, r.blockLabel = true, label
			return d, invalidState(op, r.phase)
		}
		r.phase = PhaseImageDescriptor
	}
	if r.phase != PhaseImageDescriptor {
		return d, invalidState(op, r.phase)
	}

	var b [9]byte
	if err := r.readFull(op, b[:]); err != nil {
		return d, err
	}
	d.Left = binary.LittleEndian.Uint16(b[0:2])
	d.Top = binary.LittleEndian.Uint16(b[2:4])
	d.Width = binary.LittleEndian.Uint16(b[4:6])
	d.Height = binary.LittleEndian.Uint16(b[6:8])
	packed := b[8]
	d.HasLocalColorTable = packed&packedHasColorTableMask != 0
	d.Interlaced = packed&0x40 != 0
	d.Sorted = packed&0x20 != 0
	reserved := (packed >> 3) & 0x03
	d.LocalColorTableSize = packed & packedColorTableSizeMask

	if reserved != 0 {
		return ImageDescriptor{}, r.fail(malformed(op, "reserved bits set in image descriptor"))
	}
	if r.version < Version89a && d.Sorted {
		return ImageDescriptor{}, r.fail(malformed(op, "sorted bit set before version 89a"))
	}

	r.imgWidth, r.imgHeight = int(d.Width), int(d.Height)

	if d.HasLocalColorTable {
		r.activeColorTableSize = d.LocalColorTableEntryCount()
		r.phase = PhaseLocalColorTable
	} else {
		r.activeColorTableSize = r.globalColorTableSize
		r.phase = PhaseImageData
	}
	return d, nil
}

// ReadImageData reads the min_code_size byte and LZW-decodes the image
// data to a width*height linear index buffer.
func (r *Reader) ReadImageData() ([]byte, error) {
	const op = "ReadImageData"
	if r.phase != PhaseImageData {
		return nil, invalidState(op, r.phase)
	}
	var sizeByte [1]byte
	if err := r.readFull(op, sizeByte[:]); err != nil {
		return nil, err
	}
	minCodeSize := int(sizeByte[0])
	if minCodeSize < 2 || minCodeSize > 8 {
		return nil, r.fail(malformed(op, "min_code_size out of range"))
	}

	br := newSubblockBitReader(r.r)
	out, err := lzwDecode(br, minCodeSize, r.imgWidth*r.imgHeight)
	if err != nil {
		return nil, r.fail(err)
	}
	r.phase = PhaseAwaitingBlockLabel
	return out, nil
}

// ReadExtensionLabel consumes the already-peeked 0x21 introducer and
// reads the following one-byte extension label.
func (r *Reader) ReadExtensionLabel() (byte, error) {
	const op = "ReadExtensionLabel"
	if r.phase == PhaseAwaitingBlockLabel {
		label, err := r.consumeBlockLabel(op)
		if err != nil {
			return 0, err
		}
		if label != labelExtensionIntroducer {
			r.havePeeked, r.blockLabel = true, label
			return 0, invalidState(op, r.phase)
		}
		r.phase = PhaseExtensionLabel
	}
	if r.phase != PhaseExtensionLabel {
		return 0, invalidState(op, r.phase)
	}

	var b [1]byte
	if err := r.readFull(op, b[:]); err != nil {
		return 0, err
	}
	label := b[0]

	if !r.version.IsFuture() && !wellKnownLabels87a[label] {
		return 0, r.fail(malformed(op, "unknown extension label"))
	}

	switch label {
	case labelGraphicControl:
		r.extLabel = extGraphicControl
	case labelPlainText:
		r.extLabel = extPlainText
	case labelApplication:
		r.extLabel = extApplication
	case labelComment:
		r.extLabel = extComment
	default:
		r.extLabel = extUnknownFuture
	}
	r.phase = PhaseBlockBody
	return label, nil
}

// ReadGraphicControlExtension reads the size byte, the fixed
// 4-data-byte payload and the terminating zero byte. Only legal immediately after
// ReadExtensionLabel returned 0xF9.
func (r *Reader) ReadGraphicControlExtension() (GraphicControlExtension, error) {
	const op = "ReadGraphicControlExtension"
	var e GraphicControlExtension
	if r.phase != PhaseBlockBody || r.extLabel != extGraphicControl {
		return e, invalidState(op, r.phase)
	}
	if r.version < Version89a {
		return e, r.fail(malformed(op, "graphic control extension requires version 89a or later"))
	}
	var size [1]byte
	if err := r.readFull(op, size[:]); err != nil {
		return e, err
	}
	if size[0] != graphicControlSizeByte {
		return e, r.fail(malformed(op, "bad graphic control size byte"))
	}
	var data [4]byte
	if err := r.readFull(op, data[:]); err != nil {
		return e, err
	}
	packed := data[0]
	reserved := (packed >> 5) & 0x07
	if r.version >= Version89a && reserved != 0 {
		return e, r.fail(malformed(op, "reserved bits set in graphic control extension"))
	}
	e.DisposalMethod = (packed >> 2) & 0x07
	e.UserInput = packed&0x02 != 0
	e.HasTransparent = packed&0x01 != 0
	e.DelayTime = binary.LittleEndian.Uint16(data[1:3])
	e.TransparentColorIndex = data[3]

	var term [1]byte
	if err := r.readFull(op, term[:]); err != nil {
		return e, err
	}
	if term[0] != 0 {
		return e, r.fail(malformed(op, "missing graphic control terminator"))
	}

	r.extLabel = extNone
	r.phase = PhaseAwaitingBlockLabel
	return e, nil
}

// ReadPlainTextExtension reads the fixed 12-data-byte first sub-block.
// Only legal immediately after ReadExtensionLabel returned 0x01.
func (r *Reader) ReadPlainTextExtension() (PlainTextExtension, error) {
	const op = "ReadPlainTextExtension"
	var e PlainTextExtension
	if r.phase != PhaseBlockBody || r.extLabel != extPlainText {
		return e, invalidState(op, r.phase)
	}
	if r.version < Version89a {
		return e, r.fail(malformed(op, "plain text extension requires version 89a or later"))
	}
	var size [1]byte
	if err := r.readFull(op, size[:]); err != nil {
		return e, err
	}
	if size[0] != plainTextSizeByte {
		return e, r.fail(malformed(op, "bad plain text size byte"))
	}
	var b [12]byte
	if err := r.readFull(op, b[:]); err != nil {
		return e, err
	}
	e.Left = binary.LittleEndian.Uint16(b[0:2])
	e.Top = binary.LittleEndian.Uint16(b[2:4])
	e.Width = binary.LittleEndian.Uint16(b[4:6])
	e.Height = binary.LittleEndian.Uint16(b[6:8])
	e.CellWidth = b[8]
	e.CellHeight = b[9]
	e.FgColorIndex = b[10]
	e.BgColorIndex = b[11]

	r.phase = PhaseSubblockStream
	return e, nil
}

// ReadApplicationExtension reads the fixed 11-data-byte first
// sub-block. Only legal immediately after ReadExtensionLabel returned
// 0xFF.
func (r *Reader) ReadApplicationExtension() (ApplicationExtension, error) {
	const op = "ReadApplicationExtension"
	var e ApplicationExtension
	if r.phase != PhaseBlockBody || r.extLabel != extApplication {
		return e, invalidState(op, r.phase)
	}
	if r.version < Version89a {
		return e, r.fail(malformed(op, "application extension requires version 89a or later"))
	}
	var size [1]byte
	if err := r.readFull(op, size[:]); err != nil {
		return e, err
	}
	if size[0] != applicationSizeByte {
		return e, r.fail(malformed(op, "bad application size byte"))
	}
	var b [11]byte
	if err := r.readFull(op, b[:]); err != nil {
		return e, err
	}
	copy(e.Identifier[:], b[0:8])
	copy(e.AuthCode[:], b[8:11])

	r.phase = PhaseSubblockStream
	return e, nil
}

// ReadSubblock reads one length-prefixed sub-block. A zero-length
// sub-block (the terminator) returns (nil, nil) and advances to
// PhaseAwaitingBlockLabel; any other sub-block returns its data and
// leaves the phase at SubblockStream for the next call.
func (r *Reader) ReadSubblock() ([]byte, error) {
	const op = "ReadSubblock"
	if r.phase != PhaseBlockBody && r.phase != PhaseSubblockStream {
		return nil, invalidState(op, r.phase)
	}
	var size [1]byte
	if err := r.readFull(op, size[:]); err != nil {
		return nil, err
	}
	if size[0] == 0 {
		r.extLabel = extNone
		r.phase = PhaseAwaitingBlockLabel
		return nil, nil
	}
	data := make([]byte, size[0])
	if err := r.readFull(op, data); err != nil {
		return nil, err
	}
	r.phase = PhaseSubblockStream
	return data, nil
}

// ReadNetscapeSubblock reads one Netscape 2.0 application sub-block,
// decoding the looping or buffering payload. Exactly one of the two
// return pointers is non-nil on success with data, both nil at the
// terminator. Only legal while the most recently read extension label
// is the application extension.
func (r *Reader) ReadNetscapeSubblock() (*NetscapeLooping, *NetscapeBuffering, error) {
	const op = "ReadNetscapeSubblock"
	if (r.phase != PhaseBlockBody && r.phase != PhaseSubblockStream) || r.extLabel != extApplication {
		return nil, nil, invalidState(op, r.phase)
	}
	var size [1]byte
	if err := r.readFull(op, size[:]); err != nil {
		return nil, nil, err
	}
	if size[0] == 0 {
		r.extLabel = extNone
		r.phase = PhaseAwaitingBlockLabel
		return nil, nil, nil
	}
	data := make([]byte, size[0])
	if err := r.readFull(op, data); err != nil {
		return nil, nil, err
	}
	if len(data) < 1 {
		return nil, nil, r.fail(malformed(op, "empty netscape sub-block"))
	}
	id, payload := data[0], data[1:]
	switch id {
	case netscapeLooping:
		if len(data) != 3 {
			return nil, nil, r.fail(malformed(op, "bad netscape looping sub-block size"))
		}
		r.phase = PhaseSubblockStream
		return &NetscapeLooping{LoopCount: binary.LittleEndian.Uint16(payload)}, nil, nil
	case netscapeBuffering:
		if len(data) != 5 {
			return nil, nil, r.fail(malformed(op, "bad netscape buffering sub-block size"))
		}
		r.phase = PhaseSubblockStream
		return nil, &NetscapeBuffering{BufferLength: binary.LittleEndian.Uint32(payload)}, nil
	default:
		return nil, nil, r.fail(malformed(op, "unknown netscape sub-block identifier"))
	}
}

// ReadTrailer consumes the already-peeked 0x3B trailer byte and moves
// the Reader to PhaseDone.
func (r *Reader) ReadTrailer() error {
	const op = "ReadTrailer"
	if r.phase != PhaseAwaitingBlockLabel {
		return invalidState(op, r.phase)
	}
	label, err := r.consumeBlockLabel(op)
	if err != nil {
		return err
	}
	if label != labelTrailer {
		r.havePeeked, r.blockLabel = true, label
		return invalidState(op, r.phase)
	}
	r.phase = PhaseDone
	return nil
}
