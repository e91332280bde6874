package gif

// Record types for the fixed-width descriptors and extensions named in
// SPEC_FULL.md §6.1. These are pure value-carrying structs: the codec
// preserves their fields bit-for-bit but assigns them no further
// behavior, per spec.md §1 ("specified only by their externally visible
// fields"). Grounded on the teacher's tag.go, which likewise reduces an
// IFD entry to a struct of plain fields (id/datatype/val) with no
// embedded parsing logic of its own.

// LogicalScreenDescriptor is the 7-byte record following the header.
type LogicalScreenDescriptor struct {
	Width                uint16
	Height               uint16
	HasGlobalColorTable  bool
	ColorResolution      uint8 // 3 bits
	Sorted               bool
	GlobalColorTableSize uint8 // 3 bits; entry count is 2 << size
	BackgroundColorIndex uint8
	PixelAspectRatio     uint8
}

// GlobalColorTableEntryCount returns 2 << size, the color table length
// declared by this descriptor.
func (d LogicalScreenDescriptor) GlobalColorTableEntryCount() int {
	return 2 << d.GlobalColorTableSize
}

// ImageDescriptor is the 10-byte record (including the 0x2C separator)
// introducing one image's data.
type ImageDescriptor struct {
	Left                uint16
	Top                 uint16
	Width               uint16
	Height              uint16
	HasLocalColorTable  bool
	Interlaced          bool
	Sorted              bool
	LocalColorTableSize uint8 // 3 bits; entry count is 2 << size
}

// LocalColorTableEntryCount returns 2 << size.
func (d ImageDescriptor) LocalColorTableEntryCount() int {
	return 2 << d.LocalColorTableSize
}

// GraphicControlExtension is the fixed 4-data-byte payload of a 0xF9
// extension (label + size byte + terminator are framing, not part of
// this record).
type GraphicControlExtension struct {
	DisposalMethod  uint8 // 3 bits
	UserInput       bool
	HasTransparent  bool
	DelayTime       uint16
	TransparentColorIndex uint8
}

// PlainTextExtension is the fixed 12-data-byte first sub-block of a 0x01
// extension.
type PlainTextExtension struct {
	Left       uint16
	Top        uint16
	Width      uint16
	Height     uint16
	CellWidth  uint8
	CellHeight uint8
	FgColorIndex uint8
	BgColorIndex uint8
}

// ApplicationExtension is the fixed 11-data-byte first sub-block of a
// 0xFF extension.
type ApplicationExtension struct {
	Identifier [8]byte
	AuthCode   [3]byte
}

// NetscapeLooping is the decoded payload of a Netscape 2.0 looping
// sub-block (identifier 0x01).
type NetscapeLooping struct {
	LoopCount uint16
}

// NetscapeBuffering is the decoded payload of a Netscape 2.0 buffering
// sub-block (identifier 0x02).
type NetscapeBuffering struct {
	BufferLength uint32
}

// PartKind identifies which part PeekPart determined must be read next.
type PartKind int

const (
	PartHeader PartKind = iota
	PartLogicalScreenDescriptor
	PartGlobalColorTable
	PartExtensionLabel
	PartImageDescriptor
	PartLocalColorTable
	PartImageData
	PartSubblock
	PartTrailer
)

func (k PartKind) String() string {
	switch k {
	case PartHeader:
		return "Header"
	case PartLogicalScreenDescriptor:
		return "LogicalScreenDescriptor"
	case PartGlobalColorTable:
		return "GlobalColorTable"
	case PartExtensionLabel:
		return "ExtensionLabel"
	case PartImageDescriptor:
		return "ImageDescriptor"
	case PartLocalColorTable:
		return "LocalColorTable"
	case PartImageData:
		return "ImageData"
	case PartSubblock:
		return "Subblock"
	case PartTrailer:
		return "Trailer"
	default:
		return "Unknown"
	}
}
