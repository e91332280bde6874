package gif

// Wire-format constants (see SPEC_FULL.md §6.1 and GIF89a). Grounded on
// the teacher's const.go, which groups header/tag/compression constants
// into named blocks the same way.

// Signature is the fixed three-byte magic at the start of every header.
const signature = "GIF"

// Framing bytes that disambiguate the part following
// PhaseAwaitingBlockLabel.
const (
	blockImageSeparator = 0x2C
	blockExtension      = 0x21
	blockTrailer        = 0x3B
)

// Extension label bytes.
const (
	labelPlainText      = 0x01
	labelGraphicControl = 0xF9
	labelComment        = 0xFE
	labelApplication    = 0xFF
)

// Netscape 2.0 application sub-block identifiers.
const (
	netscapeLooping   = 0x01
	netscapeBuffering = 0x02
)

// Values of the leading size byte of each fixed first sub-block (the
// number of data bytes that follow it).
const (
	graphicControlSizeByte = 0x04
	plainTextSizeByte      = 0x0C
	applicationSizeByte    = 0x0B
)

// Packed-byte bit masks shared by the logical screen and image
// descriptors.
const (
	packedHasColorTableMask = 0x80
	packedColorTableSizeMask = 0x07
)

// well-known extension labels recognized before version 89a.
var wellKnownLabels87a = map[byte]bool{
	labelPlainText:      true,
	labelGraphicControl: true,
	labelComment:        true,
	labelApplication:    true,
}

// the set accepted at exactly version 89a is the same well-known set;
// versions strictly greater than 89a accept every label (SPEC_FULL.md §4.1).
var wellKnownLabels89a = wellKnownLabels87a
