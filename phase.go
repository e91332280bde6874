package gif

// Phase enumerates the positions a Reader or a Writer can occupy in the
// container's state machine. Reader and Writer share one enumeration;
// each only ever sets the subset of values that apply to it (the Writer
// never sets ExtensionLabel, since peeking the next label is a read-side
// concept). Both track an extension's sub-blocks with BlockBody and
// SubblockStream; Subblock0 and Subblocks are defined but neither the
// Reader nor the Writer sets them.
//
// This mirrors the teacher's imageMode enum (const.go): a small
// iota-based typed int with a String method built the same way
// tagname/valuename build their switch-based names.
type Phase int

const (
	PhaseHeader Phase = iota
	PhaseLogicalScreen
	PhaseGlobalColorTable
	PhaseAwaitingBlockLabel
	PhaseExtensionLabel // read-only: label byte peeked, not yet consumed by ReadExtensionLabel
	PhaseImageDescriptor
	PhaseLocalColorTable
	PhaseImageData
	PhaseBlockBody
	PhaseSubblockStream
	PhaseSubblock0 // not set by the Reader or the Writer
	PhaseSubblocks // not set by the Reader or the Writer
	PhaseDone
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseHeader:
		return "Header"
	case PhaseLogicalScreen:
		return "LogicalScreen"
	case PhaseGlobalColorTable:
		return "GlobalColorTable"
	case PhaseAwaitingBlockLabel:
		return "AwaitingBlockLabel"
	case PhaseExtensionLabel:
		return "ExtensionLabel"
	case PhaseImageDescriptor:
		return "ImageDescriptor"
	case PhaseLocalColorTable:
		return "LocalColorTable"
	case PhaseImageData:
		return "ImageData"
	case PhaseBlockBody:
		return "BlockBody"
	case PhaseSubblockStream:
		return "SubblockStream"
	case PhaseSubblock0:
		return "Subblock0"
	case PhaseSubblocks:
		return "Subblocks"
	case PhaseDone:
		return "Done"
	case PhaseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// blockLabel identifies which framing byte the Reader's PeekPart most
// recently read while at PhaseAwaitingBlockLabel, so the Read method
// that consumes it can check it was invoked for the right part. It is
// only set while the Reader is at PhaseAwaitingBlockLabel with a byte
// peeked, and is cleared when that byte is consumed. The Writer does not
// use it.
type blockLabel int

const (
	labelNone blockLabel = iota
	labelExtensionIntroducer
	labelImageSeparator
	labelTrailer
)

// extLabel identifies which typed extension is in force while in
// PhaseBlockBody/PhaseSubblockStream. This is the extra field the
// BlockBody phase "carries" per the sum-type design in SPEC_FULL.md.
type extLabel int

const (
	extNone extLabel = iota
	extGraphicControl
	extPlainText
	extApplication
	extComment
	extUnknownFuture
)
