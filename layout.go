package spore

// layoutDriver is the per-LayoutKind strategy the render loop consults to
// find out how many samples remain in the block the playback cursor is
// currently inside, and to advance past a block boundary. Modeled as a
// small interface (one implementation per LayoutKind) rather than a
// switch-on-enum repeated inside the render loop, per the REDESIGN FLAGS
// note about switch-on-enum drift.
type layoutDriver interface {
	// blockSamples returns the number of samples in the block the cursor
	// currently sits in. Called once per render iteration.
	blockSamples(s *Stream) (int64, error)
	// advance is called when SamplesIntoBlock reaches the value blockSamples
	// returned; it repositions every channel's cursor (and, for blocked
	// layouts, the Playback block-cursor fields) to the start of the next
	// block.
	advance(s *Stream) error
}

// blockUpdater parses one block header and repositions channel cursors.
// Each blocked-layout flavour (AST, HALPST, EA-SCHl, XA, IVAud, ...)
// implements this once; layout_blocked.go drives all of them through the
// same render path.
type blockUpdater interface {
	// initBlock positions the stream at its very first block.
	initBlock(s *Stream) error
	// nextBlock parses the block header at s.Playback.NextBlockOffset and
	// repositions channel offsets plus the block-cursor fields.
	nextBlock(s *Stream) error
}

func (s *Stream) driverFor() layoutDriver {
	switch s.Layout {
	case LayoutNone:
		return noneDriver{}
	case LayoutInterleave:
		return interleaveDriver{}
	case LayoutBlockedAST, LayoutBlockedHALPST, LayoutBlockedEASCHL, LayoutBlockedXA, LayoutBlockedIVAud, LayoutBlockedMSADPCM:
		return blockedDriver{}
	default:
		return noneDriver{}
	}
}
