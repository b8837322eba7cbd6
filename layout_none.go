package spore

// noneDriver is the "one monolithic channel region per channel" layout:
// there is no container-level block structure, so only the codec's own
// frame boundary ever limits a single decode call. 30 lines, per the
// spec's estimate for the simplest layout flavour.
type noneDriver struct{}

func (noneDriver) blockSamples(s *Stream) (int64, error) {
	// No block boundary exists: the whole stream is one block, measured
	// from where SamplesIntoBlock started counting. The render loop
	// subtracts SamplesIntoBlock itself, so its only limiter is the codec's
	// frame alignment.
	return s.NumSamples - (s.Playback.CurrentSample - int64(s.Playback.SamplesIntoBlock)), nil
}

func (noneDriver) advance(_ *Stream) error {
	// Nothing to do: ch.Offset stays at the channel's start, and the
	// kernels address frames from it by the sample index into the block.
	return nil
}
