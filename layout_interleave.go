package spore

// interleaveDriver implements fixed channel interleave, with the common
// "short last block" variant: the final block (the one that does not have
// a full interleave-worth of samples remaining in the stream) uses
// InterleaveLast instead of Interleave when InterleaveLast is non-zero.
type interleaveDriver struct{}

func (interleaveDriver) blockSamples(s *Stream) (int64, error) {
	fullBlockBytes := int64(s.Interleave)
	fullBlockSamples := s.Codec.BytesToSamples(int(fullBlockBytes), 1, int(s.FrameSize))

	remaining := s.NumSamples - (s.Playback.CurrentSample - int64(s.Playback.SamplesIntoBlock))

	blockBytes := fullBlockBytes
	blockSamples := fullBlockSamples

	if s.InterleaveLast > 0 && remaining < fullBlockSamples {
		blockBytes = int64(s.InterleaveLast)
		blockSamples = s.Codec.BytesToSamples(int(blockBytes), 1, int(s.FrameSize))
	}

	s.Playback.CurrentBlockSize = blockBytes

	if blockSamples <= 0 {
		return s.NumSamples - s.Playback.CurrentSample, nil
	}

	return blockSamples, nil
}

func (interleaveDriver) advance(s *Stream) error {
	// Each channel's Offset points at the start of its current block; the
	// same channel's next block sits one full round of every channel's
	// block away, not just the other channels' worth.
	skip := s.Playback.CurrentBlockSize * int64(s.Channels)
	for i := range s.ChannelsState {
		s.ChannelsState[i].Offset += skip
	}

	// Entering the short last block: its channels sit InterleaveLast apart
	// instead of Interleave apart.
	fullBlockSamples := s.Codec.BytesToSamples(int(s.Interleave), 1, int(s.FrameSize))
	remaining := s.NumSamples - s.Playback.CurrentSample
	if s.InterleaveLast > 0 && s.Playback.CurrentBlockSize == int64(s.Interleave) &&
		remaining > 0 && remaining < fullBlockSamples {
		shrink := int64(s.Interleave) - int64(s.InterleaveLast)
		for i := range s.ChannelsState {
			s.ChannelsState[i].Offset -= int64(i) * shrink
		}
	}

	return nil
}
