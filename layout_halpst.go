package spore

import "fmt"

// halpstBlocks drives Nintendo HALPST's block layout: a 32-byte header per
// block (sample count, then a signed next-block-offset field) followed by
// each channel's data region back to back. HALPST has no separate
// loop-start/loop-end pair in the container; a stream loops by a later
// block's header pointing backward to an earlier block's offset instead
// of forward to the next one. The metadata parser walks the chain once at
// Open time to turn that backward pointer into an ordinary LoopPoints
// pair, so this driver only ever follows the chain forward.
type halpstBlocks struct{}

const halpstHeaderBytes = 32

func (halpstBlocks) initBlock(s *Stream) error {
	s.Playback.CurrentBlockOffset = 0

	return halpstBlocks{}.nextBlock(s)
}

func (halpstBlocks) nextBlock(s *Stream) error {
	off := s.Playback.NextBlockOffset

	header := make([]byte, halpstHeaderBytes)
	if _, err := s.Source.Read(header, off); err != nil {
		return fmt.Errorf("halpst: block header: %w", err)
	}

	blockSamples := int64(be32(header[0:4]))
	nextOff := int64(int32(be32(header[4:8]))) //nolint:gosec // intentional reinterpretation

	dataStart := off + halpstHeaderBytes
	frameBytes := int64(s.Codec.FrameSizeBytes(int(s.FrameSize)))
	framesPerChannel := (blockSamples + int64(s.Codec.SamplesPerFrame(int(s.FrameSize))) - 1) /
		int64(s.Codec.SamplesPerFrame(int(s.FrameSize)))
	channelRegion := framesPerChannel * frameBytes

	for i := range s.ChannelsState {
		s.ChannelsState[i].Offset = dataStart + int64(i)*channelRegion
	}

	s.Playback.CurrentBlockOffset = off
	s.Playback.CurrentBlockSize = channelRegion
	s.Playback.CurrentBlockSamples = blockSamples

	if nextOff < 0 {
		s.Playback.NextBlockOffset = s.Source.Size()
	} else {
		s.Playback.NextBlockOffset = nextOff
	}

	return nil
}
