package spore

import "fmt"

// ivaudBlocks drives GTA IV's IVAud layout: a fixed per-stream block size
// (read once from the container header by the metadata parser) plus a
// per-channel seek table of byte offsets, one entry per block, so block N
// does not have to be derived by walking N-1 fixed-size blocks from the
// start.
type ivaudBlocks struct {
	blockSamples int64
	seekTable    [][]int64 // seekTable[channel][blockIndex] = byte offset
	index        int
}

func newIVAudBlocks(blockSamples int64, seekTable [][]int64) *ivaudBlocks {
	return &ivaudBlocks{blockSamples: blockSamples, seekTable: seekTable}
}

func (b *ivaudBlocks) initBlock(s *Stream) error {
	b.index = 0

	return b.placeBlock(s)
}

func (b *ivaudBlocks) nextBlock(s *Stream) error {
	b.index++

	return b.placeBlock(s)
}

func (b *ivaudBlocks) placeBlock(s *Stream) error {
	if len(b.seekTable) == 0 || b.index >= len(b.seekTable[0]) {
		s.Playback.CurrentBlockSamples = 0

		return nil
	}

	for ch := range s.ChannelsState {
		if ch >= len(b.seekTable) {
			return fmt.Errorf("%w: ivaud seek table missing channel %d", ErrInvalid, ch)
		}

		s.ChannelsState[ch].Offset = b.seekTable[ch][b.index]
	}

	remaining := s.NumSamples - int64(b.index)*b.blockSamples

	samples := b.blockSamples
	if remaining < samples {
		samples = remaining
	}

	s.Playback.CurrentBlockSamples = samples

	return nil
}
