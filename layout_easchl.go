package spore

import (
	"encoding/binary"
	"fmt"
)

// easchlBlocks drives Electronic Arts' SCHl container at playback time:
// walk "SCDl" (data) chunks back to back, each holding one block's worth
// of per-channel regions, until an "SCEl" (end) chunk is reached. The
// chunk size field is little-endian and includes the 8-byte chunk header
// itself.
type easchlBlocks struct{}

const easchlChunkHeaderBytes = 8

var (
	tagSCDl = [4]byte{'S', 'C', 'D', 'l'}
	tagSCEl = [4]byte{'S', 'C', 'E', 'l'}
)

func (easchlBlocks) initBlock(s *Stream) error {
	s.Playback.CurrentBlockOffset = 0

	return easchlBlocks{}.nextBlock(s)
}

func (easchlBlocks) nextBlock(s *Stream) error {
	off := s.Playback.NextBlockOffset

	header := make([]byte, easchlChunkHeaderBytes)
	if _, err := s.Source.Read(header, off); err != nil {
		return fmt.Errorf("easchl: chunk header: %w", err)
	}

	var tag [4]byte
	copy(tag[:], header[0:4])

	size := int64(binary.LittleEndian.Uint32(header[4:8]))

	if tag == tagSCEl {
		// End marker: report zero remaining samples in this "block" so the
		// render loop's own NumSamples bound (set at parse time from the
		// chunk walk) is what actually stops playback.
		s.Playback.CurrentBlockOffset = off
		s.Playback.CurrentBlockSize = 0
		s.Playback.CurrentBlockSamples = 0
		s.Playback.NextBlockOffset = off

		return nil
	}

	channels := len(s.ChannelsState)
	dataStart := off + easchlChunkHeaderBytes
	payload := size - easchlChunkHeaderBytes

	channelRegion := payload
	if channels > 0 {
		channelRegion = payload / int64(channels)
	}

	frameBytes := int64(s.Codec.FrameSizeBytes(int(s.FrameSize)))
	samplesPerFrame := int64(s.Codec.SamplesPerFrame(int(s.FrameSize)))

	blockSamples := int64(0)
	if frameBytes > 0 {
		blockSamples = (channelRegion / frameBytes) * samplesPerFrame
	}

	for i := range s.ChannelsState {
		s.ChannelsState[i].Offset = dataStart + int64(i)*channelRegion
	}

	s.Playback.CurrentBlockOffset = off
	s.Playback.CurrentBlockSize = channelRegion
	s.Playback.CurrentBlockSamples = blockSamples
	s.Playback.NextBlockOffset = off + size

	return nil
}
