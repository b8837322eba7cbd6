package spore

import "fmt"

// xaBlocks drives CD-XA's fixed 2352-byte sector layout: a 16-byte sector
// header, an 8-byte subheader (file/channel/submode/coding-info, doubled
// for redundancy), then a 2304-byte audio payload split evenly across the
// stream's channels. Sectors whose submode doesn't carry audio (bit 0x4
// of the submode byte, the subheader's third byte) are skipped.
type xaBlocks struct{}

const (
	xaSectorBytes    = 2352
	xaSectorHeader   = 16
	xaSubheaderBytes = 8
	xaPayloadBytes   = 2304
	xaSubmodeAudio   = 0x4
)

func (xaBlocks) initBlock(s *Stream) error {
	s.Playback.CurrentBlockOffset = 0

	return xaBlocks{}.nextBlock(s)
}

func (xaBlocks) nextBlock(s *Stream) error {
	off := s.Playback.NextBlockOffset

	for {
		sub := make([]byte, xaSubheaderBytes)
		if _, err := s.Source.Read(sub, off+xaSectorHeader); err != nil {
			return fmt.Errorf("xa: subheader: %w", err)
		}

		submode := sub[2]
		if submode&xaSubmodeAudio != 0 {
			break
		}

		off += xaSectorBytes

		if off >= s.Source.Size() {
			s.Playback.CurrentBlockOffset = off
			s.Playback.CurrentBlockSize = 0
			s.Playback.CurrentBlockSamples = 0
			s.Playback.NextBlockOffset = off

			return nil
		}
	}

	dataStart := off + xaSectorHeader + xaSubheaderBytes
	channels := len(s.ChannelsState)

	channelRegion := int64(xaPayloadBytes)
	if channels > 0 {
		channelRegion = xaPayloadBytes / int64(channels)
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
	s.Playback.NextBlockOffset = off + xaSectorBytes

	return nil
}
