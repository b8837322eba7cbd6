package spore

// msadpcmBlocks drives RIFF/WAVE MS-ADPCM's block layout: one physical
// block of blockAlign bytes holds every channel's 7-byte header in
// sequence (channel 0's header, then channel 1's, ...), followed by a
// single shared data region whose nibbles round-robin across channels
// (sample N of channel c is nibble N*channels+c of that region).
type msadpcmBlocks struct {
	blockAlign int64
	coefPairs  [][2]int16
	dataOffset int64
}

func newMSADPCMBlocks(dataOffset, blockAlign int64, coefPairs [][2]int16) *msadpcmBlocks {
	return &msadpcmBlocks{blockAlign: blockAlign, coefPairs: coefPairs, dataOffset: dataOffset}
}

func (b *msadpcmBlocks) initBlock(s *Stream) error {
	s.Playback.CurrentBlockOffset = b.dataOffset

	return b.placeBlock(s, b.dataOffset)
}

func (b *msadpcmBlocks) nextBlock(s *Stream) error {
	next := s.Playback.CurrentBlockOffset + b.blockAlign

	return b.placeBlock(s, next)
}

func (b *msadpcmBlocks) placeBlock(s *Stream, blockStart int64) error {
	channels := int64(len(s.ChannelsState))
	headerBytes := 7 * channels
	dataStart := blockStart + headerBytes

	for i := range s.ChannelsState {
		chHeader := blockStart + int64(i)*7

		if err := seedMSADPCMBlockHeader(s.Source, chHeader, &s.ChannelsState[i], b.coefPairs); err != nil {
			s.Playback.CurrentBlockSamples = 0

			return nil
		}

		s.ChannelsState[i].Offset = dataStart
		s.ChannelsState[i].MSADPCMChannels = uint8(channels)
		s.ChannelsState[i].MSADPCMChanIndex = uint8(i)
	}

	s.Playback.CurrentBlockOffset = blockStart
	s.Playback.CurrentBlockSize = b.blockAlign

	remaining := s.NumSamples - s.Playback.CurrentSample

	// Every channel's two header-seeded samples (Hist2, Hist1) are
	// emitted before any nibble-decoded sample, so a block's per-channel
	// sample count is the nibble region split evenly across channels,
	// plus those two seeds.
	dataBytes := b.blockAlign - headerBytes

	var samplesPerBlock int64
	if channels > 0 && dataBytes > 0 {
		samplesPerBlock = (dataBytes*2)/channels + 2
	}

	if remaining < samplesPerBlock {
		samplesPerBlock = remaining
	}

	s.Playback.CurrentBlockSamples = samplesPerBlock

	return nil
}
