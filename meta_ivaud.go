package spore

import "github.com/mycophonic/spore/ioreader"

// parseIVAud recognizes GTA IV's IVAud format: no container magic of its
// own (IVAud files are the raw data half of a paired .sch/.ivaud archive
// entry), so this parser is gated purely on structural plausibility: a
// block-count/channel-count/sample-rate header whose values all land in
// sane ranges, followed by a per-channel seek table of that many 32-bit
// offsets.
func parseIVAud(r *ioreader.Reader) (*Stream, error) {
	channels, err := r.U32BE(0)
	if err != nil || channels == 0 || channels > 8 {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U32BE(4)
	if err != nil || sampleRate < 300 || sampleRate > 96000 {
		return nil, errNotThisFormat
	}

	numBlocks, err := r.U32BE(8)
	if err != nil || numBlocks == 0 || numBlocks > 1<<20 {
		return nil, errNotThisFormat
	}

	blockSamples, err := r.U32BE(12)
	if err != nil || blockSamples == 0 {
		return nil, errNotThisFormat
	}

	seekTableOffset := int64(16)

	seekTable := make([][]int64, channels)

	for ch := range seekTable {
		seekTable[ch] = make([]int64, numBlocks)

		for b := range seekTable[ch] {
			off, err := r.U32BE(seekTableOffset)
			if err != nil {
				return nil, errNotThisFormat
			}

			seekTable[ch][b] = int64(off)
			seekTableOffset += 4
		}
	}

	s := &Stream{
		Channels:   uint8(channels),
		SampleRate: sampleRate,
		NumSamples: int64(numBlocks) * int64(blockSamples),
		Codec:      CodecIMA,
		Layout:     LayoutBlockedIVAud,
		Meta:       MetaIVAud,
		Source:     r,
		block:      newIVAudBlocks(int64(blockSamples), seekTable),
	}

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		s.ChannelsState[i].Source = r
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}
