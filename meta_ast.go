package spore

import "github.com/mycophonic/spore/ioreader"

var tagSTRM = [4]byte{'S', 'T', 'R', 'M'}

const astFirstBlockOffset = 0x40

// parseAST recognizes Nintendo's AST streamed-audio container: a "STRM"
// magic, a fixed header giving channel count, sample rate, loop region,
// and total sample count, followed by a chain of "BLCK"-style blocks
// (size + sample count, then each channel's region) starting at a fixed
// offset. AST always carries big-endian PCM16 in this build; the ADPCM
// codec byte some titles use is out of scope.
func parseAST(r *ioreader.Reader) (*Stream, error) {
	var magic [4]byte
	for i := range magic {
		b, err := r.U8(int64(i))
		if err != nil {
			return nil, errNotThisFormat
		}

		magic[i] = b
	}

	if magic != tagSTRM {
		return nil, errNotThisFormat
	}

	bitDepth, err := r.U16BE(0x8)
	if err != nil || bitDepth != 16 {
		return nil, errNotThisFormat
	}

	channels, err := r.U16BE(0xA)
	if err != nil || channels == 0 || channels > 8 {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U32BE(0xC)
	if err != nil || sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return nil, errNotThisFormat
	}

	numSamples, err := r.U32BE(0x10)
	if err != nil {
		return nil, errNotThisFormat
	}

	loopStart, errStart := r.U32BE(0x18)
	loopEnd, errEnd := r.U32BE(0x1C)

	s := &Stream{
		Channels:   uint8(channels), //nolint:gosec // bounds-checked above
		SampleRate: sampleRate,
		NumSamples: int64(numSamples),
		Codec:      CodecPCM16BE,
		Layout:     LayoutBlockedAST,
		Meta:       MetaAST,
		Source:     r,
		block:      &astBlocks{},
	}

	if errStart == nil && errEnd == nil && loopEnd > loopStart {
		s.Loop = &LoopPoints{Start: int64(loopStart), End: int64(loopEnd)}
	}

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		s.ChannelsState[i].Source = r
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.Playback.NextBlockOffset = astFirstBlockOffset
	s.snapshotStart()

	return s, nil
}
