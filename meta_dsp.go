package spore

import "github.com/mycophonic/spore/ioreader"

const dspHeaderBytes = 0x60

// parseDSP recognizes a standalone Nintendo GameCube/Wii .dsp file: a
// fixed 0x60-byte big-endian header (sample counts, sample rate, loop
// region in nibble addresses, and the 16-entry coefficient table)
// immediately followed by mono DSP-ADPCM data. Multi-channel .dsp is
// carried as one file per channel by its container, never interleaved
// within a single file, so this parser always produces one channel.
func parseDSP(r *ioreader.Reader) (*Stream, error) {
	numSamples, err := r.U32BE(0)
	if err != nil {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U32BE(8)
	if err != nil || sampleRate < 300 || sampleRate > 96000 {
		return nil, errNotThisFormat
	}

	loopFlag, err := r.U16BE(0xC)
	if err != nil {
		return nil, errNotThisFormat
	}

	format, err := r.U16BE(0xE)
	if err != nil || format != 0 {
		return nil, errNotThisFormat
	}

	loopStartNibble, _ := r.U32BE(0x10)
	loopEndNibble, _ := r.U32BE(0x14)

	var coef [16]int16
	for i := range coef {
		v, err := r.I16BE(0x1C + int64(i)*2)
		if err != nil {
			return nil, errNotThisFormat
		}

		coef[i] = v
	}

	hist1, _ := r.I16BE(0x40)
	hist2, _ := r.I16BE(0x42)

	s := &Stream{
		Channels:   1,
		SampleRate: sampleRate,
		NumSamples: int64(numSamples),
		Codec:      CodecDSP,
		Layout:     LayoutNone,
		Meta:       MetaDSP,
		Source:     r,
	}

	if loopFlag != 0 {
		s.Loop = &LoopPoints{
			Start: nibbleToSample(int64(loopStartNibble)),
			End:   nibbleToSample(int64(loopEndNibble)),
		}
	}

	s.ChannelsState = []ChannelState{{
		Offset:      dspHeaderBytes,
		StartOffset: dspHeaderBytes,
		AdpcmCoef:   coef,
		Hist1:       int32(hist1),
		Hist2:       int32(hist2),
		Source:      r,
	}}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}

// nibbleToSample converts a DSP-ADPCM nibble address (2 header nibbles +
// 14 data nibbles per 8-byte frame) to a sample index.
func nibbleToSample(nibble int64) int64 {
	frame := nibble / 16
	posInFrame := nibble % 16

	if posInFrame < 2 {
		posInFrame = 0
	} else {
		posInFrame -= 2
	}

	return frame*14 + posInFrame
}
