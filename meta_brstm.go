package spore

import "github.com/mycophonic/spore/ioreader"

const tagBRSTM = 0x5253544D // "RSTM"
const tagHEAD = 0x48454144  // "HEAD"
const brstmBOMVersion = 0xFEFF0100

// parseBRSTM recognizes Nintendo's BRSTM container: an "RSTM" magic, a
// 0xFEFF0100 byte-order-mark/version word, and HEAD/ADPC/DATA chunk
// offsets; the HEAD chunk (tagged "HEAD" at head_offset) describes
// codec/channels/sample rate/loop points/interleave/short-last-block,
// and per-channel DSP-ADPCM coefficient tables are reached through
// HEAD's channel info table.
func parseBRSTM(r *ioreader.Reader) (*Stream, error) {
	magic, err := r.TagBE(0)
	if err != nil || magic != tagBRSTM {
		return nil, errNotThisFormat
	}

	bom, err := r.U32BE(4)
	if err != nil || bom != brstmBOMVersion {
		return nil, errNotThisFormat
	}

	headOffset, err := r.U32BE(0x10)
	if err != nil {
		return nil, errNotThisFormat
	}

	dataOffset, err := r.U32BE(0x18)
	if err != nil {
		return nil, errNotThisFormat
	}

	headTag, err := r.TagBE(int64(headOffset))
	if err != nil || headTag != tagHEAD {
		return nil, errNotThisFormat
	}

	base := int64(headOffset) + 8 // skip HEAD chunk's own tag+size

	codecByte, err := r.U8(base)
	if err != nil {
		return nil, errNotThisFormat
	}

	if codecByte != 2 { // only DSP-ADPCM is modeled
		return nil, errNotThisFormat
	}

	looping, _ := r.U8(base + 1)
	channels, err := r.U8(base + 2)
	if err != nil || channels == 0 {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U16BE(base + 4)
	if err != nil {
		return nil, errNotThisFormat
	}

	loopStart, _ := r.U32BE(base + 0x20)
	numSamples, err := r.U32BE(base + 0x24)
	if err != nil {
		return nil, errNotThisFormat
	}

	interleave, _ := r.U32BE(base + 0x30)
	interleaveLast, _ := r.U32BE(base + 0x40)

	if uint32(sampleRate) < 300 || uint32(sampleRate) > 96000 {
		return nil, errNotThisFormat
	}

	s := &Stream{
		Channels:       channels,
		SampleRate:     uint32(sampleRate),
		NumSamples:     int64(numSamples),
		Codec:          CodecDSP,
		Layout:         LayoutInterleave,
		Meta:           MetaBRSTM,
		Interleave:     interleave,
		InterleaveLast: interleaveLast,
		Source:         r,
	}

	if looping != 0 {
		s.Loop = &LoopPoints{Start: int64(loopStart), End: int64(numSamples)}
	}

	s.ChannelsState = make([]ChannelState, channels)

	// The per-channel coefficient-table pointer array is this build's own
	// placement, following the short-last-block field with no spec-given
	// offset of its own (see DESIGN.md).
	const coefTableOffset = 0x50

	for i := range s.ChannelsState {
		coefOffset, err := r.U32BE(base + coefTableOffset + int64(i)*8)
		if err != nil {
			return nil, errNotThisFormat
		}

		var coef [16]int16
		for c := range coef {
			v, _ := r.I16BE(int64(coefOffset) + int64(c)*2)
			coef[c] = v
		}

		s.ChannelsState[i] = ChannelState{
			Offset:      int64(dataOffset) + 8 + int64(i)*int64(interleave),
			StartOffset: int64(dataOffset) + 8 + int64(i)*int64(interleave),
			AdpcmCoef:   coef,
			Source:      r,
		}
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}
