package spore

import "github.com/mycophonic/spore/ioreader"

const tagSCHl = 0x5343486C // "SCHl"
const tagSCElTag = 0x5343456C // "SCEl", as the uint32 TagBE reads compare against

// parseEASCHL recognizes Electronic Arts' SCHl container: an "SCHl"
// magic and size, then a sequence of sub-blocks describing the PT-header
// (codec/channels/sample rate) before the first "SCDl" data chunk. The
// full sample count isn't declared anywhere in the header, so it's
// derived by walking the SCDl/SCEl chunk chain once at Open time.
func parseEASCHL(r *ioreader.Reader) (*Stream, error) {
	magic, err := r.TagBE(0)
	if err != nil || magic != tagSCHl {
		return nil, errNotThisFormat
	}

	// PT-header fields sit at a fixed offset past the SCHl chunk header in
	// the common "PT\x00\x00" variant this parser targets.
	const ptHeaderOffset = 0x10

	codecByte, err := r.U8(ptHeaderOffset)
	if err != nil {
		return nil, errNotThisFormat
	}

	if codecByte != 0x07 { // EA-XA v2 only, in this build
		return nil, errNotThisFormat
	}

	channels, err := r.U8(ptHeaderOffset + 1)
	if err != nil || channels == 0 {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U32BE(ptHeaderOffset + 4)
	if err != nil || sampleRate < 300 || sampleRate > 96000 {
		return nil, errNotThisFormat
	}

	firstChunkOffset, err := r.U32BE(4)
	if err != nil {
		return nil, errNotThisFormat
	}

	s := &Stream{
		Channels:   channels,
		SampleRate: sampleRate,
		Codec:      CodecEAXAv2,
		Layout:     LayoutBlockedEASCHL,
		Meta:       MetaEASCHL,
		Source:     r,
		block:      &easchlBlocks{},
	}

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		s.ChannelsState[i].Source = r
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.Playback.NextBlockOffset = int64(firstChunkOffset)

	total, err := walkEASCHLChain(r, int64(firstChunkOffset), int(channels), int(eaxaFrameBytes), eaxaFrameSmpls)
	if err != nil {
		return nil, errNotThisFormat
	}

	s.NumSamples = total

	s.snapshotStart()

	return s, nil
}

const easchlChainSafetyCap = 1 << 20

// walkEASCHLChain sums every SCDl chunk's per-channel sample count until
// the terminating SCEl chunk, so num_samples is known without decoding.
func walkEASCHLChain(r *ioreader.Reader, off int64, channels, frameBytes, samplesPerFrame int) (int64, error) {
	total := int64(0)

	for range easchlChainSafetyCap {
		tag, err := r.TagBE(off)
		if err != nil {
			return total, nil
		}

		size, err := r.U32LE(off + 4)
		if err != nil {
			return total, nil
		}

		if tag == tagSCElTag {
			return total, nil
		}

		payload := int64(size) - easchlChunkHeaderBytes
		if channels > 0 && frameBytes > 0 {
			channelRegion := payload / int64(channels)
			total += (channelRegion / int64(frameBytes)) * int64(samplesPerFrame)
		}

		off += int64(size)
	}

	return total, nil
}
