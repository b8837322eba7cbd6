package spore

import "github.com/mycophonic/spore/ioreader"

// xaSyncPattern is the 12-byte CD sector sync sequence every raw CD-XA
// stream starts with: 00h, ten FFh bytes, 00h.
var xaSyncPattern = [12]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

// parseXA recognizes a raw CD-XA audio stream by its sector sync pattern
// rather than any file-level magic (CD-XA has none; the format is a
// sequence of 2352-byte CD sectors extracted verbatim from a disc image).
// Channel count and sample rate come from the first audio sector's
// subheader coding_info byte, per the Yellow Book / Green Book layout.
// This build decodes CD-XA's ADPCM through the PSX-ADPCM kernel: both
// share the same 4-entry predictor/shift lineage, though real CD-XA packs
// four independent 28-sample sound groups per 128-byte sub-block rather
// than PSX's flat 16-byte frame; treating it as PSX-ADPCM is a scope
// simplification, not a faithful sub-block decode.
func parseXA(r *ioreader.Reader) (*Stream, error) {
	var sync [12]byte
	for i := range sync {
		b, err := r.U8(int64(i))
		if err != nil {
			return nil, errNotThisFormat
		}

		sync[i] = b
	}

	if sync != xaSyncPattern {
		return nil, errNotThisFormat
	}

	subheader := make([]byte, xaSubheaderBytes)
	if err := r.ReadChunk(subheader, xaSectorHeader); err != nil {
		return nil, errNotThisFormat
	}

	submode := subheader[2]
	if submode&xaSubmodeAudio == 0 {
		return nil, errNotThisFormat
	}

	codingInfo := subheader[3]

	channels := uint8(1)
	if codingInfo&0x1 != 0 {
		channels = 2
	}

	sampleRate := uint32(37800)
	if codingInfo&0xC>>2 == 1 {
		sampleRate = 18900
	}

	numSectors := r.Size() / xaSectorBytes
	channelRegion := int64(xaPayloadBytes) / int64(channels)
	totalSamples := numSectors * (channelRegion / psxFrameBytes) * psxFrameSmpls

	s := &Stream{
		Channels:   channels,
		SampleRate: sampleRate,
		NumSamples: totalSamples,
		Codec:      CodecPSXADPCM,
		Layout:     LayoutBlockedXA,
		Meta:       MetaXA,
		Source:     r,
		block:      &xaBlocks{},
	}

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		s.ChannelsState[i].Source = r
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}
