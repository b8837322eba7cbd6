package spore

import "github.com/mycophonic/spore/ioreader"

// ChannelState holds one channel's decoder state and read cursor. It is a
// fixed-size value: every array is sized to the worst case any kernel
// needs, so sizeof(ChannelState) is independent of file size. A deep copy
// (for loop snapshot/restore) is a plain struct copy plus a Clone of
// CodecCtx (see cloneCodecCtx); Siren14Key and Source are shared.
type ChannelState struct {
	// Offset is the next read position in Source for this channel.
	Offset int64
	// StartOffset is the first sample's byte position for this channel;
	// the restore target for seek-to-zero / Reset.
	StartOffset int64

	// ADPCM history slots, shared by every predictor-based codec kernel.
	Hist1, Hist2, Hist3, Hist4 int32

	// AdpcmCoef holds DSP/AFC/MS-ADPCM-style 16-bit coefficient pairs
	// (8 pairs => 16 entries).
	AdpcmCoef [16]int16

	// VadpcmCoefs holds VADPCM coefficients (up to 8 orders x 2 x 8 entries).
	VadpcmCoefs [128]int16

	// AdpcmCoef3by32 holds Level-5 0x555-style 32-bit coefficients.
	AdpcmCoef3by32 [96]int32

	AdpcmStepIndex int32
	AdpcmScale     int32

	// ADX encryption state (enc8/enc9 variants).
	XorKey      uint16
	MultKey     uint16
	AddKey      uint16
	ADXChannels uint8

	// Siren14Key, when non-nil, is the AES key the Siren14 kernel applies
	// to the first 16 bytes of the first frame of each block before
	// decoding it. The raw Siren14 layout uses one-frame blocks, so every
	// frame is decrypted.
	Siren14Key []byte

	// Westwood-style framing cursor: a per-channel "samples remaining in
	// current physical frame" counter. No layout in this package sets it.
	WSFrameHeaderOffset int64
	WSSamplesLeft       int32

	// MSADPCMChannels/MSADPCMChanIndex locate this channel's nibbles
	// within a shared, round-robin nibble-interleaved MS-ADPCM block:
	// channel c's Nth post-header sample is nibble N*MSADPCMChannels+c
	// of the block's single shared data region.
	MSADPCMChannels  uint8
	MSADPCMChanIndex uint8

	// Source is the byte reader this channel decodes through. Channels in
	// a flat-interleaved layout typically share one Reader; block layouts
	// with large per-channel regions may give each channel its own.
	Source *ioreader.Reader

	// CodecCtx holds the few codecs' per-channel out-of-band decoder state
	// that doesn't fit the fixed ADPCM history/coefficient fields above
	// (currently only Siren14's MLT overlap buffer). Nil for every other
	// codec.
	CodecCtx codecContext
}

// cloneCodecCtx deep-copies c's out-of-band codec state, used alongside a
// plain struct copy of ChannelState wherever one is snapshotted (loop
// boundary, start-of-stream) so the copy doesn't alias the live decoder.
func (c ChannelState) cloneCodecCtx() ChannelState {
	if c.CodecCtx != nil {
		c.CodecCtx = c.CodecCtx.Clone()
	}

	return c
}

// Reset restores the channel's read cursor and decoder history to its
// start-of-stream values. Coefficient tables are immutable per stream and
// are left untouched.
func (c *ChannelState) Reset() {
	c.Offset = c.StartOffset
	c.Hist1, c.Hist2, c.Hist3, c.Hist4 = 0, 0, 0, 0
	c.AdpcmStepIndex = 0
	c.AdpcmScale = 0
	c.WSFrameHeaderOffset = 0
	c.WSSamplesLeft = 0
}

// LoopPoints describes a loop region; Start is inclusive, End is exclusive.
type LoopPoints struct {
	Start int64
	End   int64
}

// Valid reports whether the loop region satisfies the spec's invariant
// 0 <= start < end <= numSamples.
func (lp *LoopPoints) Valid(numSamples int64) bool {
	if lp == nil {
		return true
	}

	return lp.Start >= 0 && lp.Start < lp.End && lp.End <= numSamples
}
