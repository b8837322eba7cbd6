package spore

import (
	"fmt"

	"github.com/mycophonic/spore/internal/adxkey"
	"github.com/mycophonic/spore/ioreader"
)

// parseADX recognizes CRI ADX: a big-endian 0x8000 sync word at offset 0,
// a 16-bit copyright-offset field pointing at the trailing "(c)CRI" tag,
// and a fixed-layout header describing channels, sample rate, sample
// count, the codec variant byte, and an optional loop region.
func parseADX(r *ioreader.Reader) (*Stream, error) {
	sync, err := r.U16BE(0)
	if err != nil || sync != 0x8000 {
		return nil, errNotThisFormat
	}

	copyrightOffset, err := r.U16BE(2)
	if err != nil {
		return nil, errNotThisFormat
	}

	encodingType, err := r.U8(4)
	if err != nil {
		return nil, errNotThisFormat
	}

	channels, err := r.U8(7)
	if err != nil {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U32BE(8)
	if err != nil {
		return nil, errNotThisFormat
	}

	numSamples, err := r.U32BE(12)
	if err != nil {
		return nil, errNotThisFormat
	}

	cutoff, err := r.U16BE(16)
	if err != nil {
		return nil, errNotThisFormat
	}

	if sampleRate < 300 || sampleRate > 96000 || channels == 0 {
		return nil, errNotThisFormat
	}

	variant, err := adxVariantFor(encodingType)
	if err != nil {
		return nil, errNotThisFormat
	}

	s := &Stream{
		Channels:   channels,
		SampleRate: sampleRate,
		NumSamples: int64(numSamples),
		Codec:      variant,
		Layout:     LayoutInterleave,
		Meta:       MetaADX,
		Interleave: adxFrameBytes,
		FrameSize:  0,
		Cutoff:     uint32(cutoff),
		Source:     r,
	}

	if loopFlag, _ := r.U32BE(24); loopFlag == 1 {
		loopStart, errStart := r.U32BE(28)
		loopEnd, errEnd := r.U32BE(32)

		if errStart == nil && errEnd == nil {
			s.Loop = &LoopPoints{Start: int64(loopStart), End: int64(loopEnd)}
		}
	}

	dataStart := int64(copyrightOffset) + 4

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		off := dataStart + int64(i)*adxFrameBytes

		s.ChannelsState[i] = ChannelState{
			Offset:      off,
			StartOffset: off,
			Source:      r,
			ADXChannels: channels,
		}
	}

	if variant == CodecADXEnc8 || variant == CodecADXEnc9 {
		if err := detectADXKey(s, variant); err != nil {
			return nil, err
		}
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}

func adxVariantFor(encodingType uint8) (CodecKind, error) {
	switch encodingType {
	case 2:
		return CodecADXFixed, nil
	case 3:
		return CodecADXStandard, nil
	case 4:
		return CodecADXExp, nil
	case 8:
		return CodecADXEnc8, nil
	case 9:
		return CodecADXEnc9, nil
	default:
		return CodecNone, fmt.Errorf("%w: ADX encoding type %d", ErrUnsupported, encodingType)
	}
}

// detectADXKey samples the first several frames of channel 0, masks out
// the encrypted scale bits, and tries every built-in key against the
// observed sequence, installing the matching key into every channel's
// XorKey/MultKey/AddKey (each channel starting at its own phase of the
// shared LCG).
func detectADXKey(s *Stream, variant CodecKind) error {
	mask := uint16(0x6000)
	if variant == CodecADXEnc9 {
		mask = 0x1000
	}

	const probeFrames = 8

	observed := make([]uint16, 0, probeFrames)
	ch0 := &s.ChannelsState[0]

	for i := range probeFrames {
		off := ch0.Offset + int64(i)*adxFrameBytes

		header := make([]byte, 2)
		if _, err := s.Source.Read(header, off); err != nil {
			break
		}

		scale := uint16(header[0])<<8 | uint16(header[1])
		if scale == adxEOFScale {
			break
		}

		observed = append(observed, scale)
	}

	key, ok := adxkey.Detect(observed, mask)
	if !ok {
		return fmt.Errorf("%w: no built-in ADX key matched this stream", ErrKeyRequired)
	}

	applyADXKey(s, key)

	return nil
}

// applyADXKey seeds each channel's rolling XOR key at its own phase of
// the single shared LCG sequence (channel c starts c rolls ahead of
// channel 0), matching rollADXKey's "times adx_channels" advance.
func applyADXKey(s *Stream, key adxkey.Key) {
	k := key

	for i := range s.ChannelsState {
		s.ChannelsState[i].XorKey = k.Xor
		s.ChannelsState[i].MultKey = key.Mult
		s.ChannelsState[i].AddKey = key.Add

		k = k.Roll()
	}
}

// ApplyADXKey installs a caller-supplied encryption key, used when the
// built-in table misses and the host application already knows the key
// for its own titles.
func ApplyADXKey(s *Stream, xor, mult, add uint16) {
	applyADXKey(s, adxkey.Key{Xor: xor, Mult: mult, Add: add})
}
