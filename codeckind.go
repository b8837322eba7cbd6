package spore

// CodecKind identifies the codec kernel used to decode a channel's samples.
// Every per-codec property (samples per frame, frame size, the inverse
// bytes<->samples mapping) is a method here rather than a switch repeated
// at each call site, so adding a codec never risks the three properties
// drifting out of sync.
type CodecKind uint8

const (
	CodecNone CodecKind = iota
	CodecADXStandard
	CodecADXExp
	CodecADXFixed
	CodecADXEnc8
	CodecADXEnc9
	CodecDSP
	CodecIMA
	CodecMSIMA
	CodecXBOXIMA
	CodecMSADPCM
	CodecPSXADPCM
	CodecEAXAv1
	CodecEAXAv2
	CodecSiren14
	CodecPCM8
	CodecPCM16LE
	CodecPCM16BE
	CodecPCM24LE
	CodecPCMFloat32
	CodecULaw
	CodecALaw
	CodecSDX2
)

func (c CodecKind) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecADXStandard:
		return "ADX (standard)"
	case CodecADXExp:
		return "ADX (exponential)"
	case CodecADXFixed:
		return "ADX (fixed coefficients)"
	case CodecADXEnc8:
		return "ADX (encrypted type 8)"
	case CodecADXEnc9:
		return "ADX (encrypted type 9)"
	case CodecDSP:
		return "Nintendo DSP ADPCM"
	case CodecIMA:
		return "IMA ADPCM"
	case CodecMSIMA:
		return "MS IMA ADPCM"
	case CodecXBOXIMA:
		return "XBOX IMA ADPCM"
	case CodecMSADPCM:
		return "MS ADPCM"
	case CodecPSXADPCM:
		return "PSX ADPCM"
	case CodecEAXAv1:
		return "EA-XA v1"
	case CodecEAXAv2:
		return "EA-XA v2"
	case CodecSiren14:
		return "Siren14"
	case CodecPCM8:
		return "PCM 8-bit"
	case CodecPCM16LE:
		return "PCM 16-bit LE"
	case CodecPCM16BE:
		return "PCM 16-bit BE"
	case CodecPCM24LE:
		return "PCM 24-bit LE"
	case CodecPCMFloat32:
		return "PCM float32"
	case CodecULaw:
		return "u-law"
	case CodecALaw:
		return "a-law"
	case CodecSDX2:
		return "SDX2"
	default:
		return "unknown codec"
	}
}

// SamplesPerFrame returns the number of samples one codec frame decodes to.
// frameSize is needed for codecs whose frame size is configurable
// (Siren14: 60/80/120 bytes); pass 0 for fixed-size codecs.
func (c CodecKind) SamplesPerFrame(frameSize int) int {
	switch c {
	case CodecADXStandard, CodecADXExp, CodecADXFixed, CodecADXEnc8, CodecADXEnc9:
		return 32
	case CodecDSP:
		return 14
	case CodecIMA, CodecXBOXIMA:
		return 8 // per 4-byte IMA sub-chunk; callers multiply by chunk count
	case CodecMSIMA:
		return 4
	case CodecMSADPCM:
		return 2
	case CodecPSXADPCM:
		return 28
	case CodecEAXAv1, CodecEAXAv2:
		return 28
	case CodecSiren14:
		return 640
	case CodecNone, CodecPCM8, CodecPCM16LE, CodecPCM16BE, CodecPCM24LE, CodecPCMFloat32, CodecULaw, CodecALaw:
		return 1
	case CodecSDX2:
		return 1
	default:
		return 1
	}
}

// FrameSizeBytes returns the number of encoded bytes one codec frame
// consumes per channel. frameSize overrides the configurable codecs.
func (c CodecKind) FrameSizeBytes(frameSize int) int {
	switch c {
	case CodecADXStandard, CodecADXExp, CodecADXFixed, CodecADXEnc8, CodecADXEnc9:
		return 18
	case CodecDSP:
		return 8
	case CodecIMA, CodecXBOXIMA:
		return 4
	case CodecMSADPCM:
		if frameSize > 0 {
			return frameSize
		}

		return 0
	case CodecPSXADPCM:
		return 16
	case CodecEAXAv1, CodecEAXAv2:
		return 15
	case CodecSiren14:
		if frameSize > 0 {
			return frameSize
		}

		return 60
	case CodecPCM8, CodecULaw, CodecALaw, CodecSDX2:
		return 1
	case CodecPCM16LE, CodecPCM16BE, CodecMSIMA:
		return 2
	case CodecPCM24LE:
		return 3
	case CodecPCMFloat32:
		return 4
	default:
		return 1
	}
}

// BytesToSamples converts an encoded byte count to a sample count for flat
// (non-blocked) codecs. It is the canonical inverse of SamplesToBytes and
// is used by metadata parsers to derive num_samples when a container omits
// an explicit sample count.
func (c CodecKind) BytesToSamples(numBytes, channels, frameSize int) int64 {
	fsb := c.FrameSizeBytes(frameSize)
	spf := c.SamplesPerFrame(frameSize)

	if fsb <= 0 || channels <= 0 {
		return 0
	}

	bytesPerChannel := numBytes / channels
	frames := bytesPerChannel / fsb

	return int64(frames) * int64(spf)
}

// SamplesToBytes is the inverse of BytesToSamples, rounding up to a whole
// frame. Used to validate that a declared num_samples is consistent with a
// container's data size.
func (c CodecKind) SamplesToBytes(numSamples, channels, frameSize int) int64 {
	fsb := c.FrameSizeBytes(frameSize)
	spf := c.SamplesPerFrame(frameSize)

	if spf <= 0 {
		return 0
	}

	frames := (numSamples + spf - 1) / spf

	return int64(frames) * int64(fsb) * int64(channels)
}
