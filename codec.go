package spore

import "fmt"

// decodeChannel is the single dispatch point from CodecKind to a kernel
// function. Every kernel shares one signature: write samplesToDo samples
// to out[0], out[stride], out[2*stride], ... starting at firstSample's
// offset into the current block/frame.
func (s *Stream) decodeChannel(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int) error {
	params := CodecParams{
		FrameSize:  int(s.FrameSize),
		Cutoff:     int(s.Cutoff),
		SampleRate: int(s.SampleRate),
		CodecCtx:   ch.CodecCtx,
	}

	switch s.Codec {
	case CodecADXStandard:
		return decodeADX(ch, out, stride, firstSample, samplesToDo, adxVariantStandard, params)
	case CodecADXExp:
		return decodeADX(ch, out, stride, firstSample, samplesToDo, adxVariantExp, params)
	case CodecADXFixed:
		return decodeADX(ch, out, stride, firstSample, samplesToDo, adxVariantFixed, params)
	case CodecADXEnc8:
		return decodeADX(ch, out, stride, firstSample, samplesToDo, adxVariantEnc8, params)
	case CodecADXEnc9:
		return decodeADX(ch, out, stride, firstSample, samplesToDo, adxVariantEnc9, params)
	case CodecDSP:
		return decodeDSP(ch, out, stride, firstSample, samplesToDo)
	case CodecIMA:
		return decodeIMA(ch, out, stride, firstSample, samplesToDo)
	case CodecMSIMA:
		return decodeMSIMA(ch, out, stride, firstSample, samplesToDo)
	case CodecXBOXIMA:
		return decodeXboxIMA(ch, out, stride, firstSample, samplesToDo)
	case CodecMSADPCM:
		return decodeMSADPCM(ch, out, stride, firstSample, samplesToDo, params)
	case CodecPSXADPCM:
		return decodePSXADPCM(ch, out, stride, firstSample, samplesToDo)
	case CodecEAXAv1:
		return decodeEAXA(ch, out, stride, firstSample, samplesToDo, eaxaV1)
	case CodecEAXAv2:
		return decodeEAXA(ch, out, stride, firstSample, samplesToDo, eaxaV2)
	case CodecSiren14:
		return decodeSiren14(ch, out, stride, firstSample, samplesToDo, params)
	case CodecPCM8, CodecPCM16LE, CodecPCM16BE, CodecPCM24LE, CodecPCMFloat32, CodecULaw, CodecALaw, CodecSDX2:
		return decodePCM(ch, out, stride, firstSample, samplesToDo, s.Codec)
	default:
		return fmt.Errorf("%w: codec %s", ErrUnsupported, s.Codec)
	}
}
