package spore

import "github.com/mycophonic/spore/internal/siren14"

// siren14Context adapts internal/siren14's per-channel Decoder to the
// codecContext interface so the render engine can snapshot/restore its
// MLT overlap buffer across a loop boundary without a type switch.
type siren14Context struct {
	dec *siren14.Decoder
}

func (c *siren14Context) Clone() codecContext {
	return &siren14Context{dec: c.dec.Clone()}
}

// decodeSiren14 decodes one or more 640-sample Siren14 frames. The
// channel's decoder instance lives in params.CodecCtx, installed by the
// owning metadata parser at Open time.
func decodeSiren14(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int, params CodecParams) error {
	ctx, _ := params.CodecCtx.(*siren14Context)
	if ctx == nil {
		return ErrUnsupported
	}

	frameBytes := params.FrameSize
	if frameBytes <= 0 {
		frameBytes = 60
	}

	written := 0

	for written < samplesToDo {
		frameIdx := (firstSample + written) / siren14.FrameSamples
		posInFrame := (firstSample + written) % siren14.FrameSamples
		frameOffset := ch.Offset + int64(frameIdx)*int64(frameBytes)

		frame := make([]byte, frameBytes)
		_, _ = ch.Source.Read(frame, frameOffset)

		if frameIdx == 0 && ch.Siren14Key != nil {
			if err := siren14.DecryptFirstBlock(frame, ch.Siren14Key); err != nil {
				return err
			}
		}

		samples, err := ctx.dec.DecodeFrame(frame)
		if err != nil {
			return err
		}

		for posInFrame < siren14.FrameSamples && written < samplesToDo {
			out[written*stride] = samples[posInFrame]
			posInFrame++
			written++
		}
	}

	return nil
}
