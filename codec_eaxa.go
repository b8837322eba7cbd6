package spore

type eaxaVariant uint8

const (
	eaxaV1 eaxaVariant = iota
	eaxaV2
)

// eaxaCoef1/eaxaCoef2 is EA-XA's 20-entry predictor table, indexed by the
// 4-bit coefficient selector in each frame's header nibble.
var (
	eaxaCoef1 = [20]int32{
		0, 240, 460, 392, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	eaxaCoef2 = [20]int32{
		0, 0, -208, -232, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

const (
	eaxaFrameBytes = 15
	eaxaFrameSmpls = 28
	eaxaRawEscape  = 0xEE
)

// decodeEAXA decodes Electronic Arts' EA-XA ADPCM. Frame layout is one
// header byte (high nibble selects the coefficient pair, low nibble the
// right-shift amount) followed by 28 signed nibbles; v1 adds a +128
// rounding term to the shifted residual that v2 omits, and v2's header
// byte 0xEE escapes the frame to 28 raw signed 8-bit PCM samples instead
// of ADPCM nibbles.
func decodeEAXA(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int, variant eaxaVariant) error {
	written := 0

	for written < samplesToDo {
		frameIdx := (firstSample + written) / eaxaFrameSmpls
		posInFrame := (firstSample + written) % eaxaFrameSmpls
		frameOffset := ch.Offset + int64(frameIdx)*eaxaFrameBytes

		frame := make([]byte, eaxaFrameBytes)
		_, _ = ch.Source.Read(frame, frameOffset)

		header := frame[0]

		if variant == eaxaV2 && header == eaxaRawEscape {
			// The escape frame's 14-byte payload carries one raw signed
			// 8-bit sample per byte rather than 28 packed nibbles, so an
			// escape frame spans half the samples of a normal frame.
			rawSmpls := eaxaFrameBytes - 1

			for posInFrame < rawSmpls && written < samplesToDo {
				raw := int8(frame[1+posInFrame]) //nolint:gosec // intentional reinterpretation
				clamped := int16(raw) * 256

				out[written*stride] = clamped
				ch.Hist2 = ch.Hist1
				ch.Hist1 = int32(clamped)

				posInFrame++
				written++
			}

			if posInFrame >= rawSmpls {
				posInFrame = eaxaFrameSmpls
			}

			continue
		}

		coefIdx := header >> 4
		shift := header & 0xF

		c1 := eaxaCoef1[coefIdx&0xF]
		c2 := eaxaCoef2[coefIdx&0xF]

		for posInFrame < eaxaFrameSmpls && written < samplesToDo {
			b := frame[1+posInFrame/2]

			var nibble int32
			if posInFrame%2 == 0 {
				nibble = int32(int8(b&0xF0) >> 4) //nolint:gosec // sign-extend high nibble
			} else {
				nibble = int32(int8(b<<4) >> 4) //nolint:gosec // sign-extend low nibble
			}

			residual := nibble << shift
			if variant == eaxaV1 {
				residual += 128
			}

			predicted := (c1*ch.Hist1 + c2*ch.Hist2) >> 8
			clamped := clampInt16(residual + predicted)

			out[written*stride] = clamped
			ch.Hist2 = ch.Hist1
			ch.Hist1 = int32(clamped)

			posInFrame++
			written++
		}
	}

	return nil
}
