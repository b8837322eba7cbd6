package spore

// decodeDSP decodes Nintendo GameCube/Wii DSP-ADPCM: 8-byte frames
// (1 header byte + 14 signed nibbles packed into the remaining 7 bytes),
// 8 predictor coefficient pairs selected by the low 3 bits of the header's
// high nibble.
func decodeDSP(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int) error {
	const (
		frameBytes = 8
		frameSmpls = 14
	)

	written := 0

	for written < samplesToDo {
		frameIdx := (firstSample + written) / frameSmpls
		posInFrame := (firstSample + written) % frameSmpls
		frameOffset := ch.Offset + int64(frameIdx)*frameBytes

		frame := make([]byte, frameBytes)
		_, _ = ch.Source.Read(frame, frameOffset)

		header := frame[0]
		predictor := (header >> 4) & 0x7
		scale := int32(1) << (header & 0xF)

		c1 := int32(ch.AdpcmCoef[predictor*2])
		c2 := int32(ch.AdpcmCoef[predictor*2+1])

		for posInFrame < frameSmpls && written < samplesToDo {
			b := frame[1+posInFrame/2]

			var nibble int32
			if posInFrame%2 == 0 {
				nibble = int32(int8(b&0xF0) >> 4) //nolint:gosec // sign-extend high nibble
			} else {
				nibble = int32(int8(b<<4) >> 4) //nolint:gosec // sign-extend low nibble
			}

			sample := (nibble*scale)<<11 + c1*ch.Hist1 + c2*ch.Hist2
			clamped := clampInt16(sample >> 11)

			out[written*stride] = clamped
			ch.Hist2 = ch.Hist1
			ch.Hist1 = int32(clamped)

			posInFrame++
			written++
		}
	}

	return nil
}
