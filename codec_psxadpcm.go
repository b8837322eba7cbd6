package spore

// psxCoef1/psxCoef2 are the 4-entry compact predictor table PSX-ADPCM's
// 2-bit predictor field selects into.
var (
	psxCoef1 = [4]int32{0, 60, 115, 98}
	psxCoef2 = [4]int32{0, 0, -52, -55}
)

const (
	psxFrameBytes = 16
	psxFrameSmpls = 28
)

// decodePSXADPCM decodes Sony's PlayStation ADPCM: 16-byte frames (1
// predictor/shift byte, 1 loop-flag byte, 28 signed nibbles).
func decodePSXADPCM(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int) error {
	written := 0

	for written < samplesToDo {
		frameIdx := (firstSample + written) / psxFrameSmpls
		posInFrame := (firstSample + written) % psxFrameSmpls
		frameOffset := ch.Offset + int64(frameIdx)*psxFrameBytes

		frame := make([]byte, psxFrameBytes)
		_, _ = ch.Source.Read(frame, frameOffset)

		predictor := (frame[0] >> 4) & 0x3
		shift := frame[0] & 0xF

		c1 := psxCoef1[predictor]
		c2 := psxCoef2[predictor]

		for posInFrame < psxFrameSmpls && written < samplesToDo {
			b := frame[2+posInFrame/2]

			var nibble int32
			if posInFrame%2 == 0 {
				nibble = int32(int8(b<<4) >> 4) //nolint:gosec // sign-extend low nibble
			} else {
				nibble = int32(int8(b&0xF0) >> 4) //nolint:gosec // sign-extend high nibble
			}

			sample := (nibble << (12 - shift))
			predicted := (c1*ch.Hist1 + c2*ch.Hist2) >> 6
			clamped := clampInt16(sample + predicted)

			out[written*stride] = clamped
			ch.Hist2 = ch.Hist1
			ch.Hist1 = int32(clamped)

			posInFrame++
			written++
		}
	}

	return nil
}

// ScanPSXLoopFlags walks every frame in a PSX-ADPCM region and returns the
// frame index of the first frame whose flag byte (the frame's second header
// byte) is the loop-start marker 0x06, and the frame index of the last frame
// whose flag byte is the loop-end marker 0x03. found is false unless both
// exist with the end at or after the start. Containers like XVAG that omit
// an explicit loop region fall back to this scan.
func ScanPSXLoopFlags(data []byte) (loopStartFrame, loopEndFrame int, found bool) {
	const (
		flagLoopStart = 0x06
		flagLoopEnd   = 0x03
	)

	frames := len(data) / psxFrameBytes
	startFrame, endFrame := -1, -1

	for i := range frames {
		flag := data[i*psxFrameBytes+1]

		switch flag {
		case flagLoopStart:
			if startFrame < 0 {
				startFrame = i
			}
		case flagLoopEnd:
			endFrame = i
		}
	}

	if startFrame >= 0 && endFrame >= startFrame {
		return startFrame, endFrame, true
	}

	return 0, 0, false
}
