package spore

import "fmt"

// msadpcmCoef1/msadpcmCoef2 are Microsoft's 7-entry ADPCM predictor
// coefficient table (WAVEFORMATEX's aCoef array for format tag 0x0002).
var (
	msadpcmCoef1 = [7]int32{256, 512, 0, 192, 240, 460, 392}
	msadpcmCoef2 = [7]int32{0, -256, 0, 64, 0, -208, -232}
)

// msadpcmAdaptTable scales the running delta after every decoded nibble.
var msadpcmAdaptTable = [16]int32{
	230, 230, 230, 230, 307, 409, 512, 614,
	768, 614, 512, 409, 307, 230, 230, 230,
}

// ValidateMSADPCMCoefIndex reports whether idx is a legal predictor index
// into the 7-entry coefficient table, the check a block header's
// predictor byte must pass before it is trusted.
func ValidateMSADPCMCoefIndex(idx int) bool {
	return idx >= 0 && idx < len(msadpcmCoef1)
}

// decodeMSADPCM decodes Microsoft ADPCM's per-channel sample stream. The
// block header (predictor index, initial delta, and the two seed samples)
// is consumed by the owning block layout, which seeds ch.AdpcmCoef[0:2],
// ch.AdpcmScale and ch.Hist1/Hist2 before handing control here. Per the
// format, a block's first two output samples are the header's seed
// samples themselves (Hist2, then Hist1) with no nibble read at all;
// every sample after that comes from this channel's share of the block's
// round-robin nibble-interleaved data region at ch.Offset.
func decodeMSADPCM(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int, params CodecParams) error {
	_ = params

	channels := int64(ch.MSADPCMChannels)
	if channels == 0 {
		channels = 1
	}

	written := 0

	for written < samplesToDo {
		pos := firstSample + written

		var sample int16

		switch pos {
		case 0:
			sample = clampInt16(ch.Hist2)
		case 1:
			sample = clampInt16(ch.Hist1)
		default:
			nibbleInChannel := int64(pos - 2)
			globalNibble := nibbleInChannel*channels + int64(ch.MSADPCMChanIndex)
			byteOffset := ch.Offset + globalNibble/2

			b := make([]byte, 1)
			if _, err := ch.Source.Read(b, byteOffset); err != nil {
				return fmt.Errorf("msadpcm: %w", err)
			}

			var raw uint8
			if globalNibble%2 == 0 {
				raw = b[0] >> 4
			} else {
				raw = b[0] & 0xF
			}

			signedNibble := int32(int8(raw<<4) >> 4) //nolint:gosec // sign-extend

			coef1 := ch.AdpcmCoef[0]
			coef2 := ch.AdpcmCoef[1]

			predicted := (ch.Hist1*int32(coef1) + ch.Hist2*int32(coef2)) >> 8
			decoded := predicted + signedNibble*ch.AdpcmScale
			clamped := clampInt16(decoded)

			sample = clamped
			ch.Hist2 = ch.Hist1
			ch.Hist1 = int32(clamped)

			ch.AdpcmScale = (msadpcmAdaptTable[raw] * ch.AdpcmScale) >> 8
			if ch.AdpcmScale < 16 {
				ch.AdpcmScale = 16
			}
		}

		out[written*stride] = sample
		written++
	}

	return nil
}
