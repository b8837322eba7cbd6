package spore

import (
	"math"

	"github.com/mycophonic/spore/internal/adxkey"
)

// adxVariant selects how an ADX frame's scale field and predictor
// coefficients are derived. All five variants share the same 18-byte
// frame (2-byte header + 32 signed nibbles) and the same sample
// recursion; only this derivation differs, per spec.md §4.B.
type adxVariant uint8

const (
	adxVariantStandard adxVariant = iota
	adxVariantExp
	adxVariantFixed
	adxVariantEnc8
	adxVariantEnc9
)

const (
	adxFrameBytes  = 18
	adxFrameHeader = 2
	adxFrameSmpls  = 32
	adxEOFScale    = 0x8001
	adxScaleMask13 = 0x1FFF
)

// adxFixedCoefs is the 4-pair predictor table used by the "fixed
// coefficients" ADX variant, selected by bits 5-6 of the frame header's
// first byte (frame[0]>>5, masked to the table's four entries).
// Reverse-engineered constant table, carried verbatim
// the way the MS-ADPCM 7-entry table is: a fixed LUT, not derived.
var adxFixedCoefs = [4][2]int32{
	{0, 0},
	{0x0F00, 0x0000},
	{0x1CC0, -0x0D00},
	{0x1880, -0x0880},
}

// adxCoefsFromCutoff derives the (c1, c2) predictor pair for the
// standard/exp variants from a low-pass cutoff frequency, per spec.md
// §4.B's closed-form formula.
func adxCoefsFromCutoff(sampleRate, cutoffHz int) (c1, c2 int32) {
	if cutoffHz <= 0 {
		cutoffHz = 500
	}

	sqrt2 := math.Sqrt2
	z := math.Cos(2 * math.Pi * float64(cutoffHz) / float64(sampleRate))
	a := sqrt2 - z
	b := sqrt2 - 1
	c := (a - math.Sqrt((a+b)*(a-b))) / b

	c1 = int32(math.Floor(8192 * c))
	c2 = int32(math.Floor(-4096 * c * c))

	return c1, c2
}

// decodeADX decodes samplesToDo ADX samples starting at firstSample's
// offset into the current 18-byte frame.
func decodeADX(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int, variant adxVariant, params CodecParams) error {
	written := 0

	for written < samplesToDo {
		frameIdx := (firstSample + written) / adxFrameSmpls
		posInFrame := (firstSample + written) % adxFrameSmpls
		frameOffset := ch.Offset + int64(frameIdx)*adxFrameBytes

		frame := make([]byte, adxFrameBytes)
		_, _ = ch.Source.Read(frame, frameOffset) // short reads at EOF decode as silence

		rawScale := uint16(frame[0])<<8 | uint16(frame[1])

		scale, c1, c2, isEOF := adxFrameParams(ch, rawScale, frame, variant, params)

		for posInFrame < adxFrameSmpls && written < samplesToDo {
			var nibble int32

			if !isEOF {
				b := frame[adxFrameHeader+posInFrame/2]
				if posInFrame%2 == 0 {
					nibble = int32(int8(b<<0) >> 4) //nolint:gosec // sign-extend high nibble
				} else {
					nibble = int32(int8(b<<4) >> 4) //nolint:gosec // sign-extend low nibble
				}
			}

			sample := nibble*int32(scale) + ((c1*ch.Hist1 + c2*ch.Hist2) >> 12)
			clamped := clampInt16(sample)

			out[written*stride] = clamped
			ch.Hist2 = ch.Hist1
			ch.Hist1 = int32(clamped)

			posInFrame++
			written++
		}

		if posInFrame >= adxFrameSmpls && (variant == adxVariantEnc8 || variant == adxVariantEnc9) {
			rollADXKey(ch)
		}
	}

	return nil
}

// adxFrameParams derives this frame's effective scale and predictor
// coefficients for the given variant, handling the EOF sentinel.
func adxFrameParams(ch *ChannelState, rawScale uint16, frame []byte, variant adxVariant, params CodecParams) (scale uint16, c1, c2 int32, isEOF bool) {
	if rawScale == adxEOFScale {
		return 0, 0, 0, true
	}

	sampleRate := params.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	cutoff := params.Cutoff
	if cutoff <= 0 {
		cutoff = 500
	}

	switch variant {
	case adxVariantStandard:
		c1, c2 = adxCoefsFromCutoff(sampleRate, cutoff)

		return rawScale + 1, c1, c2, false

	case adxVariantExp:
		c1, c2 = adxCoefsFromCutoff(sampleRate, cutoff)

		return 1 << (12 - rawScale), c1, c2, false

	case adxVariantFixed:
		idx := frame[0] >> 5 & 0x3
		pair := adxFixedCoefs[idx]

		return (rawScale & adxScaleMask13) + 1, pair[0], pair[1], false

	case adxVariantEnc8, adxVariantEnc9:
		decrypted := (rawScale ^ ch.XorKey) & adxScaleMask13

		c1, c2 = adxCoefsFromCutoff(sampleRate, cutoff)

		return decrypted + 1, c1, c2, false

	default:
		return rawScale + 1, 0, 0, false
	}
}

// rollADXKey advances a channel's encryption key by adx_channels LCG
// steps: the key table models one shared sequence and each channel reads
// a different, fixed phase of it, so one frame-period for the whole
// stream is adx_channels steps for any single channel.
func rollADXKey(ch *ChannelState) {
	k := adxkey.Key{Xor: ch.XorKey, Mult: ch.MultKey, Add: ch.AddKey}

	steps := int(ch.ADXChannels)
	if steps < 1 {
		steps = 1
	}

	for range steps {
		k = k.Roll()
	}

	ch.XorKey = k.Xor
}

func clampInt16(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}
