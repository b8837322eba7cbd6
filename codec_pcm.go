package spore

import "math"

// ulawTable and alawTable are the standard ITU-T G.711 expansion tables.
var ulawTable = buildULawTable()

var alawTable = buildALawTable()

func buildULawTable() [256]int16 {
	var t [256]int16

	for i := range 256 {
		u := ^byte(i)
		sign := u & 0x80
		exponent := (u >> 4) & 0x07
		mantissa := u & 0x0F

		sample := (int32(mantissa)<<3 + 0x84) << exponent
		sample -= 0x84

		if sign != 0 {
			sample = -sample
		}

		t[i] = clampInt16(sample)
	}

	return t
}

func buildALawTable() [256]int16 {
	var t [256]int16

	for i := range 256 {
		a := byte(i) ^ 0x55
		sign := a & 0x80
		exponent := (a >> 4) & 0x07
		mantissa := a & 0x0F

		var sample int32
		if exponent == 0 {
			sample = int32(mantissa)<<4 + 8
		} else {
			sample = (int32(mantissa)<<4 + 0x108) << (exponent - 1)
		}

		if sign == 0 {
			sample = -sample
		}

		t[i] = clampInt16(sample)
	}

	return t
}

// decodePCM decodes every flat, header-less sample format: linear PCM at
// several bit depths, float32, and the two byte-coded log formats.
func decodePCM(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int, codec CodecKind) error {
	bps := codec.FrameSizeBytes(0)

	buf := make([]byte, samplesToDo*bps)
	n, _ := ch.Source.Read(buf, ch.Offset+int64(firstSample)*int64(bps))
	got := n / bps

	for i := range got {
		b := buf[i*bps : i*bps+bps]

		var sample int16

		switch codec {
		case CodecPCM8:
			sample = int16(int32(b[0])-128) * 256
		case CodecPCM16LE:
			sample = int16(uint16(b[0]) | uint16(b[1])<<8) //nolint:gosec // intentional reinterpretation
		case CodecPCM16BE:
			sample = int16(uint16(b[1]) | uint16(b[0])<<8) //nolint:gosec // intentional reinterpretation
		case CodecPCM24LE:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF)
			}

			sample = clampInt16(v >> 8)
		case CodecPCMFloat32:
			bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
			f := math.Float32frombits(bits)
			sample = clampInt16(int32(f * 32767))
		case CodecULaw:
			sample = ulawTable[b[0]]
		case CodecALaw:
			sample = alawTable[b[0]]
		case CodecSDX2:
			sample = sdx2Step(ch, b[0])
		default:
			sample = 0
		}

		out[i*stride] = sample
	}

	return nil
}

// sdx2Step decodes one SDX2 byte: a signed square-delta code applied to
// the channel's running predictor.
func sdx2Step(ch *ChannelState, b byte) int16 {
	v := int32(int8(b)) //nolint:gosec // intentional reinterpretation

	delta := v * absInt32(v) * 2
	if b&1 != 0 {
		ch.Hist1 += delta
	} else {
		ch.Hist1 = delta
	}

	clamped := clampInt16(ch.Hist1)
	ch.Hist1 = int32(clamped)

	return clamped
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}

	return v
}

