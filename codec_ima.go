package spore

// imaStepTable is the standard 89-entry IMA ADPCM step size table, shared by
// every IMA flavor this package decodes.
var imaStepTable = [89]int32{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31,
	34, 37, 41, 45, 50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307, 337, 371, 408, 449, 494, 544, 598, 658,
	724, 796, 876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066, 2272, 2499, 2749, 3024,
	3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// imaIndexTable is the per-nibble step-index adjustment table.
var imaIndexTable = [16]int32{-1, -1, -1, -1, 2, 4, 6, 8, -1, -1, -1, -1, 2, 4, 6, 8}

// imaStep decodes a single 4-bit code against the channel's running
// predictor and step index, shared by every IMA flavor.
func imaStep(ch *ChannelState, code int32) int16 {
	step := imaStepTable[ch.AdpcmStepIndex]

	diff := step >> 3
	if code&1 != 0 {
		diff += step >> 2
	}

	if code&2 != 0 {
		diff += step >> 1
	}

	if code&4 != 0 {
		diff += step
	}

	if code&8 != 0 {
		diff = -diff
	}

	ch.Hist1 = int32(clampInt16(ch.Hist1 + diff))

	ch.AdpcmStepIndex += imaIndexTable[code&0xF]
	if ch.AdpcmStepIndex < 0 {
		ch.AdpcmStepIndex = 0
	} else if ch.AdpcmStepIndex > 88 {
		ch.AdpcmStepIndex = 88
	}

	return clampInt16(ch.Hist1)
}

// decodeIMA decodes plain (DVI-style) IMA ADPCM: a continuous nibble
// stream, low nibble of each byte first, with the running predictor and
// step index carried in ChannelState across calls and reset by whatever
// per-block header the stream's layout applies.
func decodeIMA(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int) error {
	return decodeIMANibbles(ch, out, stride, firstSample, samplesToDo, true)
}

// decodeMSIMA decodes Microsoft's IMA ADPCM variant. The nibble stream is
// identical to plain IMA at the codec-kernel level; the block-header
// layout that owns predictor/step (re)initialization lives above this
// kernel.
func decodeMSIMA(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int) error {
	return decodeIMANibbles(ch, out, stride, firstSample, samplesToDo, true)
}

// decodeXboxIMA decodes Xbox's IMA ADPCM variant, which differs from
// plain/MS IMA only in how channels interleave at the block layout level;
// the nibble-level decode is the same low-nibble-first stream.
func decodeXboxIMA(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int) error {
	return decodeIMANibbles(ch, out, stride, firstSample, samplesToDo, true)
}

func decodeIMANibbles(ch *ChannelState, out []int16, stride, firstSample, samplesToDo int, lowNibbleFirst bool) error {
	written := 0

	for written < samplesToDo {
		nibbleIdx := firstSample + written
		byteOffset := ch.Offset + int64(nibbleIdx/2)

		b := make([]byte, 1)
		_, _ = ch.Source.Read(b, byteOffset)

		var code int32
		if nibbleIdx%2 == 0 == lowNibbleFirst {
			code = int32(b[0] & 0xF)
		} else {
			code = int32(b[0] >> 4)
		}

		out[written*stride] = imaStep(ch, code)
		written++
	}

	return nil
}
