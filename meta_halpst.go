package spore

import "github.com/mycophonic/spore/ioreader"

var tagHALPST = [8]byte{'H', 'A', 'L', 'P', 'S', 'T', 0, 0}

const halpstFirstBlockOffset = 0x20

// parseHALPST recognizes Nintendo's HALPST block-chain container: an 8-byte
// "HALPST\0\0" magic, a sample rate and channel count, then a chain of
// 32-byte block headers starting at offset 0x20. The chain is walked once
// here to compute num_samples and to detect a loop: a later block whose
// next-block-offset field points backward to an earlier block means the
// stream loops from that earlier block's first sample to the end.
func parseHALPST(r *ioreader.Reader) (*Stream, error) {
	var magic [8]byte
	for i := range magic {
		b, err := r.U8(int64(i))
		if err != nil {
			return nil, errNotThisFormat
		}

		magic[i] = b
	}

	if magic != tagHALPST {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U32BE(8)
	if err != nil || sampleRate < 300 || sampleRate > 96000 {
		return nil, errNotThisFormat
	}

	channels, err := r.U32BE(12)
	if err != nil || channels == 0 || channels > 8 {
		return nil, errNotThisFormat
	}

	totalSamples, loop, err := walkHALPSTChain(r, uint8(channels))
	if err != nil {
		return nil, errNotThisFormat
	}

	s := &Stream{
		Channels:   uint8(channels),
		SampleRate: sampleRate,
		NumSamples: totalSamples,
		Codec:      CodecDSP,
		Layout:     LayoutBlockedHALPST,
		Meta:       MetaHALPST,
		Loop:       loop,
		Source:     r,
		block:      &halpstBlocks{},
	}

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		s.ChannelsState[i].Source = r
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.Playback.NextBlockOffset = halpstFirstBlockOffset
	s.snapshotStart()

	return s, nil
}

const halpstChainSafetyCap = 1 << 20

func walkHALPSTChain(r *ioreader.Reader, channels uint8) (int64, *LoopPoints, error) {
	off := int64(halpstFirstBlockOffset)
	total := int64(0)

	blockStartSamples := map[int64]int64{}

	for range halpstChainSafetyCap {
		blockSamples, err := r.U32BE(off)
		if err != nil {
			break
		}

		nextRaw, err := r.I32BE(off + 4)
		if err != nil {
			break
		}

		blockStartSamples[off] = total
		total += int64(blockSamples)

		if nextRaw < 0 {
			break
		}

		next := int64(nextRaw)
		if next <= off {
			if start, ok := blockStartSamples[next]; ok {
				return total, &LoopPoints{Start: start, End: total}, nil
			}

			break
		}

		off = next
	}

	_ = channels

	return total, nil, nil
}
