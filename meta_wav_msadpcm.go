package spore

import "github.com/mycophonic/spore/ioreader"

const wavFormatMSADPCM = 0x0002

// parseWAVMSADPCM recognizes a RIFF/WAVE container carrying Microsoft
// ADPCM (fmt tag 0x0002): walk the chunk chain the way any RIFF reader
// does, pull channel count/sample rate/block align/samples-per-block out
// of fmt, and the coefficient table out of fmt's extension, then map the
// data chunk as one MSADPCM block per blockAlign bytes.
func parseWAVMSADPCM(r *ioreader.Reader) (*Stream, error) {
	tag, err := r.TagBE(0)
	if err != nil || tag != 0x52494646 { // "RIFF"
		return nil, errNotThisFormat
	}

	wave, err := r.TagBE(8)
	if err != nil || wave != 0x57415645 { // "WAVE"
		return nil, errNotThisFormat
	}

	var (
		channels      uint16
		sampleRate    uint32
		blockAlign    uint16
		samplesPerBlk uint16
		coefPairs     [][2]int16
		dataOffset    int64
		dataSize      int64
		fmtFound      bool
		dataFound     bool
	)

	off := int64(12)

	for i := 0; i < 32 && !(fmtFound && dataFound); i++ {
		chunkID, err := r.TagBE(off)
		if err != nil {
			break
		}

		size, err := r.U32LE(off + 4)
		if err != nil {
			break
		}

		switch chunkID {
		case 0x666D7420: // "fmt "
			audioFormat, _ := r.U16LE(off + 8)
			if audioFormat != wavFormatMSADPCM {
				return nil, errNotThisFormat
			}

			channels, _ = r.U16LE(off + 10)
			sampleRate, _ = r.U32LE(off + 12)
			blockAlign, _ = r.U16LE(off + 20)

			numCoef, _ := r.U16LE(off + 8 + 18 + 2)
			samplesPerBlk, _ = r.U16LE(off + 8 + 18)

			coefPairs = make([][2]int16, numCoef)
			coefBase := off + 8 + 22

			for c := range coefPairs {
				c1, _ := r.I16LE(coefBase + int64(c)*4)
				c2, _ := r.I16LE(coefBase + int64(c)*4 + 2)
				coefPairs[c] = [2]int16{c1, c2}
			}

			fmtFound = true

		case 0x64617461: // "data"
			dataOffset = off + 8
			dataSize = int64(size)
			dataFound = true
		}

		off += 8 + int64(size) + int64(size&1)
	}

	if !fmtFound || !dataFound || channels == 0 || blockAlign == 0 ||
		sampleRate < 300 || sampleRate > 96000 || len(coefPairs) == 0 {
		return nil, errNotThisFormat
	}

	numBlocks := dataSize / int64(blockAlign)
	numSamples := numBlocks * int64(samplesPerBlk)

	// Validate channel 0's header in the first block eagerly so a
	// malformed file is rejected at Open time rather than on first Render.
	var probe ChannelState
	if err := seedMSADPCMBlockHeader(r, dataOffset, &probe, coefPairs); err != nil {
		return nil, errNotThisFormat
	}

	s := &Stream{
		Channels:   uint8(channels),
		SampleRate: sampleRate,
		NumSamples: numSamples,
		Codec:      CodecMSADPCM,
		Layout:     LayoutBlockedMSADPCM,
		Meta:       MetaWAVMSADPCM,
		FrameSize:  uint32(blockAlign),
		Source:     r,
		block:      newMSADPCMBlocks(dataOffset, int64(blockAlign), coefPairs),
	}

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		s.ChannelsState[i].Source = r
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}

// seedMSADPCMBlockHeader reads one channel's 7-byte MS-ADPCM block header
// (predictor index, initial delta, two seed samples) at headerOffset and
// seeds the channel's running predictor state. Offset is left untouched:
// in the real block layout every channel's header is followed by every
// other channel's header before the shared, nibble-interleaved data
// region begins, so the caller positions Offset once all headers in the
// block are read.
func seedMSADPCMBlockHeader(r *ioreader.Reader, headerOffset int64, ch *ChannelState, coefPairs [][2]int16) error {
	predictor, err := r.U8(headerOffset)
	if err != nil || int(predictor) >= len(coefPairs) {
		return ErrInvalid
	}

	delta, err := r.I16LE(headerOffset + 1)
	if err != nil {
		return err
	}

	sample1, err := r.I16LE(headerOffset + 3)
	if err != nil {
		return err
	}

	sample2, err := r.I16LE(headerOffset + 5)
	if err != nil {
		return err
	}

	coef := coefPairs[predictor]

	ch.AdpcmCoef[0] = coef[0]
	ch.AdpcmCoef[1] = coef[1]
	ch.AdpcmScale = int32(delta)
	// The header's sample1/sample2 fields are emitted in reverse order as
	// the block's first two output samples (sample2 then sample1), so
	// Hist1 (the more recent sample for prediction) takes sample1 and
	// Hist2 takes sample2.
	ch.Hist1 = int32(sample1)
	ch.Hist2 = int32(sample2)

	return nil
}
