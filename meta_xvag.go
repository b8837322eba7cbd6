package spore

import "github.com/mycophonic/spore/ioreader"

const tagXVAG = 0x58564147 // "XVAG"

// parseXVAG recognizes Sony's XVAG container: an "XVAG" magic, a chunk
// walk to the "fmt " chunk (codec/channels/sample rate/sample count) and
// the "data" chunk (the PSX-ADPCM payload). XVAG frequently omits an
// explicit loop region; when it does, loop points are recovered by
// scanning every frame's loop-flag byte (the heuristic documented
// alongside ScanPSXLoopFlags).
func parseXVAG(r *ioreader.Reader) (*Stream, error) {
	magic, err := r.TagBE(0)
	if err != nil || magic != tagXVAG {
		return nil, errNotThisFormat
	}

	chunkOffset := int64(0x20)

	var (
		channels   uint8
		sampleRate uint32
		numSamples uint32
		dataOffset int64
		dataSize   int64
		foundFmt   bool
		foundData  bool
	)

	for i := 0; i < 16 && !(foundFmt && foundData); i++ {
		tag, err := r.TagBE(chunkOffset)
		if err != nil {
			break
		}

		size, err := r.U32BE(chunkOffset + 4)
		if err != nil {
			break
		}

		switch tag {
		case 0x666D7420: // "fmt "
			ch, _ := r.U8(chunkOffset + 8)
			sr, _ := r.U32BE(chunkOffset + 0xC)
			ns, _ := r.U32BE(chunkOffset + 0x10)

			channels = ch
			sampleRate = sr
			numSamples = ns
			foundFmt = true
		case 0x64617461: // "data"
			dataOffset = chunkOffset + 8
			dataSize = int64(size) - 8
			foundData = true
		}

		chunkOffset += int64(size)
	}

	if !foundFmt || !foundData || channels == 0 || sampleRate < 300 || sampleRate > 96000 {
		return nil, errNotThisFormat
	}

	s := &Stream{
		Channels:   channels,
		SampleRate: sampleRate,
		NumSamples: int64(numSamples),
		Codec:      CodecPSXADPCM,
		Layout:     LayoutInterleave,
		Meta:       MetaXVAG,
		Interleave: uint32(dataSize) / uint32(channels),
		Source:     r,
	}

	s.ChannelsState = make([]ChannelState, channels)
	for i := range s.ChannelsState {
		off := dataOffset + int64(i)*int64(s.Interleave)
		s.ChannelsState[i] = ChannelState{Offset: off, StartOffset: off, Source: r}
	}

	if loopStart, loopEnd, ok := scanXVAGLoop(r, dataOffset, dataSize, int(channels), int64(s.Interleave)); ok {
		s.Loop = &LoopPoints{Start: loopStart, End: loopEnd}
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}

// scanXVAGLoop reads channel 0's region and scans PSX-ADPCM loop-flag
// bytes for a loop marker, per the Open Question on XVAG loop recovery:
// a final frame whose flag byte is 0x00 is treated as a non-looping
// stream end rather than an (impossible) zero-length loop.
func scanXVAGLoop(r *ioreader.Reader, dataOffset, dataSize int64, channels int, interleave int64) (int64, int64, bool) {
	if channels == 0 {
		return 0, 0, false
	}

	buf := make([]byte, interleave)
	if _, err := r.Read(buf, dataOffset); err != nil {
		return 0, 0, false
	}

	startFrame, endFrame, found := ScanPSXLoopFlags(buf)
	if !found {
		return 0, 0, false
	}

	lastFrame := len(buf)/psxFrameBytes - 1
	if buf[lastFrame*psxFrameBytes+1] == 0x00 {
		return 0, 0, false
	}

	return int64(startFrame) * psxFrameSmpls, int64(endFrame+1) * psxFrameSmpls, true
}
