package spore

// Render writes up to requested interleaved int16 samples into out (which
// must have capacity for requested*Channels) and returns the number of
// samples actually written per channel. Returning fewer than requested
// means the stream ended without looping. Any error from a layout driver or
// a codec kernel (for example a block header the backing Io fails to read,
// wrapping ioreader.ErrIOFailure) is returned alongside the partial count
// already written; most kernels ignore read errors and decode a short read
// as silence.
func (s *Stream) Render(out []int16, requested int) (int, error) {
	driver := s.driverFor()
	written := 0

	for written < requested && s.Playback.CurrentSample < s.NumSamples {
		blockSamples, err := driver.blockSamples(s)
		if err != nil {
			return written, err
		}

		samplesToDo := requested - written
		if remain := blockSamples - int64(s.Playback.SamplesIntoBlock); remain < int64(samplesToDo) {
			samplesToDo = int(remain)
		}

		if frameLimit := s.codecFrameLimit(); frameLimit > 0 && frameLimit < samplesToDo {
			samplesToDo = frameLimit
		}

		if s.NumSamples-s.Playback.CurrentSample < int64(samplesToDo) {
			samplesToDo = int(s.NumSamples - s.Playback.CurrentSample)
		}

		if s.Loop != nil && !s.Playback.hitLoop && s.Playback.CurrentSample < s.Loop.Start &&
			s.Loop.Start-s.Playback.CurrentSample < int64(samplesToDo) {
			samplesToDo = int(s.Loop.Start - s.Playback.CurrentSample)
		}

		loopActive := s.loopStillActive()
		if loopActive && s.Playback.CurrentSample < s.Loop.End &&
			s.Loop.End-s.Playback.CurrentSample < int64(samplesToDo) {
			samplesToDo = int(s.Loop.End - s.Playback.CurrentSample)
		}

		if samplesToDo <= 0 {
			break
		}

		s.maybeSnapshotLoop()

		channels := int(s.Channels)
		for ch := range s.ChannelsState {
			dst := out[written*channels+ch:]
			if err := s.decodeChannel(&s.ChannelsState[ch], dst, channels, s.Playback.SamplesIntoBlock, samplesToDo); err != nil {
				return written, err
			}
		}

		written += samplesToDo
		s.Playback.CurrentSample += int64(samplesToDo)
		s.Playback.SamplesIntoBlock += samplesToDo

		looped := s.maybeRestoreLoop()

		if !looped && int64(s.Playback.SamplesIntoBlock) >= blockSamples {
			if err := driver.advance(s); err != nil {
				return written, err
			}

			s.Playback.SamplesIntoBlock = 0
		}
	}

	s.applyFade(out, written)

	return written, nil
}

// codecFrameLimit returns the number of samples remaining until the
// codec's own frame boundary, or 0 if the codec has no meaningful
// per-call alignment constraint (e.g. raw PCM).
func (s *Stream) codecFrameLimit() int {
	spf := s.Codec.SamplesPerFrame(int(s.FrameSize))
	if spf <= 1 {
		return 0
	}

	into := int(s.Playback.CurrentSample) % spf

	return spf - into
}

func (s *Stream) loopStillActive() bool {
	return s.Loop != nil && !s.Playback.ignoreLoop && !s.Playback.loopTargetReached &&
		(s.Playback.loopTarget == 0 || s.Playback.loopsDone < s.Playback.loopTarget)
}

// maybeSnapshotLoop implements loop protocol step 1 from spec.md §4.E: the
// first time playback reaches loop.start, deep-copy every channel's state
// and the block cursors.
func (s *Stream) maybeSnapshotLoop() {
	if s.Loop == nil || s.Playback.hitLoop || s.Playback.CurrentSample != s.Loop.Start {
		return
	}

	s.Playback.snapshot = loopSnapshot{
		channels:          cloneChannelStates(s.ChannelsState),
		samplesIntoBlock:  s.Playback.SamplesIntoBlock,
		currentBlockOff:   s.Playback.CurrentBlockOffset,
		nextBlockOff:      s.Playback.NextBlockOffset,
		currentBlockSize:  s.Playback.CurrentBlockSize,
		currentBlockSmpls: s.Playback.CurrentBlockSamples,
		valid:             true,
	}

	s.Playback.hitLoop = true
}

// maybeRestoreLoop implements loop protocol step 2: when playback reaches
// loop.end, restore the snapshot, rewind to loop.start, and count the
// iteration. Returns true if a restore happened.
func (s *Stream) maybeRestoreLoop() bool {
	if !s.loopStillActive() || s.Playback.CurrentSample != s.Loop.End || !s.Playback.snapshot.valid {
		return false
	}

	snap := s.Playback.snapshot
	for i, ch := range snap.channels {
		s.ChannelsState[i] = ch.cloneCodecCtx()
	}

	s.Playback.SamplesIntoBlock = snap.samplesIntoBlock
	s.Playback.CurrentBlockOffset = snap.currentBlockOff
	s.Playback.NextBlockOffset = snap.nextBlockOff
	s.Playback.CurrentBlockSize = snap.currentBlockSize
	s.Playback.CurrentBlockSamples = snap.currentBlockSmpls

	s.Playback.CurrentSample = s.Loop.Start
	s.Playback.loopsDone++

	if s.Playback.loopTarget > 0 && s.Playback.loopsDone >= s.Playback.loopTarget {
		// loopsDone counts completed iterations; subsequent checks via
		// loopStillActive() now return false and the stream is allowed to
		// run to its natural end (fade, if configured, still applies).
		s.Playback.loopTargetReached = true
	}

	return true
}

// applyFade scales the tail of a freshly rendered buffer by a linear
// amplitude ramp when a fade length is configured. Fade samples are
// counted against the final playCurrentSample position.
func (s *Stream) applyFade(out []int16, written int) {
	if s.Playback.fadeSamples <= 0 {
		return
	}

	channels := int(s.Channels)
	fadeStart := s.NumSamples - s.Playback.fadeSamples
	posBeforeWrite := s.Playback.CurrentSample - int64(written)

	for i := 0; i < written; i++ {
		samplePos := posBeforeWrite + int64(i)
		if samplePos < fadeStart {
			continue
		}

		k := samplePos - fadeStart
		ramp := float64(s.Playback.fadeSamples-k) / float64(s.Playback.fadeSamples)

		if ramp < 0 {
			ramp = 0
		}

		for ch := range channels {
			idx := i*channels + ch
			out[idx] = int16(float64(out[idx]) * ramp)
		}
	}
}

// Reset restores every channel's decoder state and the playback cursor to
// the start-of-stream snapshot each parser captures before returning the
// stream. Required after
// a backward seek.
func (s *Stream) Reset() {
	for i, ch := range s.startChannels {
		s.ChannelsState[i] = ch.cloneCodecCtx()
	}

	s.Playback = s.startPlayback
}

// SeekTo positions the stream so the next Render call emits the sample at
// the given index. Fast-forwarding always goes through the real decode
// path (into a scratch buffer) so every codec's state stays bit-exact;
// there is no shortcut.
func (s *Stream) SeekTo(sample int64) error {
	if sample < s.Playback.CurrentSample {
		s.Reset()
	}

	channels := int(s.Channels)
	scratch := make([]int16, 4096*channels)

	for s.Playback.CurrentSample < sample {
		want := sample - s.Playback.CurrentSample
		chunk := int64(len(scratch) / channels)

		if want < chunk {
			chunk = want
		}

		n, err := s.Render(scratch, int(chunk))
		if err != nil {
			return err
		}

		if n == 0 {
			break
		}
	}

	return nil
}

// SetLoopTarget configures the stream to stop returning to loop.start
// after n complete loop iterations, letting the stream run to its natural
// end afterward. n <= 0 means loop forever.
func (s *Stream) SetLoopTarget(n int) {
	if n < 0 {
		n = 0
	}

	s.Playback.loopTarget = n
	s.Playback.loopTargetReached = false
	s.Playback.loopsDone = 0
}
