package spore

import "github.com/mycophonic/spore/ioreader"

// codecContext is the narrow interface for the few codecs that need
// out-of-band state beyond ChannelState (currently: Siren14's MLT overlap
// buffers). Modeled as an interface instead of an opaque any/void* so the
// loop-snapshot path can clone it without a type switch leaking into the
// render loop.
type codecContext interface {
	// Clone returns a deep copy, used to save/restore state across a loop
	// boundary.
	Clone() codecContext
}

// Stream is the open-state value produced by Open/OpenSubsong and consumed
// by the render engine. It owns its Source exclusively. A Stream is not
// safe for concurrent use.
type Stream struct {
	Channels   uint8
	SampleRate uint32

	NumSamples int64
	Loop       *LoopPoints

	Codec  CodecKind
	Layout LayoutKind
	Meta   MetaKind

	Interleave     uint32
	InterleaveLast uint32
	FrameSize      uint32
	// Cutoff is the ADX low-pass cutoff frequency in Hz; zero uses the
	// spec's default of 500Hz. Unused by every other codec.
	Cutoff uint32

	ChannelLayoutMask uint32
	StreamIndex       uint32
	NumSubsongs       uint32

	ChannelsState []ChannelState
	Playback      PlaybackState

	Source *ioreader.Reader

	block blockUpdater

	// startChannels/startPlayback hold the post-parse snapshot each parser
	// takes through snapshotStart,
	// the target Reset restores to (distinct from a loop snapshot: this is
	// "rewind the whole stream", not "rewind to loop.start").
	startChannels []ChannelState
	startPlayback PlaybackState
}

// Close releases the Stream's byte source and any sibling readers it
// opened.
func (s *Stream) Close() error {
	if s.Source == nil {
		return nil
	}

	return s.Source.Close()
}

// Describe returns a diagnostic snapshot of the stream's format.
func (s *Stream) Describe() StreamInfo {
	info := StreamInfo{
		Codec:      s.Codec.String(),
		Layout:     s.Layout.String(),
		Meta:       s.Meta.String(),
		Channels:   int(s.Channels),
		SampleRate: int(s.SampleRate),
		NumSamples: s.NumSamples,
	}

	if s.Loop != nil {
		info.LoopStart = s.Loop.Start
		info.LoopEnd = s.Loop.End
		info.Looping = true
	}

	if s.NumSamples > 0 && s.SampleRate > 0 {
		streamBytes := s.Codec.SamplesToBytes(int(s.NumSamples), int(s.Channels), int(s.FrameSize))
		info.BitrateEstimate = float64(streamBytes) * 8 * float64(s.SampleRate) / float64(s.NumSamples)
	}

	return info
}

// StreamInfo is the read-only description returned by Describe, the Go
// shape of the spec's describe() -> StreamInfo contract.
type StreamInfo struct {
	Codec      string
	Layout     string
	Meta       string
	Channels   int
	SampleRate int
	NumSamples int64
	Looping    bool
	LoopStart  int64
	LoopEnd    int64
	// BitrateEstimate is stream_size*8*sample_rate/num_samples, a trivial
	// byte-rate division — nothing fancier is in scope for this core.
	BitrateEstimate float64
}

// snapshotStart captures the post-parse state; every parser calls it
// before returning its Stream. It is used by Reset to rewind the entire stream (as opposed to the
// loop.start/loop.end snapshot used mid-render).
func (s *Stream) snapshotStart() {
	s.startChannels = cloneChannelStates(s.ChannelsState)
	s.startPlayback = s.Playback
}

func cloneChannelStates(in []ChannelState) []ChannelState {
	out := make([]ChannelState, len(in))

	for i, ch := range in {
		out[i] = ch.cloneCodecCtx()
	}

	return out
}
