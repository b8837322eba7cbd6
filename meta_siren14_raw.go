package spore

import (
	"strings"

	"github.com/mycophonic/spore/internal/siren14"
	"github.com/mycophonic/spore/ioreader"
)

// siren14RawExtensions gates parseSiren14Raw: Namco's bare Siren14 stream
// has no container magic at all, so this parser only runs for inputs
// whose name carries one of these extensions, and even then only commits
// after a dummy decode of the first frame succeeds.
var siren14RawExtensions = []string{".s14", ".sns"}

const siren14RawHeaderBytes = 12

// parseSiren14Raw recognizes a bare Siren14 elementary stream: a 12-byte
// header (sample rate, channel count, frame size in bytes) followed
// directly by fixed-size frames, no RIFF/chunk wrapper at all.
func parseSiren14Raw(r *ioreader.Reader) (*Stream, error) {
	name := strings.ToLower(r.Name())

	matched := false

	for _, ext := range siren14RawExtensions {
		if strings.HasSuffix(name, ext) {
			matched = true

			break
		}
	}

	if !matched {
		return nil, errNotThisFormat
	}

	sampleRate, err := r.U32BE(0)
	if err != nil || sampleRate < 300 || sampleRate > 96000 {
		return nil, errNotThisFormat
	}

	channels, err := r.U8(4)
	if err != nil || channels == 0 || channels > 8 {
		return nil, errNotThisFormat
	}

	frameSize, err := r.U16BE(6)
	if err != nil || frameSize == 0 || frameSize > 240 {
		return nil, errNotThisFormat
	}

	firstFrame := make([]byte, frameSize)
	if _, err := r.Read(firstFrame, siren14RawHeaderBytes); err != nil {
		return nil, errNotThisFormat
	}

	probeCfg := siren14.Config{SampleRate: int(sampleRate), FrameSizeBytes: int(frameSize), Channels: int(channels)}

	decodeOK := func(frame []byte) bool {
		_, err := siren14.NewDecoder(probeCfg).DecodeFrame(frame)

		return err == nil
	}

	var streamKey []byte

	if !decodeOK(firstFrame) {
		key, ok := siren14.TryKeys(firstFrame, decodeOK)
		if !ok {
			return nil, errNotThisFormat
		}

		streamKey = key
	}

	dataSize := r.Size() - siren14RawHeaderBytes
	framesPerChannel := dataSize / (int64(frameSize) * int64(channels))
	numSamples := framesPerChannel * siren14.FrameSamples

	s := &Stream{
		Channels:   channels,
		SampleRate: sampleRate,
		NumSamples: numSamples,
		Codec:      CodecSiren14,
		Layout:     LayoutInterleave,
		Meta:       MetaSiren14Raw,
		Interleave: uint32(frameSize),
		FrameSize:  uint32(frameSize),
		Source:     r,
	}

	s.ChannelsState = make([]ChannelState, channels)

	for i := range s.ChannelsState {
		cfg := siren14.Config{SampleRate: int(sampleRate), FrameSizeBytes: int(frameSize), Channels: int(channels)}

		s.ChannelsState[i] = ChannelState{
			Offset:      siren14RawHeaderBytes + int64(i)*int64(frameSize),
			StartOffset: siren14RawHeaderBytes + int64(i)*int64(frameSize),
			Source:      r,
			CodecCtx:    &siren14Context{dec: siren14.NewDecoder(cfg)},
			Siren14Key:  streamKey,
		}
	}

	s.Playback = NewPlaybackState(PlaybackConfig{}, int(sampleRate))
	s.snapshotStart()

	return s, nil
}
