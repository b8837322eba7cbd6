package spore

// CodecParams carries the handful of stream-level parameters a codec
// kernel needs beyond the ChannelState it is handed. It replaces the
// "global configuration" anti-pattern the source exhibits: everything a
// kernel needs travels explicitly through this struct.
type CodecParams struct {
	// FrameSize is the configurable frame size for codecs that have one
	// (Siren14: 60/80/120 bytes; MS-ADPCM: the container's block align).
	// Zero means "use the codec's fixed default".
	FrameSize int
	// Cutoff is the ADX low-pass cutoff frequency in Hz used to derive the
	// standard/exp variants' fixed predictor coefficients. Zero means the
	// spec default of 500Hz.
	Cutoff int
	// SampleRate is the stream's sample rate, needed alongside Cutoff to
	// derive the ADX standard/exp predictor coefficients.
	SampleRate int
	// CodecCtx holds the per-channel out-of-band decoder (currently only
	// Siren14's MLT context) when the codec needs one.
	CodecCtx codecContext
}
