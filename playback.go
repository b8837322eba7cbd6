package spore

// PlaybackConfig carries host preferences into a Stream at construction
// time. Nothing in spore reads global/package-level mutable configuration;
// every behaviour a host can tune is an explicit field here.
type PlaybackConfig struct {
	LoopForever      bool
	LoopCount        float64
	FadeSeconds      float64
	FadeDelaySeconds float64
	IgnoreLoop       bool
	ThreadPriority   int
}

// loopSnapshot is a deep copy of every per-channel decoder state plus the
// block cursors, captured at loop.start and restored at loop.end. Modeled
// as an explicit, type-checked struct rather than a raw memcpy of a struct
// array.
type loopSnapshot struct {
	channels          []ChannelState
	samplesIntoBlock  int
	currentBlockOff   int64
	nextBlockOff      int64
	currentBlockSize  int64
	currentBlockSmpls int64
	valid             bool
}

// PlaybackState tracks the current render position and loop/fade status of
// a Stream.
type PlaybackState struct {
	CurrentSample    int64
	SamplesIntoBlock int

	CurrentBlockOffset  int64
	NextBlockOffset     int64
	CurrentBlockSize    int64
	CurrentBlockSamples int64

	hitLoop    bool
	loopsDone  int
	loopTarget int // 0 == unlimited
	snapshot   loopSnapshot

	fadeSamples       int64
	fadeDelaySamples  int64
	ignoreLoop        bool
	loopTargetReached bool
}

// NewPlaybackState builds the initial playback state for a freshly opened
// Stream at the given sample rate, applying the host's fade/loop
// preferences from cfg.
func NewPlaybackState(cfg PlaybackConfig, sampleRate int) PlaybackState {
	ps := PlaybackState{ignoreLoop: cfg.IgnoreLoop}

	if cfg.LoopForever {
		ps.loopTarget = 0
	} else if cfg.LoopCount > 0 {
		ps.loopTarget = int(cfg.LoopCount)
	}

	if cfg.FadeSeconds > 0 {
		ps.fadeSamples = int64(cfg.FadeSeconds * float64(sampleRate))
	}

	if cfg.FadeDelaySeconds > 0 {
		ps.fadeDelaySamples = int64(cfg.FadeDelaySeconds * float64(sampleRate))
	}

	return ps
}
