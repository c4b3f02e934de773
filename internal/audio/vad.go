package audio

// VADConfig holds configuration for the microphone activity detector
type VADConfig struct {
	EnergyThreshold float64 // RMS energy threshold for speech detection
	SilenceFrames   int     // Consecutive silent frames that end speech
	FrameSize       int     // Samples per frame
}

// DefaultVADConfig returns 20ms frames at sampleRate with the default thresholds
func DefaultVADConfig(sampleRate int) *VADConfig {
	frameSize := sampleRate / 50
	if frameSize <= 0 {
		frameSize = 320
	}
	return &VADConfig{
		EnergyThreshold: 500.0,
		SilenceFrames:   10,
		FrameSize:       frameSize,
	}
}

// ActivityDetector tracks whether the speaker is talking, for the
// microphone indicator of server-side engines. Not safe for concurrent use.
type ActivityDetector struct {
	config         *VADConfig
	silenceCounter int
	isSpeaking     bool
	pending        []int16
}

// NewActivityDetector creates a detector. A nil config uses 16 kHz defaults.
func NewActivityDetector(config *VADConfig) *ActivityDetector {
	if config == nil {
		config = DefaultVADConfig(16000)
	}
	if config.FrameSize <= 0 {
		config.FrameSize = 320
	}
	return &ActivityDetector{config: config}
}

// ProcessFrame processes one frame.
// Returns: (isSpeaking, speechStarted, speechEnded)
func (v *ActivityDetector) ProcessFrame(samples []int16) (bool, bool, bool) {
	frameHasSpeech := CalculateRMS(samples) > v.config.EnergyThreshold

	var speechStarted, speechEnded bool

	if frameHasSpeech {
		v.silenceCounter = 0
		if !v.isSpeaking {
			speechStarted = true
			v.isSpeaking = true
		}
	} else {
		v.silenceCounter++
		if v.isSpeaking && v.silenceCounter >= v.config.SilenceFrames {
			speechEnded = true
			v.isSpeaking = false
			v.silenceCounter = 0
		}
	}

	return v.isSpeaking, speechStarted, speechEnded
}

// Process splits an arbitrary chunk into frames, carrying any remainder to
// the next call. changed is true when the speaking state flipped at least
// once; speaking is the state after the last full frame.
func (v *ActivityDetector) Process(samples []int16) (changed, speaking bool) {
	v.pending = append(v.pending, samples...)
	size := v.config.FrameSize

	for len(v.pending) >= size {
		_, started, ended := v.ProcessFrame(v.pending[:size])
		if started || ended {
			changed = true
		}
		v.pending = v.pending[size:]
	}

	// Keep the remainder in a fresh slice so the backing array can shrink
	v.pending = append([]int16(nil), v.pending...)
	return changed, v.isSpeaking
}

// Reset resets the detector state
func (v *ActivityDetector) Reset() {
	v.silenceCounter = 0
	v.isSpeaking = false
	v.pending = nil
}

// IsSpeaking returns whether speech is currently detected
func (v *ActivityDetector) IsSpeaking() bool {
	return v.isSpeaking
}
