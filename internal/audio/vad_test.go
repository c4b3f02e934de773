package audio

import (
	"testing"
)

func constantFrame(n int, value int16) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = value
	}
	return samples
}

func testVADConfig() *VADConfig {
	return &VADConfig{
		EnergyThreshold: 500.0,
		SilenceFrames:   10,
		FrameSize:       160,
	}
}

func TestActivityDetector_ProcessFrame_Speech(t *testing.T) {
	vad := NewActivityDetector(testVADConfig())
	samples := constantFrame(160, 5000)

	for i := 0; i < 5; i++ {
		isSpeaking, speechStarted, _ := vad.ProcessFrame(samples)
		if !isSpeaking {
			t.Errorf("Expected speech detection on frame %d", i)
		}
		if i == 0 && !speechStarted {
			t.Error("Expected speech to start on first frame")
		}
		if i > 0 && speechStarted {
			t.Errorf("Expected speech start only once, got it on frame %d", i)
		}
	}
}

func TestActivityDetector_ProcessFrame_Silence(t *testing.T) {
	vad := NewActivityDetector(testVADConfig())
	samples := constantFrame(160, 10)

	for i := 0; i < 15; i++ {
		isSpeaking, _, _ := vad.ProcessFrame(samples)
		if isSpeaking {
			t.Errorf("Expected silence on frame %d", i)
		}
	}
}

func TestActivityDetector_SpeechToSilence(t *testing.T) {
	vad := NewActivityDetector(testVADConfig())
	high := constantFrame(160, 5000)
	low := constantFrame(160, 10)

	for i := 0; i < 5; i++ {
		vad.ProcessFrame(high)
	}

	endedAt := -1
	for i := 0; i < 15; i++ {
		if _, _, ended := vad.ProcessFrame(low); ended {
			endedAt = i
			break
		}
	}

	// The tenth silent frame ends speech
	if endedAt != 9 {
		t.Errorf("Expected speech to end on silent frame 9, got %d", endedAt)
	}
}

func TestActivityDetector_Threshold(t *testing.T) {
	samples := constantFrame(160, 1000)

	low := NewActivityDetector(&VADConfig{EnergyThreshold: 100.0, SilenceFrames: 10, FrameSize: 160})
	if isSpeaking, _, _ := low.ProcessFrame(samples); !isSpeaking {
		t.Error("Expected low threshold to detect speech")
	}

	high := NewActivityDetector(&VADConfig{EnergyThreshold: 5000.0, SilenceFrames: 10, FrameSize: 160})
	if isSpeaking, _, _ := high.ProcessFrame(samples); isSpeaking {
		t.Error("Expected high threshold to not detect speech")
	}
}

func TestActivityDetector_ProcessChunks(t *testing.T) {
	vad := NewActivityDetector(testVADConfig())

	// Less than one frame: nothing decided yet
	changed, speaking := vad.Process(constantFrame(100, 5000))
	if changed || speaking {
		t.Errorf("Expected no decision on partial frame, got changed=%v speaking=%v", changed, speaking)
	}

	// Completes the first frame
	changed, speaking = vad.Process(constantFrame(100, 5000))
	if !changed || !speaking {
		t.Errorf("Expected speech start, got changed=%v speaking=%v", changed, speaking)
	}

	// Ten silent frames in one chunk end speech
	changed, speaking = vad.Process(constantFrame(160*10, 0))
	if !changed || speaking {
		t.Errorf("Expected speech end, got changed=%v speaking=%v", changed, speaking)
	}
}

func TestActivityDetector_Reset(t *testing.T) {
	vad := NewActivityDetector(testVADConfig())
	vad.ProcessFrame(constantFrame(160, 5000))

	if !vad.IsSpeaking() {
		t.Fatal("Expected speech to be detected")
	}

	vad.Reset()
	if vad.IsSpeaking() {
		t.Error("Expected speech state to be false after reset")
	}
}

func TestDefaultVADConfig(t *testing.T) {
	config := DefaultVADConfig(16000)
	if config.EnergyThreshold != 500.0 {
		t.Errorf("Expected default EnergyThreshold 500.0, got %f", config.EnergyThreshold)
	}
	if config.SilenceFrames != 10 {
		t.Errorf("Expected default SilenceFrames 10, got %d", config.SilenceFrames)
	}
	if config.FrameSize != 320 {
		t.Errorf("Expected 20ms frames of 320 samples at 16kHz, got %d", config.FrameSize)
	}

	if DefaultVADConfig(8000).FrameSize != 160 {
		t.Error("Expected 160 samples per frame at 8kHz")
	}
}
