package audio

import (
	"testing"
)

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		input    string
		expected Encoding
		wantErr  bool
	}{
		{"linear16", EncodingLinear16, false},
		{"", EncodingLinear16, false},
		{"MULAW", EncodingMulaw, false},
		{"pcmu", EncodingMulaw, false},
		{"opus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEncoding(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEncoding(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseEncoding(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertPCMUToPCM(t *testing.T) {
	pcmuData := []byte{0xFF, 0x7F, 0x00, 0x80}

	pcmData, err := ConvertPCMUToPCM(pcmuData)
	if err != nil {
		t.Fatalf("ConvertPCMUToPCM failed: %v", err)
	}

	if len(pcmData) != len(pcmuData)*2 {
		t.Fatalf("Expected PCM length %d, got %d", len(pcmuData)*2, len(pcmData))
	}

	samples, err := DecodePCM16(pcmData)
	if err != nil {
		t.Fatalf("DecodePCM16 failed: %v", err)
	}

	expected := []int16{0, 0, -8031, 8031}
	for i, want := range expected {
		if samples[i] != want {
			t.Errorf("Sample %d: expected %d, got %d", i, want, samples[i])
		}
	}
}

func TestConvertPCMUToPCM_Empty(t *testing.T) {
	if _, err := ConvertPCMUToPCM(nil); err == nil {
		t.Error("Expected error for empty PCMU data")
	}
}

func TestToLinear16(t *testing.T) {
	pcm := []byte{0x10, 0x00, 0xF0, 0xFF}
	out, err := ToLinear16(pcm, EncodingLinear16)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out) != len(pcm) {
		t.Errorf("Expected linear16 frame to pass through, got %d bytes", len(out))
	}

	if _, err := ToLinear16([]byte{0x01, 0x02, 0x03}, EncodingLinear16); err == nil {
		t.Error("Expected error for odd-length linear16 frame")
	}

	out, err = ToLinear16([]byte{0xFF, 0xFF}, EncodingMulaw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out) != 4 {
		t.Errorf("Expected mu-law frame to double in size, got %d bytes", len(out))
	}

	if _, err := ToLinear16(nil, EncodingMulaw); err == nil {
		t.Error("Expected error for empty frame")
	}
}

func TestDecodePCM16(t *testing.T) {
	samples, err := DecodePCM16([]byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []int16{1, -1, -32768}
	for i, want := range expected {
		if samples[i] != want {
			t.Errorf("Sample %d: expected %d, got %d", i, want, samples[i])
		}
	}

	if _, err := DecodePCM16([]byte{0x01}); err == nil {
		t.Error("Expected error for odd length")
	}
}

func TestCalculateRMS(t *testing.T) {
	samples := []int16{1000, -1000, 2000, -2000}
	rms := CalculateRMS(samples)

	// sqrt((1000^2 + 1000^2 + 2000^2 + 2000^2) / 4)
	expected := 1581.14
	tolerance := 1.0

	if rms < expected-tolerance || rms > expected+tolerance {
		t.Errorf("Expected RMS around %.2f, got %.2f", expected, rms)
	}
}

func TestCalculateRMS_Empty(t *testing.T) {
	if rms := CalculateRMS(nil); rms != 0 {
		t.Errorf("Expected 0 for empty input, got %f", rms)
	}
}
