package audio

import (
	"fmt"
	"math"
	"strings"
)

// Encoding is the format of binary audio frames sent by clients
type Encoding string

const (
	EncodingLinear16 Encoding = "linear16" // 16-bit signed little-endian PCM
	EncodingMulaw    Encoding = "mulaw"    // G.711 PCMU
)

// ParseEncoding parses an AUDIO_ENCODING value
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case EncodingLinear16, "":
		return EncodingLinear16, nil
	case EncodingMulaw, "pcmu", "ulaw":
		return EncodingMulaw, nil
	default:
		return "", fmt.Errorf("unsupported audio encoding %q", s)
	}
}

// ToLinear16 converts a client audio frame to linear16 PCM for the engines
func ToLinear16(data []byte, enc Encoding) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio frame")
	}

	switch enc {
	case EncodingMulaw:
		return ConvertPCMUToPCM(data)
	case EncodingLinear16:
		if len(data)%2 != 0 {
			return nil, fmt.Errorf("PCM data length must be even (16-bit samples)")
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported audio encoding %q", enc)
	}
}

// DecodePCM16 converts little-endian 16-bit PCM bytes to samples
func DecodePCM16(pcmData []byte) ([]int16, error) {
	if len(pcmData)%2 != 0 {
		return nil, fmt.Errorf("PCM data length must be even (16-bit samples)")
	}

	samples := make([]int16, len(pcmData)/2)
	for i := range samples {
		samples[i] = int16(pcmData[i*2]) | int16(pcmData[i*2+1])<<8
	}
	return samples, nil
}

// ConvertPCMUToPCM converts G.711 PCMU (μ-law) to linear PCM
func ConvertPCMUToPCM(pcmuData []byte) ([]byte, error) {
	if len(pcmuData) == 0 {
		return nil, fmt.Errorf("empty PCMU data")
	}

	pcmData := make([]byte, len(pcmuData)*2)
	for i, mulawByte := range pcmuData {
		sample := mulawToLinear(mulawByte)
		pcmData[i*2] = byte(sample)
		pcmData[i*2+1] = byte(sample >> 8)
	}

	return pcmData, nil
}

// mulawToLinear converts an 8-bit μ-law sample to 16-bit linear PCM
func mulawToLinear(mulawByte byte) int16 {
	// μ-law bytes are stored inverted
	mulawByte = ^mulawByte

	sign := mulawByte & 0x80
	segment := int32((mulawByte >> 4) & 0x07)
	mantissa := int32(mulawByte & 0x0F)

	// magnitude = ((mantissa << 1) + 33) << segment, minus the bias
	step := mantissa << (segment + 1)
	step += int32(33) << segment
	magnitude := step - 33

	if sign != 0 {
		return int16(-magnitude)
	}
	return int16(magnitude)
}

// CalculateRMS calculates the root mean square (RMS) of audio samples
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}

	return math.Sqrt(sum / float64(len(samples)))
}
