package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
)

var networkErrorMarkers = []string{
	// Connection errors
	"connection refused",
	"connection reset",
	"connection closed",
	"broken pipe",
	"network is unreachable",
	"no route to host",
	"no such host",
	"eof",
	// Timeouts
	"deadline exceeded",
	"timeout",
}

// IsNetworkError reports whether err came from the transport rather than
// from an upstream's answer. Such failures are shown to the user as a
// connectivity problem and are never retried.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range networkErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
