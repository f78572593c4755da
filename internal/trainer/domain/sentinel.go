package domain

import "strings"

// Control lines written into a job log. Clients match them byte for byte.
const (
	SentinelQueued      = "__QUEUED__"
	SentinelStarting    = "__STARTING__"
	SentinelSuccess     = "__SUCCESS__"
	SentinelError       = "__ERROR__"
	SentinelEndOfStream = "__END_OF_STREAM__"
)

// SuccessLine formats the success sentinel for a finished run.
func SuccessLine(runName string) string {
	return SentinelSuccess + ":" + runName
}

// ErrorLine formats the error sentinel with a human readable reason.
func ErrorLine(reason string) string {
	return SentinelError + ":" + reason
}

// IsSentinel reports whether line is one of the control lines.
func IsSentinel(line string) bool {
	switch {
	case line == SentinelQueued, line == SentinelStarting, line == SentinelEndOfStream:
		return true
	case strings.HasPrefix(line, SentinelSuccess+":"), strings.HasPrefix(line, SentinelError+":"):
		return true
	}
	return false
}

// IsTerminalLine reports whether line is a success or error sentinel.
func IsTerminalLine(line string) bool {
	return strings.HasPrefix(line, SentinelSuccess+":") || strings.HasPrefix(line, SentinelError+":")
}

// ParseTerminal splits a terminal sentinel into its kind and payload.
func ParseTerminal(line string) (kind string, payload string, ok bool) {
	for _, k := range []string{SentinelSuccess, SentinelError} {
		if rest, found := strings.CutPrefix(line, k+":"); found {
			return k, rest, true
		}
	}
	return "", "", false
}
