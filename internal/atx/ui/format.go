package ui

import (
	"github.com/fatih/color"

	"github.com/ehsaniara/annotrain/internal/trainer/domain"
)

// PhaseColor renders a job phase the way the job list shows it.
func PhaseColor(p domain.Phase) string {
	switch p {
	case domain.PhaseQueued:
		return color.HiCyanString(string(p))
	case domain.PhaseStarting, domain.PhaseRunning:
		return color.HiYellowString(string(p))
	case domain.PhaseSucceeded:
		return color.HiGreenString(string(p))
	case domain.PhaseFailed, domain.PhaseError:
		return color.HiRedString(string(p))
	case domain.PhaseCancelled, domain.PhaseCancelledWhileQueued:
		return color.HiMagentaString(string(p))
	default:
		return string(p)
	}
}

// LogLine renders one job log line, highlighting the control lines. It
// returns "" for lines that should not be printed.
func LogLine(line string) string {
	switch line {
	case domain.SentinelEndOfStream:
		return ""
	case domain.SentinelQueued:
		return color.HiCyanString("queued")
	case domain.SentinelStarting:
		return color.HiCyanString("starting")
	}
	if kind, payload, ok := domain.ParseTerminal(line); ok {
		if kind == domain.SentinelSuccess {
			return color.HiGreenString("training finished, run %s", payload)
		}
		return color.HiRedString("training failed: %s", payload)
	}
	return line
}
