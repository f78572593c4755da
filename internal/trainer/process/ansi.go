package process

import (
	"bytes"
	"regexp"
	"strings"
)

// ansiEscape matches 7-bit C1 escapes and CSI sequences (colours, cursor moves).
var ansiEscape = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// CleanLine strips terminal escape sequences and trailing whitespace.
func CleanLine(line string) string {
	return strings.TrimRight(ansiEscape.ReplaceAllString(line, ""), " \t\r\n")
}

// splitLines is a bufio.SplitFunc treating "\n", "\r\n" and a lone "\r" as line
// ends, so progress bars redrawn with carriage returns become separate lines.
// Lines longer than maxLineSize are broken up instead of failing the scan.
func splitLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			return 0, nil, nil // wait to see whether "\n" follows
		}
		return i + 1, data[:i], nil
	}

	if len(data) >= maxLineSize || atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
