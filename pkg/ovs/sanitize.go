package ovs

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
)

// MaxOutputLineSize is the longest ovs-vsctl output line that is accepted
const MaxOutputLineSize = 256

// ErrLineTooLong is returned for output lines above MaxOutputLineSize
var ErrLineTooLong = errors.New("ovs-vsctl output line too long")

// Sanitize normalises a value printed by ovs-vsctl: backslashes are
// removed, surrounding whitespace is trimmed, the result is lowercased and
// spaces become underscores. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, `\`, "")
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "_")
}

// splitLines returns the non-empty lines of out without their terminators.
// A line longer than MaxOutputLineSize fails the whole split.
func splitLines(out []byte) ([]string, error) {
	var lines []string
	r := bufio.NewReader(bytes.NewReader(out))
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if len(line) > MaxOutputLineSize {
			return nil, ErrLineTooLong
		}
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		if err != nil {
			return lines, nil
		}
	}
}
