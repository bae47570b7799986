package source

import (
	"bytes"
	"strings"
)

// maxLineBytes bounds a line that never sees a newline, so a stuck or
// misconfigured link cannot grow the pending buffer forever.
const maxLineBytes = 1024 * 1024

// lineSplitter accumulates raw chunks and hands back complete lines.
type lineSplitter struct {
	pending []byte
}

func (s *lineSplitter) feed(chunk []byte) {
	s.pending = append(s.pending, chunk...)
}

// next returns the oldest complete line with surrounding whitespace removed.
func (s *lineSplitter) next() (string, bool) {
	idx := bytes.IndexByte(s.pending, '\n')
	if idx < 0 {
		if len(s.pending) < maxLineBytes {
			return "", false
		}
		idx = len(s.pending) - 1
	}
	line := cleanLine(s.pending[:idx+1])
	s.pending = s.pending[idx+1:]
	if len(s.pending) == 0 {
		s.pending = s.pending[:0:0]
	}
	return line, true
}

// rest returns whatever is left after the stream ended.
func (s *lineSplitter) rest() string {
	line := cleanLine(s.pending)
	s.pending = nil
	return line
}

func cleanLine(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}
