// Package scanner provides a line-oriented cursor over D-Series section
// text. It tracks 1-based line numbers so parse failures can point at the
// exact offending line of a large legacy document.
package scanner

import "strings"

// Scanner is a forward-only cursor over the lines of a document.
type Scanner struct {
	lines []string
	pos   int
}

// New returns a scanner over data. Lines are split on '\n'; a trailing
// carriage return is stripped from each line so CRLF input scans the same
// as LF input.
func New(data []byte) *Scanner {
	s := string(data)
	lines := strings.Split(s, "\n")
	// A trailing newline produces one empty phantom line; drop it so the
	// scanner reports end-of-input where the document actually ends.
	if n := len(lines); n > 0 && lines[n-1] == "" && strings.HasSuffix(s, "\n") {
		lines = lines[:n-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &Scanner{lines: lines}
}

// More reports whether any lines remain.
func (s *Scanner) More() bool {
	return s.pos < len(s.lines)
}

// Peek returns the next line without consuming it.
func (s *Scanner) Peek() (string, bool) {
	if !s.More() {
		return "", false
	}
	return s.lines[s.pos], true
}

// Next consumes and returns the next line.
func (s *Scanner) Next() (string, bool) {
	if !s.More() {
		return "", false
	}
	l := s.lines[s.pos]
	s.pos++
	return l, true
}

// Skip consumes up to n lines.
func (s *Scanner) Skip(n int) {
	s.pos += n
	if s.pos > len(s.lines) {
		s.pos = len(s.lines)
	}
}

// Line returns the 1-based line number of the next unconsumed line. After
// the last line has been consumed it returns the number of the line past
// the end, which is the natural position to report for truncated input.
func (s *Scanner) Line() int {
	return s.pos + 1
}
