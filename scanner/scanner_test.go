package scanner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanner(t *testing.T) {
	s := New([]byte("[VERSION]\nSoil=1010\n[END OF VERSION]\n"))

	require.Equal(t, 1, s.Line())
	line, ok := s.Peek()
	require.True(t, ok)
	require.Equal(t, "[VERSION]", line)
	require.Equal(t, 1, s.Line(), "Peek must not advance")

	line, ok = s.Next()
	require.True(t, ok)
	require.Equal(t, "[VERSION]", line)
	require.Equal(t, 2, s.Line())

	s.Skip(1)
	line, ok = s.Next()
	require.True(t, ok)
	require.Equal(t, "[END OF VERSION]", line)

	require.False(t, s.More())
	_, ok = s.Next()
	require.False(t, ok)
	require.Equal(t, 4, s.Line())
}

func TestScannerNoTrailingNewline(t *testing.T) {
	s := New([]byte("a\nb"))
	s.Skip(1)
	line, ok := s.Next()
	require.True(t, ok)
	require.Equal(t, "b", line)
	require.False(t, s.More())
}

func TestScannerCRLF(t *testing.T) {
	s := New([]byte("a\r\nb\r\n"))
	line, _ := s.Next()
	require.Equal(t, "a", line)
	line, _ = s.Next()
	require.Equal(t, "b", line)
	require.False(t, s.More())
}

func TestScannerEmptyInput(t *testing.T) {
	s := New(nil)
	line, ok := s.Peek()
	require.True(t, ok)
	require.Equal(t, "", line)

	s.Skip(5)
	require.False(t, s.More())
}
