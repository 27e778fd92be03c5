package ansi_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/sketchui/ansi"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	t.Run("passes plain text through unchanged", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "The header is **missing**.", ansi.Sanitize("The header is **missing**."))
	})

	t.Run("strips ANSI color codes", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "hello", ansi.Sanitize("\x1b[31mhello\x1b[0m"))
	})

	t.Run("preserves tabs and newlines", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\tb\nc", ansi.Sanitize("a\tb\nc"))
	})

	t.Run("removes control characters", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "abc", ansi.Sanitize("a\x01b\x02c\x07"))
	})

	t.Run("normalizes CRLF to LF", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\nb\n", ansi.Sanitize("a\r\nb\r\n"))
	})

	t.Run("resolves lone CR as terminal overwrite", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "xycdef", ansi.Sanitize("abcdef\rxy"))
		assert.Equal(t, "done", ansi.Sanitize("10%\r50%\rdone"))
	})

	t.Run("strips OSC sequences", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "text", ansi.Sanitize("\x1b]0;title\x07text"))
	})

	t.Run("handles empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", ansi.Sanitize(""))
	})
}

func TestTruncateHead(t *testing.T) {
	t.Parallel()

	t.Run("returns short input unchanged", func(t *testing.T) {
		t.Parallel()
		r := ansi.TruncateHead("hello\nworld\n", 100, 1024)
		assert.Equal(t, "hello\nworld\n", r.Content)
		assert.False(t, r.Truncated)
		assert.Equal(t, 2, r.TotalLines)
	})

	t.Run("truncates by line count", func(t *testing.T) {
		t.Parallel()
		lines := make([]string, 100)
		for i := range 100 {
			lines[i] = fmt.Sprintf("line %d", i)
		}
		r := ansi.TruncateHead(strings.Join(lines, "\n")+"\n", 10, 1024*1024)
		assert.True(t, r.Truncated)
		assert.Equal(t, "lines", r.TruncatedBy)
		assert.Equal(t, 100, r.TotalLines)
		assert.Equal(t, 10, r.OutputLines)
		assert.True(t, strings.HasPrefix(r.Content, "line 0\n"))
		assert.True(t, strings.HasSuffix(r.Content, "line 9"))
	})

	t.Run("truncates by byte count", func(t *testing.T) {
		t.Parallel()
		input := strings.Repeat(strings.Repeat("x", 100)+"\n", 10)
		r := ansi.TruncateHead(input, 1000, 350)
		assert.True(t, r.Truncated)
		assert.Equal(t, "bytes", r.TruncatedBy)
		assert.Equal(t, 3, r.OutputLines)
		assert.LessOrEqual(t, len(r.Content), 350)
	})

	t.Run("single long line is cut on a rune boundary", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("é", 100) // 2 bytes each
		r := ansi.TruncateHead(long, 10, 51)
		assert.True(t, r.Truncated)
		assert.Equal(t, strings.Repeat("é", 25), r.Content)
		assert.Equal(t, 50, r.OutputBytes)
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()
		r := ansi.TruncateHead("", 100, 1024)
		assert.Equal(t, ansi.TruncateResult{}, r)
	})
}
