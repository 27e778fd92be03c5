// Package ansi cleans model output before it is shown in a terminal or fed
// back into a prompt.
package ansi

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips ANSI escape codes and control characters from model text.
// It preserves tabs and newlines but removes all other bytes <= 0x1F.
// CRLF sequences are normalized to LF. Lone CR simulates terminal carriage
// return behavior: text after \r overwrites from the beginning of the line.
func Sanitize(s string) string {
	// Strip ANSI escape sequences (CSI, OSC, etc.) using parser-based stripper.
	s = ansi.Strip(s)

	s = strings.ReplaceAll(s, "\r\n", "\n")

	// Keep \r for now; lone carriage returns are resolved below.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || r == '\r' || r > 0x1F {
			b.WriteRune(r)
		}
	}
	s = b.String()

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.ContainsRune(line, '\r') {
			lines[i] = resolveCarriageReturns(line)
		}
	}
	return strings.Join(lines, "\n")
}

// resolveCarriageReturns simulates terminal CR behavior within a single line.
// Each \r resets the write position to 0; subsequent characters overwrite.
func resolveCarriageReturns(line string) string {
	segments := strings.Split(line, "\r")
	buf := []rune(segments[0])
	for _, seg := range segments[1:] {
		for j, r := range []rune(seg) {
			if j < len(buf) {
				buf[j] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}

// TruncateResult describes the outcome of head truncation.
type TruncateResult struct {
	Content     string
	Truncated   bool
	TruncatedBy string // "lines" or "bytes"
	TotalLines  int
	TotalBytes  int
	OutputLines int
	OutputBytes int
}

// TruncateHead keeps the first maxLines lines or maxBytes bytes of s,
// whichever limit is hit first. Only complete lines are kept, except when
// the first line alone exceeds maxBytes; it is then cut on a rune boundary.
func TruncateHead(s string, maxLines, maxBytes int) TruncateResult {
	if s == "" {
		return TruncateResult{}
	}

	lines := splitLines(s)
	totalLines := len(lines)
	totalBytes := len(s)

	if totalLines <= maxLines && totalBytes <= maxBytes {
		return TruncateResult{
			Content:     s,
			TotalLines:  totalLines,
			TotalBytes:  totalBytes,
			OutputLines: totalLines,
			OutputBytes: totalBytes,
		}
	}

	var collected []string
	outputBytes := 0
	truncatedBy := "lines"
	for i := 0; i < len(lines) && len(collected) < maxLines; i++ {
		lineBytes := len(lines[i])
		if len(collected) > 0 {
			lineBytes++ // separator
		}
		if outputBytes+lineBytes > maxBytes {
			truncatedBy = "bytes"
			if len(collected) == 0 {
				head := cutRunes(lines[i], maxBytes)
				return TruncateResult{
					Content:     head,
					Truncated:   true,
					TruncatedBy: truncatedBy,
					TotalLines:  totalLines,
					TotalBytes:  totalBytes,
					OutputLines: 1,
					OutputBytes: len(head),
				}
			}
			break
		}
		collected = append(collected, lines[i])
		outputBytes += lineBytes
	}

	content := strings.Join(collected, "\n")
	return TruncateResult{
		Content:     content,
		Truncated:   true,
		TruncatedBy: truncatedBy,
		TotalLines:  totalLines,
		TotalBytes:  totalBytes,
		OutputLines: len(collected),
		OutputBytes: len(content),
	}
}

// cutRunes returns the longest prefix of s within n bytes that does not
// split a multi-byte rune.
func cutRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// splitLines splits s into lines. A trailing newline does not produce an
// empty final element.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
