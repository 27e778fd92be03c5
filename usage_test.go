package sketchui_test

import (
	"testing"

	"github.com/fwojciec/sketchui"
	"github.com/stretchr/testify/assert"
)

func TestRole_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, sketchui.Role("user"), sketchui.RoleUser)
	assert.Equal(t, sketchui.Role("assistant"), sketchui.RoleAssistant)
}

func TestStopReason_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, sketchui.StopReason("end_turn"), sketchui.StopEndTurn)
	assert.Equal(t, sketchui.StopReason("length"), sketchui.StopLength)
	assert.Equal(t, sketchui.StopReason("error"), sketchui.StopError)
	assert.Equal(t, sketchui.StopReason("aborted"), sketchui.StopAborted)
	assert.Equal(t, sketchui.StopReason("unknown"), sketchui.StopUnknown)
}

func TestUsage_ZeroValue(t *testing.T) {
	t.Parallel()
	var u sketchui.Usage
	assert.Equal(t, 0, u.InputTokens)
	assert.Equal(t, 0, u.OutputTokens)
	assert.Equal(t, 0, u.TotalInput())
}

func TestUsage_TotalInput(t *testing.T) {
	t.Parallel()
	u := sketchui.Usage{InputTokens: 10, OutputTokens: 99, CacheReadTokens: 200, CacheWriteTokens: 5}
	assert.Equal(t, 215, u.TotalInput())
}

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	theme := sketchui.DefaultTheme()

	assert.Equal(t, 4, theme.Instruction)
	assert.Equal(t, 1, theme.Error)
	assert.Equal(t, 3, theme.Progress)
	assert.Equal(t, 8, theme.Thinking)
	assert.Equal(t, 2, theme.Success)
	assert.Equal(t, 8, theme.Muted)
	assert.Equal(t, 0, theme.CodeBg)
	assert.Equal(t, 5, theme.Accent)
}

func TestStreamState_ZeroValue(t *testing.T) {
	t.Parallel()
	var s sketchui.StreamState
	assert.Equal(t, sketchui.StreamStateNew, s, "zero-value StreamState should be StreamStateNew")
}
