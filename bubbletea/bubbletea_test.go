package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/sketchui"
	bt "github.com/fwojciec/sketchui/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.RunFunc, opts ...bt.Option) bt.Model {
	t.Helper()
	return initModelWithSize(t, run, 80, 24, opts...)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, run bt.RunFunc, width, height int, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(run, "sketch.png", sketchui.DefaultTheme(), opts...)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// sendEvents delivers events to the model in order.
func sendEvents(t *testing.T, m bt.Model, events ...sketchui.Event) bt.Model {
	t.Helper()
	for _, e := range events {
		m = updateModel(t, m, bt.EventMsg{Event: e})
	}
	return m
}

// nopRun is a run function that does nothing.
func nopRun(_ context.Context, _ string, _ func(sketchui.Event)) (sketchui.Result, error) {
	return sketchui.Result{}, nil
}
