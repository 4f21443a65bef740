package device

import (
	"testing"
	"time"

	"github.com/jypelle/thermodisp/internal/lcd"
	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisplay(t *testing.T) *Display {
	p, err := config.ParseServerParam(nil)
	require.NoError(t, err)
	d := NewDisplay(p.LcdParam, nil, true)
	d.sleep = func(time.Duration) {}
	return d
}

func TestDisplayNotStarted(t *testing.T) {
	d := newTestDisplay(t)

	assert.Equal(t, lcd.ErrNotReady, d.ShowLines("x"))
	assert.Equal(t, lcd.ErrNotReady, d.Clear())
	assert.Equal(t, lcd.Uninitialized, d.State())
	assert.Nil(t, d.Lines())
	assert.False(t, d.Backlight())
}

func TestDisplayShowLines(t *testing.T) {
	d := newTestDisplay(t)
	d.Start()
	assert.Equal(t, lcd.Ready, d.State())
	assert.True(t, d.Backlight())

	require.NoError(t, d.ShowLines("Temperature:", "21.50C"))
	assert.Equal(t, []string{"Temperature:    ", "21.50C          "}, d.Lines())

	// Long lines are cut, extra lines ignored
	require.NoError(t, d.ShowLines("Seconds passed: 12", "1.00s", "ignored"))
	assert.Equal(t, []string{"Seconds passed: ", "1.00s           "}, d.Lines())
}

func TestDisplaySkipsUnchangedRows(t *testing.T) {
	d := newTestDisplay(t)
	d.Start()

	require.NoError(t, d.ShowLines("Temperature:", "21.50C"))
	frames := d.mirror.Frames()

	require.NoError(t, d.ShowLines("Temperature:", "21.50C"))
	assert.Equal(t, frames, d.mirror.Frames())

	// One row: set DDRAM address then 16 characters, 4 frames per byte
	require.NoError(t, d.ShowLines("Temperature:", "21.75C"))
	assert.Equal(t, frames+17*4, d.mirror.Frames())
	assert.Equal(t, "21.75C          ", d.Lines()[1])
}

func TestDisplayClear(t *testing.T) {
	d := newTestDisplay(t)
	d.Start()
	require.NoError(t, d.ShowLines("Temperature:", "21.50C"))

	require.NoError(t, d.Clear())
	assert.Equal(t, []string{"                ", "                "}, d.Lines())

	// Rows are rewritten after a clear
	require.NoError(t, d.ShowLines("Temperature:", "21.50C"))
	assert.Equal(t, []string{"Temperature:    ", "21.50C          "}, d.Lines())
}
