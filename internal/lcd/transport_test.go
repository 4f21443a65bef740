package lcd_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jypelle/thermodisp/internal/lcd"
	"github.com/jypelle/thermodisp/internal/lcd/lcdsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func noSleep(time.Duration) {}

// stuckBus never completes a transfer.
type stuckBus struct {
	release chan struct{}
}

func (b *stuckBus) String() string                    { return "stuck" }
func (b *stuckBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *stuckBus) Tx(addr uint16, w, r []byte) error {
	<-b.release
	return nil
}

func TestI2CTransportWritesOneByte(t *testing.T) {
	bus := &i2ctest.Record{}
	tr := lcd.NewI2CTransport(bus, lcd.DefaultAddress, 0)

	require.NoError(t, tr.WriteByte(0x3C))
	require.NoError(t, tr.WriteByte(0x38))

	require.Len(t, bus.Ops, 2)
	assert.Equal(t, uint16(0x27), bus.Ops[0].Addr)
	assert.Equal(t, []byte{0x3C}, bus.Ops[0].W)
	assert.Empty(t, bus.Ops[0].R)
	assert.Equal(t, []byte{0x38}, bus.Ops[1].W)
}

func TestI2CTransportError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	tr := lcd.NewI2CTransport(bus, 0x3F, time.Second)

	err := tr.WriteByte(0x00)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lcd.ErrTransport))
}

func TestI2CTransportTimeout(t *testing.T) {
	bus := &stuckBus{release: make(chan struct{})}
	defer close(bus.release)
	tr := lcd.NewI2CTransport(bus, lcd.DefaultAddress, 20*time.Millisecond)

	start := time.Now()
	err := tr.WriteByte(0x00)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lcd.ErrTransport))
	assert.True(t, time.Since(start) >= 20*time.Millisecond)
}

// gatedBus holds its first transfer until released and records the order
// bytes reach it.
type gatedBus struct {
	mu      sync.Mutex
	release chan struct{}
	calls   int
	written []byte
}

func (b *gatedBus) String() string                    { return "gated" }
func (b *gatedBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *gatedBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		<-b.release
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.written = append(b.written, w...)
	return nil
}

func (b *gatedBus) Written() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.written...)
}

func TestI2CTransportTimeoutKeepsOrder(t *testing.T) {
	bus := &gatedBus{release: make(chan struct{})}
	tr := lcd.NewI2CTransport(bus, lcd.DefaultAddress, 20*time.Millisecond)

	err := tr.WriteByte(0xAA)
	require.True(t, errors.Is(err, lcd.ErrTransport))

	// The timed out transfer is still pending, nothing else may reach the bus
	err = tr.WriteByte(0xBB)
	require.True(t, errors.Is(err, lcd.ErrTransport))
	assert.Empty(t, bus.Written())

	close(bus.release)
	assert.Eventually(t, func() bool { return tr.WriteByte(0xCC) == nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte{0xAA, 0xCC}, bus.Written())
}

func TestControllerOverI2C(t *testing.T) {
	bus := &i2ctest.Record{}
	opts := lcd.DefaultOpts
	opts.Sleep = noSleep
	c, err := lcd.New(lcd.NewI2CTransport(bus, lcd.DefaultAddress, 0), &opts)
	require.NoError(t, err)

	require.NoError(t, c.Init())
	require.Len(t, bus.Ops, 24)
	assert.Equal(t, []byte{0x3C}, bus.Ops[0].W)
	assert.Equal(t, []byte{0x38}, bus.Ops[1].W)
	assert.Equal(t, []byte{0x2C}, bus.Ops[6].W)
}

func TestControllerOnVirtualDisplay(t *testing.T) {
	sim := lcdsim.New(nil)
	opts := lcd.DefaultOpts
	opts.Sleep = noSleep
	c, err := lcd.New(sim, &opts)
	require.NoError(t, err)
	require.NoError(t, c.Init())

	assert.True(t, sim.FourBitMode())
	assert.True(t, sim.TwoLineMode())
	on, cursor, blink := sim.On()
	assert.True(t, on)
	assert.False(t, cursor)
	assert.False(t, blink)
	assert.True(t, sim.Backlight())

	require.NoError(t, c.SetCursor(0, 0))
	require.NoError(t, c.PrintString("Temperature:"))
	require.NoError(t, c.SetCursor(1, 0))
	require.NoError(t, c.PrintString("21.50C"))
	assert.Equal(t, []string{"Temperature:    ", "21.50C          "}, sim.Lines())

	require.NoError(t, c.SetCursor(9, 99))
	require.NoError(t, c.PrintString("!"))
	assert.Equal(t, "21.50C         !", sim.Lines()[1])

	require.NoError(t, c.Clear())
	assert.Equal(t, []string{"                ", "                "}, sim.Lines())
	assert.Equal(t, byte(0), sim.Address())
}

func TestTeeMirrorsAcceptedBytes(t *testing.T) {
	bus := &i2ctest.Record{}
	sim := lcdsim.New(nil)
	opts := lcd.DefaultOpts
	opts.Sleep = noSleep
	c, err := lcd.New(lcd.Tee(lcd.NewI2CTransport(bus, lcd.DefaultAddress, 0), sim), &opts)
	require.NoError(t, err)

	require.NoError(t, c.Init())
	require.NoError(t, c.PrintString("Hi"))
	assert.Equal(t, len(bus.Ops), sim.Frames())
	assert.Equal(t, "Hi              ", sim.Lines()[0])
}

func TestTeeStopsOnPrimaryFailure(t *testing.T) {
	sim := lcdsim.New(nil)
	tr := lcd.Tee(lcd.NewI2CTransport(&i2ctest.Playback{DontPanic: true}, lcd.DefaultAddress, 0), sim)

	require.Error(t, tr.WriteByte(0x0C))
	assert.Zero(t, sim.Frames())
}
