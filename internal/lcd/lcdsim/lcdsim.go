// Package lcdsim emulates an HD44780 display behind a PCF8574 expander.
//
// Display implements lcd.ByteTransport: it decodes the expander frames the
// way the real chip samples its bus, so it can stand in for the hardware or
// mirror it.
package lcdsim

import (
	"strings"
	"sync"

	"github.com/jypelle/thermodisp/internal/lcd"
)

const ddramSize = 0x80

// Display is a virtual HD44780.
type Display struct {
	mu sync.RWMutex

	bits       lcd.BitMap
	cols       int
	rowOffsets []byte

	prev      byte
	frames    int
	fourBit   bool
	haveHigh  bool
	high      byte
	twoLine   bool
	increment bool
	cgram     bool
	on        bool
	cursor    bool
	blink     bool
	backlight bool
	addr      byte
	ddram     [ddramSize]byte
}

// New returns a powered up display, still in 8-bit mode. Use default options
// if nil is used.
func New(opts *lcd.Opts) *Display {
	if opts == nil {
		opts = &lcd.DefaultOpts
	}
	offsets := opts.RowOffsets
	if offsets == nil {
		offsets = lcd.RowOffsets(opts.Rows, opts.Cols)
	}
	bits := opts.Bits
	if bits == (lcd.BitMap{}) {
		bits = lcd.DefaultBitMap
	}
	d := &Display{
		bits:       bits,
		cols:       opts.Cols,
		rowOffsets: append([]byte(nil), offsets...),
		increment:  true,
	}
	d.clear()
	return d
}

// WriteByte samples one expander output byte. It never fails.
func (d *Display) WriteByte(frame byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.frames++
	d.backlight = frame&d.bits.Backlight != 0
	// The chip latches the bus on the falling edge of enable.
	if d.prev&d.bits.Enable != 0 && frame&d.bits.Enable == 0 {
		d.latch(d.prev&0xF0, d.prev&d.bits.RegisterSelect != 0)
	}
	d.prev = frame
	return nil
}

func (d *Display) latch(nibble byte, data bool) {
	if !d.fourBit {
		// Only D7..D4 are wired, the low half of an 8-bit transfer reads 0.
		d.execute(nibble, data)
		return
	}
	if !d.haveHigh {
		d.high = nibble
		d.haveHigh = true
		return
	}
	d.haveHigh = false
	d.execute(d.high|nibble>>4, data)
}

func (d *Display) execute(b byte, data bool) {
	if data {
		if !d.cgram {
			d.ddram[d.addr] = b
		}
		d.step(d.increment)
		return
	}
	switch {
	case b&lcd.CmdSetDDRAMAddr != 0:
		d.addr = b &^ lcd.CmdSetDDRAMAddr
		d.cgram = false
	case b&lcd.CmdSetCGRAMAddr != 0:
		d.cgram = true
	case b&lcd.CmdFunctionSet != 0:
		d.fourBit = b&lcd.Mode8Bit == 0
		d.twoLine = b&lcd.Lines2 != 0
		d.haveHigh = false
	case b&lcd.CmdCursorShift != 0:
		if b&lcd.ShiftDisplay == 0 {
			d.step(b&lcd.ShiftRight != 0)
		}
	case b&lcd.CmdDisplayControl != 0:
		d.on = b&lcd.DisplayOn != 0
		d.cursor = b&lcd.CursorOn != 0
		d.blink = b&lcd.BlinkOn != 0
	case b&lcd.CmdEntryModeSet != 0:
		d.increment = b&lcd.EntryLeft != 0
	case b&lcd.CmdReturnHome != 0:
		d.addr = 0
		d.cgram = false
	case b&lcd.CmdClearDisplay != 0:
		d.clear()
	}
}

func (d *Display) clear() {
	for i := range d.ddram {
		d.ddram[i] = ' '
	}
	d.addr = 0
	d.increment = true
	d.cgram = false
}

// step moves the address counter the way the chip does: in two line mode
// the lines are 0x00-0x27 and 0x40-0x67 and wrap into each other.
func (d *Display) step(forward bool) {
	if !d.twoLine {
		if forward {
			d.addr = (d.addr + 1) % 0x50
		} else {
			d.addr = (d.addr + 0x4F) % 0x50
		}
		return
	}
	switch {
	case forward && d.addr == 0x27:
		d.addr = 0x40
	case forward && d.addr == 0x67:
		d.addr = 0x00
	case forward:
		d.addr++
	case d.addr == 0x00:
		d.addr = 0x67
	case d.addr == 0x40:
		d.addr = 0x27
	default:
		d.addr--
	}
}

// Lines returns the visible characters of each row.
func (d *Display) Lines() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	lines := make([]string, len(d.rowOffsets))
	for i, offset := range d.rowOffsets {
		var sb strings.Builder
		for c := 0; c < d.cols; c++ {
			sb.WriteByte(d.ddram[(int(offset)+c)%ddramSize])
		}
		lines[i] = sb.String()
	}
	return lines
}

// Address returns the address counter.
func (d *Display) Address() byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.addr
}

// FourBitMode reports whether the interface was switched to 4 bits.
func (d *Display) FourBitMode() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fourBit
}

// TwoLineMode reports whether function set selected two lines.
func (d *Display) TwoLineMode() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.twoLine
}

// On reports the display, cursor and blink flags.
func (d *Display) On() (display, cursor, blink bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.on, d.cursor, d.blink
}

// Backlight reports the backlight line of the last frame.
func (d *Display) Backlight() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.backlight
}

// Frames returns the number of bytes received.
func (d *Display) Frames() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames
}
