package lcd

import (
	"fmt"
	"time"
)

// State of a Controller.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	// Faulted is entered when the initialization sequence fails.
	Faulted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	powerOnDelay  time.Duration = 50 * time.Millisecond
	wakeUpDelay   time.Duration = 5 * time.Millisecond
	shortDelay    time.Duration = time.Millisecond
	clearDuration time.Duration = 2 * time.Millisecond
)

// Opts configures a Controller.
type Opts struct {
	Rows int
	Cols int
	// RowOffsets holds the DDRAM address of the first column of each row.
	// Leave nil to use RowOffsets(Rows, Cols).
	RowOffsets []byte
	Bits       BitMap
	// Sleep replaces time.Sleep, for tests.
	Sleep func(time.Duration)
}

// DefaultOpts is a 2x16 display on a standard backpack.
var DefaultOpts = Opts{
	Rows: 2,
	Cols: 16,
	Bits: DefaultBitMap,
}

// maxDDRAMAddr is the highest address a set DDRAM address command carries.
const maxDDRAMAddr = 0x7F

// RowOffsets returns the usual DDRAM row start addresses for a geometry.
// Four row displays continue row 0 and row 1 on rows 2 and 3.
func RowOffsets(rows, cols int) []byte {
	switch rows {
	case 1:
		return []byte{0x00}
	case 2:
		return []byte{0x00, 0x40}
	case 4:
		return []byte{0x00, 0x40, byte(cols), 0x40 + byte(cols)}
	}
	return nil
}

// Controller is an HD44780 display in 4-bit mode.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	enc        *Encoder
	sleep      func(time.Duration)
	rows       int
	cols       int
	rowOffsets []byte

	state State
	err   error
	row   int
	col   int
}

// New returns an uninitialized Controller writing to t. Call Init before
// anything else. Use default options if nil is used.
func New(t ByteTransport, opts *Opts) (*Controller, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Rows < 1 || opts.Rows > 4 {
		return nil, fmt.Errorf("lcd: unsupported row count %d", opts.Rows)
	}
	if opts.Cols < 1 || opts.Cols > 40 {
		return nil, fmt.Errorf("lcd: unsupported column count %d", opts.Cols)
	}
	offsets := opts.RowOffsets
	if offsets == nil {
		offsets = RowOffsets(opts.Rows, opts.Cols)
	}
	if len(offsets) != opts.Rows {
		return nil, fmt.Errorf("lcd: %d row offsets given for %d rows", len(offsets), opts.Rows)
	}
	for row, offset := range offsets {
		if int(offset)+opts.Cols-1 > maxDDRAMAddr {
			return nil, fmt.Errorf("lcd: row %d ends past DDRAM address %#x", row, maxDDRAMAddr)
		}
	}
	bits := opts.Bits
	if bits == (BitMap{}) {
		bits = DefaultBitMap
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Controller{
		enc:        NewEncoder(t, bits, sleep),
		sleep:      sleep,
		rows:       opts.Rows,
		cols:       opts.Cols,
		rowOffsets: append([]byte(nil), offsets...),
	}, nil
}

func (c *Controller) String() string {
	return fmt.Sprintf("HD44780{%dx%d, %s}", c.rows, c.cols, c.state)
}

// State returns the controller state.
func (c *Controller) State() State {
	return c.state
}

// Err returns the error which faulted the controller, if any.
func (c *Controller) Err() error {
	return c.err
}

func (c *Controller) Rows() int {
	return c.rows
}

func (c *Controller) Cols() int {
	return c.cols
}

// Cursor returns the logical cursor position.
func (c *Controller) Cursor() (row, col int) {
	return c.row, c.col
}

// Init runs the HD44780 "initialization by instruction" sequence, which
// brings the controller to 4-bit mode whatever state it was left in.
//
// On failure the controller is Faulted and the transport error returned.
// Calling Init again restarts the whole sequence.
func (c *Controller) Init() error {
	if c.state == Initializing {
		return fmt.Errorf("lcd: initialization already running")
	}
	c.state = Initializing
	c.err = nil

	if err := c.initSequence(); err != nil {
		c.state = Faulted
		c.err = err
		return err
	}
	c.row, c.col = 0, 0
	c.state = Ready
	return nil
}

func (c *Controller) initSequence() error {
	c.sleep(powerOnDelay)

	// Three times "8-bit interface", whatever the controller was expecting.
	for _, d := range []time.Duration{wakeUpDelay, shortDelay, shortDelay} {
		if err := c.enc.SendNibble(0x30); err != nil {
			return err
		}
		c.sleep(d)
	}

	if err := c.enc.SendNibble(0x20); err != nil {
		return err
	}
	c.sleep(shortDelay)

	if err := c.enc.Command(CmdFunctionSet | Mode4Bit | Lines2 | Font5x8); err != nil {
		return err
	}
	if err := c.enc.Command(CmdDisplayControl | DisplayOn | CursorOff | BlinkOff); err != nil {
		return err
	}
	if err := c.enc.Command(CmdClearDisplay); err != nil {
		return err
	}
	c.sleep(clearDuration)

	return c.enc.Command(CmdEntryModeSet | EntryLeft | EntryShiftDecrement)
}

// SetCursor moves the cursor. Out of range positions saturate to the last
// row or column.
func (c *Controller) SetCursor(row, col int) error {
	if c.state != Ready {
		return ErrNotReady
	}
	row = clamp(row, c.rows-1)
	col = clamp(col, c.cols-1)

	if err := c.enc.Command(CmdSetDDRAMAddr | c.address(row, col)); err != nil {
		return err
	}
	c.row, c.col = row, col
	return nil
}

// Address returns the DDRAM address of a position, saturated to the geometry.
func (c *Controller) Address(row, col int) byte {
	return c.address(clamp(row, c.rows-1), clamp(col, c.cols-1))
}

// address expects an in range position.
func (c *Controller) address(row, col int) byte {
	return c.rowOffsets[row] + byte(col)
}

// PrintString writes text at the cursor, one byte per character code.
// It stops at the first failure; what was written stays on the display.
// There is no line wrapping.
func (c *Controller) PrintString(text string) error {
	if c.state != Ready {
		return ErrNotReady
	}
	for i := 0; i < len(text); i++ {
		if err := c.enc.Data(text[i]); err != nil {
			return err
		}
		if c.col < c.cols-1 {
			c.col++
		}
	}
	return nil
}

// Clear blanks the display and homes the cursor. It returns once the
// display has finished clearing.
func (c *Controller) Clear() error {
	if c.state != Ready {
		return ErrNotReady
	}
	if err := c.enc.Command(CmdClearDisplay); err != nil {
		return err
	}
	c.sleep(clearDuration)
	c.row, c.col = 0, 0
	return nil
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
