package lcd

// HD44780 instructions.
const (
	CmdClearDisplay   byte = 0x01
	CmdReturnHome     byte = 0x02
	CmdEntryModeSet   byte = 0x04
	CmdDisplayControl byte = 0x08
	CmdCursorShift    byte = 0x10
	CmdFunctionSet    byte = 0x20
	CmdSetCGRAMAddr   byte = 0x40
	CmdSetDDRAMAddr   byte = 0x80
)

// Entry mode flags.
const (
	EntryRight          byte = 0x00
	EntryLeft           byte = 0x02
	EntryShiftIncrement byte = 0x01
	EntryShiftDecrement byte = 0x00
)

// Display control flags.
const (
	DisplayOn  byte = 0x04
	DisplayOff byte = 0x00
	CursorOn   byte = 0x02
	CursorOff  byte = 0x00
	BlinkOn    byte = 0x01
	BlinkOff   byte = 0x00
)

// Cursor shift flags.
const (
	ShiftDisplay byte = 0x08
	ShiftCursor  byte = 0x00
	ShiftRight   byte = 0x04
	ShiftLeft    byte = 0x00
)

// Function set flags.
const (
	Mode8Bit byte = 0x10
	Mode4Bit byte = 0x00
	Lines2   byte = 0x08
	Lines1   byte = 0x00
	Font5x10 byte = 0x04
	Font5x8  byte = 0x00
)

// BitMap gives the position of each control line in the expander output
// byte. The data nibble always uses bits 7 to 4.
type BitMap struct {
	Backlight      byte
	Enable         byte
	ReadWrite      byte
	RegisterSelect byte
}

// DefaultBitMap matches the usual PCF8574 backpack wiring:
// P0 RS, P1 RW, P2 E, P3 backlight, P4..P7 D4..D7.
var DefaultBitMap = BitMap{
	Backlight:      0x08,
	Enable:         0x04,
	ReadWrite:      0x02,
	RegisterSelect: 0x01,
}
