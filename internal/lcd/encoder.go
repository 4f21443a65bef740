package lcd

import "time"

// Register selects the HD44780 register a byte is written to.
type Register bool

const (
	InstructionRegister Register = false
	DataRegister        Register = true
)

const (
	// Enable must stay high at least 450ns; a millisecond is the shortest
	// wait most schedulers honour.
	enablePulse time.Duration = time.Millisecond
	// Most instructions need 37µs to execute.
	commandSettle time.Duration = time.Millisecond
)

// Encoder turns bytes into expander frames.
type Encoder struct {
	transport ByteTransport
	bits      BitMap
	sleep     func(time.Duration)
}

// NewEncoder returns an Encoder writing to t. A nil sleep uses time.Sleep.
func NewEncoder(t ByteTransport, bits BitMap, sleep func(time.Duration)) *Encoder {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Encoder{transport: t, bits: bits, sleep: sleep}
}

// Flag returns the register select bits for r.
func (e *Encoder) Flag(r Register) byte {
	if r == DataRegister {
		return e.bits.RegisterSelect
	}
	return 0
}

// SendNibble latches the upper four bits of v. The lower bits of v are
// copied to the control lines, backlight is always on.
func (e *Encoder) SendNibble(v byte) error {
	frame := v | e.bits.Backlight

	if err := e.transport.WriteByte(frame | e.bits.Enable); err != nil {
		return err
	}
	e.sleep(enablePulse)

	if err := e.transport.WriteByte(frame &^ e.bits.Enable); err != nil {
		return err
	}
	e.sleep(commandSettle)
	return nil
}

// SendByte writes v to register r, high nibble first.
func (e *Encoder) SendByte(v byte, r Register) error {
	flag := e.Flag(r)
	high := (v & 0xF0) | flag
	low := ((v << 4) & 0xF0) | flag

	if err := e.SendNibble(high); err != nil {
		return err
	}
	return e.SendNibble(low)
}

// Command writes an instruction.
func (e *Encoder) Command(cmd byte) error {
	return e.SendByte(cmd, InstructionRegister)
}

// Data writes a character code.
func (e *Encoder) Data(b byte) error {
	return e.SendByte(b, DataRegister)
}
