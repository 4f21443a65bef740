// Package lcd drives an HD44780 character display wired behind a PCF8574 I²C
// GPIO expander (the common "LCD1602 I²C backpack").
//
// The expander output byte is used as the display bus: the upper four bits
// carry the data nibble and the lower four bits carry the control lines
// (register select, read/write, enable and backlight). The display runs in
// 4-bit mode, every byte being sent as two nibbles, each latched by a high
// then low transition of the enable line.
//
// The package is write only: the busy flag is never read, fixed delays are
// used instead.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
package lcd
