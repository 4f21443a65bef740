package lcd

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
)

var (
	// ErrTransport is returned, possibly wrapped, whenever a byte could not be
	// written to the expander.
	ErrTransport = errors.New("lcd: transport failure")
	// ErrNotReady is returned when an operation is called on a controller
	// which is not initialized.
	ErrNotReady = errors.New("lcd: display not ready")
)

const (
	DefaultAddress uint16        = 0x27
	DefaultTimeout time.Duration = 1000 * time.Millisecond
)

// ByteTransport writes one byte to the expander.
//
// Implementations are bound to a device address and a timeout. A failed or
// timed out write must return an error matching ErrTransport.
type ByteTransport interface {
	WriteByte(b byte) error
}

// I2CTransport is a ByteTransport on a periph I²C bus.
type I2CTransport struct {
	mu      sync.Mutex
	dev     *i2c.Dev
	timeout time.Duration
	// busy is held while a transfer is on the bus, including one abandoned
	// after a timeout.
	busy chan struct{}
}

// NewI2CTransport returns a transport writing to addr on bus. A zero timeout
// selects DefaultTimeout.
func NewI2CTransport(bus i2c.Bus, addr uint16, timeout time.Duration) *I2CTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &I2CTransport{
		dev:     &i2c.Dev{Bus: bus, Addr: addr},
		timeout: timeout,
		busy:    make(chan struct{}, 1),
	}
}

func (t *I2CTransport) String() string {
	return fmt.Sprintf("pcf8574{%s}", t.dev)
}

// WriteByte sends b as a single byte I²C write. While a timed out write is
// still on the bus, later writes fail right away so bytes never reach the
// expander out of order.
func (t *I2CTransport) WriteByte(b byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case t.busy <- struct{}{}:
	default:
		return fmt.Errorf("%w: %s: previous write still pending", ErrTransport, t)
	}

	// periph buses have no per transaction deadline, so the transfer runs
	// aside and is abandoned when the timer fires first.
	done := make(chan error, 1)
	go func() {
		err := t.dev.Tx([]byte{b}, nil)
		<-t.busy
		done <- err
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTransport, t, err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s: no answer after %s", ErrTransport, t, t.timeout)
	}
}

type teeTransport struct {
	primary ByteTransport
	mirror  ByteTransport
}

// Tee returns a transport writing to primary, then copying every byte
// primary accepted to mirror. Errors from mirror are ignored.
func Tee(primary, mirror ByteTransport) ByteTransport {
	return &teeTransport{primary: primary, mirror: mirror}
}

func (t *teeTransport) WriteByte(b byte) error {
	if err := t.primary.WriteByte(b); err != nil {
		return err
	}
	_ = t.mirror.WriteByte(b)
	return nil
}
