package device

import (
	"strings"
	"sync"
	"time"

	"github.com/jypelle/thermodisp/internal/lcd"
	"github.com/jypelle/thermodisp/internal/lcd/lcdsim"
	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

// Display owns the LCD controller. All its methods may be called from any
// goroutine, accesses to the controller are serialized.
type Display struct {
	lcdLock    sync.Mutex
	controller *lcd.Controller
	lastLines  []string

	param          config.LcdParam
	simulationMode bool
	bus            i2c.Bus
	sleep          func(time.Duration)

	// mirror replays every frame sent to the LCD, it is the only way to know
	// what is displayed since the LCD is never read back.
	mirror *lcdsim.Display
}

func NewDisplay(param config.LcdParam, bus i2c.Bus, simulationMode bool) *Display {
	device := Display{
		param:          param,
		simulationMode: simulationMode,
		bus:            bus,
	}
	return &device
}

// Start initializes the LCD. A failed initialization stops the process.
func (d *Display) Start() {
	logrus.Infof("Start display device")

	if err := d.open(); err != nil {
		logrus.Fatalf("Unable to initialize lcd display: %v\n", err)
	}
	logrus.Infof("LCD %s initialized", d.controller)
}

func (d *Display) open() error {
	d.lcdLock.Lock()
	defer d.lcdLock.Unlock()

	opts := d.param.Opts()
	opts.Sleep = d.sleep
	d.mirror = lcdsim.New(&opts)

	var transport lcd.ByteTransport
	if d.simulationMode {
		transport = d.mirror
	} else {
		transport = lcd.Tee(lcd.NewI2CTransport(d.bus, d.param.Address, d.param.Timeout()), d.mirror)
	}

	var err error
	d.controller, err = lcd.New(transport, &opts)
	if err != nil {
		return err
	}
	d.lastLines = make([]string, d.controller.Rows())
	return d.controller.Init()
}

// Stop blanks the LCD.
func (d *Display) Stop() {
	logrus.Infof("Stop display device")

	if err := d.Clear(); err != nil {
		logrus.Warnf("Unable to clear lcd display: %v", err)
	}
}

// Clear blanks the LCD.
func (d *Display) Clear() error {
	d.lcdLock.Lock()
	defer d.lcdLock.Unlock()

	if d.controller == nil {
		return lcd.ErrNotReady
	}
	for i := range d.lastLines {
		d.lastLines[i] = ""
	}
	return d.controller.Clear()
}

// ShowLines writes one line per row, padded with spaces to the display
// width. Rows which did not change since the last call are not rewritten.
func (d *Display) ShowLines(lines ...string) error {
	d.lcdLock.Lock()
	defer d.lcdLock.Unlock()

	if d.controller == nil {
		return lcd.ErrNotReady
	}
	for row, line := range lines {
		if row >= d.controller.Rows() {
			break
		}
		line = fitLine(line, d.controller.Cols())
		if d.lastLines[row] == line {
			continue
		}
		// Forget the row first, a failure leaves it half written.
		d.lastLines[row] = ""
		if err := d.controller.SetCursor(row, 0); err != nil {
			return err
		}
		if err := d.controller.PrintString(line); err != nil {
			return err
		}
		d.lastLines[row] = line
	}
	return nil
}

func fitLine(line string, cols int) string {
	if len(line) > cols {
		return line[:cols]
	}
	return line + strings.Repeat(" ", cols-len(line))
}

// Lines returns what the LCD shows.
func (d *Display) Lines() []string {
	d.lcdLock.Lock()
	defer d.lcdLock.Unlock()

	if d.mirror == nil {
		return nil
	}
	return d.mirror.Lines()
}

func (d *Display) Backlight() bool {
	d.lcdLock.Lock()
	defer d.lcdLock.Unlock()

	return d.mirror != nil && d.mirror.Backlight()
}

func (d *Display) State() lcd.State {
	d.lcdLock.Lock()
	defer d.lcdLock.Unlock()

	if d.controller == nil {
		return lcd.Uninitialized
	}
	return d.controller.State()
}
