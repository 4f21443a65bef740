package device

import (
	"sync"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var hostOnce sync.Once

// initHost loads the periph drivers once per process.
func initHost() {
	hostOnce.Do(func() {
		state, err := host.Init()
		if err != nil {
			logrus.Fatalf("Unable to initialize periph host: %v", err)
		}
		for _, failure := range state.Failed {
			logrus.Debugf("periph driver %s failed: %v", failure.D, failure.Err)
		}
	})
}

// OpenI2cBus opens the bus shared by the LCD backpack and the ADC. It returns
// nil in simulation mode.
func OpenI2cBus(name string, simulationMode bool) i2c.BusCloser {
	if simulationMode {
		return nil
	}
	initHost()

	// Open a handle to the I²C bus, the first available one when name is empty
	bus, err := i2creg.Open(name)
	if err != nil {
		logrus.Fatalf("Unable to open i2c bus %q: %v\n", name, err)
	}
	logrus.Infof("Using i2c bus %s", bus)
	return bus
}
