package srv

import (
	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/jypelle/thermodisp/internal/srv/device"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/jypelle/thermodisp/internal/version"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

type ServerApp struct {
	*config.ServerConfig
	i2cBus            i2c.BusCloser
	displayDevice     *device.Display
	thermometerDevice *device.Thermometer
	rgbLedDevice      *device.RgbLed
	buttonDevice      *device.Button
	clockDevice       *device.Clock
	apiDevice         *device.Api

	// Mailbox of the LCD, the led owns another one.
	temperatures    <-chan event.TemperatureEvent
	lastTemperature *event.TemperatureEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

func NewServerApp(configDir string, debugMode bool, simulationMode bool) *ServerApp {

	logrus.Debugf("Creation of %s server %s ...", version.AppName, version.AppVersion.String())

	app := &ServerApp{
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
		ServerConfig:     config.NewServerConfig(configDir, debugMode, simulationMode),
	}

	app.i2cBus = device.OpenI2cBus(app.I2cBus, app.SimulationMode)
	var bus i2c.Bus
	if app.i2cBus != nil {
		bus = app.i2cBus
	}

	app.displayDevice = device.NewDisplay(app.LcdParam, bus, app.SimulationMode)
	app.thermometerDevice = device.NewThermometer(app.ThermistorParam, bus, app.SimulationMode)
	app.temperatures = app.thermometerDevice.Subscribe()
	app.rgbLedDevice = device.NewRgbLed(app.LedParam, app.thermometerDevice.Subscribe(), app.SimulationMode)
	app.buttonDevice = device.NewButton(app.ButtonParam, app.SimulationMode)
	app.clockDevice = device.NewClock(app.LcdParam.RefreshPeriod())
	app.apiDevice = device.NewApi(app.ServerConfig)

	logrus.Debugln("Server created")

	return app
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting %s server ...", version.AppName)

	logrus.Printf("Starting devices ...")

	// Start display device, fatal on failure
	s.displayDevice.Start()

	// Display current screen
	s.refreshDisplay()

	// Start led device
	s.rgbLedDevice.Start()

	// Start event loop
	go s.eventLoop()

	// Start thermometer device
	s.thermometerDevice.Start()

	// Start clock device
	s.clockDevice.Start()

	// Start button device
	s.buttonDevice.Start()

	// Start api device
	s.apiDevice.Start()
}

func (s *ServerApp) Stop() {
	logrus.Printf("Stopping %s server ...", version.AppName)

	// Stop api
	s.apiDevice.StopSendingEvent()

	// Stop button device
	s.buttonDevice.StopSendingEvent()

	// Stop clock device
	s.clockDevice.StopSendingEvent()

	// Stop thermometer device
	s.thermometerDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Stop led device
	s.rgbLedDevice.Stop()

	// Stop display device
	s.displayDevice.Stop()

	if s.i2cBus != nil {
		if err := s.i2cBus.Close(); err != nil {
			logrus.Warnf("Unable to close i2c bus: %v", err)
		}
	}

	// Flush state backup
	s.ServerConfig.ServerState.FlushSave()

	logrus.Printf("Server stopped")
}
