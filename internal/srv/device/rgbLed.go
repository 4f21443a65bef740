package device

import (
	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

const (
	ledMinCelsius  = -24
	ledSpanCelsius = 104
	ledGreen       = 40
)

type pwmPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
}

// TemperatureToRgb maps -24°C to blue and 80°C to red. Temperatures outside
// that range saturate.
func TemperatureToRgb(celsius float64) (red, green, blue uint8) {
	level := (int(celsius) - ledMinCelsius) * 255 / ledSpanCelsius
	if level < 0 {
		level = 0
	} else if level > 255 {
		level = 255
	}
	return uint8(level), ledGreen, uint8(255 - level)
}

// RgbLed shows the temperature as a color.
type RgbLed struct {
	param          config.LedParam
	simulationMode bool
	temperatures   <-chan event.TemperatureEvent

	pins []pwmPin

	askDone chan bool
	done    chan bool
}

func NewRgbLed(param config.LedParam, temperatures <-chan event.TemperatureEvent, simulationMode bool) *RgbLed {
	device := RgbLed{
		param:          param,
		simulationMode: simulationMode,
		temperatures:   temperatures,
		askDone:        make(chan bool),
		done:           make(chan bool),
	}
	return &device
}

func (d *RgbLed) Start() {
	logrus.Infof("Start rgb led device")

	if !d.simulationMode {
		initHost()
		for _, name := range []string{d.param.RedPin, d.param.GreenPin, d.param.BluePin} {
			p := gpioreg.ByName(name)
			if p == nil {
				logrus.Fatalf("Failed to find %s led pin", name)
			}
			d.pins = append(d.pins, p)
		}
	}

	go func() {
		for loop := true; loop; {
			select {
			case ev := <-d.temperatures:
				if err := d.SetColor(TemperatureToRgb(ev.Celsius)); err != nil {
					logrus.Warnf("Unable to set led color: %v", err)
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *RgbLed) Stop() {
	logrus.Infof("Stop rgb led device")

	d.askDone <- true
	<-d.done
	if err := d.SetColor(0, 0, 0); err != nil {
		logrus.Warnf("Unable to switch led off: %v", err)
	}
}

// SetColor sets the duty cycle of each channel, 255 being always on.
func (d *RgbLed) SetColor(red, green, blue uint8) error {
	if d.simulationMode {
		logrus.Debugf("Led color: #%02x%02x%02x", red, green, blue)
		return nil
	}
	for i, level := range []uint8{red, green, blue} {
		duty := gpio.Duty(int64(level) * int64(gpio.DutyMax) / 255)
		if err := d.pins[i].PWM(duty, d.param.Frequency()); err != nil {
			return err
		}
	}
	return nil
}
