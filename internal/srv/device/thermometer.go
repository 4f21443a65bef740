package device

import (
	"math"
	"sync"
	"time"

	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

var adcChannels = []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}

type analogSource interface {
	Read() (analog.Sample, error)
}

// Thermometer samples the thermistor periodically and hands the latest
// temperature to each subscriber. A subscriber which did not read the
// previous value gets it replaced.
type Thermometer struct {
	lock        sync.RWMutex
	subscribers []chan event.TemperatureEvent
	lastEvent   *event.TemperatureEvent

	param          config.ThermistorParam
	simulationMode bool
	bus            i2c.Bus
	source         analogSource
	adcPin         ads1x15.PinADC

	sampleTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewThermometer(param config.ThermistorParam, bus i2c.Bus, simulationMode bool) *Thermometer {
	device := Thermometer{
		param:          param,
		simulationMode: simulationMode,
		bus:            bus,
		askDone:        make(chan bool),
		done:           make(chan bool),
	}
	return &device
}

// Subscribe returns a channel receiving the latest temperature. Call it
// before Start.
func (d *Thermometer) Subscribe() <-chan event.TemperatureEvent {
	d.lock.Lock()
	defer d.lock.Unlock()

	ch := make(chan event.TemperatureEvent, 1)
	d.subscribers = append(d.subscribers, ch)
	return ch
}

func (d *Thermometer) Start() {
	logrus.Infof("Start thermometer device")

	if d.simulationMode {
		d.source = &simulatedThermistor{param: d.param, start: time.Now()}
	} else {
		adc, err := ads1x15.NewADS1115(d.bus, &ads1x15.Opts{I2cAddress: d.param.AdcAddress})
		if err != nil {
			logrus.Fatalf("Unable to open ADS1115: %v\n", err)
		}
		d.adcPin, err = adc.PinForChannel(adcChannels[d.param.AdcChannel], d.param.Reference(), 128*physic.Hertz, ads1x15.BestQuality)
		if err != nil {
			logrus.Fatalf("Unable to open ADS1115 channel %d: %v\n", d.param.AdcChannel, err)
		}
		d.source = d.adcPin
	}

	d.sampleTicker = time.NewTicker(d.param.SamplePeriod())
	go func() {
		for loop := true; loop; {
			select {
			case now := <-d.sampleTicker.C:
				d.sample(now)
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Thermometer) StopSendingEvent() {
	logrus.Infof("Stop thermometer device")

	d.sampleTicker.Stop()
	d.askDone <- true
	<-d.done

	if d.adcPin != nil {
		if err := d.adcPin.Halt(); err != nil {
			logrus.Warnf("Unable to halt ADS1115: %v", err)
		}
	}
}

func (d *Thermometer) sample(now time.Time) {
	sample, err := d.source.Read()
	if err != nil {
		logrus.Warnf("Unable to read thermistor: %v", err)
		return
	}
	ratio := float64(sample.V) / float64(d.param.Reference())
	celsius, ok := ThermistorCelsius(ratio, d.param.Beta, d.param.NominalKelvin)
	if !ok {
		logrus.Debugf("Thermistor ratio %.3f out of range, sample dropped", ratio)
		return
	}
	d.publish(event.TemperatureEvent{Celsius: celsius, Ratio: ratio, SampledAt: now})
}

func (d *Thermometer) publish(ev event.TemperatureEvent) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.lastEvent = &ev
	for _, ch := range d.subscribers {
		select {
		case ch <- ev:
		default:
			// Replace the stale value
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Last returns the most recent temperature.
func (d *Thermometer) Last() (event.TemperatureEvent, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.lastEvent == nil {
		return event.TemperatureEvent{}, false
	}
	return *d.lastEvent, true
}

// simulatedThermistor swings between 18°C and 28°C every minute.
type simulatedThermistor struct {
	param config.ThermistorParam
	start time.Time
}

func (s *simulatedThermistor) Read() (analog.Sample, error) {
	phase := 2 * math.Pi * time.Since(s.start).Seconds() / 60
	celsius := 23 + 5*math.Sin(phase)
	ratio := ThermistorRatio(celsius, s.param.Beta, s.param.NominalKelvin)
	v := physic.ElectricPotential(ratio * float64(s.param.Reference()))
	return analog.Sample{V: v, Raw: int32(ratio * math.MaxInt16)}, nil
}
