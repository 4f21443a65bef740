package device

import (
	"time"

	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// edgeWait bounds WaitForEdge so the watcher notices a stop request.
const edgeWait = 200 * time.Millisecond

// Button reports presses of the screen toggle button. At most one press is
// pending: presses happening before the previous one was consumed are
// merged into it.
type Button struct {
	param          config.ButtonParam
	simulationMode bool
	pin            gpio.PinIO
	lastPress      time.Time

	eventChannel chan event.ButtonEvent

	askDone chan bool
	done    chan bool
}

func NewButton(param config.ButtonParam, simulationMode bool) *Button {
	device := Button{
		param:          param,
		simulationMode: simulationMode,
		eventChannel:   make(chan event.ButtonEvent, 1),
		askDone:        make(chan bool),
		done:           make(chan bool),
	}
	return &device
}

func (d *Button) Start() {
	logrus.Infof("Start button device")

	if d.simulationMode {
		return
	}

	initHost()
	d.pin = gpioreg.ByName(d.param.Pin)
	if d.pin == nil {
		logrus.Fatalf("Failed to find %s button", d.param.Pin)
	}
	// Input with an internal pull up resistor, the button pulls to ground
	if err := d.pin.In(gpio.PullUp, gpio.RisingEdge); err != nil {
		logrus.Fatalf("Failed to setup %s button: %v", d.param.Pin, err)
	}

	go func() {
		for loop := true; loop; {
			if d.pin.WaitForEdge(edgeWait) {
				d.edge(time.Now())
			}
			select {
			case <-d.askDone:
				loop = false
			default:
			}
		}
		d.done <- true
	}()
}

func (d *Button) edge(now time.Time) {
	if !d.lastPress.IsZero() && now.Sub(d.lastPress) < d.param.Debounce() {
		return
	}
	d.lastPress = now
	d.Press(event.PHYSICAL_BUTTON)
}

// Press queues a press unless one is already pending. It never blocks.
func (d *Button) Press(source event.ButtonSource) bool {
	select {
	case d.eventChannel <- event.ButtonEvent{Source: source, PressedAt: time.Now()}:
		return true
	default:
		logrus.Debugf("Button press merged with the pending one")
		return false
	}
}

func (d *Button) StopSendingEvent() {
	logrus.Infof("Stop button device")

	if d.simulationMode {
		return
	}
	d.askDone <- true
	<-d.done
	if err := d.pin.Halt(); err != nil {
		logrus.Warnf("Unable to halt %s button: %v", d.param.Pin, err)
	}
}

func (d *Button) EventChannel() <-chan event.ButtonEvent {
	return d.eventChannel
}
