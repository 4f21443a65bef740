package device

import (
	"sync"
	"time"

	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Clock paces the refresh of time dependent screens. Ticks are dropped
// while the previous one is still pending.
type Clock struct {
	lock         sync.Mutex
	eventChannel chan event.TickerEvent

	startTime     time.Time
	refreshPeriod time.Duration
	refreshTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewClock(refreshPeriod time.Duration) *Clock {
	clock := Clock{
		eventChannel:  make(chan event.TickerEvent, 1),
		startTime:     time.Now(),
		refreshPeriod: refreshPeriod,
		askDone:       make(chan bool),
		done:          make(chan bool),
	}
	return &clock
}

func (d *Clock) Start() {
	logrus.Infof("Start clock device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.refreshTicker = time.NewTicker(d.refreshPeriod)

	go func() {
		for loop := true; loop; {
			select {
			case now := <-d.refreshTicker.C:
				select {
				case d.eventChannel <- event.TickerEvent{Now: now}:
				default:
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Clock) StopSendingEvent() {
	logrus.Infof("Stop clock device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.refreshTicker.Stop()
	d.askDone <- true
	<-d.done
}

func (d *Clock) EventChannel() <-chan event.TickerEvent {
	return d.eventChannel
}

// Elapsed returns the time since the clock was created.
func (d *Clock) Elapsed() time.Duration {
	return time.Since(d.startTime)
}
