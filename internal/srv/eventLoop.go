package srv

import (
	"fmt"

	"github.com/jypelle/thermodisp/apimodel"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/sirupsen/logrus"
)

func (s *ServerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.buttonDevice.EventChannel():
			s.onButton(ev)
		case ev := <-s.temperatures:
			s.onTemperature(ev)
		case <-s.clockDevice.EventChannel():
			if s.Screen() == apimodel.ElapsedScreen {
				s.refreshDisplay()
			}
		case ev := <-s.apiDevice.EventChannel():
			s.onApi(ev)
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}

func (s *ServerApp) onButton(ev event.ButtonEvent) {
	next := s.Screen().Next()
	logrus.Debugf("Receive button event (source %d), switch to %s screen", ev.Source, next)
	if err := s.displayDevice.Clear(); err != nil {
		logrus.Warnf("Unable to clear lcd display: %v", err)
	}
	s.SetScreen(next)
	s.refreshDisplay()
}

func (s *ServerApp) onTemperature(ev event.TemperatureEvent) {
	s.lastTemperature = &ev
	if s.Screen() == apimodel.TemperatureScreen {
		s.refreshDisplay()
	}
}

func (s *ServerApp) onApi(ev event.ApiEvent) {
	switch data := ev.Data.(type) {
	case event.ApiEventStatusData:
		s.fillStatus(data.Status)
		ev.Result <- nil
	case event.ApiEventButtonPressData:
		if s.buttonDevice.Press(event.API_BUTTON) {
			ev.Result <- nil
		} else {
			ev.Result <- fmt.Errorf("a button press is already pending")
		}
	default:
		ev.Result <- fmt.Errorf("unexpected api event %T", ev.Data)
	}
}

func (s *ServerApp) fillStatus(status *apimodel.Status) {
	status.Screen = s.Screen()
	if s.lastTemperature != nil {
		celsius := s.lastTemperature.Celsius
		status.Temperature = &celsius
	}
	status.ElapsedSeconds = s.clockDevice.Elapsed().Seconds()
	status.DisplayState = s.displayDevice.State().String()
	status.DisplayLines = s.displayDevice.Lines()
	status.Backlight = s.displayDevice.Backlight()
}
