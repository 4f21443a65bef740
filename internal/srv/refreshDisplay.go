package srv

import (
	"fmt"

	"github.com/jypelle/thermodisp/apimodel"
	"github.com/sirupsen/logrus"
)

const noTemperature = "--.--C"

func (s *ServerApp) refreshDisplay() {
	if err := s.displayDevice.ShowLines(s.screenLines()...); err != nil {
		logrus.Warnf("Unable to refresh lcd display: %v", err)
	}
}

func (s *ServerApp) screenLines() []string {
	switch s.Screen() {
	case apimodel.ElapsedScreen:
		return []string{
			"Seconds passed:",
			fmt.Sprintf("%.2fs", s.clockDevice.Elapsed().Seconds()),
		}
	default:
		value := noTemperature
		if s.lastTemperature != nil {
			value = fmt.Sprintf("%.2fC", s.lastTemperature.Celsius)
		}
		return []string{"Temperature:", value}
	}
}
