package event

import (
	"time"

	"github.com/jypelle/thermodisp/apimodel"
)

// Ticker
type TickerEvent struct {
	Now time.Time
}

// Thermometer
type TemperatureEvent struct {
	Celsius   float64
	Ratio     float64
	SampledAt time.Time
}

// Button
type ButtonSource int

const (
	PHYSICAL_BUTTON ButtonSource = iota
	API_BUTTON
)

type ButtonEvent struct {
	Source    ButtonSource
	PressedAt time.Time
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventStatusData struct {
	Status *apimodel.Status
}

type ApiEventButtonPressData struct{}
