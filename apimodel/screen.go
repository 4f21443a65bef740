package apimodel

// Screen is the content shown on the LCD.
type Screen string

const (
	TemperatureScreen Screen = "temperature"
	ElapsedScreen     Screen = "elapsed"
)

func (s Screen) Valid() bool {
	return s == TemperatureScreen || s == ElapsedScreen
}

// Next returns the screen shown after a button press.
func (s Screen) Next() Screen {
	if s == ElapsedScreen {
		return TemperatureScreen
	}
	return ElapsedScreen
}

type Status struct {
	Screen         Screen   `json:"screen"`
	Temperature    *float64 `json:"temperature,omitempty"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	DisplayState   string   `json:"display_state"`
	DisplayLines   []string `json:"display_lines"`
	Backlight      bool     `json:"backlight"`
}
