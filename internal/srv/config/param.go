package config

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/jypelle/thermodisp/internal/lcd"
	"periph.io/x/conn/v3/physic"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	I2cBus          string          `yaml:"i2c_bus"`
	LcdParam        LcdParam        `yaml:"lcd"`
	ThermistorParam ThermistorParam `yaml:"thermistor"`
	LedParam        LedParam        `yaml:"led"`
	ButtonParam     ButtonParam     `yaml:"button"`
	ApiParam        ApiParam        `yaml:"api"`
}

type LcdParam struct {
	Address         uint16      `yaml:"address"`
	TimeoutMs       int64       `yaml:"timeout_ms"`
	Rows            int         `yaml:"rows"`
	Cols            int         `yaml:"cols"`
	RowOffsets      []byte      `yaml:"row_offsets,omitempty"`
	BitMap          BitMapParam `yaml:"bit_map"`
	RefreshPeriodMs int64       `yaml:"refresh_period_ms"`
}

// BitMapParam gives the PCF8574 pin of each LCD control line as a bit mask.
type BitMapParam struct {
	Backlight      byte `yaml:"backlight"`
	Enable         byte `yaml:"enable"`
	ReadWrite      byte `yaml:"read_write"`
	RegisterSelect byte `yaml:"register_select"`
}

type ThermistorParam struct {
	AdcAddress     uint16  `yaml:"adc_address"`
	AdcChannel     int     `yaml:"adc_channel"`
	ReferenceMv    int64   `yaml:"reference_mv"`
	Beta           float64 `yaml:"beta"`
	NominalKelvin  float64 `yaml:"nominal_kelvin"`
	SamplePeriodMs int64   `yaml:"sample_period_ms"`
}

type LedParam struct {
	RedPin      string `yaml:"red_pin"`
	GreenPin    string `yaml:"green_pin"`
	BluePin     string `yaml:"blue_pin"`
	FrequencyHz int64  `yaml:"frequency_hz"`
}

type ButtonParam struct {
	Pin        string `yaml:"pin"`
	DebounceMs int64  `yaml:"debounce_ms"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port"`
	ApiKey  string `yaml:"api_key"`
}

// Check reports the first inconsistent parameter.
func (p *ServerParam) Check() error {
	if p.LcdParam.Address > 0x7F {
		return fmt.Errorf("lcd.address %#x is not a 7-bit address", p.LcdParam.Address)
	}
	if p.ThermistorParam.AdcChannel < 0 || p.ThermistorParam.AdcChannel > 3 {
		return fmt.Errorf("thermistor.adc_channel %d out of 0..3", p.ThermistorParam.AdcChannel)
	}
	if p.ThermistorParam.ReferenceMv <= 0 {
		return fmt.Errorf("thermistor.reference_mv must be positive")
	}
	if p.ThermistorParam.Beta <= 0 || p.ThermistorParam.NominalKelvin <= 0 {
		return fmt.Errorf("thermistor.beta and thermistor.nominal_kelvin must be positive")
	}
	if p.ThermistorParam.SamplePeriodMs <= 0 || p.LcdParam.RefreshPeriodMs <= 0 {
		return fmt.Errorf("sample and refresh periods must be positive")
	}
	opts := p.LcdParam.Opts()
	if _, err := lcd.New(nil, &opts); err != nil {
		return err
	}
	return nil
}

// Opts converts the LCD parameters to driver options.
func (p LcdParam) Opts() lcd.Opts {
	return lcd.Opts{
		Rows:       p.Rows,
		Cols:       p.Cols,
		RowOffsets: p.RowOffsets,
		Bits: lcd.BitMap{
			Backlight:      p.BitMap.Backlight,
			Enable:         p.BitMap.Enable,
			ReadWrite:      p.BitMap.ReadWrite,
			RegisterSelect: p.BitMap.RegisterSelect,
		},
	}
}

func (p LcdParam) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

func (p LcdParam) RefreshPeriod() time.Duration {
	return time.Duration(p.RefreshPeriodMs) * time.Millisecond
}

func (p ThermistorParam) SamplePeriod() time.Duration {
	return time.Duration(p.SamplePeriodMs) * time.Millisecond
}

func (p ThermistorParam) Reference() physic.ElectricPotential {
	return physic.ElectricPotential(p.ReferenceMv) * physic.MilliVolt
}

func (p LedParam) Frequency() physic.Frequency {
	return physic.Frequency(p.FrequencyHz) * physic.Hertz
}

func (p ButtonParam) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}
