package device

import "math"

const zeroCelsiusKelvin = 273.15

// ThermistorCelsius converts the divider ratio (ADC voltage over reference)
// of an NTC thermistor to degrees Celsius with the beta equation. ok is false
// when the ratio is outside ]0, 1[, meaning the divider is open or shorted.
func ThermistorCelsius(ratio, beta, nominalKelvin float64) (celsius float64, ok bool) {
	if ratio <= 0 || ratio >= 1 {
		return 0, false
	}
	kelvin := 1.0 / (math.Log(1.0/(1.0/ratio-1.0))/beta + 1.0/nominalKelvin)
	return kelvin - zeroCelsiusKelvin, true
}

// ThermistorRatio is the inverse of ThermistorCelsius.
func ThermistorRatio(celsius, beta, nominalKelvin float64) float64 {
	x := math.Exp(beta * (1.0/(celsius+zeroCelsiusKelvin) - 1.0/nominalKelvin))
	return x / (1 + x)
}
