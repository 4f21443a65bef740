package device

import (
	"errors"
	"testing"
	"time"

	"github.com/jypelle/thermodisp/internal/srv/config"
	"github.com/jypelle/thermodisp/internal/srv/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

type fakeAnalogSource struct {
	sample analog.Sample
	err    error
}

func (s *fakeAnalogSource) Read() (analog.Sample, error) {
	return s.sample, s.err
}

func testThermistorParam() config.ThermistorParam {
	return config.ThermistorParam{
		ReferenceMv:    3300,
		Beta:           testBeta,
		NominalKelvin:  testNominalK,
		SamplePeriodMs: 10,
	}
}

func TestThermometerSample(t *testing.T) {
	d := NewThermometer(testThermistorParam(), nil, true)
	ch := d.Subscribe()
	d.source = &fakeAnalogSource{sample: analog.Sample{V: 1650 * physic.MilliVolt}}

	now := time.Now()
	d.sample(now)

	require.Len(t, ch, 1)
	ev := <-ch
	assert.InDelta(t, 25.0, ev.Celsius, 1e-9)
	assert.InDelta(t, 0.5, ev.Ratio, 1e-9)
	assert.Equal(t, now, ev.SampledAt)
}

func TestThermometerDropsInvalidSamples(t *testing.T) {
	d := NewThermometer(testThermistorParam(), nil, true)
	ch := d.Subscribe()

	// Open divider
	d.source = &fakeAnalogSource{sample: analog.Sample{V: 0}}
	d.sample(time.Now())
	// Shorted divider
	d.source = &fakeAnalogSource{sample: analog.Sample{V: 3300 * physic.MilliVolt}}
	d.sample(time.Now())
	// Bus error
	d.source = &fakeAnalogSource{err: errors.New("nack")}
	d.sample(time.Now())

	assert.Len(t, ch, 0)
	_, ok := d.Last()
	assert.False(t, ok)
}

func TestThermometerLatestValueWins(t *testing.T) {
	d := NewThermometer(testThermistorParam(), nil, true)
	lcdCh := d.Subscribe()
	ledCh := d.Subscribe()

	for _, celsius := range []float64{20, 21, 22} {
		d.publish(event.TemperatureEvent{Celsius: celsius})
	}

	for _, ch := range []<-chan event.TemperatureEvent{lcdCh, ledCh} {
		require.Len(t, ch, 1)
		assert.Equal(t, 22.0, (<-ch).Celsius)
	}
	last, ok := d.Last()
	assert.True(t, ok)
	assert.Equal(t, 22.0, last.Celsius)

	// A drained subscriber gets the next value
	d.publish(event.TemperatureEvent{Celsius: 23})
	assert.Equal(t, 23.0, (<-lcdCh).Celsius)
}

func TestSimulatedThermistorRange(t *testing.T) {
	param := testThermistorParam()
	s := &simulatedThermistor{param: param, start: time.Now().Add(-15 * time.Second)}

	sample, err := s.Read()
	require.NoError(t, err)
	celsius, ok := ThermistorCelsius(float64(sample.V)/float64(param.Reference()), param.Beta, param.NominalKelvin)
	require.True(t, ok)
	assert.InDelta(t, 28.0, celsius, 0.1)
}

func TestThermometerSimulationStartStop(t *testing.T) {
	d := NewThermometer(testThermistorParam(), nil, true)
	ch := d.Subscribe()
	d.Start()

	select {
	case ev := <-ch:
		assert.InDelta(t, 23.0, ev.Celsius, 5.1)
	case <-time.After(time.Second):
		t.Fatal("no temperature sampled")
	}

	d.StopSendingEvent()
}
