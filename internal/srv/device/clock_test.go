package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTicks(t *testing.T) {
	d := NewClock(5 * time.Millisecond)
	d.Start()

	select {
	case ev := <-d.EventChannel():
		assert.False(t, ev.Now.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no tick")
	}
	d.StopSendingEvent()

	assert.Greater(t, int64(d.Elapsed()), int64(0))
}

func TestClockDropsTicksWhenBusy(t *testing.T) {
	d := NewClock(time.Millisecond)
	d.Start()
	time.Sleep(20 * time.Millisecond)
	d.StopSendingEvent()

	assert.Len(t, d.EventChannel(), 1)
}
