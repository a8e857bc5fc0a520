package pms

import "time"

// Transport is the timeout-bounded byte source connected to the sensor TX
// line.
//
// Read fills buf with whatever bytes are available and returns the count,
// possibly zero. It must return within a short internal timeout rather
// than block indefinitely; the driver enforces its own time budget between
// calls. Yield cedes control so other cooperative work can run; the driver
// calls it whenever a read produces no bytes.
type Transport interface {
	Read(buf []byte) (int, error)
	Yield()
}

// Clock is a monotonic millisecond counter. Absolute values carry no
// meaning, only differences between readings.
type Clock interface {
	Millis() int64
}

// Pin is a digital output driving the sensor SET line, logic-high = awake.
type Pin interface {
	Set(high bool)
}

// SystemClock returns a Clock backed by the runtime monotonic clock.
func SystemClock() Clock {
	return &systemClock{start: time.Now()}
}

type systemClock struct {
	start time.Time
}

func (c *systemClock) Millis() int64 {
	return int64(time.Since(c.start) / time.Millisecond)
}
