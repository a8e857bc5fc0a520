package pms

import "time"

// Driver tuning constants. The sensor emits a frame roughly every 800 ms
// in active mode and needs a long warm-up after leaving sleep before its
// readings stabilize.
const (
	// PreheatDuration is how long readings stay untrusted after wake-up.
	PreheatDuration = 30 * time.Second
	// ReadTimeout bounds one frame read attempt.
	ReadTimeout = 800 * time.Millisecond
	// ReadTries is the per-Fetch attempt budget for corrupt frames.
	ReadTries = 3
)

const (
	preheatMillis     = int64(PreheatDuration / time.Millisecond)
	readTimeoutMillis = int64(ReadTimeout / time.Millisecond)
)

// Status discriminates the outcome of Fetch.
type Status int

const (
	// NoData means no validated frame was obtained this cycle: no
	// transport bound, sensor sleeping, sensor silent, or every retry
	// returned a corrupt frame.
	NoData Status = iota
	// DataAvailable means Measurement was updated from a validated frame.
	DataAvailable
	// Preheating means the warm-up interval since wake-up has not elapsed
	// yet. No read was attempted.
	Preheating
)

// Result is the outcome of one Fetch cycle.
type Result struct {
	Status Status
	// PreheatLeft is the number of whole seconds remaining until the
	// sensor is ready. Meaningful only when Status is Preheating.
	PreheatLeft int
}

// Config selects the collaborators wired to a Driver.
type Config struct {
	// Transport is the serial byte source. Fetch reports NoData while it
	// is nil.
	Transport Transport
	// SleepPin drives the sensor SET line. Leave nil when the line is not
	// wired; Sleep and WakeUp then become no-ops.
	SleepPin Pin
	// Clock overrides the monotonic clock, mainly for tests. Nil selects
	// the system clock.
	Clock Clock
	// StartAsleep puts the sensor to sleep at construction. Ignored
	// without a SleepPin.
	StartAsleep bool
}

// Driver reads a PMS5003 in active mode.
//
// It is not safe for concurrent use: all methods, and reads of the
// returned Measurement, are expected on a single goroutine.
type Driver struct {
	transport Transport
	pin       Pin
	clock     Clock

	sleeping   bool
	ready      bool
	wakeMillis int64

	m Measurement
}

// New creates a Driver and drives the sleep line to its initial state.
func New(cfg Config) *Driver {
	d := &Driver{
		transport: cfg.Transport,
		pin:       cfg.SleepPin,
		clock:     cfg.Clock,
	}
	if d.clock == nil {
		d.clock = SystemClock()
	}
	if d.pin != nil && cfg.StartAsleep {
		d.pin.Set(false)
		d.sleeping = true
	} else {
		if d.pin != nil {
			d.pin.Set(true)
		}
		d.wakeMillis = d.clock.Millis()
	}
	return d
}

// IsSleeping reports the current sleep flag.
func (d *Driver) IsSleeping() bool {
	return d.sleeping
}

// IsReady reports whether the sensor is awake and warmed up. Readiness is
// evaluated lazily and latches until the next Sleep.
func (d *Driver) IsReady() bool {
	if d.sleeping {
		return false
	}
	if !d.ready && d.transport != nil && d.clock.Millis()-d.wakeMillis > preheatMillis {
		d.ready = true
	}
	return d.ready
}

// Sleep asserts the sleep line and reports the resulting sleep flag. The
// sensor keeps streaming briefly while powering down, so up to two frames
// are read and discarded best-effort. Without a sleep pin this is a no-op.
func (d *Driver) Sleep() bool {
	if d.pin == nil {
		return d.sleeping
	}
	d.pin.Set(false)
	d.ready = false
	d.sleeping = true
	if d.transport != nil {
		var buf [frameSize]byte
		for i := 0; i < 2; i++ {
			d.readFrame(buf[:], d.clock.Millis())
		}
	}
	return d.sleeping
}

// WakeUp deasserts the sleep line, restarting the preheat interval, and
// reports whether the sensor is awake. Without a sleep pin this is a
// no-op.
func (d *Driver) WakeUp() bool {
	if d.pin != nil && d.sleeping {
		d.pin.Set(true)
		d.sleeping = false
		d.wakeMillis = d.clock.Millis()
	}
	return !d.sleeping
}

// Measurement returns the latest decoded readings. The values change only
// when Fetch returns DataAvailable, and always as one complete set.
func (d *Driver) Measurement() Measurement {
	return d.m
}

// Fetch attempts to obtain one validated frame and update Measurement.
//
// A timed-out attempt is never retried: silence means the sensor is not
// streaming at all, and the window already spent the full budget. A
// corrupt frame is a recoverable alignment or transmission fault, so it
// restarts the window and retries, up to ReadTries attempts in total.
func (d *Driver) Fetch() Result {
	if d.transport == nil || d.sleeping {
		return Result{Status: NoData}
	}
	start := d.clock.Millis()
	sinceWake := start - d.wakeMillis
	if sinceWake <= preheatMillis {
		return Result{
			Status:      Preheating,
			PreheatLeft: int((preheatMillis - sinceWake) / 1000),
		}
	}
	var buf [frameSize]byte
	for i := 0; i < ReadTries; i++ {
		switch d.readFrame(buf[:], start) {
		case readOK:
			d.m.decode(buf[:])
			return Result{Status: DataAvailable}
		case readTimedOut:
			return Result{Status: NoData}
		case readCorrupt:
			start = d.clock.Millis()
		}
	}
	return Result{Status: NoData}
}
