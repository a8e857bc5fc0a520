package pms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now int64
}

func (c *fakeClock) Millis() int64 { return c.now }

type fakePin struct {
	high bool
	sets int
}

func (p *fakePin) Set(high bool) {
	p.high = high
	p.sets++
}

// scriptTransport replays a fixed byte stream, advancing the fake clock a
// set amount per read attempt. Once the script is exhausted every read
// returns zero bytes.
type scriptTransport struct {
	clock   *fakeClock
	data    []byte
	perRead int64

	pos    int
	reads  int
	yields int
}

func (t *scriptTransport) Read(p []byte) (int, error) {
	t.reads++
	t.clock.now += t.perRead
	if t.pos >= len(t.data) {
		return 0, nil
	}
	n := copy(p, t.data[t.pos:])
	t.pos += n
	return n, nil
}

func (t *scriptTransport) Yield() { t.yields++ }

// warmDriver builds a driver whose preheat interval has already elapsed.
func warmDriver(data []byte) (*Driver, *scriptTransport, *fakeClock) {
	clock := &fakeClock{}
	tr := &scriptTransport{clock: clock, data: data, perRead: 10}
	d := New(Config{Transport: tr, Clock: clock})
	clock.now = preheatMillis + 1
	return d, tr, clock
}

func frameA() []byte {
	return buildFrame([12]uint16{10, 25, 40, 11, 26, 41, 300, 200, 100, 50, 20, 5})
}

func frameB() []byte {
	return buildFrame([12]uint16{99, 98, 97, 96, 95, 94, 93, 92, 91, 90, 89, 88})
}

func corruptFrame() []byte {
	bad := frameA()
	bad[30] ^= 0xFF
	return bad
}

func TestFetchDecodesFrame(t *testing.T) {
	d, tr, _ := warmDriver(frameA())
	res := d.Fetch()
	require.Equal(t, DataAvailable, res.Status)
	require.Equal(t, uint16(25), d.Measurement().PM2p5Std)
	require.Equal(t, uint16(300), d.Measurement().Cnt0p3)
	require.Equal(t, len(frameA()), tr.pos)
}

func TestFetchResyncsThroughGarbage(t *testing.T) {
	// garbage includes a lone second marker byte and a first marker byte
	// followed by a mismatch
	garbage := []byte{0x00, 0x4D, 0x42, 0x99, 0xFF, 0x42}
	d, _, _ := warmDriver(append(garbage, frameA()...))
	res := d.Fetch()
	require.Equal(t, DataAvailable, res.Status)
	require.Equal(t, uint16(40), d.Measurement().PM10Std)
}

func TestFetchTimeoutIsNotRetried(t *testing.T) {
	d, tr, _ := warmDriver(nil)
	tr.perRead = 100
	res := d.Fetch()
	require.Equal(t, NoData, res.Status)
	// one attempt spends the whole 800 ms window in 100 ms reads; a retry
	// would double the count
	require.Equal(t, 8, tr.reads)
	require.NotZero(t, tr.yields)
}

func TestFetchTimeoutMidFrame(t *testing.T) {
	d, tr, _ := warmDriver(frameA()[:12])
	tr.perRead = 100
	res := d.Fetch()
	require.Equal(t, NoData, res.Status)
	require.Equal(t, Measurement{}, d.Measurement())
}

func TestFetchRetriesCorruptUntilSuccess(t *testing.T) {
	data := append(corruptFrame(), corruptFrame()...)
	data = append(data, frameB()...)
	d, tr, _ := warmDriver(data)
	res := d.Fetch()
	require.Equal(t, DataAvailable, res.Status)
	require.Equal(t, uint16(98), d.Measurement().PM2p5Std)
	require.Equal(t, 3*frameSize, tr.pos)
}

func TestFetchStopsAfterThreeCorrupt(t *testing.T) {
	data := append(corruptFrame(), corruptFrame()...)
	data = append(data, corruptFrame()...)
	data = append(data, frameB()...) // must never be reached
	d, tr, _ := warmDriver(data)
	res := d.Fetch()
	require.Equal(t, NoData, res.Status)
	require.Equal(t, 3*frameSize, tr.pos)
	require.Equal(t, Measurement{}, d.Measurement())
}

func TestFetchKeepsPreviousMeasurementOnFailure(t *testing.T) {
	data := append(frameA(), corruptFrame()...)
	d, _, _ := warmDriver(data)
	require.Equal(t, DataAvailable, d.Fetch().Status)
	before := d.Measurement()

	tr := &scriptTransport{clock: &fakeClock{}, data: corruptFrame(), perRead: 100}
	d.transport = tr
	tr.clock.now = d.clock.(*fakeClock).now
	d.clock = tr.clock

	require.Equal(t, NoData, d.Fetch().Status)
	require.Equal(t, before, d.Measurement())
}

func TestFetchWhilePreheating(t *testing.T) {
	clock := &fakeClock{}
	tr := &scriptTransport{clock: clock, data: frameA(), perRead: 10}
	d := New(Config{Transport: tr, Clock: clock})

	clock.now = 5000
	res := d.Fetch()
	require.Equal(t, Preheating, res.Status)
	require.Equal(t, 25, res.PreheatLeft)
	require.Zero(t, tr.reads, "no read may happen during preheat")

	// the boundary itself still counts as preheating
	clock.now = preheatMillis
	res = d.Fetch()
	require.Equal(t, Preheating, res.Status)
	require.Equal(t, 0, res.PreheatLeft)

	clock.now = preheatMillis + 1
	require.Equal(t, DataAvailable, d.Fetch().Status)
}

func TestFetchWithoutTransport(t *testing.T) {
	clock := &fakeClock{}
	d := New(Config{Clock: clock})
	clock.now = preheatMillis * 2
	require.Equal(t, NoData, d.Fetch().Status)
	require.False(t, d.IsReady())
}

func TestFetchWhileSleeping(t *testing.T) {
	clock := &fakeClock{}
	tr := &scriptTransport{clock: clock, data: frameA(), perRead: 10}
	d := New(Config{Transport: tr, SleepPin: &fakePin{}, Clock: clock, StartAsleep: true})
	clock.now = preheatMillis * 2
	require.Equal(t, NoData, d.Fetch().Status)
	require.Zero(t, tr.reads)
}

func TestReadiness(t *testing.T) {
	clock := &fakeClock{}
	tr := &scriptTransport{clock: clock, perRead: 10}
	d := New(Config{Transport: tr, Clock: clock})

	require.False(t, d.IsReady())
	clock.now = preheatMillis
	require.False(t, d.IsReady(), "readiness needs strictly more than the preheat interval")
	clock.now = preheatMillis + 1
	require.True(t, d.IsReady())
	require.True(t, d.IsReady(), "readiness latches")
}

func TestSleepWakeCycle(t *testing.T) {
	clock := &fakeClock{}
	tr := &scriptTransport{clock: clock, data: append(frameA(), frameA()...), perRead: 10}
	pin := &fakePin{}
	d := New(Config{Transport: tr, SleepPin: pin, Clock: clock})
	require.True(t, pin.high, "construction deasserts the sleep line")

	clock.now = preheatMillis + 1
	require.True(t, d.IsReady())

	require.True(t, d.Sleep())
	require.True(t, d.IsSleeping())
	require.False(t, pin.high)
	require.False(t, d.IsReady())
	require.Equal(t, 2*frameSize, tr.pos, "sleep drains two frames best-effort")
	require.Equal(t, Measurement{}, d.Measurement(), "drained frames are discarded")

	wakeAt := clock.now
	require.True(t, d.WakeUp())
	require.False(t, d.IsSleeping())
	require.True(t, pin.high)
	require.False(t, d.IsReady(), "wake-up restarts the preheat interval")

	clock.now = wakeAt + preheatMillis
	require.False(t, d.IsReady())
	clock.now = wakeAt + preheatMillis + 1
	require.True(t, d.IsReady())
}

func TestSleepWakeIdempotent(t *testing.T) {
	clock := &fakeClock{}
	pin := &fakePin{}
	d := New(Config{Transport: &scriptTransport{clock: clock, perRead: 100}, SleepPin: pin, Clock: clock})

	require.True(t, d.WakeUp(), "waking an awake sensor keeps it awake")
	require.True(t, d.Sleep())
	require.True(t, d.Sleep(), "sleeping a sleeping sensor keeps it asleep")
}

func TestNoSleepPinIsNoop(t *testing.T) {
	clock := &fakeClock{}
	tr := &scriptTransport{clock: clock, data: frameA(), perRead: 10}
	d := New(Config{Transport: tr, Clock: clock, StartAsleep: true})

	require.False(t, d.IsSleeping(), "StartAsleep is ignored without a pin")
	require.False(t, d.Sleep(), "Sleep reports the unchanged flag")
	require.False(t, d.IsSleeping())
	require.True(t, d.WakeUp())
	require.Zero(t, tr.reads, "no drain without a pin")

	clock.now = preheatMillis + 1
	require.True(t, d.IsReady())
}

func TestStartAsleep(t *testing.T) {
	clock := &fakeClock{}
	pin := &fakePin{}
	d := New(Config{Transport: &scriptTransport{clock: clock, perRead: 10}, SleepPin: pin, Clock: clock, StartAsleep: true})

	require.True(t, d.IsSleeping())
	require.False(t, pin.high)
	require.False(t, d.IsReady())

	clock.now = 12345
	require.True(t, d.WakeUp())
	res := d.Fetch()
	require.Equal(t, Preheating, res.Status)
	require.Equal(t, int(preheatMillis/1000), res.PreheatLeft)
}
