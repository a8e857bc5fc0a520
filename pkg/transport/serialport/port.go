// Package serialport adapts a serial device to the driver transport.
package serialport

import (
	"runtime"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the PMS5003 active-mode line rate (8N1).
const DefaultBaudRate = 9600

// pollTimeout bounds a single blocking read so the driver can enforce its
// own time budget between reads.
const pollTimeout = 20 * time.Millisecond

// Port implements pms.Transport over a serial device.
type Port struct {
	port serial.Port
}

// Open opens the device at 8N1 with the given baud rate, 0 for the
// sensor default.
func Open(device string, baud int) (*Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(pollTimeout); err != nil {
		p.Close()
		return nil, err
	}
	return &Port{port: p}, nil
}

// Read implements pms.Transport. It returns 0 bytes when the poll timeout
// expires with nothing received.
func (p *Port) Read(buf []byte) (int, error) {
	return p.port.Read(buf)
}

// Yield implements pms.Transport by ceding the processor to other
// goroutines.
func (p *Port) Yield() {
	runtime.Gosched()
}

// Close closes the device.
func (p *Port) Close() error {
	return p.port.Close()
}
