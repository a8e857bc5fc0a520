// Package gpio adapts a periph.io GPIO output to the driver sleep line.
package gpio

import (
	"fmt"

	"github.com/golang/glog"
	pgpio "periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// Pin implements pms.Pin on a periph.io GPIO output.
type Pin struct {
	out pgpio.PinIO
}

// Open initializes the periph host and resolves a pin by name
// ("GPIO17", "7", ...).
func Open(name string) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	return &Pin{out: p}, nil
}

// Set implements pms.Pin. Failures are logged and dropped: the sleep line
// is best-effort and the driver exposes no error path for it.
func (p *Pin) Set(high bool) {
	level := pgpio.Low
	if high {
		level = pgpio.High
	}
	if err := p.out.Out(level); err != nil {
		glog.Warningf("set %s %s: %v", p.out, level, err)
	}
}
