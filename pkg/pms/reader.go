package pms

// readStatus classifies the outcome of one frame read attempt.
type readStatus int

const (
	readOK readStatus = iota
	// readTimedOut means fewer than 32 valid bytes were assembled before
	// the time budget expired.
	readTimedOut
	// readCorrupt means a complete 32-byte buffer failed the checksum or
	// length check.
	readCorrupt
)

// readFrame assembles one validated frame into buf. The time budget is
// ReadTimeout measured from start; it is checked after every read attempt
// and exceeding it at any point classifies the attempt as timed out.
//
// The stream is scanned byte by byte until the two-byte marker is matched,
// which recovers alignment after arbitrary garbage. The remaining 30 bytes
// are then read in whatever chunks the transport delivers.
func (d *Driver) readFrame(buf []byte, start int64) readStatus {
	var sync markerSync
	for {
		n, err := d.transport.Read(buf[:1])
		locked := false
		if err == nil && n > 0 {
			locked = sync.feed(buf[0])
		}
		if d.clock.Millis()-start >= readTimeoutMillis {
			return readTimedOut
		}
		if locked {
			break
		}
		if n == 0 || err != nil {
			d.transport.Yield()
		}
	}
	buf[0], buf[1] = marker0, marker1
	filled := 2
	for filled < frameSize {
		n, err := d.transport.Read(buf[filled:frameSize])
		if err == nil && n > 0 {
			filled += n
		}
		if d.clock.Millis()-start >= readTimeoutMillis {
			return readTimedOut
		}
		if n == 0 || err != nil {
			d.transport.Yield()
		}
	}
	if !validFrame(buf[:frameSize]) {
		return readCorrupt
	}
	return readOK
}
