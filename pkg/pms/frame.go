package pms

import "encoding/binary"

const (
	frameSize = 32
	marker0   = 0x42
	marker1   = 0x4D
	// frameLength is the value the length field must declare: the number
	// of bytes following it, data words plus checksum.
	frameLength = 28
)

// markerSync tracks how many bytes of the two-byte frame marker have been
// matched while scanning the stream for the start of a frame.
type markerSync int

// feed consumes one byte and reports whether the marker is fully matched.
// A mismatch after a first marker byte restarts the search from the
// mismatched byte itself.
func (s *markerSync) feed(b byte) bool {
	switch {
	case *s == 0:
		if b == marker0 {
			*s = 1
		}
	case b == marker1:
		*s = 2
	case b == marker0:
		*s = 1
	default:
		*s = 0
	}
	return *s == 2
}

// validFrame checks the checksum and the declared length of a complete
// 32-byte frame. The checksum is the 16-bit sum of bytes 0-29, stored
// big-endian in the last two bytes.
func validFrame(buf []byte) bool {
	var sum uint16
	for _, b := range buf[:frameSize-2] {
		sum += uint16(b)
	}
	if binary.BigEndian.Uint16(buf[frameSize-2:frameSize]) != sum {
		return false
	}
	return binary.BigEndian.Uint16(buf[2:4]) == frameLength
}
