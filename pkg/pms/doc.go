// Package pms drives a Plantower PMS5003 particulate matter sensor in
// active mode over a serial line.
package pms

// The sensor streams fixed 32-byte frames continuously once awake and
// warmed up. The serial stream is error-prone: bytes get lost or damaged,
// and a reader can start in the middle of a frame. This package recovers
// frame alignment by scanning for the two-byte frame marker, validates
// every frame with the declared length and a 16-bit byte-sum checksum,
// and only commits a full set of readings from a frame that passed both
// checks.
//
// The driver is cooperative and single-threaded: it runs on the caller's
// goroutine, bounds every read path with a fixed time budget, and cedes
// control through the transport's Yield whenever the sensor has nothing
// to say. Passive (query) mode is not supported.
