package pms

import (
	"encoding/binary"
	"fmt"
)

// Measurement holds one complete set of readings from the sensor.
//
// Mass concentrations are in µg/m³: the Std fields use the factory
// calibration, the Atm fields the ambient calibration. The Cnt fields
// count particles larger than the named size per 0.1 L of air.
type Measurement struct {
	PM1p0Std uint16 `json:"pm1p0_std"`
	PM2p5Std uint16 `json:"pm2p5_std"`
	PM10Std  uint16 `json:"pm10_std"`
	PM1p0Atm uint16 `json:"pm1p0_atm"`
	PM2p5Atm uint16 `json:"pm2p5_atm"`
	PM10Atm  uint16 `json:"pm10_atm"`
	Cnt0p3   uint16 `json:"cnt0p3"`
	Cnt0p5   uint16 `json:"cnt0p5"`
	Cnt1p0   uint16 `json:"cnt1p0"`
	Cnt2p5   uint16 `json:"cnt2p5"`
	Cnt5p0   uint16 `json:"cnt5p0"`
	Cnt10    uint16 `json:"cnt10"`
}

// decode fills all fields from a validated frame. Data words are
// big-endian starting at byte 4. Bytes 28-29 are covered by the checksum
// but the manufacturer assigns them no meaning; they are not decoded.
func (m *Measurement) decode(buf []byte) {
	m.PM1p0Std = binary.BigEndian.Uint16(buf[4:6])
	m.PM2p5Std = binary.BigEndian.Uint16(buf[6:8])
	m.PM10Std = binary.BigEndian.Uint16(buf[8:10])
	m.PM1p0Atm = binary.BigEndian.Uint16(buf[10:12])
	m.PM2p5Atm = binary.BigEndian.Uint16(buf[12:14])
	m.PM10Atm = binary.BigEndian.Uint16(buf[14:16])
	m.Cnt0p3 = binary.BigEndian.Uint16(buf[16:18])
	m.Cnt0p5 = binary.BigEndian.Uint16(buf[18:20])
	m.Cnt1p0 = binary.BigEndian.Uint16(buf[20:22])
	m.Cnt2p5 = binary.BigEndian.Uint16(buf[22:24])
	m.Cnt5p0 = binary.BigEndian.Uint16(buf[24:26])
	m.Cnt10 = binary.BigEndian.Uint16(buf[26:28])
}

// String renders the mass concentrations for logs.
func (m Measurement) String() string {
	return fmt.Sprintf("PM1.0 %dµg/m³ PM2.5 %dµg/m³ PM10 %dµg/m³ (atm %d/%d/%d)",
		m.PM1p0Std, m.PM2p5Std, m.PM10Std,
		m.PM1p0Atm, m.PM2p5Atm, m.PM10Atm)
}
