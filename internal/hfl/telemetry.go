package hfl

import (
	"fmt"
	"strings"

	"github.com/banshee-data/hfl110.report/internal/hfl/wire"
)

// TelemetryRecord is the device health record carried in a single telemetry
// fragment. Each decode fully replaces the previous record; there is no
// partial state.
type TelemetryRecord struct {
	HardwareRevision uint32
	SensorTemp       float32 // degrees C
	HeaterTemp       float32 // degrees C, sign already corrected
	FrameCounter     uint32

	// ADC voltage readings.
	ADCUbattSW        float32
	ADCUbatt          float32
	ADCHeaterLens     float32
	ADCHeaterLensHigh float32
	ADCTemp0Lens      float32

	AcquisitionPeriod  float32
	TempSensorFeedback uint8

	SerialNumber [SERIAL_NUMBER_SIZE]byte
}

// Serial returns the serial number as a printable string with trailing NUL
// padding removed.
func (t *TelemetryRecord) Serial() string {
	return strings.TrimRight(string(t.SerialNumber[:]), "\x00")
}

// DecodeTelemetry decodes a telemetry fragment. The wire stores the heater
// temperature negated, so its sign is inverted here, and the serial number
// field in reverse byte order, so wire byte 25 becomes output byte 0.
func DecodeTelemetry(data []byte) (*TelemetryRecord, error) {
	if len(data) < TELEMETRY_MIN_SIZE {
		return nil, fmt.Errorf("telemetry fragment %d bytes, need %d: %w",
			len(data), TELEMETRY_MIN_SIZE, ErrTruncatedFragment)
	}

	d := wire.NewDecoder(data)
	rec := &TelemetryRecord{
		HardwareRevision:   d.Uint32(0),
		SensorTemp:         d.Float32(4),
		HeaterTemp:         -d.Float32(8),
		FrameCounter:       d.Uint32(12),
		ADCUbattSW:         d.Float32(16),
		ADCUbatt:           d.Float32(20),
		ADCHeaterLens:      d.Float32(24),
		ADCHeaterLensHigh:  d.Float32(28),
		ADCTemp0Lens:       d.Float32(32),
		AcquisitionPeriod:  d.Float32(36),
		TempSensorFeedback: d.Uint8(40),
	}
	for i := SERIAL_NUMBER_SIZE - 1; i >= 0; i-- {
		rec.SerialNumber[SERIAL_NUMBER_SIZE-1-i] = d.Uint8(SERIAL_NUMBER_OFFSET + i)
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("telemetry decode: %w", ErrTruncatedFragment)
	}
	return rec, nil
}
