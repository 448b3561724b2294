package hfl

// DeviceConfig holds the externally-owned live parameters that shape
// decoding. It is passed into the device by the caller and read on each
// fragment; it is never process-global state. The owner must not mutate it
// concurrently with decode calls (the decode path is single-threaded per
// device, see package doc).
type DeviceConfig struct {
	// GlobalRangeOffset is added to every raw range sample, in meters.
	GlobalRangeOffset float64

	// Extrinsic overrides, used in place of the device-reported extrinsics
	// when ExtrinsicsReconfigured is set. Rotations in radians,
	// translations in meters.
	ExtrinsicRoll  float64
	ExtrinsicPitch float64
	ExtrinsicYaw   float64
	TranslationX   float64
	TranslationY   float64
	TranslationZ   float64

	// ExtrinsicsReconfigured selects the override extrinsics above over
	// the values embedded in the frame stream.
	ExtrinsicsReconfigured bool
}

// rangeOffsetCounts returns the global range offset in raw range counts,
// the unit the wire samples use.
func (c *DeviceConfig) rangeOffsetCounts() float32 {
	if c == nil {
		return 0
	}
	return float32(c.GlobalRangeOffset * RANGE_SCALE)
}
