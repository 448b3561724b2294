package hfl

// Device is the per-model decoder contract. Each supported sensor model
// implements this interface over its own wire layout; dispatch code holds a
// Device and never depends on a concrete model, so new models add a variant
// rather than a rewrite.
//
// All decode methods are synchronous and each holds independent state, so
// the four streams may be decoded from separate goroutines, but every stream
// must be fed from a single goroutine: each fragment is fully decoded, and
// any completed record emitted, before the next fragment is accepted.
type Device interface {
	// DecodeFrame consumes one frame fragment and returns a completed
	// frame when the fragment was the last row of its frame.
	DecodeFrame(data []byte) (*Frame, error)

	// DecodeObjects consumes one object fragment and returns the
	// accumulated object list when the fragment's final flag was set.
	DecodeObjects(data []byte) ([]TrackedObject, error)

	// DecodeTelemetry decodes a single telemetry fragment.
	DecodeTelemetry(data []byte) (*TelemetryRecord, error)

	// DecodeSlice consumes a slice-data fragment.
	DecodeSlice(data []byte) error

	Model() string
	Version() string
}

// HFL110DCUv1 decodes the v1 wire protocol of the HFL110DCU flash lidar.
type HFL110DCUv1 struct {
	cfg     *DeviceConfig
	frames  *FrameReassembler
	objects *ObjectAssembler
}

var _ Device = (*HFL110DCUv1)(nil)

// NewHFL110DCUv1 creates a decoder reading live parameters from cfg. cfg is
// owned by the caller and may be updated between decode calls.
func NewHFL110DCUv1(cfg *DeviceConfig) *HFL110DCUv1 {
	return &HFL110DCUv1{
		cfg:     cfg,
		frames:  NewFrameReassembler(cfg),
		objects: NewObjectAssembler(),
	}
}

func (d *HFL110DCUv1) Model() string   { return "hfl110dcu" }
func (d *HFL110DCUv1) Version() string { return "v1" }

// DecodeFrame feeds one frame fragment into the row reassembler.
func (d *HFL110DCUv1) DecodeFrame(data []byte) (*Frame, error) {
	return d.frames.AddFragment(data)
}

// DecodeObjects feeds one object fragment into the list assembler.
func (d *HFL110DCUv1) DecodeObjects(data []byte) ([]TrackedObject, error) {
	return d.objects.AddFragment(data)
}

// DecodeTelemetry decodes a telemetry fragment.
func (d *HFL110DCUv1) DecodeTelemetry(data []byte) (*TelemetryRecord, error) {
	return DecodeTelemetry(data)
}

// DecodeSlice accepts a slice-data fragment. The slice stream is
// device-internal and carries no published data in protocol v1, so the
// payload is accepted and ignored.
func (d *HFL110DCUv1) DecodeSlice(data []byte) error {
	return nil
}

// Reassembler exposes the frame reassembler for stats and inspection.
func (d *HFL110DCUv1) Reassembler() *FrameReassembler {
	return d.frames
}
