package hfl

import (
	"math"
	"testing"
)

func TestDeviceIdentity(t *testing.T) {
	d := NewHFL110DCUv1(&DeviceConfig{})
	if d.Model() != "hfl110dcu" || d.Version() != "v1" {
		t.Errorf("identity: %s %s", d.Model(), d.Version())
	}
}

// Full synthetic stream through the Device interface: a clean 32-row frame,
// a two-fragment object list and a telemetry fragment, interleaved the way
// the sensor's independent streams arrive.
func TestDeviceEndToEnd(t *testing.T) {
	var dev Device = NewHFL110DCUv1(&DeviceConfig{})

	var frame *Frame
	for idx := uint32(0); idx < FRAME_ROWS; idx++ {
		f, err := dev.DecodeFrame(buildFrameFragment(fragmentOpts{
			frameNumber:   42,
			fragmentIndex: idx,
			calib:         testCalibration,
			rawRange:      12544, // exactly 49.0 m, the saturation boundary
			rawRange2:     12545, // just above: NaN
		}))
		if err != nil {
			t.Fatalf("frame fragment %d: %v", idx, err)
		}
		if f != nil {
			frame = f
		}

		// Interleave the other streams mid-frame; they are independent.
		if idx == 10 {
			if _, err := dev.DecodeObjects(buildObjectFragment(false, 11, 0)); err != nil {
				t.Fatalf("object fragment: %v", err)
			}
		}
		if idx == 20 {
			list, err := dev.DecodeObjects(buildObjectFragment(true, 9, 500))
			if err != nil {
				t.Fatalf("final object fragment: %v", err)
			}
			if len(list) != OBJECTS_MAX {
				t.Fatalf("expected %d objects, got %d", OBJECTS_MAX, len(list))
			}
		}
		if idx == 25 {
			rec, err := dev.DecodeTelemetry(buildTelemetryFragment())
			if err != nil {
				t.Fatalf("telemetry: %v", err)
			}
			if rec.FrameCounter != 123456 {
				t.Errorf("telemetry frame counter: got %d", rec.FrameCounter)
			}
		}
	}

	if frame == nil {
		t.Fatal("no frame completed")
	}
	if frame.FrameNumber != 42 {
		t.Errorf("frame number: got %d", frame.FrameNumber)
	}

	// 49.0 m is kept exactly; one raw count more is saturated.
	for row := 0; row < FRAME_ROWS; row++ {
		for col := 0; col < FRAME_COLUMNS; col++ {
			if frame.Depth[row][col] != 49.0 {
				t.Fatalf("depth[%d][%d]: expected exactly 49.0, got %v", row, col, frame.Depth[row][col])
			}
			if !math.IsNaN(float64(frame.Depth2[row][col])) {
				t.Fatalf("depth2[%d][%d]: expected NaN, got %v", row, col, frame.Depth2[row][col])
			}
		}
	}

	if err := dev.DecodeSlice([]byte{1, 2, 3}); err != nil {
		t.Errorf("slice decode: %v", err)
	}
}
