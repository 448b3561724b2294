package network

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/banshee-data/hfl110.report/internal/hfl"
)

// fakeDevice records which decode path each payload took.
type fakeDevice struct {
	frameCalls     int
	objectCalls    int
	telemetryCalls int
	sliceCalls     int

	emitFrame   *hfl.Frame
	emitObjects []hfl.TrackedObject
	frameErr    error
}

func (d *fakeDevice) DecodeFrame(data []byte) (*hfl.Frame, error) {
	d.frameCalls++
	return d.emitFrame, d.frameErr
}

func (d *fakeDevice) DecodeObjects(data []byte) ([]hfl.TrackedObject, error) {
	d.objectCalls++
	return d.emitObjects, nil
}

func (d *fakeDevice) DecodeTelemetry(data []byte) (*hfl.TelemetryRecord, error) {
	d.telemetryCalls++
	return &hfl.TelemetryRecord{FrameCounter: 9}, nil
}

func (d *fakeDevice) DecodeSlice(data []byte) error {
	d.sliceCalls++
	return nil
}

func (d *fakeDevice) Model() string   { return "fake" }
func (d *fakeDevice) Version() string { return "v0" }

func TestHandlePacketDispatch(t *testing.T) {
	dev := &fakeDevice{
		emitFrame:   &hfl.Frame{Points: make([]hfl.Point, 4)},
		emitObjects: []hfl.TrackedObject{{}, {}},
	}
	stats := NewPacketStats()

	var gotFrame *hfl.Frame
	var gotObjects []hfl.TrackedObject
	var gotTelemetry *hfl.TelemetryRecord
	handlers := Handlers{
		OnFrame:     func(f *hfl.Frame) { gotFrame = f },
		OnObjects:   func(o []hfl.TrackedObject) { gotObjects = o },
		OnTelemetry: func(r *hfl.TelemetryRecord) { gotTelemetry = r },
	}

	for _, kind := range []StreamKind{StreamFrame, StreamObject, StreamTelemetry, StreamSlice} {
		l := NewUDPListener(UDPListenerConfig{Kind: kind, Device: dev, Stats: stats, Handlers: handlers})
		l.handlePacket([]byte{0x01})
	}

	if dev.frameCalls != 1 || dev.objectCalls != 1 || dev.telemetryCalls != 1 || dev.sliceCalls != 1 {
		t.Errorf("dispatch counts: frame=%d object=%d telemetry=%d slice=%d",
			dev.frameCalls, dev.objectCalls, dev.telemetryCalls, dev.sliceCalls)
	}
	if gotFrame == nil || len(gotObjects) != 2 || gotTelemetry == nil {
		t.Error("handlers not invoked with decoded records")
	}
	if gotTelemetry != nil && gotTelemetry.FrameCounter != 9 {
		t.Errorf("telemetry record not passed through: %+v", gotTelemetry)
	}

	packets, frames, _ := stats.Totals()
	if packets != 4 || frames != 1 {
		t.Errorf("stats totals: packets=%d frames=%d", packets, frames)
	}
}

func TestHandlePacketCountsGaps(t *testing.T) {
	dev := &fakeDevice{frameErr: &hfl.GapError{Expected: 30, Received: 28}}
	stats := NewPacketStats()
	l := NewUDPListener(UDPListenerConfig{Kind: StreamFrame, Device: dev, Stats: stats})

	l.handlePacket([]byte{0x01})

	if _, _, gaps := stats.Totals(); gaps != 1 {
		t.Errorf("expected 1 gap counted, got %d", gaps)
	}
}

// A telemetry payload run through a real device decoder reaches the handler
// with the decoded values intact.
func TestHandlePacketRealDevice(t *testing.T) {
	dev := hfl.NewHFL110DCUv1(&hfl.DeviceConfig{})

	var got *hfl.TelemetryRecord
	l := NewUDPListener(UDPListenerConfig{
		Kind:   StreamTelemetry,
		Device: dev,
		Handlers: Handlers{
			OnTelemetry: func(r *hfl.TelemetryRecord) { got = r },
		},
	})

	payload := make([]byte, hfl.TELEMETRY_MIN_SIZE)
	binary.LittleEndian.PutUint32(payload[4:], math.Float32bits(21.0)) // sensor temp
	binary.BigEndian.PutUint32(payload[12:], 777)                      // frame counter
	l.handlePacket(payload)

	if got == nil {
		t.Fatal("telemetry handler not invoked")
	}
	if got.FrameCounter != 777 {
		t.Errorf("frame counter: expected 777, got %d", got.FrameCounter)
	}
	if got.SensorTemp != 21.0 {
		t.Errorf("sensor temp: expected 21.0, got %v", got.SensorTemp)
	}
}

func TestListenerStartInvalidAddress(t *testing.T) {
	l := NewUDPListener(UDPListenerConfig{Kind: StreamFrame, Address: "not-an-address:xyz"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := l.Start(ctx); err == nil {
		t.Error("expected error for unresolvable address")
	}
}
