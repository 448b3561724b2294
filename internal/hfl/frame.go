package hfl

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/hfl110.report/internal/hfl/wire"
)

// FrameReassembler consumes frame fragments (one sensor row each) and emits
// a completed Frame when the final row arrives. Rows arrive in strictly
// descending order, 31 down to 0; the wire carries an ascending
// fragmentation index which is flipped on decode. Any fragment whose row
// does not match the expected one discards the in-progress frame and resets
// the machine, so a burst of UDP loss costs at most one frame plus the
// fragments until the next row-31 packet.
type FrameReassembler struct {
	cfg       *DeviceConfig
	projector *Projector

	expectedRow int
	acc         *Frame

	frameCount int64
	gapCount   int64
}

// NewFrameReassembler returns a reassembler reading live parameters from
// cfg. cfg may be nil, in which case defaults (zero range offset, device
// extrinsics) apply.
func NewFrameReassembler(cfg *DeviceConfig) *FrameReassembler {
	return &FrameReassembler{
		cfg:         cfg,
		projector:   &Projector{},
		expectedRow: FRAME_ROWS - 1,
	}
}

// AddFragment decodes one frame fragment. It returns a non-nil Frame only
// when the fragment completed a frame. A continuity violation returns an
// error wrapping ErrFragmentGap; a short buffer returns an error wrapping
// ErrTruncatedFragment and leaves reassembly state untouched.
func (r *FrameReassembler) AddFragment(data []byte) (*Frame, error) {
	if len(data) < FRAME_FRAGMENT_MIN_SIZE {
		return nil, fmt.Errorf("frame fragment %d bytes, need %d: %w",
			len(data), FRAME_FRAGMENT_MIN_SIZE, ErrTruncatedFragment)
	}

	d := wire.NewDecoder(data)
	frameNumber := d.Uint32(FRAME_NUMBER_OFFSET)
	fragmentIndex := d.Uint32(FRAGMENT_INDEX_OFFSET)
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("frame header: %w", ErrTruncatedFragment)
	}

	// The wire index ascends 0..31; rows are identified top-down.
	row := FRAME_ROWS - 1 - int(fragmentIndex)

	if row != r.expectedRow {
		gap := &GapError{Expected: r.expectedRow, Received: row}
		r.expectedRow = FRAME_ROWS - 1
		r.acc = nil
		r.gapCount++
		return nil, gap
	}

	if row == FRAME_ROWS-1 {
		r.acc = &Frame{
			FrameID:     uuid.NewString(),
			FrameNumber: frameNumber,
			Timestamp:   time.Now(),
		}
		r.projector.Update(decodeCalibration(d), r.cfg)
	}

	r.decodeRow(data, row)

	var completed *Frame
	if row == 0 {
		r.buildPointCloud(r.acc)
		r.acc.Pose = r.projector.Pose()
		completed = r.acc
		r.acc = nil
		r.frameCount++
	}

	if r.expectedRow > 0 {
		r.expectedRow--
	} else {
		r.expectedRow = FRAME_ROWS - 1
	}
	return completed, nil
}

// ExpectedRow returns the row index the reassembler will accept next.
func (r *FrameReassembler) ExpectedRow() int {
	return r.expectedRow
}

// Stats returns the number of completed frames and detected gaps.
func (r *FrameReassembler) Stats() (frames, gaps int64) {
	return r.frameCount, r.gapCount
}

// Projector exposes the calibration projector, read-only for consumers that
// need the current ray table or pose outside frame completion.
func (r *FrameReassembler) Projector() *Projector {
	return r.projector
}

// decodeCalibration reads the 17 calibration floats embedded at a fixed
// offset in the first fragment of each frame, in wire order.
func decodeCalibration(d *wire.Decoder) CalibrationParams {
	return CalibrationParams{
		Fx:             d.Float32(CALIBRATION_OFFSET),
		Fy:             d.Float32(CALIBRATION_OFFSET + 4),
		Ux:             d.Float32(CALIBRATION_OFFSET + 8),
		Uy:             d.Float32(CALIBRATION_OFFSET + 12),
		R1:             d.Float32(CALIBRATION_OFFSET + 16),
		R2:             d.Float32(CALIBRATION_OFFSET + 20),
		T1:             d.Float32(CALIBRATION_OFFSET + 24),
		T2:             d.Float32(CALIBRATION_OFFSET + 28),
		R4:             d.Float32(CALIBRATION_OFFSET + 32),
		IntrinsicYaw:   d.Float32(CALIBRATION_OFFSET + 36),
		IntrinsicPitch: d.Float32(CALIBRATION_OFFSET + 40),
		ExtrinsicYaw:   d.Float32(CALIBRATION_OFFSET + 44),
		ExtrinsicPitch: d.Float32(CALIBRATION_OFFSET + 48),
		ExtrinsicRoll:  d.Float32(CALIBRATION_OFFSET + 52),
		ExtrinsicZ:     d.Float32(CALIBRATION_OFFSET + 56),
		ExtrinsicY:     d.Float32(CALIBRATION_OFFSET + 60),
		ExtrinsicX:     d.Float32(CALIBRATION_OFFSET + 64),
	}
}

// decodeRow fills one row of the accumulator grids from the fragment's
// pixel regions. Fragment length was validated by AddFragment, so direct
// slicing is safe here.
func (r *FrameReassembler) decodeRow(data []byte, row int) {
	acc := r.acc
	offsetCounts := r.cfg.rangeOffsetCounts()

	for col := 0; col < FRAME_COLUMNS; col++ {
		off := PIXEL_DATA_OFFSET + col*4

		range1 := (offsetCounts + float32(binary.BigEndian.Uint16(data[off:]))) / RANGE_SCALE
		range2 := (offsetCounts + float32(binary.BigEndian.Uint16(data[off+2:]))) / RANGE_SCALE
		if range1 > MAX_RANGE_METERS {
			range1 = float32(math.NaN())
		}
		if range2 > MAX_RANGE_METERS {
			range2 = float32(math.NaN())
		}
		acc.Depth[row][col] = range1
		acc.Depth2[row][col] = range2

		ioff := PIXEL_DATA_OFFSET + INTENSITY_REGION_OFFSET + col*4
		acc.Intensity[row][col] = binary.BigEndian.Uint16(data[ioff:])
		acc.Intensity2[row][col] = binary.BigEndian.Uint16(data[ioff+2:])

		classification := data[PIXEL_DATA_OFFSET+CLASSIFICATION_REGION_OFFSET+col]
		acc.Crosstalk[row][col] = wire.Bit(classification, 0)
		acc.Saturated[row][col] = wire.Bit(classification, 1)
		acc.Superimposed[row][col] = wire.Bit(classification, 3)
		acc.Crosstalk2[row][col] = wire.Bit(classification, 4)
		acc.Saturated2[row][col] = wire.Bit(classification, 5)
		acc.Superimposed2[row][col] = wire.Bit(classification, 7)
	}
}

// buildPointCloud projects both returns of every pixel through the ray
// table. Iteration is row-major with return 1 immediately followed by
// return 2, matching the published point layout.
func (r *FrameReassembler) buildPointCloud(frame *Frame) {
	table := r.projector.Table()
	frame.Points = make([]Point, 0, FRAME_ROWS*FRAME_COLUMNS*PIXEL_RETURNS)

	for row := 0; row < FRAME_ROWS; row++ {
		for col := 0; col < FRAME_COLUMNS; col++ {
			ray := table.At(col, row)

			d1 := frame.Depth[row][col]
			frame.Points = append(frame.Points, Point{
				X:            float32(ray.X) * d1,
				Y:            float32(ray.Y) * d1,
				Z:            float32(ray.Z) * d1,
				Intensity:    float32(frame.Intensity[row][col]),
				Return:       1,
				Crosstalk:    frame.Crosstalk[row][col],
				Saturated:    frame.Saturated[row][col],
				Superimposed: frame.Superimposed[row][col],
			})

			d2 := frame.Depth2[row][col]
			frame.Points = append(frame.Points, Point{
				X:            float32(ray.X) * d2,
				Y:            float32(ray.Y) * d2,
				Z:            float32(ray.Z) * d2,
				Intensity:    float32(frame.Intensity2[row][col]),
				Return:       2,
				Crosstalk:    frame.Crosstalk2[row][col],
				Saturated:    frame.Saturated2[row][col],
				Superimposed: frame.Superimposed2[row][col],
			})
		}
	}
}
