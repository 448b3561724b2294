package hfl

import (
	"time"

	"gonum.org/v1/gonum/num/quat"
)

// HFL110DCU UDP protocol structure constants
// These define the fixed layout of the fragment payloads sent by the sensor.
const (
	FRAME_ROWS    = 32  // rows per depth/intensity frame (one row per UDP fragment)
	FRAME_COLUMNS = 128 // columns per row
	PIXEL_RETURNS = 2   // dual-return sensor: two range/intensity samples per pixel

	FRAME_NUMBER_OFFSET   = 12 // big-endian uint32 frame counter
	FRAGMENT_INDEX_OFFSET = 16 // big-endian uint32 row fragmentation index (ascending 0..31)
	CALIBRATION_OFFSET    = 20 // 17 native float32 calibration fields, meaningful on the first fragment only
	PIXEL_DATA_OFFSET     = 92 // per-column range/intensity/classification regions start here

	// Region offsets are relative to PIXEL_DATA_OFFSET. Ranges occupy
	// 128 columns x 2 returns x 2 bytes; intensities follow immediately,
	// classification bytes sit past a 128-byte device-internal gap.
	INTENSITY_REGION_OFFSET      = 512
	CLASSIFICATION_REGION_OFFSET = 1152

	// FRAME_FRAGMENT_MIN_SIZE is the last byte the row decode touches plus
	// one: the classification byte of column 127.
	FRAME_FRAGMENT_MIN_SIZE = PIXEL_DATA_OFFSET + CLASSIFICATION_REGION_OFFSET + FRAME_COLUMNS

	RANGE_SCALE      = 256.0 // raw range counts per meter
	MAX_RANGE_METERS = 49.0  // ranges beyond this are sensor saturation/invalid sentinels

	OBJECT_FLAG_OFFSET     = 10  // big-endian uint32; bit 0 is the final-fragment flag
	OBJECT_DATA_OFFSET     = 14  // first 129-byte object record
	OBJECT_RECORD_SIZE     = 129 // fixed object record size, no padding
	OBJECTS_FIRST_FRAGMENT = 11  // record cap for the first fragment
	OBJECTS_MAX            = 20  // record cap across the two-fragment protocol

	TELEMETRY_MIN_SIZE   = 67
	SERIAL_NUMBER_OFFSET = 41
	SERIAL_NUMBER_SIZE   = 26
)

// Vec3 is a 3-vector in the sensor frame (meters for translations, unitless
// for ray directions).
type Vec3 struct {
	X, Y, Z float64
}

// Transform is the composed extrinsic pose of the sensor: device-reported
// roll/pitch/yaw rotated into the consumer axis convention, plus the
// translation in meters.
type Transform struct {
	Rotation    quat.Number
	Translation Vec3
}

// Point is a single projected lidar return. NaN-ranged pixels project to
// NaN coordinates and are carried through rather than dropped, so the point
// list always holds FRAME_ROWS x FRAME_COLUMNS x PIXEL_RETURNS entries.
type Point struct {
	X, Y, Z   float32
	Intensity float32
	Return    uint8 // 1 or 2

	Crosstalk    bool
	Saturated    bool
	Superimposed bool
}

// Frame is one fully reassembled sensor frame: two depth images, two
// intensity images, six classification masks and the dual-return point
// cloud. Grids are indexed [row][col] with row 0 at the top of the imager.
// Frames are immutable once emitted by the reassembler.
type Frame struct {
	FrameID     string
	FrameNumber uint32
	Timestamp   time.Time

	Depth  [FRAME_ROWS][FRAME_COLUMNS]float32 // meters, NaN where range > MAX_RANGE_METERS
	Depth2 [FRAME_ROWS][FRAME_COLUMNS]float32

	Intensity  [FRAME_ROWS][FRAME_COLUMNS]uint16
	Intensity2 [FRAME_ROWS][FRAME_COLUMNS]uint16

	Crosstalk     [FRAME_ROWS][FRAME_COLUMNS]bool
	Crosstalk2    [FRAME_ROWS][FRAME_COLUMNS]bool
	Saturated     [FRAME_ROWS][FRAME_COLUMNS]bool
	Saturated2    [FRAME_ROWS][FRAME_COLUMNS]bool
	Superimposed  [FRAME_ROWS][FRAME_COLUMNS]bool
	Superimposed2 [FRAME_ROWS][FRAME_COLUMNS]bool

	// Points holds both returns for every pixel, row-major, return 1
	// immediately followed by return 2.
	Points []Point

	// Pose is the composed extrinsic transform current at frame completion.
	Pose Transform
}

// CalibrationParams are the intrinsic and extrinsic calibration fields the
// sensor embeds in the first fragment of every frame, in wire order.
type CalibrationParams struct {
	Fx, Fy float32 // focal lengths, pixels
	Ux, Uy float32 // principal point, pixels

	// Rational-polynomial distortion coefficients.
	R1, R2 float32
	T1, T2 float32
	R4     float32

	IntrinsicYaw   float32
	IntrinsicPitch float32

	ExtrinsicYaw   float32
	ExtrinsicPitch float32
	ExtrinsicRoll  float32
	ExtrinsicZ     float32
	ExtrinsicY     float32
	ExtrinsicX     float32
}
