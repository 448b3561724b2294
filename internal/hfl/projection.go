package hfl

import (
	"log"
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Iteration count for the iterative inverse of the distortion model,
// matching OpenCV undistortPoints without termination criteria.
const undistortIterations = 5

// The sensor reports extrinsics in the AUTOSAR axis convention; rotating by
// these fixed roll/pitch/yaw values maps them onto the consumer convention.
const (
	axisFixRoll = -1.5707
	axisFixYaw  = -1.5707
)

// RayTable holds one unit direction vector per pixel, derived from the lens
// calibration. Multiplying a ray by the decoded range for its pixel yields
// the 3D point in the sensor frame. The table is immutable once built and is
// replaced wholesale on calibration change, never mutated.
type RayTable struct {
	width  int
	height int
	rays   []Vec3
}

// At returns the ray for the given pixel. The table is indexed [col][row].
func (t *RayTable) At(col, row int) Vec3 {
	return t.rays[col*t.height+row]
}

// BuildRayTable computes the per-pixel ray lookup table for the given
// calibration. For every pixel the forward distortion model is inverted to
// obtain the normalized image-plane point (u, v); the ray is (u, v, 1),
// normalized to unit length when radial is set so that scaling by a range
// sample produces a true 3D point rather than a plane intersection.
//
// Non-finite calibration values are not rejected here; they propagate into
// the table and must be filtered by the caller.
func BuildRayTable(p CalibrationParams, width, height int, radial bool) *RayTable {
	t := &RayTable{
		width:  width,
		height: height,
		rays:   make([]Vec3, width*height),
	}
	for col := 0; col < width; col++ {
		for row := 0; row < height; row++ {
			u, v := undistortPixel(p, float64(col), float64(row))
			ray := Vec3{X: u, Y: v, Z: 1}
			if radial {
				n := math.Sqrt(ray.X*ray.X + ray.Y*ray.Y + ray.Z*ray.Z)
				ray = Vec3{X: ray.X / n, Y: ray.Y / n, Z: ray.Z / n}
			}
			t.rays[col*height+row] = ray
		}
	}
	return t
}

// undistortPixel inverts the rational-polynomial distortion model for one
// pixel coordinate. The sensor reports five coefficients which occupy the
// k1, k2, p1, p2 and k4 slots of the eight-coefficient model; the remaining
// slots are zero.
func undistortPixel(p CalibrationParams, px, py float64) (float64, float64) {
	fx, fy := float64(p.Fx), float64(p.Fy)
	ux, uy := float64(p.Ux), float64(p.Uy)
	k1, k2 := float64(p.R1), float64(p.R2)
	p1, p2 := float64(p.T1), float64(p.T2)
	k4 := float64(p.R4)

	x0 := (px - ux) / fx
	y0 := (py - uy) / fy

	x, y := x0, y0
	for i := 0; i < undistortIterations; i++ {
		r2 := x*x + y*y
		icdist := (1 + k4*r2) / (1 + k1*r2 + k2*r2*r2)
		deltaX := 2*p1*x*y + p2*(r2+2*x*x)
		deltaY := p1*(r2+2*y*y) + 2*p2*x*y
		x = (x0 - deltaX) * icdist
		y = (y0 - deltaY) * icdist
	}
	return x, y
}

// quatFromRPY builds a rotation quaternion from fixed-axis roll (X), pitch
// (Y) and yaw (Z) angles in radians.
func quatFromRPY(roll, pitch, yaw float64) quat.Number {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// composePose rotates the device-reported extrinsic orientation into the
// consumer axis convention and normalizes the result.
func composePose(roll, pitch, yaw float64, translation Vec3) Transform {
	qOrig := quatFromRPY(roll, pitch, yaw)
	qRot := quatFromRPY(axisFixRoll, 0, axisFixYaw)
	q := quat.Mul(qOrig, qRot)
	if n := quat.Abs(q); n > 0 {
		q = quat.Scale(1/n, q)
	}
	return Transform{Rotation: q, Translation: translation}
}

// Projector caches the ray table and composed extrinsic pose derived from
// the most recent calibration. The sensor resends its calibration on every
// frame; a change is detected by comparing the received fx against the
// cached one, and only then are the table and pose rebuilt. A calibration
// update that alters extrinsics but not fx therefore does not take effect —
// this mirrors the device's observed behavior and is deliberately preserved.
type Projector struct {
	calib     CalibrationParams
	haveCalib bool
	table     *RayTable
	pose      Transform
}

// Update installs calib, rebuilding the ray table and pose when fx differs
// from the cached calibration. When cfg has ExtrinsicsReconfigured set the
// override extrinsics are composed into the pose instead of the
// device-reported ones. Reports whether a rebuild occurred.
func (pr *Projector) Update(calib CalibrationParams, cfg *DeviceConfig) bool {
	rebuild := !pr.haveCalib || calib.Fx != pr.calib.Fx
	if rebuild {
		pr.table = BuildRayTable(calib, FRAME_COLUMNS, FRAME_ROWS, true)

		roll := float64(calib.ExtrinsicRoll)
		pitch := float64(calib.ExtrinsicPitch)
		yaw := float64(calib.ExtrinsicYaw)
		translation := Vec3{
			X: float64(calib.ExtrinsicX),
			Y: float64(calib.ExtrinsicY),
			Z: float64(calib.ExtrinsicZ),
		}
		if cfg != nil && cfg.ExtrinsicsReconfigured {
			roll, pitch, yaw = cfg.ExtrinsicRoll, cfg.ExtrinsicPitch, cfg.ExtrinsicYaw
			translation = Vec3{X: cfg.TranslationX, Y: cfg.TranslationY, Z: cfg.TranslationZ}
		}
		pr.pose = composePose(roll, pitch, yaw, translation)
		log.Printf("calibration changed (fx=%.4f), ray table rebuilt", calib.Fx)
	}
	pr.calib = calib
	pr.haveCalib = true
	return rebuild
}

// Table returns the current ray table, or nil before the first Update.
func (pr *Projector) Table() *RayTable {
	return pr.table
}

// Pose returns the composed extrinsic transform from the last rebuild.
func (pr *Projector) Pose() Transform {
	return pr.pose
}
