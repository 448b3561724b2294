package hfl

import (
	"fmt"

	"github.com/banshee-data/hfl110.report/internal/hfl/wire"
)

// MotionState is the device-assigned motion state of a tracked object. The
// values are device-defined and carried through undecoded.
type MotionState uint8

// DynamicProperty is the device-assigned dynamic-property flag of a tracked
// object, carried through undecoded.
type DynamicProperty uint8

// ObjectClass identifies the classification the sensor assigned to a
// tracked object.
type ObjectClass uint8

const (
	ClassPoint ObjectClass = iota
	ClassCar
	ClassTruck
	ClassPerson
	ClassMotorcycle
	ClassBicycle
	ClassWide
	ClassUnclassified
	ClassOtherVehicle
	ClassTrafficLight
)

func (c ObjectClass) String() string {
	switch c {
	case ClassPoint:
		return "point"
	case ClassCar:
		return "car"
	case ClassTruck:
		return "truck"
	case ClassPerson:
		return "person"
	case ClassMotorcycle:
		return "motorcycle"
	case ClassBicycle:
		return "bicycle"
	case ClassWide:
		return "wide"
	case ClassUnclassified:
		return "unclassified"
	case ClassOtherVehicle:
		return "other vehicle"
	case ClassTrafficLight:
		return "traffic light"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// ObjectGeometry is the rectangular footprint of a tracked object: three
// corner coordinates (the fourth is implied), height above the ground
// offset, and the position offset of the footprint reference point.
type ObjectGeometry struct {
	XRearRight, YRearRight float32
	XRearLeft, YRearLeft   float32
	XFrontLeft, YFrontLeft float32
	Height                 float32
	GroundOffset           float32
	DistX, DistY           float32
	Yaw                    float32
}

// ObjectKinematics is the kinematic state vector of a tracked object:
// absolute and relative velocity, acceleration, and the covariance-like
// cross terms the device reports alongside them.
type ObjectKinematics struct {
	VabsX, VabsY float32
	VrelX, VrelY float32
	AabsX        float32

	DistXDistY       float32
	DistXVx, DistXVy float32
	DistXAx, DistXAy float32
	DistYVx, DistYVy float32
	DistYAx, DistYAy float32
	VxVy, VxAx, VxAy float32
	VyAx, VyAy       float32
	AxAy             float32
}

// TrackedObject is one record from the sensor's on-device object tracker.
type TrackedObject struct {
	Geometry     ObjectGeometry
	Kinematics   ObjectKinematics
	State        MotionState
	DynamicProps DynamicProperty
	Quality      uint8
	Class        ObjectClass
	Confidence   uint8 // 0-100
}

// ObjectAssembler accumulates tracked objects across the sensor's
// two-fragment object protocol: the first fragment carries up to 11
// records, the second up to 9 more for a total of 20. The fragment whose
// final flag is set terminates the list; there is no total-count field on
// the wire.
type ObjectAssembler struct {
	objects []TrackedObject
}

// NewObjectAssembler returns an empty assembler.
func NewObjectAssembler() *ObjectAssembler {
	return &ObjectAssembler{}
}

// Pending returns the number of objects accumulated so far.
func (a *ObjectAssembler) Pending() int {
	return len(a.objects)
}

// Reset discards any accumulated objects.
func (a *ObjectAssembler) Reset() {
	a.objects = nil
}

// AddFragment decodes one object fragment. When the fragment's final flag
// is set the accumulated list is returned as an immutable snapshot and the
// assembler resets; otherwise the return is nil, nil and state is retained
// for the next fragment.
//
// A fragment arriving with an accumulated count the two-packet protocol
// cannot produce (anything other than 0 or 11 pending records) is rejected
// with ErrObjectOverflow and resets the assembler: the wire format offers
// no bound past 20 records, so extending the protocol silently is unsafe.
func (a *ObjectAssembler) AddFragment(data []byte) ([]TrackedObject, error) {
	if len(data) < OBJECT_DATA_OFFSET {
		return nil, fmt.Errorf("object fragment %d bytes, need %d: %w",
			len(data), OBJECT_DATA_OFFSET, ErrTruncatedFragment)
	}

	flagWord, err := wire.Uint32(data, OBJECT_FLAG_OFFSET)
	if err != nil {
		return nil, fmt.Errorf("object header: %w", ErrTruncatedFragment)
	}
	final := wire.Bit(byte(flagWord), 0)

	var limit int
	switch len(a.objects) {
	case 0:
		limit = OBJECTS_FIRST_FRAGMENT
	case OBJECTS_FIRST_FRAGMENT:
		limit = OBJECTS_MAX
	default:
		pending := len(a.objects)
		a.objects = nil
		return nil, fmt.Errorf("object fragment with %d objects pending: %w", pending, ErrObjectOverflow)
	}

	for off := OBJECT_DATA_OFFSET; off+OBJECT_RECORD_SIZE <= len(data); off += OBJECT_RECORD_SIZE {
		if len(a.objects) == limit {
			break
		}
		a.objects = append(a.objects, decodeObjectRecord(wire.NewDecoder(data), off))
	}

	if !final {
		return nil, nil
	}
	snapshot := a.objects
	a.objects = nil
	return snapshot, nil
}

// decodeObjectRecord reads one 129-byte object record starting at off. The
// caller guarantees the record fits in the buffer, so the decoder's sticky
// error cannot fire.
func decodeObjectRecord(d *wire.Decoder, off int) TrackedObject {
	return TrackedObject{
		Geometry: ObjectGeometry{
			XRearRight:   d.Float32(off + 0),
			YRearRight:   d.Float32(off + 4),
			XRearLeft:    d.Float32(off + 8),
			YRearLeft:    d.Float32(off + 12),
			XFrontLeft:   d.Float32(off + 16),
			YFrontLeft:   d.Float32(off + 20),
			Height:       d.Float32(off + 24),
			GroundOffset: d.Float32(off + 28),
			DistX:        d.Float32(off + 32),
			DistY:        d.Float32(off + 36),
			Yaw:          d.Float32(off + 40),
		},
		Kinematics: ObjectKinematics{
			VabsX:      d.Float32(off + 44),
			VabsY:      d.Float32(off + 48),
			VrelX:      d.Float32(off + 52),
			VrelY:      d.Float32(off + 56),
			AabsX:      d.Float32(off + 60),
			DistXDistY: d.Float32(off + 64),
			DistXVx:    d.Float32(off + 68),
			DistXVy:    d.Float32(off + 72),
			DistXAx:    d.Float32(off + 76),
			DistXAy:    d.Float32(off + 80),
			DistYVx:    d.Float32(off + 84),
			DistYVy:    d.Float32(off + 88),
			DistYAx:    d.Float32(off + 92),
			DistYAy:    d.Float32(off + 96),
			VxVy:       d.Float32(off + 100),
			VxAx:       d.Float32(off + 104),
			VxAy:       d.Float32(off + 108),
			VyAx:       d.Float32(off + 112),
			VyAy:       d.Float32(off + 116),
			AxAy:       d.Float32(off + 120),
		},
		State:        MotionState(d.Uint8(off + 124)),
		DynamicProps: DynamicProperty(d.Uint8(off + 125)),
		Quality:      d.Uint8(off + 126),
		Class:        ObjectClass(d.Uint8(off + 127)),
		Confidence:   d.Uint8(off + 128),
	}
}
