// Package resolve translates symbolic references (object type, object name,
// property, optional index) into concrete state array locations. It is the
// validation boundary: every set_input/get_output argument map passes
// through [ParseSpec] and then [Resolver.ForRead] or [Resolver.ForWrite]
// before any state is touched.
package resolve

import (
	"fmt"

	"github.com/san-kum/mjbridge/internal/mj"
)

// Object types accepted in a Spec.
const (
	TypeActuator = "actuator"
	TypeJoint    = "joint"
	TypeBody     = "body"
	TypeQpos     = "qpos"
	TypeQvel     = "qvel"
	TypeSensor   = "sensor"
	TypeTime     = "time"
	TypeEnergy   = "energy"
)

// Resolver maps address specifications onto a model's array layout. It
// reads only the immutable Model; state access happens in the session.
type Resolver struct {
	m *mj.Model
}

func New(m *mj.Model) *Resolver {
	return &Resolver{m: m}
}

// ForWrite resolves a spec for set_input.
func (r *Resolver) ForWrite(spec Spec) (Address, error) {
	switch spec.ObjectType {
	case TypeActuator:
		return r.actuator(spec)
	case TypeJoint:
		return r.joint(spec)
	case TypeBody:
		return r.mocapBody(spec)
	case TypeQpos:
		return r.direct(ArrQpos, r.m.NQ, spec), nil
	case TypeQvel:
		return r.direct(ArrQvel, r.m.NV, spec), nil
	case TypeSensor, TypeTime, TypeEnergy:
		return Address{}, fmt.Errorf("%w: object type %q is read-only", ErrInvalidArgument, spec.ObjectType)
	default:
		return Address{}, fmt.Errorf("%w: unknown object type %q", ErrInvalidArgument, spec.ObjectType)
	}
}

// ForRead resolves a spec for get_output.
func (r *Resolver) ForRead(spec Spec) (Address, error) {
	switch spec.ObjectType {
	case TypeSensor:
		return r.sensor(spec)
	case TypeJoint:
		return r.joint(spec)
	case TypeBody:
		return r.bodyFrame(spec)
	case TypeQpos:
		return r.direct(ArrQpos, r.m.NQ, spec), nil
	case TypeQvel:
		return r.direct(ArrQvel, r.m.NV, spec), nil
	case TypeTime:
		return Address{Array: ValTime, Index: -1}, nil
	case TypeEnergy:
		return r.energy(spec)
	case TypeActuator:
		return Address{}, fmt.Errorf("%w: actuator controls are write-only", ErrInvalidArgument)
	default:
		return Address{}, fmt.Errorf("%w: unknown object type %q", ErrInvalidArgument, spec.ObjectType)
	}
}

func (r *Resolver) actuator(spec Spec) (Address, error) {
	if spec.Property != "ctrl" {
		return Address{}, fmt.Errorf("%w: actuator property must be ctrl, got %q", ErrInvalidArgument, spec.Property)
	}

	var id int
	switch {
	case spec.ObjectName != "":
		aid, ok := r.m.ActuatorID(spec.ObjectName)
		if !ok {
			return Address{}, fmt.Errorf("%w: actuator %q", ErrNotFound, spec.ObjectName)
		}
		id = aid
	case spec.Index != nil:
		id = *spec.Index
		if id >= r.m.NActuator() {
			return Address{}, fmt.Errorf("%w: actuator id %d (model has %d)", ErrNotFound, id, r.m.NActuator())
		}
	default:
		return Address{}, fmt.Errorf("%w: actuator requires object_name or index", ErrInvalidArgument)
	}

	return Address{Array: ArrCtrl, Base: id, Index: -1, Dim: 1}, nil
}

func (r *Resolver) joint(spec Spec) (Address, error) {
	if spec.ObjectName == "" {
		return Address{}, fmt.Errorf("%w: joint requires object_name", ErrInvalidArgument)
	}
	id, ok := r.m.JointID(spec.ObjectName)
	if !ok {
		return Address{}, fmt.Errorf("%w: joint %q", ErrNotFound, spec.ObjectName)
	}
	j := &r.m.Joints[id]

	var arr Array
	var base int
	switch spec.Property {
	case "pos", "qpos":
		arr, base = ArrQpos, j.QposAdr
	case "vel", "qvel":
		arr, base = ArrQvel, j.DofAdr
	default:
		return Address{}, fmt.Errorf("%w: unknown joint property %q", ErrInvalidArgument, spec.Property)
	}

	// The index is an in-array sub-offset; revolute and prismatic joints
	// hold a single scalar, so no bound against the joint width applies.
	if spec.Index != nil {
		base += *spec.Index
	}
	return Address{Array: arr, Base: base, Index: -1, Dim: 1}, nil
}

func (r *Resolver) bodyFrame(spec Spec) (Address, error) {
	id, err := r.bodyID(spec)
	if err != nil {
		return Address{}, err
	}

	var arr Array
	var dim int
	switch spec.Property {
	case "pos", "xpos":
		arr, dim = ArrXPos, 3
	case "quat", "xquat":
		arr, dim = ArrXQuat, 4
	case "vel", "cvel":
		arr, dim = ArrCVel, 6
	default:
		return Address{}, fmt.Errorf("%w: unknown body property %q", ErrInvalidArgument, spec.Property)
	}

	idx, err := checkIndex(spec.Index, dim)
	if err != nil {
		return Address{}, err
	}
	return Address{Array: arr, Base: id * dim, Index: idx, Dim: dim}, nil
}

func (r *Resolver) mocapBody(spec Spec) (Address, error) {
	id, err := r.bodyID(spec)
	if err != nil {
		return Address{}, err
	}
	mid := r.m.Bodies[id].MocapID
	if mid < 0 {
		return Address{}, fmt.Errorf("%w: body %q is not mocap-driven and cannot be written", ErrInvalidArgument, spec.ObjectName)
	}

	var arr Array
	var dim int
	switch spec.Property {
	case "pos":
		arr, dim = ArrMocapPos, 3
	case "quat":
		arr, dim = ArrMocapQuat, 4
	default:
		return Address{}, fmt.Errorf("%w: mocap body property must be pos or quat, got %q", ErrInvalidArgument, spec.Property)
	}

	idx, err := checkIndex(spec.Index, dim)
	if err != nil {
		return Address{}, err
	}
	return Address{Array: arr, Base: mid * dim, Index: idx, Dim: dim}, nil
}

func (r *Resolver) bodyID(spec Spec) (int, error) {
	if spec.ObjectName == "" {
		return 0, fmt.Errorf("%w: body requires object_name", ErrInvalidArgument)
	}
	id, ok := r.m.BodyID(spec.ObjectName)
	if !ok {
		return 0, fmt.Errorf("%w: body %q", ErrNotFound, spec.ObjectName)
	}
	return id, nil
}

func (r *Resolver) sensor(spec Spec) (Address, error) {
	if spec.ObjectName == "" {
		return Address{}, fmt.Errorf("%w: sensor requires object_name", ErrInvalidArgument)
	}
	id, ok := r.m.SensorID(spec.ObjectName)
	if !ok {
		return Address{}, fmt.Errorf("%w: sensor %q", ErrNotFound, spec.ObjectName)
	}
	s := &r.m.Sensors[id]

	// No index reads the first element regardless of the sensor's
	// dimension; multi-dimensional sensors are only fully exposed through
	// indexed reads.
	idx, err := checkIndex(spec.Index, s.Dim)
	if err != nil {
		return Address{}, fmt.Errorf("sensor %q: %w", spec.ObjectName, err)
	}
	return Address{Array: ArrSensorData, Base: s.Adr, Index: idx, Dim: s.Dim}, nil
}

func (r *Resolver) energy(spec Spec) (Address, error) {
	switch spec.Property {
	case "potential":
		return Address{Array: ValEnergyPotential, Index: -1}, nil
	case "kinetic":
		return Address{Array: ValEnergyKinetic, Index: -1}, nil
	case "total":
		return Address{Array: ValEnergyTotal, Index: -1}, nil
	default:
		return Address{}, fmt.Errorf("%w: energy property must be potential, kinetic or total, got %q", ErrInvalidArgument, spec.Property)
	}
}

// direct addresses qpos/qvel by global offset. An absent index selects
// offset 0 for reads and the entire array for writes.
func (r *Resolver) direct(arr Array, n int, spec Spec) Address {
	if spec.Index != nil {
		return Address{Array: arr, Base: *spec.Index, Index: -1, Dim: 1}
	}
	return Address{Array: arr, Base: 0, Index: -1, Dim: n}
}

func checkIndex(idx *int, dim int) (int, error) {
	if idx == nil {
		return -1, nil
	}
	if *idx >= dim {
		return 0, fmt.Errorf("%w: index %d exceeds dimension %d", ErrOutOfRange, *idx, dim)
	}
	return *idx, nil
}
