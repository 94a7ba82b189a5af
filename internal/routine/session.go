// Package routine implements the simulator routine: one loaded model, its
// state, and the three operations an orchestrator drives it with
// (SetInput, GetOutput and RunCommand).
package routine

import (
	"errors"
	"fmt"

	"github.com/san-kum/mjbridge/internal/engine"
	"github.com/san-kum/mjbridge/internal/mj"
	"github.com/san-kum/mjbridge/internal/resolve"
)

// ErrInitialization marks a session whose model failed to load. Such a
// session is never usable; callers must not retry it.
var ErrInitialization = errors.New("routine: initialization failed")

// Session owns a loaded model, its state and the engine driving it, plus
// the accumulated simulation time and step count. Operations are strictly
// sequential: one call completes before the next is issued, so no locking
// is needed.
type Session struct {
	m   *mj.Model
	d   *mj.Data
	eng engine.Engine
	res *resolve.Resolver

	time  float64
	steps int
}

// NewSession loads the model at path and builds the session around the
// builtin engine. Load failure is fatal to the session.
func NewSession(path string) (*Session, error) {
	m, err := mj.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	d := mj.NewData(m)
	return Attach(m, d, engine.New(m, d)), nil
}

// Attach builds a session around an already-constructed model, state and
// engine. The session takes exclusive ownership of all three.
func Attach(m *mj.Model, d *mj.Data, eng engine.Engine) *Session {
	return &Session{
		m:   m,
		d:   d,
		eng: eng,
		res: resolve.New(m),
	}
}

func (s *Session) Model() *mj.Model { return s.m }
func (s *Session) Data() *mj.Data   { return s.d }
func (s *Session) Time() float64    { return s.time }
func (s *Session) Steps() int       { return s.steps }

// SetInput resolves the argument map for writing and assigns the value.
// Scalar targets coerce the value to a single float; full-row targets
// require exactly the row's dimension.
func (s *Session) SetInput(args map[string]string, value any) error {
	spec := resolve.ParseSpec(args, resolve.TypeActuator, "ctrl")
	addr, err := s.res.ForWrite(spec)
	if err != nil {
		return fmt.Errorf("failed to set input: %w", err)
	}

	arr, err := s.slice(addr.Array)
	if err != nil {
		return fmt.Errorf("failed to set input: %w", err)
	}

	if addr.Scalar() {
		v, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("failed to set input: %w", err)
		}
		off := addr.Offset()
		if off >= len(arr) {
			return fmt.Errorf("failed to set input: %w: offset %d outside %s (len %d)",
				resolve.ErrOutOfRange, off, addr.Array, len(arr))
		}
		arr[off] = v
		return nil
	}

	vs, err := toFloats(value)
	if err != nil {
		return fmt.Errorf("failed to set input: %w", err)
	}
	if len(vs) != addr.Dim {
		return fmt.Errorf("failed to set input: %w: %s expects %d values, got %d",
			resolve.ErrInvalidArgument, addr.Array, addr.Dim, len(vs))
	}
	copy(arr[addr.Base:addr.Base+addr.Dim], vs)
	return nil
}

// GetOutput resolves the argument map for reading and returns the value.
func (s *Session) GetOutput(args map[string]string) (float64, error) {
	spec := resolve.ParseSpec(args, resolve.TypeSensor, "sensordata")
	addr, err := s.res.ForRead(spec)
	if err != nil {
		return 0, fmt.Errorf("failed to get output: %w", err)
	}

	switch addr.Array {
	case resolve.ValTime:
		return s.time, nil
	case resolve.ValEnergyPotential:
		return s.d.Energy[0], nil
	case resolve.ValEnergyKinetic:
		return s.d.Energy[1], nil
	case resolve.ValEnergyTotal:
		return s.d.Energy[0] + s.d.Energy[1], nil
	}

	arr, err := s.slice(addr.Array)
	if err != nil {
		return 0, fmt.Errorf("failed to get output: %w", err)
	}
	off := addr.Offset()
	if off >= len(arr) {
		return 0, fmt.Errorf("failed to get output: %w: offset %d outside %s (len %d)",
			resolve.ErrOutOfRange, off, addr.Array, len(arr))
	}
	return arr[off], nil
}

// slice maps an array identifier onto the backing state slice.
func (s *Session) slice(a resolve.Array) ([]float64, error) {
	switch a {
	case resolve.ArrQpos:
		return s.d.Qpos, nil
	case resolve.ArrQvel:
		return s.d.Qvel, nil
	case resolve.ArrCtrl:
		return s.d.Ctrl, nil
	case resolve.ArrSensorData:
		return s.d.SensorData, nil
	case resolve.ArrXPos:
		return s.d.XPos, nil
	case resolve.ArrXQuat:
		return s.d.XQuat, nil
	case resolve.ArrCVel:
		return s.d.CVel, nil
	case resolve.ArrMocapPos:
		return s.d.MocapPos, nil
	case resolve.ArrMocapQuat:
		return s.d.MocapQuat, nil
	}
	return nil, fmt.Errorf("%w: array %s has no state backing", resolve.ErrInvalidArgument, a)
}
