package mj

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultTimestep is used when the model file does not set one.
const DefaultTimestep = 0.002

// SupportedExtensions lists the model file types Load accepts.
var SupportedExtensions = []string{"xml", "mjcf", "urdf"}

type JointType int

const (
	JointHinge JointType = iota
	JointSlide
	JointBall
	JointFree
)

func (t JointType) String() string {
	switch t {
	case JointHinge:
		return "hinge"
	case JointSlide:
		return "slide"
	case JointBall:
		return "ball"
	case JointFree:
		return "free"
	}
	return "unknown"
}

// QposSize returns the number of position coordinates the joint occupies.
func (t JointType) QposSize() int {
	switch t {
	case JointBall:
		return 4
	case JointFree:
		return 7
	default:
		return 1
	}
}

// DofSize returns the number of velocity degrees of freedom.
func (t JointType) DofSize() int {
	switch t {
	case JointBall:
		return 3
	case JointFree:
		return 6
	default:
		return 1
	}
}

type SensorType int

const (
	SensorJointPos SensorType = iota
	SensorJointVel
	SensorActuatorFrc
	SensorFramePos
)

// Dim returns the number of sensordata entries the sensor produces.
func (t SensorType) Dim() int {
	if t == SensorFramePos {
		return 3
	}
	return 1
}

type Body struct {
	Name   string
	Parent int
	Pos    [3]float64 // offset from parent frame
	Quat   [4]float64 // orientation in parent frame (w, x, y, z)
	Mass   float64
	// Lumped rotational inertia about the joint axis. Zero means
	// "derive from mass" at load time.
	Inertia float64
	MocapID int // -1 when the body is not mocap-driven
}

type Joint struct {
	Name      string
	Body      int // body the joint moves
	Type      JointType
	Axis      [3]float64
	QposAdr   int
	DofAdr    int
	Damping   float64
	Stiffness float64
	SpringRef float64
	Ref       float64
	Armature  float64
}

type Actuator struct {
	Name      string
	Joint     int
	Gear      float64
	CtrlRange [2]float64 // both zero means unlimited
}

type Sensor struct {
	Name string
	Type SensorType
	Obj  int // joint, actuator or body id depending on Type
	Adr  int
	Dim  int
}

// Model is the immutable description of a loaded model. All fields are
// populated by Load and never mutated afterwards.
type Model struct {
	Name     string
	Timestep float64
	Gravity  [3]float64

	Bodies    []Body // index 0 is the world body
	Joints    []Joint
	Actuators []Actuator
	Sensors   []Sensor
	Geoms     int

	NQ          int
	NV          int
	NMocap      int
	NSensorData int

	// Qpos0 is the reference pose restored on reset.
	Qpos0 []float64

	bodyIndex     map[string]int
	jointIndex    map[string]int
	actuatorIndex map[string]int
	sensorIndex   map[string]int
}

func (m *Model) NBody() int     { return len(m.Bodies) }
func (m *Model) NJoint() int    { return len(m.Joints) }
func (m *Model) NActuator() int { return len(m.Actuators) }
func (m *Model) NSensor() int   { return len(m.Sensors) }

func (m *Model) BodyID(name string) (int, bool) {
	id, ok := m.bodyIndex[name]
	return id, ok
}

func (m *Model) JointID(name string) (int, bool) {
	id, ok := m.jointIndex[name]
	return id, ok
}

func (m *Model) ActuatorID(name string) (int, bool) {
	id, ok := m.actuatorIndex[name]
	return id, ok
}

func (m *Model) SensorID(name string) (int, bool) {
	id, ok := m.sensorIndex[name]
	return id, ok
}

// Load reads a model file, dispatching on the file extension.
func Load(path string) (*Model, error) {
	switch ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext {
	case "xml", "mjcf":
		return loadMJCF(path)
	case "urdf":
		return loadURDF(path)
	default:
		return nil, fmt.Errorf("unsupported model file extension %q (supported: %s)",
			ext, strings.Join(SupportedExtensions, ", "))
	}
}

// finalize assigns array offsets, builds the name indexes and computes the
// reference pose. Called exactly once at the end of loading.
func (m *Model) finalize() error {
	if m.Timestep <= 0 {
		m.Timestep = DefaultTimestep
	}

	m.bodyIndex = make(map[string]int, len(m.Bodies))
	m.jointIndex = make(map[string]int, len(m.Joints))
	m.actuatorIndex = make(map[string]int, len(m.Actuators))
	m.sensorIndex = make(map[string]int, len(m.Sensors))

	m.NMocap = 0
	for i := range m.Bodies {
		b := &m.Bodies[i]
		if b.Name != "" {
			if _, dup := m.bodyIndex[b.Name]; dup {
				return fmt.Errorf("duplicate body name %q", b.Name)
			}
			m.bodyIndex[b.Name] = i
		}
		if b.Quat == ([4]float64{}) {
			b.Quat = [4]float64{1, 0, 0, 0}
		}
		if b.MocapID >= 0 {
			b.MocapID = m.NMocap
			m.NMocap++
		}
	}

	m.NQ, m.NV = 0, 0
	for i := range m.Joints {
		j := &m.Joints[i]
		if j.Name != "" {
			if _, dup := m.jointIndex[j.Name]; dup {
				return fmt.Errorf("duplicate joint name %q", j.Name)
			}
			m.jointIndex[j.Name] = i
		}
		j.QposAdr = m.NQ
		j.DofAdr = m.NV
		m.NQ += j.Type.QposSize()
		m.NV += j.Type.DofSize()
	}

	for i := range m.Actuators {
		a := &m.Actuators[i]
		if a.Name != "" {
			if _, dup := m.actuatorIndex[a.Name]; dup {
				return fmt.Errorf("duplicate actuator name %q", a.Name)
			}
			m.actuatorIndex[a.Name] = i
		}
		if a.Gear == 0 {
			a.Gear = 1
		}
	}

	m.NSensorData = 0
	for i := range m.Sensors {
		s := &m.Sensors[i]
		if s.Name != "" {
			if _, dup := m.sensorIndex[s.Name]; dup {
				return fmt.Errorf("duplicate sensor name %q", s.Name)
			}
			m.sensorIndex[s.Name] = i
		}
		s.Adr = m.NSensorData
		if s.Dim == 0 {
			s.Dim = s.Type.Dim()
		}
		m.NSensorData += s.Dim
	}

	m.Qpos0 = make([]float64, m.NQ)
	for _, j := range m.Joints {
		switch j.Type {
		case JointHinge, JointSlide:
			m.Qpos0[j.QposAdr] = j.Ref
		case JointBall:
			m.Qpos0[j.QposAdr] = 1 // identity quaternion
		case JointFree:
			m.Qpos0[j.QposAdr+3] = 1
		}
	}

	// Derive missing lumped inertias so the integrator never divides by
	// zero. A unit fallback keeps massless intermediate bodies stable.
	for i := range m.Bodies {
		if m.Bodies[i].Inertia <= 0 {
			if m.Bodies[i].Mass > 0 {
				m.Bodies[i].Inertia = m.Bodies[i].Mass
			} else {
				m.Bodies[i].Inertia = 1
			}
		}
	}

	return nil
}
