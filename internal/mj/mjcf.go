package mj

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MJCF subset: option, nested worldbody/body trees with joints, geoms and
// inertials, motor actuators and jointpos/jointvel/actuatorfrc/framepos
// sensors. Everything else in the file is ignored.

type mjcfRoot struct {
	XMLName   xml.Name      `xml:"mujoco"`
	Model     string        `xml:"model,attr"`
	Option    mjcfOption    `xml:"option"`
	Worldbody mjcfBody      `xml:"worldbody"`
	Actuator  mjcfActuators `xml:"actuator"`
	Sensor    mjcfSensors   `xml:"sensor"`
}

type mjcfOption struct {
	Timestep string `xml:"timestep,attr"`
	Gravity  string `xml:"gravity,attr"`
}

type mjcfBody struct {
	Name     string        `xml:"name,attr"`
	Pos      string        `xml:"pos,attr"`
	Quat     string        `xml:"quat,attr"`
	Mocap    string        `xml:"mocap,attr"`
	Inertial *mjcfInertial `xml:"inertial"`
	Joints   []mjcfJoint   `xml:"joint"`
	Geoms    []mjcfGeom    `xml:"geom"`
	Bodies   []mjcfBody    `xml:"body"`
}

type mjcfInertial struct {
	Mass        string `xml:"mass,attr"`
	DiagInertia string `xml:"diaginertia,attr"`
}

type mjcfJoint struct {
	Name      string `xml:"name,attr"`
	Type      string `xml:"type,attr"`
	Axis      string `xml:"axis,attr"`
	Damping   string `xml:"damping,attr"`
	Stiffness string `xml:"stiffness,attr"`
	SpringRef string `xml:"springref,attr"`
	Ref       string `xml:"ref,attr"`
	Armature  string `xml:"armature,attr"`
}

type mjcfGeom struct {
	Name string `xml:"name,attr"`
	Mass string `xml:"mass,attr"`
}

type mjcfActuators struct {
	Motors []mjcfMotor `xml:"motor"`
}

type mjcfMotor struct {
	Name      string `xml:"name,attr"`
	Joint     string `xml:"joint,attr"`
	Gear      string `xml:"gear,attr"`
	CtrlRange string `xml:"ctrlrange,attr"`
}

type mjcfSensors struct {
	JointPos    []mjcfSensorRef `xml:"jointpos"`
	JointVel    []mjcfSensorRef `xml:"jointvel"`
	ActuatorFrc []mjcfSensorRef `xml:"actuatorfrc"`
	FramePos    []mjcfSensorRef `xml:"framepos"`
}

type mjcfSensorRef struct {
	Name     string `xml:"name,attr"`
	Joint    string `xml:"joint,attr"`
	Actuator string `xml:"actuator,attr"`
	Body     string `xml:"objname,attr"`
}

func loadMJCF(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root mjcfRoot
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse mjcf %s: %w", path, err)
	}

	m := &Model{
		Name:    root.Model,
		Gravity: [3]float64{0, 0, -9.81},
	}
	if root.Option.Timestep != "" {
		ts, err := strconv.ParseFloat(root.Option.Timestep, 64)
		if err != nil {
			return nil, fmt.Errorf("parse mjcf %s: bad timestep %q", path, root.Option.Timestep)
		}
		m.Timestep = ts
	}
	if root.Option.Gravity != "" {
		g, err := parseVec(root.Option.Gravity, 3)
		if err != nil {
			return nil, fmt.Errorf("parse mjcf %s: bad gravity %q", path, root.Option.Gravity)
		}
		copy(m.Gravity[:], g)
	}

	// World body is always index 0.
	m.Bodies = append(m.Bodies, Body{Name: "world", Parent: -1, MocapID: -1})

	b := &mjcfBuilder{m: m}
	for i := range root.Worldbody.Bodies {
		if err := b.addBody(&root.Worldbody.Bodies[i], 0); err != nil {
			return nil, fmt.Errorf("parse mjcf %s: %w", path, err)
		}
	}
	if err := b.addActuators(&root.Actuator); err != nil {
		return nil, fmt.Errorf("parse mjcf %s: %w", path, err)
	}
	if err := b.addSensors(&root.Sensor); err != nil {
		return nil, fmt.Errorf("parse mjcf %s: %w", path, err)
	}

	// Name indexes are needed while resolving actuator/sensor references,
	// so the builder maintains its own; finalize rebuilds them with offsets.
	if err := m.finalize(); err != nil {
		return nil, fmt.Errorf("parse mjcf %s: %w", path, err)
	}
	return m, nil
}

type mjcfBuilder struct {
	m *Model
}

func (b *mjcfBuilder) addBody(src *mjcfBody, parent int) error {
	body := Body{Name: src.Name, Parent: parent, Quat: [4]float64{1, 0, 0, 0}, MocapID: -1}

	if src.Pos != "" {
		v, err := parseVec(src.Pos, 3)
		if err != nil {
			return fmt.Errorf("body %q: bad pos %q", src.Name, src.Pos)
		}
		copy(body.Pos[:], v)
	}
	if src.Quat != "" {
		v, err := parseVec(src.Quat, 4)
		if err != nil {
			return fmt.Errorf("body %q: bad quat %q", src.Name, src.Quat)
		}
		copy(body.Quat[:], v)
	}
	if src.Mocap == "true" {
		body.MocapID = 0 // renumbered in finalize
	}
	if src.Inertial != nil && src.Inertial.Mass != "" {
		mass, err := strconv.ParseFloat(src.Inertial.Mass, 64)
		if err != nil {
			return fmt.Errorf("body %q: bad mass %q", src.Name, src.Inertial.Mass)
		}
		body.Mass = mass
		if src.Inertial.DiagInertia != "" {
			di, err := parseVec(src.Inertial.DiagInertia, 3)
			if err != nil {
				return fmt.Errorf("body %q: bad diaginertia %q", src.Name, src.Inertial.DiagInertia)
			}
			body.Inertia = di[0]
		}
	}
	for _, g := range src.Geoms {
		b.m.Geoms++
		if g.Mass != "" {
			mass, err := strconv.ParseFloat(g.Mass, 64)
			if err != nil {
				return fmt.Errorf("geom %q: bad mass %q", g.Name, g.Mass)
			}
			body.Mass += mass
		}
	}

	id := len(b.m.Bodies)
	b.m.Bodies = append(b.m.Bodies, body)

	for _, j := range src.Joints {
		joint := Joint{Name: j.Name, Body: id, Axis: [3]float64{0, 0, 1}}
		switch j.Type {
		case "", "hinge":
			joint.Type = JointHinge
		case "slide":
			joint.Type = JointSlide
		case "ball":
			joint.Type = JointBall
		case "free":
			joint.Type = JointFree
		default:
			return fmt.Errorf("joint %q: unsupported type %q", j.Name, j.Type)
		}
		if j.Axis != "" {
			v, err := parseVec(j.Axis, 3)
			if err != nil {
				return fmt.Errorf("joint %q: bad axis %q", j.Name, j.Axis)
			}
			copy(joint.Axis[:], v)
		}
		var err error
		if joint.Damping, err = parseFloatAttr(j.Damping); err != nil {
			return fmt.Errorf("joint %q: bad damping %q", j.Name, j.Damping)
		}
		if joint.Stiffness, err = parseFloatAttr(j.Stiffness); err != nil {
			return fmt.Errorf("joint %q: bad stiffness %q", j.Name, j.Stiffness)
		}
		if joint.SpringRef, err = parseFloatAttr(j.SpringRef); err != nil {
			return fmt.Errorf("joint %q: bad springref %q", j.Name, j.SpringRef)
		}
		if joint.Ref, err = parseFloatAttr(j.Ref); err != nil {
			return fmt.Errorf("joint %q: bad ref %q", j.Name, j.Ref)
		}
		if joint.Armature, err = parseFloatAttr(j.Armature); err != nil {
			return fmt.Errorf("joint %q: bad armature %q", j.Name, j.Armature)
		}
		b.m.Joints = append(b.m.Joints, joint)
	}

	for i := range src.Bodies {
		if err := b.addBody(&src.Bodies[i], id); err != nil {
			return err
		}
	}
	return nil
}

func (b *mjcfBuilder) addActuators(src *mjcfActuators) error {
	for _, mo := range src.Motors {
		jid := b.jointByName(mo.Joint)
		if jid < 0 {
			return fmt.Errorf("actuator %q: unknown joint %q", mo.Name, mo.Joint)
		}
		act := Actuator{Name: mo.Name, Joint: jid, Gear: 1}
		if mo.Gear != "" {
			// MJCF gear may carry up to six numbers; only the first
			// scalar matters for joint transmissions.
			v, err := parseVec(mo.Gear, 0)
			if err != nil || len(v) == 0 {
				return fmt.Errorf("actuator %q: bad gear %q", mo.Name, mo.Gear)
			}
			act.Gear = v[0]
		}
		if mo.CtrlRange != "" {
			v, err := parseVec(mo.CtrlRange, 2)
			if err != nil {
				return fmt.Errorf("actuator %q: bad ctrlrange %q", mo.Name, mo.CtrlRange)
			}
			act.CtrlRange = [2]float64{v[0], v[1]}
		}
		b.m.Actuators = append(b.m.Actuators, act)
	}
	return nil
}

func (b *mjcfBuilder) addSensors(src *mjcfSensors) error {
	for _, s := range src.JointPos {
		jid := b.jointByName(s.Joint)
		if jid < 0 {
			return fmt.Errorf("sensor %q: unknown joint %q", s.Name, s.Joint)
		}
		b.m.Sensors = append(b.m.Sensors, Sensor{Name: s.Name, Type: SensorJointPos, Obj: jid})
	}
	for _, s := range src.JointVel {
		jid := b.jointByName(s.Joint)
		if jid < 0 {
			return fmt.Errorf("sensor %q: unknown joint %q", s.Name, s.Joint)
		}
		b.m.Sensors = append(b.m.Sensors, Sensor{Name: s.Name, Type: SensorJointVel, Obj: jid})
	}
	for _, s := range src.ActuatorFrc {
		aid := -1
		for i, a := range b.m.Actuators {
			if a.Name == s.Actuator {
				aid = i
				break
			}
		}
		if aid < 0 {
			return fmt.Errorf("sensor %q: unknown actuator %q", s.Name, s.Actuator)
		}
		b.m.Sensors = append(b.m.Sensors, Sensor{Name: s.Name, Type: SensorActuatorFrc, Obj: aid})
	}
	for _, s := range src.FramePos {
		bid := -1
		for i, bd := range b.m.Bodies {
			if bd.Name == s.Body {
				bid = i
				break
			}
		}
		if bid < 0 {
			return fmt.Errorf("sensor %q: unknown body %q", s.Name, s.Body)
		}
		b.m.Sensors = append(b.m.Sensors, Sensor{Name: s.Name, Type: SensorFramePos, Obj: bid})
	}
	return nil
}

func (b *mjcfBuilder) jointByName(name string) int {
	for i, j := range b.m.Joints {
		if j.Name == name {
			return i
		}
	}
	return -1
}

// parseVec splits a whitespace-separated attribute into floats. want == 0
// accepts any length; otherwise the length must match exactly.
func parseVec(s string, want int) ([]float64, error) {
	fields := strings.Fields(s)
	if want > 0 && len(fields) != want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(fields))
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloatAttr(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
