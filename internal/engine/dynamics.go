package engine

import (
	"math"

	"github.com/san-kum/mjbridge/internal/mj"
)

// Dynamics is the builtin engine: lumped-parameter articulated dynamics
// integrated with semi-implicit Euler at the model timestep. Each joint
// degree of freedom carries a scalar inertia (body mass plus armature);
// gravity acts on translational dofs, spring and damper terms on all dofs.
// Rotational gravity moments need full mass geometry and are outside the
// lumped model.
type Dynamics struct {
	m *mj.Model
	d *mj.Data

	time float64

	tau []float64 // scratch: generalized forces per dof
}

func New(m *mj.Model, d *mj.Data) *Dynamics {
	dyn := &Dynamics{
		m:   m,
		d:   d,
		tau: make([]float64, m.NV),
	}
	dyn.Forward()
	return dyn
}

func (e *Dynamics) Time() float64 { return e.time }

func (e *Dynamics) Reset() {
	e.d.Reset(e.m)
	e.time = 0
	e.Forward()
}

func (e *Dynamics) Step() error {
	dt := e.m.Timestep
	e.appliedForces(e.tau)

	for i := range e.m.Joints {
		j := &e.m.Joints[i]
		inertia := e.m.Bodies[j.Body].Inertia + j.Armature

		switch j.Type {
		case mj.JointHinge, mj.JointSlide:
			dof := j.DofAdr
			acc := e.tau[dof] / inertia
			e.d.Qacc[dof] = acc
			e.d.Qvel[dof] += dt * acc
			e.d.Qpos[j.QposAdr] += dt * e.d.Qvel[dof]

		case mj.JointBall:
			var w [3]float64
			for k := 0; k < 3; k++ {
				dof := j.DofAdr + k
				acc := e.tau[dof] / inertia
				e.d.Qacc[dof] = acc
				e.d.Qvel[dof] += dt * acc
				w[k] = e.d.Qvel[dof]
			}
			q := quatAt(e.d.Qpos, j.QposAdr)
			q = quatIntegrate(q, w, dt)
			copy(e.d.Qpos[j.QposAdr:], q[:])

		case mj.JointFree:
			var w [3]float64
			for k := 0; k < 6; k++ {
				dof := j.DofAdr + k
				acc := e.tau[dof] / inertia
				e.d.Qacc[dof] = acc
				e.d.Qvel[dof] += dt * acc
			}
			for k := 0; k < 3; k++ {
				e.d.Qpos[j.QposAdr+k] += dt * e.d.Qvel[j.DofAdr+k]
				w[k] = e.d.Qvel[j.DofAdr+3+k]
			}
			q := quatAt(e.d.Qpos, j.QposAdr+3)
			q = quatIntegrate(q, w, dt)
			copy(e.d.Qpos[j.QposAdr+3:], q[:])
		}
	}

	for _, v := range e.d.Qpos {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrUnstable
		}
	}

	e.time += dt
	e.Forward()
	return nil
}

// appliedForces fills tau with actuator, passive and gravity terms.
func (e *Dynamics) appliedForces(tau []float64) {
	for i := range tau {
		tau[i] = 0
	}

	for i := range e.m.Actuators {
		a := &e.m.Actuators[i]
		ctrl := e.d.Ctrl[i]
		if a.CtrlRange != ([2]float64{}) {
			ctrl = math.Max(a.CtrlRange[0], math.Min(a.CtrlRange[1], ctrl))
		}
		e.tauForJoint(tau, &e.m.Joints[a.Joint], a.Gear*ctrl)
	}

	for i := range e.m.Joints {
		j := &e.m.Joints[i]
		mass := e.m.Bodies[j.Body].Mass

		switch j.Type {
		case mj.JointHinge, mj.JointSlide:
			dof := j.DofAdr
			tau[dof] -= j.Damping * e.d.Qvel[dof]
			tau[dof] -= j.Stiffness * (e.d.Qpos[j.QposAdr] - j.SpringRef)
			if j.Type == mj.JointSlide {
				tau[dof] += mass * dot3(e.m.Gravity, j.Axis)
			}
		case mj.JointBall:
			for k := 0; k < 3; k++ {
				tau[j.DofAdr+k] -= j.Damping * e.d.Qvel[j.DofAdr+k]
			}
		case mj.JointFree:
			for k := 0; k < 6; k++ {
				tau[j.DofAdr+k] -= j.Damping * e.d.Qvel[j.DofAdr+k]
			}
			for k := 0; k < 3; k++ {
				tau[j.DofAdr+k] += mass * e.m.Gravity[k]
			}
		}
	}
}

func (e *Dynamics) tauForJoint(tau []float64, j *mj.Joint, force float64) {
	// A joint transmission applies the scalar force to the first dof;
	// multi-dof joints distribute along the axis.
	switch j.Type {
	case mj.JointHinge, mj.JointSlide:
		tau[j.DofAdr] += force
	case mj.JointBall:
		for k := 0; k < 3; k++ {
			tau[j.DofAdr+k] += force * j.Axis[k]
		}
	case mj.JointFree:
		for k := 0; k < 3; k++ {
			tau[j.DofAdr+k] += force * j.Axis[k]
		}
	}
}

// Forward recomputes body poses, spatial velocities, sensor readings and
// energy from the current qpos/qvel.
func (e *Dynamics) Forward() {
	m, d := e.m, e.d

	// Joint lookup per body. A single pass in body index order sees
	// parents before children: both loaders guarantee parents precede
	// children in the body list.
	jointsOf := make([][]int, m.NBody())
	for i := range m.Joints {
		b := m.Joints[i].Body
		jointsOf[b] = append(jointsOf[b], i)
	}

	for b := 1; b < m.NBody(); b++ {
		body := &m.Bodies[b]

		if body.MocapID >= 0 {
			copy(d.XPos[b*3:b*3+3], d.MocapPos[body.MocapID*3:body.MocapID*3+3])
			copy(d.XQuat[b*4:b*4+4], d.MocapQuat[body.MocapID*4:body.MocapID*4+4])
			for k := 0; k < 6; k++ {
				d.CVel[b*6+k] = 0
			}
			continue
		}

		parentPos := vec3At(d.XPos, body.Parent*3)
		parentQuat := quatAt(d.XQuat, body.Parent*4)

		localPos := body.Pos
		localQuat := body.Quat
		var angVel, linVel [3]float64

		for _, ji := range jointsOf[b] {
			j := &m.Joints[ji]
			switch j.Type {
			case mj.JointHinge:
				localQuat = quatMul(localQuat, axisAngle(j.Axis, d.Qpos[j.QposAdr]))
				for k := 0; k < 3; k++ {
					angVel[k] += j.Axis[k] * d.Qvel[j.DofAdr]
				}
			case mj.JointSlide:
				for k := 0; k < 3; k++ {
					localPos[k] += j.Axis[k] * d.Qpos[j.QposAdr]
					linVel[k] += j.Axis[k] * d.Qvel[j.DofAdr]
				}
			case mj.JointBall:
				localQuat = quatMul(localQuat, quatAt(d.Qpos, j.QposAdr))
				for k := 0; k < 3; k++ {
					angVel[k] += d.Qvel[j.DofAdr+k]
				}
			case mj.JointFree:
				for k := 0; k < 3; k++ {
					localPos[k] += d.Qpos[j.QposAdr+k]
					linVel[k] += d.Qvel[j.DofAdr+k]
					angVel[k] += d.Qvel[j.DofAdr+3+k]
				}
				localQuat = quatMul(localQuat, quatAt(d.Qpos, j.QposAdr+3))
			}
		}

		world := quatRotate(parentQuat, localPos)
		for k := 0; k < 3; k++ {
			d.XPos[b*3+k] = parentPos[k] + world[k]
		}
		q := quatNormalize(quatMul(parentQuat, localQuat))
		copy(d.XQuat[b*4:], q[:])

		// Spatial velocity: parent's plus this body's own joint rates,
		// angular components first.
		for k := 0; k < 3; k++ {
			d.CVel[b*6+k] = d.CVel[body.Parent*6+k] + angVel[k]
			d.CVel[b*6+3+k] = d.CVel[body.Parent*6+3+k] + linVel[k]
		}
	}

	e.sensors()
	e.energy()
}

func (e *Dynamics) sensors() {
	m, d := e.m, e.d
	for i := range m.Sensors {
		s := &m.Sensors[i]
		switch s.Type {
		case mj.SensorJointPos:
			d.SensorData[s.Adr] = d.Qpos[m.Joints[s.Obj].QposAdr]
		case mj.SensorJointVel:
			d.SensorData[s.Adr] = d.Qvel[m.Joints[s.Obj].DofAdr]
		case mj.SensorActuatorFrc:
			a := &m.Actuators[s.Obj]
			ctrl := d.Ctrl[s.Obj]
			if a.CtrlRange != ([2]float64{}) {
				ctrl = math.Max(a.CtrlRange[0], math.Min(a.CtrlRange[1], ctrl))
			}
			d.SensorData[s.Adr] = a.Gear * ctrl
		case mj.SensorFramePos:
			copy(d.SensorData[s.Adr:s.Adr+3], d.XPos[s.Obj*3:s.Obj*3+3])
		}
	}
}

func (e *Dynamics) energy() {
	m, d := e.m, e.d

	potential := 0.0
	for b := 1; b < m.NBody(); b++ {
		mass := m.Bodies[b].Mass
		if mass == 0 {
			continue
		}
		// Height against the gravity direction.
		potential -= mass * dot3(m.Gravity, vec3At(d.XPos, b*3))
	}

	kinetic := 0.0
	for i := range m.Joints {
		j := &m.Joints[i]
		inertia := m.Bodies[j.Body].Inertia + j.Armature
		for k := 0; k < j.Type.DofSize(); k++ {
			v := d.Qvel[j.DofAdr+k]
			kinetic += 0.5 * inertia * v * v
		}
	}

	d.Energy[0] = potential
	d.Energy[1] = kinetic
}

// Inverse computes the generalized force needed to produce the current
// qacc against the passive and gravity terms. Results land in QfrcInverse.
func (e *Dynamics) Inverse() {
	m, d := e.m, e.d
	e.appliedForces(e.tau)

	for i := range m.Joints {
		j := &m.Joints[i]
		inertia := m.Bodies[j.Body].Inertia + j.Armature
		for k := 0; k < j.Type.DofSize(); k++ {
			dof := j.DofAdr + k
			// Remove actuator contribution from tau to leave the
			// passive+gravity terms the inverse pass must cancel.
			passive := e.tau[dof] - e.actuatorForce(dof)
			d.QfrcInverse[dof] = inertia*d.Qacc[dof] - passive
		}
	}
}

func (e *Dynamics) actuatorForce(dof int) float64 {
	total := 0.0
	for i := range e.m.Actuators {
		a := &e.m.Actuators[i]
		j := &e.m.Joints[a.Joint]
		ctrl := e.d.Ctrl[i]
		if a.CtrlRange != ([2]float64{}) {
			ctrl = math.Max(a.CtrlRange[0], math.Min(a.CtrlRange[1], ctrl))
		}
		switch j.Type {
		case mj.JointHinge, mj.JointSlide:
			if j.DofAdr == dof {
				total += a.Gear * ctrl
			}
		case mj.JointBall, mj.JointFree:
			if dof >= j.DofAdr && dof < j.DofAdr+3 {
				total += a.Gear * ctrl * j.Axis[dof-j.DofAdr]
			}
		}
	}
	return total
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func vec3At(s []float64, off int) [3]float64 {
	return [3]float64{s[off], s[off+1], s[off+2]}
}

func quatAt(s []float64, off int) [4]float64 {
	return [4]float64{s[off], s[off+1], s[off+2], s[off+3]}
}
