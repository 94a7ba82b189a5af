package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/mjbridge/internal/mj"
)

const testModel = `
<mujoco model="testbench">
  <option timestep="0.002" gravity="0 0 -9.81"/>
  <worldbody>
    <body name="arm" pos="0 0 1">
      <inertial mass="1.2"/>
      <joint name="shoulder" type="hinge" axis="0 1 0" damping="0.1"/>
      <body name="carriage" pos="0 0 -0.5">
        <inertial mass="0.5"/>
        <joint name="rail" type="slide" axis="0 0 1"/>
      </body>
    </body>
    <body name="target" pos="1 0 0" mocap="true"/>
  </worldbody>
  <actuator>
    <motor name="motor1" joint="shoulder" gear="2" ctrlrange="-1 1"/>
  </actuator>
  <sensor>
    <jointpos name="shoulder_pos" joint="shoulder"/>
    <jointvel name="shoulder_vel" joint="shoulder"/>
    <framepos name="target_pos" objname="target"/>
  </sensor>
</mujoco>`

func newTestDynamics(t *testing.T) (*mj.Model, *mj.Data, *Dynamics) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testbench.xml")
	if err := os.WriteFile(path, []byte(testModel), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := mj.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d := mj.NewData(m)
	return m, d, New(m, d)
}

func TestStepAdvancesTime(t *testing.T) {
	m, _, eng := newTestDynamics(t)

	for i := 0; i < 10; i++ {
		if err := eng.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	want := 10 * m.Timestep
	if math.Abs(eng.Time()-want) > 1e-12 {
		t.Errorf("time = %f, want %f", eng.Time(), want)
	}
}

func TestReset(t *testing.T) {
	m, d, eng := newTestDynamics(t)

	d.Ctrl[0] = 1
	for i := 0; i < 50; i++ {
		if err := eng.Step(); err != nil {
			t.Fatal(err)
		}
	}
	eng.Reset()

	if eng.Time() != 0 {
		t.Errorf("time = %f after reset, want 0", eng.Time())
	}
	for i := range d.Qpos {
		if d.Qpos[i] != m.Qpos0[i] {
			t.Errorf("qpos[%d] = %f, want reference %f", i, d.Qpos[i], m.Qpos0[i])
		}
	}
	for i, v := range d.Qvel {
		if v != 0 {
			t.Errorf("qvel[%d] = %f, want 0", i, v)
		}
	}
}

func TestForwardKinematics(t *testing.T) {
	m, d, eng := newTestDynamics(t)
	eng.Forward()

	arm, _ := m.BodyID("arm")
	carriage, _ := m.BodyID("carriage")
	target, _ := m.BodyID("target")

	if got := vec3At(d.XPos, arm*3); got != [3]float64{0, 0, 1} {
		t.Errorf("arm xpos = %v, want [0 0 1]", got)
	}
	if got := vec3At(d.XPos, carriage*3); got != [3]float64{0, 0, 0.5} {
		t.Errorf("carriage xpos = %v, want [0 0 0.5]", got)
	}
	if got := vec3At(d.XPos, target*3); got != [3]float64{1, 0, 0} {
		t.Errorf("target xpos = %v, want [1 0 0]", got)
	}

	// The slide joint moves the carriage along its axis.
	railID, _ := m.JointID("rail")
	d.Qpos[m.Joints[railID].QposAdr] = 0.2
	eng.Forward()
	if got := vec3At(d.XPos, carriage*3); math.Abs(got[2]-0.7) > 1e-12 {
		t.Errorf("carriage xpos after slide = %v, want z 0.7", got)
	}
}

func TestMocapOverridesPose(t *testing.T) {
	m, d, eng := newTestDynamics(t)

	target, _ := m.BodyID("target")
	mid := m.Bodies[target].MocapID
	d.MocapPos[mid*3] = 3
	d.MocapPos[mid*3+2] = 0.4
	eng.Forward()

	if got := vec3At(d.XPos, target*3); got != [3]float64{3, 0, 0.4} {
		t.Errorf("target xpos = %v, want [3 0 0.4]", got)
	}
	if got := d.SensorData[2]; got != 3 {
		t.Errorf("framepos sensor x = %f, want 3", got)
	}
}

func TestGravityPullsSlide(t *testing.T) {
	m, d, eng := newTestDynamics(t)

	railID, _ := m.JointID("rail")
	dof := m.Joints[railID].DofAdr
	for i := 0; i < 100; i++ {
		if err := eng.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if d.Qvel[dof] >= 0 {
		t.Errorf("slide velocity = %f, want negative under gravity", d.Qvel[dof])
	}
	if d.Qpos[m.Joints[railID].QposAdr] >= 0 {
		t.Errorf("slide position = %f, want negative under gravity", d.Qpos[m.Joints[railID].QposAdr])
	}

	// The hinge carries no gravity moment in the lumped model.
	shoulderID, _ := m.JointID("shoulder")
	if v := d.Qvel[m.Joints[shoulderID].DofAdr]; v != 0 {
		t.Errorf("hinge velocity = %f, want 0 without control", v)
	}
}

func TestActuatorClamping(t *testing.T) {
	m, d, eng := newTestDynamics(t)

	shoulderID, _ := m.JointID("shoulder")
	j := m.Joints[shoulderID]
	inertia := m.Bodies[j.Body].Inertia

	// Control beyond the range is clamped to 1; with gear 2 the first step
	// sees torque 2 minus damping on zero velocity.
	d.Ctrl[0] = 5
	if err := eng.Step(); err != nil {
		t.Fatal(err)
	}
	want := m.Timestep * 2 / inertia
	if got := d.Qvel[j.DofAdr]; math.Abs(got-want) > 1e-12 {
		t.Errorf("hinge velocity after one step = %g, want %g", got, want)
	}
}

func TestInverseRecoversAppliedForce(t *testing.T) {
	m, d, eng := newTestDynamics(t)

	// Prescribe an acceleration on the rail at rest. The inverse pass must
	// ask for inertia*qacc plus enough force to cancel gravity along the
	// slide axis.
	railID, _ := m.JointID("rail")
	dof := m.Joints[railID].DofAdr
	d.Qacc[dof] = 3
	eng.Inverse()

	inertia := m.Bodies[m.Joints[railID].Body].Inertia
	want := inertia*3 + 0.5*9.81
	if got := d.QfrcInverse[dof]; math.Abs(got-want) > 1e-9 {
		t.Errorf("inverse force = %g, want %g", got, want)
	}

	// On the hinge the actuator torque is excluded from the passive terms,
	// so with zero acceleration and zero velocity no force is required.
	d.Ctrl[0] = 0.5
	eng.Inverse()
	shoulderID, _ := m.JointID("shoulder")
	if got := d.QfrcInverse[m.Joints[shoulderID].DofAdr]; math.Abs(got) > 1e-12 {
		t.Errorf("hinge inverse force = %g, want 0", got)
	}
}

func TestEnergyAccounting(t *testing.T) {
	m, d, eng := newTestDynamics(t)
	eng.Forward()

	// potential = sum of m*g*h: arm 1.2 at z=1, carriage 0.5 at z=0.5.
	want := 9.81 * (1.2*1 + 0.5*0.5)
	if math.Abs(d.Energy[0]-want) > 1e-9 {
		t.Errorf("potential = %f, want %f", d.Energy[0], want)
	}
	if d.Energy[1] != 0 {
		t.Errorf("kinetic = %f at rest, want 0", d.Energy[1])
	}

	railID, _ := m.JointID("rail")
	d.Qvel[m.Joints[railID].DofAdr] = 2
	eng.Forward()
	// 0.5 * inertia(=mass 0.5) * v^2
	if got := d.Energy[1]; math.Abs(got-1.0) > 1e-12 {
		t.Errorf("kinetic = %f, want 1.0", got)
	}
}

func TestUnstableDetection(t *testing.T) {
	_, d, eng := newTestDynamics(t)

	d.Qpos[0] = math.NaN()
	if err := eng.Step(); err != ErrUnstable {
		t.Errorf("expected ErrUnstable, got %v", err)
	}
}
