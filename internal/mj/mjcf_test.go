package mj

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testMJCF = `
<mujoco model="testbench">
  <option timestep="0.002" gravity="0 0 -9.81"/>
  <worldbody>
    <body name="arm" pos="0 0 1">
      <inertial mass="1.2"/>
      <joint name="shoulder" type="hinge" axis="0 1 0" damping="0.1"/>
      <geom name="rod" mass="0.3"/>
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

func writeModel(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := Load(writeModel(t, "testbench.xml", testMJCF))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func TestLoadMJCF_Counts(t *testing.T) {
	m := loadTestModel(t)

	if m.Name != "testbench" {
		t.Errorf("expected model name testbench, got %s", m.Name)
	}
	if m.NBody() != 4 { // world, arm, carriage, target
		t.Errorf("expected 4 bodies, got %d", m.NBody())
	}
	if m.NJoint() != 2 {
		t.Errorf("expected 2 joints, got %d", m.NJoint())
	}
	if m.NQ != 2 || m.NV != 2 {
		t.Errorf("expected nq=2 nv=2, got nq=%d nv=%d", m.NQ, m.NV)
	}
	if m.NActuator() != 1 {
		t.Errorf("expected 1 actuator, got %d", m.NActuator())
	}
	if m.NSensor() != 3 {
		t.Errorf("expected 3 sensors, got %d", m.NSensor())
	}
	if m.NSensorData != 5 { // 1 + 1 + 3
		t.Errorf("expected nsensordata=5, got %d", m.NSensorData)
	}
	if m.NMocap != 1 {
		t.Errorf("expected 1 mocap body, got %d", m.NMocap)
	}
	if m.Timestep != 0.002 {
		t.Errorf("expected timestep 0.002, got %f", m.Timestep)
	}
}

func TestLoadMJCF_Offsets(t *testing.T) {
	m := loadTestModel(t)

	id, ok := m.JointID("shoulder")
	if !ok {
		t.Fatal("joint shoulder not found")
	}
	if m.Joints[id].QposAdr != 0 || m.Joints[id].DofAdr != 0 {
		t.Errorf("shoulder offsets: qpos=%d dof=%d", m.Joints[id].QposAdr, m.Joints[id].DofAdr)
	}

	id, ok = m.JointID("rail")
	if !ok {
		t.Fatal("joint rail not found")
	}
	if m.Joints[id].QposAdr != 1 || m.Joints[id].DofAdr != 1 {
		t.Errorf("rail offsets: qpos=%d dof=%d", m.Joints[id].QposAdr, m.Joints[id].DofAdr)
	}

	sid, ok := m.SensorID("target_pos")
	if !ok {
		t.Fatal("sensor target_pos not found")
	}
	if m.Sensors[sid].Adr != 2 || m.Sensors[sid].Dim != 3 {
		t.Errorf("target_pos: adr=%d dim=%d", m.Sensors[sid].Adr, m.Sensors[sid].Dim)
	}
}

func TestLoadMJCF_Bodies(t *testing.T) {
	m := loadTestModel(t)

	arm, ok := m.BodyID("arm")
	if !ok {
		t.Fatal("body arm not found")
	}
	// Geom mass folds into the body mass.
	if got := m.Bodies[arm].Mass; got != 1.5 {
		t.Errorf("expected arm mass 1.5, got %f", got)
	}
	if m.Bodies[arm].MocapID != -1 {
		t.Error("arm should not be mocap")
	}

	target, ok := m.BodyID("target")
	if !ok {
		t.Fatal("body target not found")
	}
	if m.Bodies[target].MocapID != 0 {
		t.Errorf("expected target mocap id 0, got %d", m.Bodies[target].MocapID)
	}

	carriage, _ := m.BodyID("carriage")
	if m.Bodies[carriage].Parent != arm {
		t.Errorf("expected carriage parent %d, got %d", arm, m.Bodies[carriage].Parent)
	}
}

func TestLoadMJCF_ActuatorGear(t *testing.T) {
	m := loadTestModel(t)

	id, ok := m.ActuatorID("motor1")
	if !ok {
		t.Fatal("actuator motor1 not found")
	}
	a := m.Actuators[id]
	if a.Gear != 2 {
		t.Errorf("expected gear 2, got %f", a.Gear)
	}
	if a.CtrlRange != [2]float64{-1, 1} {
		t.Errorf("expected ctrlrange [-1 1], got %v", a.CtrlRange)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("model.sdf")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), "xml, mjcf, urdf") {
		t.Errorf("error should list supported extensions: %v", err)
	}
}

func TestLoadMJCF_BadReferences(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown actuator joint", `
<mujoco><worldbody><body name="b"><inertial mass="1"/><joint name="j"/></body></worldbody>
<actuator><motor name="m" joint="nope"/></actuator></mujoco>`},
		{"unknown sensor joint", `
<mujoco><worldbody><body name="b"><inertial mass="1"/><joint name="j"/></body></worldbody>
<sensor><jointpos name="s" joint="nope"/></sensor></mujoco>`},
		{"duplicate joint name", `
<mujoco><worldbody><body name="b"><inertial mass="1"/><joint name="j"/><joint name="j"/></body></worldbody></mujoco>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeModel(t, "bad.xml", tt.body)); err == nil {
				t.Error("expected load error")
			}
		})
	}
}

func TestLoadMJCF_DefaultTimestep(t *testing.T) {
	m, err := Load(writeModel(t, "min.xml", `
<mujoco><worldbody><body name="b"><inertial mass="1"/><joint name="j"/></body></worldbody></mujoco>`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Timestep != DefaultTimestep {
		t.Errorf("expected default timestep %f, got %f", DefaultTimestep, m.Timestep)
	}
}
