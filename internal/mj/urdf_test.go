package mj

import "testing"

const testURDF = `
<robot name="cartrail">
  <link name="base">
    <inertial><mass value="2.0"/></inertial>
  </link>
  <link name="cart">
    <inertial><mass value="0.8"/></inertial>
  </link>
  <link name="pole">
    <inertial><mass value="0.2"/></inertial>
  </link>
  <joint name="anchor" type="fixed">
    <parent link="world"/>
    <child link="base"/>
  </joint>
  <joint name="slide_x" type="prismatic">
    <parent link="base"/>
    <child link="cart"/>
    <axis xyz="1 0 0"/>
    <dynamics damping="0.5"/>
  </joint>
  <joint name="pivot" type="continuous">
    <parent link="cart"/>
    <child link="pole"/>
    <origin xyz="0 0 0.1"/>
    <axis xyz="0 1 0"/>
  </joint>
</robot>`

func TestLoadURDF(t *testing.T) {
	m, err := Load(writeModel(t, "cartrail.urdf", testURDF))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if m.Name != "cartrail" {
		t.Errorf("expected name cartrail, got %s", m.Name)
	}
	if m.NBody() != 4 { // world + 3 links
		t.Errorf("expected 4 bodies, got %d", m.NBody())
	}
	// Fixed joints contribute no dofs.
	if m.NJoint() != 2 || m.NQ != 2 || m.NV != 2 {
		t.Errorf("expected 2 joints nq=2 nv=2, got %d/%d/%d", m.NJoint(), m.NQ, m.NV)
	}

	id, ok := m.JointID("slide_x")
	if !ok {
		t.Fatal("joint slide_x not found")
	}
	j := m.Joints[id]
	if j.Type != JointSlide {
		t.Errorf("expected slide, got %s", j.Type)
	}
	if j.Damping != 0.5 {
		t.Errorf("expected damping 0.5, got %f", j.Damping)
	}
	if j.Axis != [3]float64{1, 0, 0} {
		t.Errorf("expected axis x, got %v", j.Axis)
	}

	id, ok = m.JointID("pivot")
	if !ok {
		t.Fatal("joint pivot not found")
	}
	if m.Joints[id].Type != JointHinge {
		t.Errorf("expected continuous mapped to hinge, got %s", m.Joints[id].Type)
	}

	pole, _ := m.BodyID("pole")
	cart, _ := m.BodyID("cart")
	if m.Bodies[pole].Parent != cart {
		t.Errorf("expected pole parent cart")
	}
	if m.Bodies[pole].Pos != [3]float64{0, 0, 0.1} {
		t.Errorf("expected pole origin from joint, got %v", m.Bodies[pole].Pos)
	}
}

func TestLoadURDF_ChildDeclaredBeforeParent(t *testing.T) {
	// Links in reverse tree order: the loader must still produce a body
	// list where every parent index precedes its children.
	m, err := Load(writeModel(t, "reversed.urdf", `
<robot name="reversed">
  <link name="tip">
    <inertial><mass value="0.1"/></inertial>
  </link>
  <link name="mid">
    <inertial><mass value="0.5"/></inertial>
  </link>
  <link name="root">
    <inertial><mass value="1.0"/></inertial>
  </link>
  <joint name="j2" type="revolute">
    <parent link="mid"/>
    <child link="tip"/>
    <axis xyz="0 1 0"/>
  </joint>
  <joint name="j1" type="revolute">
    <parent link="root"/>
    <child link="mid"/>
    <axis xyz="0 1 0"/>
    <origin xyz="0 0 0.3"/>
  </joint>
</robot>`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for i := 1; i < m.NBody(); i++ {
		if p := m.Bodies[i].Parent; p >= i {
			t.Errorf("body %d (%s) has parent %d at or after it", i, m.Bodies[i].Name, p)
		}
	}

	root, _ := m.BodyID("root")
	mid, _ := m.BodyID("mid")
	tip, _ := m.BodyID("tip")
	if m.Bodies[mid].Parent != root || m.Bodies[tip].Parent != mid {
		t.Errorf("tree not root->mid->tip: mid parent %d, tip parent %d",
			m.Bodies[mid].Parent, m.Bodies[tip].Parent)
	}
	if m.Bodies[mid].Pos != [3]float64{0, 0, 0.3} {
		t.Errorf("mid origin = %v, want [0 0 0.3]", m.Bodies[mid].Pos)
	}

	// Joints still reference the right bodies after reordering.
	j1, _ := m.JointID("j1")
	if m.Joints[j1].Body != mid {
		t.Errorf("j1 moves body %d, want mid (%d)", m.Joints[j1].Body, mid)
	}
}

func TestLoadURDF_KinematicLoop(t *testing.T) {
	_, err := Load(writeModel(t, "loop.urdf", `
<robot name="loop">
  <link name="a"/>
  <link name="b"/>
  <joint name="ab" type="fixed"><parent link="a"/><child link="b"/></joint>
  <joint name="ba" type="fixed"><parent link="b"/><child link="a"/></joint>
</robot>`))
	if err == nil {
		t.Error("expected error for kinematic loop")
	}
}

func TestLoadURDF_UnknownLink(t *testing.T) {
	_, err := Load(writeModel(t, "bad.urdf", `
<robot name="r"><link name="a"/>
<joint name="j" type="revolute"><parent link="a"/><child link="missing"/></joint></robot>`))
	if err == nil {
		t.Error("expected error for unknown child link")
	}
}
