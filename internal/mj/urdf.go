package mj

import (
	"encoding/xml"
	"fmt"
	"os"
)

// URDF subset: links with inertial mass, revolute/continuous/prismatic/
// floating joints with axis and dynamics damping. Fixed joints merge the
// child into the tree without degrees of freedom. Visual and collision
// elements are ignored; URDF carries no actuators or sensors.

type urdfRoot struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []urdfLink  `xml:"link"`
	Joints  []urdfJoint `xml:"joint"`
}

type urdfLink struct {
	Name     string        `xml:"name,attr"`
	Inertial *urdfInertial `xml:"inertial"`
}

type urdfInertial struct {
	Mass struct {
		Value float64 `xml:"value,attr"`
	} `xml:"mass"`
}

type urdfJoint struct {
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	Parent struct {
		Link string `xml:"link,attr"`
	} `xml:"parent"`
	Child struct {
		Link string `xml:"link,attr"`
	} `xml:"child"`
	Origin *struct {
		XYZ string `xml:"xyz,attr"`
	} `xml:"origin"`
	Axis *struct {
		XYZ string `xml:"xyz,attr"`
	} `xml:"axis"`
	Dynamics *struct {
		Damping float64 `xml:"damping,attr"`
	} `xml:"dynamics"`
}

func loadURDF(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root urdfRoot
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse urdf %s: %w", path, err)
	}

	m := &Model{
		Name:    root.Name,
		Gravity: [3]float64{0, 0, -9.81},
	}
	m.Bodies = append(m.Bodies, Body{Name: "world", Parent: -1, MocapID: -1})

	// Links become bodies in declaration order; joints then attach them to
	// their parents. A link never named as a child hangs off the world.
	ids := make(map[string]int, len(root.Links))
	for _, l := range root.Links {
		b := Body{Name: l.Name, Parent: 0, Quat: [4]float64{1, 0, 0, 0}, MocapID: -1}
		if l.Inertial != nil {
			b.Mass = l.Inertial.Mass.Value
		}
		ids[l.Name] = len(m.Bodies)
		m.Bodies = append(m.Bodies, b)
	}

	for _, j := range root.Joints {
		child, ok := ids[j.Child.Link]
		if !ok {
			return nil, fmt.Errorf("parse urdf %s: joint %q: unknown child link %q", path, j.Name, j.Child.Link)
		}
		parent, ok := ids[j.Parent.Link]
		if !ok {
			if j.Parent.Link == "world" {
				parent = 0
			} else {
				return nil, fmt.Errorf("parse urdf %s: joint %q: unknown parent link %q", path, j.Name, j.Parent.Link)
			}
		}
		m.Bodies[child].Parent = parent
		if j.Origin != nil && j.Origin.XYZ != "" {
			v, err := parseVec(j.Origin.XYZ, 3)
			if err != nil {
				return nil, fmt.Errorf("parse urdf %s: joint %q: bad origin %q", path, j.Name, j.Origin.XYZ)
			}
			copy(m.Bodies[child].Pos[:], v)
		}

		if j.Type == "fixed" {
			continue
		}

		joint := Joint{Name: j.Name, Body: child, Axis: [3]float64{0, 0, 1}}
		switch j.Type {
		case "revolute", "continuous":
			joint.Type = JointHinge
		case "prismatic":
			joint.Type = JointSlide
		case "floating":
			joint.Type = JointFree
		default:
			return nil, fmt.Errorf("parse urdf %s: joint %q: unsupported type %q", path, j.Name, j.Type)
		}
		if j.Axis != nil && j.Axis.XYZ != "" {
			v, err := parseVec(j.Axis.XYZ, 3)
			if err != nil {
				return nil, fmt.Errorf("parse urdf %s: joint %q: bad axis %q", path, j.Name, j.Axis.XYZ)
			}
			copy(joint.Axis[:], v)
		}
		if j.Dynamics != nil {
			joint.Damping = j.Dynamics.Damping
		}
		m.Joints = append(m.Joints, joint)
	}

	// URDF permits a child link to be declared before its parent, so the
	// declaration-order body list may put children ahead of parents.
	// Body-tree traversal depends on parents preceding children by index.
	if err := orderBodies(m); err != nil {
		return nil, fmt.Errorf("parse urdf %s: %w", path, err)
	}

	if err := m.finalize(); err != nil {
		return nil, fmt.Errorf("parse urdf %s: %w", path, err)
	}
	return m, nil
}

// orderBodies rewrites the body list so every parent precedes its children,
// keeping the world at index 0 and remapping joint body references. Links
// not reachable from the world form a kinematic loop and are rejected.
func orderBodies(m *Model) error {
	children := make([][]int, len(m.Bodies))
	for i := 1; i < len(m.Bodies); i++ {
		p := m.Bodies[i].Parent
		children[p] = append(children[p], i)
	}

	order := make([]int, 0, len(m.Bodies))
	stack := []int{0}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, b)
		for k := len(children[b]) - 1; k >= 0; k-- {
			stack = append(stack, children[b][k])
		}
	}
	if len(order) != len(m.Bodies) {
		return fmt.Errorf("kinematic loop: %d of %d links unreachable from the root",
			len(m.Bodies)-len(order), len(m.Bodies)-1)
	}

	newIdx := make([]int, len(m.Bodies))
	sorted := make([]Body, len(m.Bodies))
	for ni, oi := range order {
		newIdx[oi] = ni
		sorted[ni] = m.Bodies[oi]
	}
	for i := 1; i < len(sorted); i++ {
		sorted[i].Parent = newIdx[sorted[i].Parent]
	}
	m.Bodies = sorted
	for i := range m.Joints {
		m.Joints[i].Body = newIdx[m.Joints[i].Body]
	}
	return nil
}
