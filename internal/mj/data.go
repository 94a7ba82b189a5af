package mj

// Data is the mutable simulation state for one model. Slices are allocated
// once by NewData; Reset reinitializes contents without reallocating.
type Data struct {
	Qpos       []float64
	Qvel       []float64
	Qacc       []float64
	Ctrl       []float64
	SensorData []float64

	// Derived body quantities, recomputed by the engine's forward pass.
	XPos  []float64 // nbody x 3 world positions
	XQuat []float64 // nbody x 4 world orientations (w, x, y, z)
	CVel  []float64 // nbody x 6 spatial velocities (angular, linear)

	MocapPos  []float64 // nmocap x 3
	MocapQuat []float64 // nmocap x 4

	// Inverse dynamics output.
	QfrcInverse []float64

	// Energy terms: potential and kinetic.
	Energy [2]float64
}

func NewData(m *Model) *Data {
	d := &Data{
		Qpos:        make([]float64, m.NQ),
		Qvel:        make([]float64, m.NV),
		Qacc:        make([]float64, m.NV),
		Ctrl:        make([]float64, m.NActuator()),
		SensorData:  make([]float64, m.NSensorData),
		XPos:        make([]float64, m.NBody()*3),
		XQuat:       make([]float64, m.NBody()*4),
		CVel:        make([]float64, m.NBody()*6),
		MocapPos:    make([]float64, m.NMocap*3),
		MocapQuat:   make([]float64, m.NMocap*4),
		QfrcInverse: make([]float64, m.NV),
	}
	d.Reset(m)
	return d
}

// Reset restores the reference pose and zeroes velocities, controls and
// derived quantities. The slices keep their identity.
func (d *Data) Reset(m *Model) {
	copy(d.Qpos, m.Qpos0)
	zero(d.Qvel)
	zero(d.Qacc)
	zero(d.Ctrl)
	zero(d.SensorData)
	zero(d.XPos)
	zero(d.CVel)
	zero(d.QfrcInverse)
	d.Energy = [2]float64{}

	for i := 0; i < m.NBody(); i++ {
		d.XQuat[i*4] = 1
		for k := 1; k < 4; k++ {
			d.XQuat[i*4+k] = 0
		}
	}

	// Mocap bodies start at their model pose.
	for i := range m.Bodies {
		b := &m.Bodies[i]
		if b.MocapID < 0 {
			continue
		}
		copy(d.MocapPos[b.MocapID*3:], b.Pos[:])
		copy(d.MocapQuat[b.MocapID*4:], b.Quat[:])
	}
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
