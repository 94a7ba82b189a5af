// Package mj holds the loaded simulation model and its mutable state.
//
// [Model] is the immutable description of a loaded model file: bodies,
// joints, actuators, sensors, array offsets and the global timestep.
// [Data] is the mutable state addressed through those offsets: generalized
// positions and velocities, controls, sensor readings, body poses and
// energy terms.
//
// Models are loaded from MJCF XML (.xml, .mjcf) or a URDF subset (.urdf):
//
//	m, err := mj.Load("pendulum.xml")
//	d := mj.NewData(m)
//
// A Model is never mutated after Load returns; Data is owned by exactly
// one session for its lifetime.
package mj
