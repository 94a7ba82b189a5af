package resolve

// Array identifies which state array (or derived scalar) an address points
// into.
type Array int

const (
	ArrQpos Array = iota
	ArrQvel
	ArrCtrl
	ArrSensorData
	ArrXPos
	ArrXQuat
	ArrCVel
	ArrMocapPos
	ArrMocapQuat

	// Scalar pseudo-arrays answered without state array access.
	ValTime
	ValEnergyPotential
	ValEnergyKinetic
	ValEnergyTotal
)

func (a Array) String() string {
	switch a {
	case ArrQpos:
		return "qpos"
	case ArrQvel:
		return "qvel"
	case ArrCtrl:
		return "ctrl"
	case ArrSensorData:
		return "sensordata"
	case ArrXPos:
		return "xpos"
	case ArrXQuat:
		return "xquat"
	case ArrCVel:
		return "cvel"
	case ArrMocapPos:
		return "mocap_pos"
	case ArrMocapQuat:
		return "mocap_quat"
	case ValTime:
		return "time"
	case ValEnergyPotential:
		return "energy/potential"
	case ValEnergyKinetic:
		return "energy/kinetic"
	case ValEnergyTotal:
		return "energy/total"
	}
	return "unknown"
}

// Address is a resolved array location. Transient: constructed per
// operation and never persisted.
//
// Base is the row's first element. Index is the sub-index within the row,
// -1 when absent; an absent index means the first element for reads and a
// full-row assignment for writes. Dim is the row width the write must
// supply (or the bound the index was checked against).
type Address struct {
	Array Array
	Base  int
	Index int
	Dim   int
}

// Offset returns the element offset a scalar read or write lands on.
func (a Address) Offset() int {
	if a.Index < 0 {
		return a.Base
	}
	return a.Base + a.Index
}

// Scalar reports whether a write assigns a single element rather than the
// whole row.
func (a Address) Scalar() bool {
	return a.Index >= 0 || a.Dim <= 1
}
