package engine

import "math"

// Quaternions are (w, x, y, z), matching the model file convention.

func quatMul(a, b [4]float64) [4]float64 {
	return [4]float64{
		a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3],
		a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2],
		a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1],
		a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0],
	}
}

func quatNormalize(q [4]float64) [4]float64 {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n == 0 {
		return [4]float64{1, 0, 0, 0}
	}
	return [4]float64{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

func axisAngle(axis [3]float64, angle float64) [4]float64 {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if n == 0 {
		return [4]float64{1, 0, 0, 0}
	}
	s, c := math.Sin(angle/2), math.Cos(angle/2)
	return [4]float64{c, s * axis[0] / n, s * axis[1] / n, s * axis[2] / n}
}

// quatRotate applies the rotation q to vector v.
func quatRotate(q [4]float64, v [3]float64) [3]float64 {
	// v' = v + 2*r x (r x v + w*v), r = (x, y, z)
	rx, ry, rz := q[1], q[2], q[3]
	cx := ry*v[2] - rz*v[1] + q[0]*v[0]
	cy := rz*v[0] - rx*v[2] + q[0]*v[1]
	cz := rx*v[1] - ry*v[0] + q[0]*v[2]
	return [3]float64{
		v[0] + 2*(ry*cz-rz*cy),
		v[1] + 2*(rz*cx-rx*cz),
		v[2] + 2*(rx*cy-ry*cx),
	}
}

// quatIntegrate advances q by angular velocity w over dt.
func quatIntegrate(q [4]float64, w [3]float64, dt float64) [4]float64 {
	angle := math.Sqrt(w[0]*w[0]+w[1]*w[1]+w[2]*w[2]) * dt
	if angle == 0 {
		return q
	}
	return quatNormalize(quatMul(q, axisAngle(w, angle)))
}
