package manifold

import "math"

// Quaternion is stored (x, y, z, w), matching the original source's
// quat_xyzw convention (original_source/include/robotoc/utils/rotation.hpp).
type Quaternion [4]float64

// IdentityQuaternion returns the no-rotation quaternion.
func IdentityQuaternion() Quaternion {
	return Quaternion{0, 0, 0, 1}
}

// Normalize returns q scaled to unit norm; the zero quaternion normalizes to
// identity rather than dividing by zero.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n < 1e-12 {
		return IdentityQuaternion()
	}
	return Quaternion{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

// Mul returns the Hamilton product q*other (applies other, then q).
func (q Quaternion) Mul(other Quaternion) Quaternion {
	x1, y1, z1, w1 := q[0], q[1], q[2], q[3]
	x2, y2, z2, w2 := other[0], other[1], other[2], other[3]
	return Quaternion{
		w1*x2 + x1*w2 + y1*z2 - z1*y2,
		w1*y2 - x1*z2 + y1*w2 + z1*x2,
		w1*z2 + x1*y2 - y1*x2 + z1*w2,
		w1*w2 - x1*x2 - y1*y2 - z1*z2,
	}
}

// Conjugate returns the inverse rotation for a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q[0], -q[1], -q[2], q[3]}
}

// ExpSO3 maps a rotation vector (angular velocity * dt, in the body frame)
// to the corresponding unit quaternion, i.e. the SO(3) exponential map.
func ExpSO3(w Vector) Quaternion {
	theta := math.Sqrt(w[0]*w[0] + w[1]*w[1] + w[2]*w[2])
	if theta < 1e-9 {
		// first-order expansion near identity
		return Quaternion{w[0] / 2, w[1] / 2, w[2] / 2, 1}.Normalize()
	}
	s := math.Sin(theta / 2)
	c := math.Cos(theta / 2)
	return Quaternion{w[0] / theta * s, w[1] / theta * s, w[2] / theta * s, c}
}

// LogSO3 maps a unit quaternion back to its rotation vector, the inverse of
// ExpSO3.
func LogSO3(q Quaternion) Vector {
	vnorm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2])
	if vnorm < 1e-9 {
		return Vector{2 * q[0], 2 * q[1], 2 * q[2]}
	}
	w := q[3]
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	theta := 2 * math.Atan2(vnorm, w)
	k := theta / vnorm
	return Vector{q[0] * k, q[1] * k, q[2] * k}
}

// RotationMatrix converts a quaternion to its 3x3 rotation matrix, following
// original_source's RotationMatrixFromQuaternion but writing out the product
// directly instead of going through Eigen::Quaterniond.
func (q Quaternion) RotationMatrix() [3][3]float64 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return [3][3]float64{
		{1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy)},
		{2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx)},
		{2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy)},
	}
}

// RotationMatrixFromNormal follows original_source's
// RotationMatrixFromNormal: a surface frame whose z-axis is the given
// contact normal, used by friction-cone-style constraints.
func RotationMatrixFromNormal(n [3]float64) [3][3]float64 {
	nxnyNorm := math.Sqrt(n[0]*n[0] + n[1]*n[1])
	if nxnyNorm < 1e-12 {
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	return [3][3]float64{
		{n[1] / nxnyNorm, -n[0] / nxnyNorm, 0},
		{n[0] * n[2] / nxnyNorm, n[1] * n[2] / nxnyNorm, -nxnyNorm},
		{n[0], n[1], n[2]},
	}
}

// ProjectRotationMatrix is intentionally not implemented.
//
// original_source/include/robotoc/utils/rotation.hpp re-normalizes a
// rotation matrix against a chosen axis; for the X-axis case its norm is
// computed as R(1,1)*R(1,1) + R(1,2) + R(1,2) — an addition of R(1,2) with
// itself rather than a sum of squares, inconsistent with the Y/Z branches
// in the same function. It is not exercised by the solver core (see
// DESIGN.md, Open Question 1), so it is left out here rather than
// faithfully reproduced.
