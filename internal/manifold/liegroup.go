package manifold

import "gonum.org/v1/gonum/mat"

// Config is a configuration vector q. When the robot has a floating base the
// first 7 entries are [position(3), quaternion_xyzw(4)] and the remainder is
// the joint angle vector; otherwise the whole vector is joint angles.
type Config []float64

// Integrate computes q ⊕ alpha*δq, §3/§4.3. δq is a tangent vector sized
// dim(v) = dim(q)-1 when the robot has a floating base, dim(q) otherwise:
// the floating base's 6 leading tangent components are [linear; angular]
// and integrate via world-frame translation plus an SO(3) exponential map,
// the remainder integrates by plain vector addition.
func Integrate(q Config, delta Vector, alpha float64, hasFloatingBase bool) Config {
	out := make(Config, len(q))
	if !hasFloatingBase {
		for i := range q {
			out[i] = q[i] + alpha*delta[i]
		}
		return out
	}
	for i := 0; i < 3; i++ {
		out[i] = q[i] + alpha*delta[i]
	}
	quat := Quaternion{q[3], q[4], q[5], q[6]}
	w := Vector{alpha * delta[3], alpha * delta[4], alpha * delta[5]}
	newQuat := quat.Mul(ExpSO3(w)).Normalize()
	out[3], out[4], out[5], out[6] = newQuat[0], newQuat[1], newQuat[2], newQuat[3]
	for i := 7; i < len(q); i++ {
		out[i] = q[i] + alpha*delta[i-1]
	}
	return out
}

// Difference computes q1 ⊖ q2, the tangent vector δq such that
// Integrate(q2, δq, 1, ...) == q1, §3.
func Difference(q1, q2 Config, hasFloatingBase bool) Vector {
	if !hasFloatingBase {
		out := make(Vector, len(q1))
		for i := range q1 {
			out[i] = q1[i] - q2[i]
		}
		return out
	}
	nv := len(q1) - 1
	out := make(Vector, nv)
	for i := 0; i < 3; i++ {
		out[i] = q1[i] - q2[i]
	}
	quat1 := Quaternion{q1[3], q1[4], q1[5], q1[6]}
	quat2 := Quaternion{q2[3], q2[4], q2[5], q2[6]}
	rel := quat2.Conjugate().Mul(quat1)
	w := LogSO3(rel)
	out[3], out[4], out[5] = w[0], w[1], w[2]
	for i := 7; i < len(q1); i++ {
		out[i-1] = q1[i] - q2[i]
	}
	return out
}

// DIntegrateDq returns the 6x6 block Fqq_prev = ∂(q[i] ⊕ dt·v[i] ⊖ q[i+1])/∂q[i]
// restricted to the floating-base rows, §3/§4.3. Linearized near the current
// iterate: the translational block is identity, the rotational block is the
// right Jacobian of SO(3) evaluated at the incremental rotation, following
// the Jacobian convention d_integrate_dq in §6's Robot collaborator
// contract. Returns nil if the robot has no floating base (no such block
// exists).
func DIntegrateDq(delta Vector, alpha float64, hasFloatingBase bool) *mat.Dense {
	if !hasFloatingBase {
		return nil
	}
	J := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		J.Set(i, i, 1)
	}
	w := Vector{alpha * delta[3], alpha * delta[4], alpha * delta[5]}
	Jr := rightJacobianSO3(w)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			J.Set(3+i, 3+j, Jr.At(i, j))
		}
	}
	return J
}

// rightJacobianSO3 returns the right Jacobian of SO(3) at rotation vector w,
// used to re-express costate corrections in the local tangent frame per
// §4.3 ("floating-base rows use SE(3) Jacobian inverses").
func rightJacobianSO3(w Vector) *mat.Dense {
	theta := w.Norm()
	skew := skewSymmetric(w)
	if theta < 1e-8 {
		J := mat.NewDense(3, 3, nil)
		J.Sub(identity3(), scaleDense(skew, 0.5))
		return J
	}
	skew2 := mat.NewDense(3, 3, nil)
	skew2.Mul(skew, skew)
	// Series of the right-Jacobian coefficients (1-cos θ)/θ² and
	// (θ-sin θ)/θ³ through their θ² terms, good to O(theta^4).
	a := 0.5 - theta*theta/24
	b := 1.0/6.0 - theta*theta/120
	J := mat.NewDense(3, 3, nil)
	J.Add(identity3(), scaleDense(skew, -a))
	tmp := scaleDense(skew2, b)
	J.Add(J, tmp)
	return J
}

func skewSymmetric(w Vector) *mat.Dense {
	m := mat.NewDense(3, 3, []float64{
		0, -w[2], w[1],
		w[2], 0, -w[0],
		-w[1], w[0], 0,
	})
	return m
}

func identity3() *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func scaleDense(m *mat.Dense, s float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Scale(s, m)
	return out
}
