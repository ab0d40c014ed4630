package math

// Transform is a rigid transform: rotate by Rotation, then add Translation.
type Transform struct {
	Rotation    Quat
	Translation Vec3
}

// TransformIdentity returns the transform that leaves points unchanged.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity()}
}

// Mul composes two transforms. The result applies inner first, then t.
func (t Transform) Mul(inner Transform) Transform {
	return Transform{
		Rotation:    t.Rotation.Mul(inner.Rotation),
		Translation: t.Rotation.Rotate(inner.Translation).Add(t.Translation),
	}
}

// Apply transforms the point p.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Rotation.Rotate(p).Add(t.Translation)
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Normalize().Conjugate()
	return Transform{
		Rotation:    inv,
		Translation: inv.Rotate(t.Translation).Scale(-1),
	}
}

// Blend interpolates from t toward other: translation is lerped, rotation
// slerped along the shorter arc.
func (t Transform) Blend(other Transform, factor float32) Transform {
	return Transform{
		Rotation:    t.Rotation.Slerp(other.Rotation, factor),
		Translation: t.Translation.Lerp(other.Translation, factor),
	}
}

// ToMat4 converts the transform to a column-major 4x4 matrix.
func (t Transform) ToMat4() Mat4 {
	m := t.Rotation.ToMat4()
	m[12] = t.Translation.X
	m[13] = t.Translation.Y
	m[14] = t.Translation.Z
	return m
}
