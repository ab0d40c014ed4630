package math

// BoneTransform is a 3x4 row-major matrix used for skinning.
// Each row holds three rotation/scale terms in X, Y, Z and the translation in W.
// The zero value is the zero matrix, the starting point for weighted sums.
type BoneTransform struct {
	RowX, RowY, RowZ Vec4
}

// BoneTransformIdentity returns the identity skinning matrix.
func BoneTransformIdentity() BoneTransform {
	return BoneTransform{
		RowX: Vec4{X: 1},
		RowY: Vec4{Y: 1},
		RowZ: Vec4{Z: 1},
	}
}

// BoneTransformFromTransform expands a rigid transform into matrix form.
func BoneTransformFromTransform(t Transform) BoneTransform {
	q := t.Rotation.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return BoneTransform{
		RowX: Vec4{1 - 2*(yy+zz), 2 * (xy - zw), 2 * (xz + yw), t.Translation.X},
		RowY: Vec4{2 * (xy + zw), 1 - 2*(xx+zz), 2 * (yz - xw), t.Translation.Y},
		RowZ: Vec4{2 * (xz - yw), 2 * (yz + xw), 1 - 2*(xx+yy), t.Translation.Z},
	}
}

// AddScaled returns b + other*weight. Summing weighted bone matrices this way
// is how a vertex's influences are combined.
func (b BoneTransform) AddScaled(other BoneTransform, weight float32) BoneTransform {
	return BoneTransform{
		RowX: b.RowX.Add(other.RowX.Scale(weight)),
		RowY: b.RowY.Add(other.RowY.Scale(weight)),
		RowZ: b.RowZ.Add(other.RowZ.Scale(weight)),
	}
}

// TransformPoint applies the full matrix, translation included.
func (b BoneTransform) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		b.RowX.X*p.X + b.RowX.Y*p.Y + b.RowX.Z*p.Z + b.RowX.W,
		b.RowY.X*p.X + b.RowY.Y*p.Y + b.RowY.Z*p.Z + b.RowY.W,
		b.RowZ.X*p.X + b.RowZ.Y*p.Y + b.RowZ.Z*p.Z + b.RowZ.W,
	}
}

// TransformVector applies only the 3x3 part, for normals and directions.
func (b BoneTransform) TransformVector(v Vec3) Vec3 {
	return Vec3{
		b.RowX.X*v.X + b.RowX.Y*v.Y + b.RowX.Z*v.Z,
		b.RowY.X*v.X + b.RowY.Y*v.Y + b.RowY.Z*v.Z,
		b.RowZ.X*v.X + b.RowZ.Y*v.Y + b.RowZ.Z*v.Z,
	}
}

// ToMat4 converts to a column-major Mat4 for renderers that expect 4x4 input.
func (b BoneTransform) ToMat4() Mat4 {
	return Mat4{
		b.RowX.X, b.RowY.X, b.RowZ.X, 0,
		b.RowX.Y, b.RowY.Y, b.RowZ.Y, 0,
		b.RowX.Z, b.RowY.Z, b.RowZ.Z, 0,
		b.RowX.W, b.RowY.W, b.RowZ.W, 1,
	}
}
