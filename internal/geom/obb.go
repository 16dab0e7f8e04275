package geom

import "math"

// OBB 有向包围盒
type OBB struct {
	Center      Vec3
	HalfExtents Vec3
	Rotation    Quat
}

// ClosestPoint 返回 b 内距离 p 最近的点
func (b OBB) ClosestPoint(p Vec3) Vec3 {
	rot := b.Rotation
	if rot == (Quat{}) {
		rot = Identity
	}
	local := rot.Conj().Rotate(p.Sub(b.Center))
	local = local.Clamp(b.HalfExtents.Scale(-1), b.HalfExtents)
	return b.Center.Add(rot.Rotate(local))
}

// OverlapsSphere 判断 b 是否与球 (c, r) 相交
func (b OBB) OverlapsSphere(c Vec3, r float64) bool {
	d := b.ClosestPoint(c).Sub(c)
	return d.Dot(d) <= r*r
}

// OverlapsOBB 对两个有向包围盒做分离轴测试
func (b OBB) OverlapsOBB(o OBB) bool {
	ra := b.rotation().Axes()
	rb := o.rotation().Axes()
	ea := [3]float64{b.HalfExtents.X, b.HalfExtents.Y, b.HalfExtents.Z}
	eb := [3]float64{o.HalfExtents.X, o.HalfExtents.Y, o.HalfExtents.Z}
	t := o.Center.Sub(b.Center)

	axes := make([]Vec3, 0, 15)
	axes = append(axes, ra[:]...)
	axes = append(axes, rb[:]...)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := ra[i].Cross(rb[j])
			// 平行轴的叉积退化为零向量，跳过
			if c.Dot(c) > 1e-12 {
				axes = append(axes, c.Normalize())
			}
		}
	}

	for _, axis := range axes {
		var pa, pb float64
		for k := 0; k < 3; k++ {
			pa += ea[k] * math.Abs(ra[k].Dot(axis))
			pb += eb[k] * math.Abs(rb[k].Dot(axis))
		}
		if math.Abs(t.Dot(axis)) > pa+pb {
			return false
		}
	}
	return true
}

func (b OBB) rotation() Quat {
	if b.Rotation == (Quat{}) {
		return Identity
	}
	return b.Rotation
}
