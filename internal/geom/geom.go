// Package geom 提供动作引擎需要的少量 3D 数学：向量、欧拉角旋转、刚体变换，
// 以及探针和受击方向计算用到的投影工具。
//
// 世界坐标 Y 轴向上，"水平面" 指 XZ 平面。
package geom

import "math"

// Vec3 三维向量
type Vec3 struct {
	X, Y, Z float64
}

// V 创建 Vec3
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Up 世界坐标的向上轴
var Up = Vec3{Y: 1}

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Mul(b Vec3) Vec3      { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross 返回 a × b
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len 返回欧氏长度
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize 返回单位向量，a 接近零向量时返回零向量
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l < 1e-9 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Horizontal 把 a 投影到 XZ 平面
func (a Vec3) Horizontal() Vec3 { return Vec3{X: a.X, Z: a.Z} }

// Abs 逐分量取绝对值
func (a Vec3) Abs() Vec3 { return Vec3{math.Abs(a.X), math.Abs(a.Y), math.Abs(a.Z)} }

// Clamp 把 a 的每个分量限制在 [lo, hi]
func (a Vec3) Clamp(lo, hi Vec3) Vec3 {
	return Vec3{
		math.Max(lo.X, math.Min(hi.X, a.X)),
		math.Max(lo.Y, math.Min(hi.Y, a.Y)),
		math.Max(lo.Z, math.Min(hi.Z, a.Z)),
	}
}

// Quat 单位四元数表示的旋转
type Quat struct {
	W, X, Y, Z float64
}

// Identity 单位旋转
var Identity = Quat{W: 1}

// AxisAngle 绕单位轴旋转 angle 弧度
func AxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	axis = axis.Normalize()
	return Quat{W: c, X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// Euler 由角度制欧拉角构造旋转，依次应用 Z、X、Y（偏航最后），与片段数据中局部旋转的写法一致
func Euler(deg Vec3) Quat {
	toRad := math.Pi / 180
	qx := AxisAngle(Vec3{X: 1}, deg.X*toRad)
	qy := AxisAngle(Vec3{Y: 1}, deg.Y*toRad)
	qz := AxisAngle(Vec3{Z: 1}, deg.Z*toRad)
	return qy.Mul(qx).Mul(qz)
}

// Mul 返回 q * r（先应用 r）
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Conj 返回单位四元数的逆
func (q Quat) Conj() Quat { return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z} }

// Rotate 用 q 旋转 v
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Axes 返回旋转后的基向量（右、上、前）
func (q Quat) Axes() [3]Vec3 {
	return [3]Vec3{
		q.Rotate(Vec3{X: 1}),
		q.Rotate(Vec3{Y: 1}),
		q.Rotate(Vec3{Z: 1}),
	}
}

// Transform 带逐轴缩放的刚体变换
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewTransform 返回位于 pos、无旋转、单位缩放的变换
func NewTransform(pos Vec3) Transform {
	return Transform{Position: pos, Rotation: Identity, Scale: Vec3{1, 1, 1}}
}

// normalized 补全零值字段，使 Transform{} 等价于单位变换
func (t Transform) normalized() Transform {
	if t.Rotation == (Quat{}) {
		t.Rotation = Identity
	}
	if t.Scale == (Vec3{}) {
		t.Scale = Vec3{1, 1, 1}
	}
	return t
}

// Point 把局部坐标点变换到父空间
func (t Transform) Point(local Vec3) Vec3 {
	t = t.normalized()
	return t.Position.Add(t.Rotation.Rotate(local.Mul(t.Scale)))
}

// InversePoint 把父空间的点变换到局部坐标（忽略缩放）
func (t Transform) InversePoint(world Vec3) Vec3 {
	t = t.normalized()
	return t.Rotation.Conj().Rotate(world.Sub(t.Position))
}

// Compose 返回局部变换为 c 的子节点在 t 下的变换
func (t Transform) Compose(c Transform) Transform {
	t = t.normalized()
	c = c.normalized()
	return Transform{
		Position: t.Point(c.Position),
		Rotation: t.Rotation.Mul(c.Rotation),
		Scale:    t.Scale.Mul(c.Scale),
	}
}

// Forward 返回 t 的 +Z 轴在父空间中的方向
func (t Transform) Forward() Vec3 {
	return t.normalized().Rotation.Rotate(Vec3{Z: 1})
}

// YawAngle 返回 v 绕 Y 轴的有符号弧度，从 +Z 转向 +X 为正
func YawAngle(v Vec3) float64 {
	return math.Atan2(v.X, v.Z)
}

// WrapAngle 把弧度角归一化到 (-π, π]
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
