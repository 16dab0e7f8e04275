package clip

import (
	"fmt"

	"github.com/decker502/actioncombo/internal/geom"
)

// ShapeKind CollisionShape 的类型标签
type ShapeKind int

const (
	ShapeNone ShapeKind = iota
	// ShapeBindToOwner 复用所有者自身的碰撞体，而不是独立探针
	ShapeBindToOwner
	ShapeBox
	ShapeSphere
	ShapeSector
)

var shapeKindNames = map[ShapeKind]string{
	ShapeNone:        "none",
	ShapeBindToOwner: "bind",
	ShapeBox:         "box",
	ShapeSphere:      "sphere",
	ShapeSector:      "sector",
}

func (k ShapeKind) String() string {
	if name, ok := shapeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// ParseShapeKind 把配置中的形状名称转换为 ShapeKind
func ParseShapeKind(s string) (ShapeKind, error) {
	switch s {
	case "", "none":
		return ShapeNone, nil
	case "bind", "bind_to_owner":
		return ShapeBindToOwner, nil
	case "box":
		return ShapeBox, nil
	case "sphere":
		return ShapeSphere, nil
	case "sector":
		return ShapeSector, nil
	}
	return ShapeNone, fmt.Errorf("unknown collision shape %q", s)
}

// CollisionShape 探针几何形状的封闭联合类型
// 只有 Kind 对应的字段有意义
type CollisionShape struct {
	Kind ShapeKind

	// LocalPos 相对所有者的偏移（box、sphere、sector）
	LocalPos geom.Vec3
	// LocalRot 欧拉角旋转，单位为度（box、sector）
	LocalRot geom.Vec3

	// Size 盒子完整尺寸（box）
	Size geom.Vec3

	// 半径（sphere）
	Radius float64

	// 扇形参数（sector），角度单位为度
	// PivotAngle 让弧线中心绕向上轴旋转
	InnerRadius float64
	OuterRadius float64
	Height      float64
	PivotAngle  float64
	ArcAngle    float64
}

// BoxShape 创建盒形
func BoxShape(localPos, localRot, size geom.Vec3) CollisionShape {
	return CollisionShape{Kind: ShapeBox, LocalPos: localPos, LocalRot: localRot, Size: size}
}

// SphereShape 创建球形
func SphereShape(localPos geom.Vec3, radius float64) CollisionShape {
	return CollisionShape{Kind: ShapeSphere, LocalPos: localPos, Radius: radius}
}

// SectorShape 创建扇形
func SectorShape(localPos, localRot geom.Vec3, inner, outer, height, pivot, arc float64) CollisionShape {
	return CollisionShape{
		Kind:        ShapeSector,
		LocalPos:    localPos,
		LocalRot:    localRot,
		InnerRadius: inner,
		OuterRadius: outer,
		Height:      height,
		PivotAngle:  pivot,
		ArcAngle:    arc,
	}
}

// PayloadKind EventPayload 的类型标签
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadBool
	PayloadInt
	PayloadFloat
	PayloadString
	// PayloadRef 按名称引用外部资源
	PayloadRef
)

var payloadKindNames = map[PayloadKind]string{
	PayloadNone:   "none",
	PayloadBool:   "bool",
	PayloadInt:    "int",
	PayloadFloat:  "float",
	PayloadString: "string",
	PayloadRef:    "ref",
}

func (k PayloadKind) String() string {
	if name, ok := payloadKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PayloadKind(%d)", int(k))
}

// EventPayload 事件携带的封闭联合数据
type EventPayload struct {
	Kind   PayloadKind
	Bool   bool
	Int    int
	Float  float64
	String string
	Ref    string
}

// Value 以 any 返回数据，PayloadNone 时返回 nil
func (p EventPayload) Value() any {
	switch p.Kind {
	case PayloadBool:
		return p.Bool
	case PayloadInt:
		return p.Int
	case PayloadFloat:
		return p.Float
	case PayloadString:
		return p.String
	case PayloadRef:
		return p.Ref
	default:
		return nil
	}
}

func BoolPayload(v bool) EventPayload     { return EventPayload{Kind: PayloadBool, Bool: v} }
func IntPayload(v int) EventPayload       { return EventPayload{Kind: PayloadInt, Int: v} }
func FloatPayload(v float64) EventPayload { return EventPayload{Kind: PayloadFloat, Float: v} }
func StringPayload(v string) EventPayload { return EventPayload{Kind: PayloadString, String: v} }
func RefPayload(name string) EventPayload { return EventPayload{Kind: PayloadRef, Ref: name} }
