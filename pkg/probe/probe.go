package probe

import (
	"log"
	"math"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
)

type probeState int

const (
	stateCreated probeState = iota
	stateLive
	stateDestroyed
)

// Probe 一个碰撞轨道区间的运行时重叠检测器
type Probe struct {
	shape clip.CollisionShape
	owner Owner
	host  Host
	mask  LayerMask

	state  probeState
	bound  Collider
	detach func()
}

// New 创建挂在 owner 上的探针，调用 Init 之前不会访问宿主
func New(shape clip.CollisionShape, owner Owner, host Host, mask LayerMask) *Probe {
	return &Probe{shape: shape, owner: owner, host: host, mask: mask}
}

// Shape 返回探针形状
func (p *Probe) Shape() clip.CollisionShape { return p.shape }

// Live 探针是否已初始化且尚未销毁
func (p *Probe) Live() bool { return p.state == stateLive }

// Init 把探针接入世界
//
// 绑定型探针订阅所有者武器碰撞体的接触，没有武器时依次退回到默认攻击碰撞体和身体。
// 形状探针只标记为生效，在 Tick 时查询宿主。
func (p *Probe) Init(onOverlap func(Collider)) {
	if p.state != stateCreated {
		return
	}
	p.state = stateLive

	if p.shape.Kind != clip.ShapeBindToOwner {
		return
	}
	if p.owner == nil || p.host == nil {
		log.Printf("[Probe] bound probe has no owner or host, skipped")
		return
	}
	for _, kind := range bindPreference {
		volume, ok := p.owner.HitVolume(kind)
		if !ok || volume == nil {
			continue
		}
		p.bound = volume
		p.detach = p.host.Attach(volume, p.mask, func(c Collider) {
			if p.state == stateLive && onOverlap != nil {
				onOverlap(c)
			}
		})
		return
	}
	log.Printf("[Probe] owner has no weapon, attack or body volume to bind")
}

// Tick 执行一次重叠查询并报告所有重叠的碰撞体
// 绑定型和空探针由宿主驱动，这里什么也不做。
func (p *Probe) Tick(onOverlap func(Collider)) {
	if p.state != stateLive || p.host == nil || onOverlap == nil {
		return
	}
	q, ok := p.WorldQuery()
	if !ok {
		return
	}

	hits := p.host.Overlap(q)
	if p.shape.Kind == clip.ShapeSector {
		hits = p.filterSector(hits)
	}
	for _, c := range hits {
		if p.isOwnVolume(c) {
			continue
		}
		onOverlap(c)
	}
}

// Destroy 断开探针，可以重复调用，也可以用于从未初始化的探针
func (p *Probe) Destroy() {
	if p.state == stateDestroyed {
		return
	}
	p.state = stateDestroyed
	if p.detach != nil {
		p.detach()
		p.detach = nil
	}
	p.bound = nil
}

// WorldQuery 按所有者当前的变换返回探针发起的世界坐标查询，扇形探针返回其包围球
func (p *Probe) WorldQuery() (Query, bool) {
	var parent geom.Transform
	if p.owner != nil {
		parent = p.owner.WorldTransform()
	}
	pose := parent.Compose(geom.Transform{
		Position: p.shape.LocalPos,
		Rotation: geom.Euler(p.shape.LocalRot),
	})

	switch p.shape.Kind {
	case clip.ShapeBox:
		return Query{
			Kind:        clip.ShapeBox,
			Center:      pose.Position,
			Rotation:    pose.Rotation,
			HalfExtents: p.shape.Size.Scale(0.5),
			Mask:        p.mask,
		}, true
	case clip.ShapeSphere:
		return Query{Kind: clip.ShapeSphere, Center: pose.Position, Radius: p.shape.Radius, Mask: p.mask}, true
	case clip.ShapeSector:
		halfH := p.shape.Height / 2
		return Query{
			Kind:     clip.ShapeSphere,
			Center:   pose.Position,
			Rotation: pose.Rotation,
			Radius:   math.Sqrt(p.shape.OuterRadius*p.shape.OuterRadius + halfH*halfH),
			Mask:     p.mask,
		}, true
	default:
		return Query{}, false
	}
}

// filterSector 保留距扇形原点最近点落在环带、高度范围和弧度内的碰撞体
// 对小碰撞体结果精确，对远大于扇形的碰撞体结果偏保守。
func (p *Probe) filterSector(candidates []Collider) []Collider {
	q, _ := p.WorldQuery()
	s := p.shape
	halfArc := s.ArcAngle * math.Pi / 360
	pivot := s.PivotAngle * math.Pi / 180

	out := candidates[:0:0]
	for _, c := range candidates {
		local := q.Rotation.Conj().Rotate(c.ClosestPoint(q.Center).Sub(q.Center))
		if math.Abs(local.Y) > s.Height/2 {
			continue
		}
		dist := local.Horizontal().Len()
		if dist < 1e-9 {
			// 原点位于碰撞体内部
			if s.InnerRadius == 0 {
				out = append(out, c)
			}
			continue
		}
		if dist < s.InnerRadius || dist > s.OuterRadius {
			continue
		}
		if s.ArcAngle < 360 && math.Abs(geom.WrapAngle(geom.YawAngle(local)-pivot)) > halfArc {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *Probe) isOwnVolume(c Collider) bool {
	if p.owner == nil {
		return false
	}
	for _, kind := range bindPreference {
		if v, ok := p.owner.HitVolume(kind); ok && v != nil && v.ColliderID() == c.ColliderID() {
			return true
		}
	}
	return false
}
