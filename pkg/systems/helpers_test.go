package systems

import (
	"testing"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
	"github.com/decker502/actioncombo/pkg/probe"
)

const (
	bodyLayer   = 0
	weaponLayer = 1
)

// fighter 描述测试用角色
type fighter struct {
	pos     geom.Vec3
	yaw     float64
	faction int
	health  float64
	poise   float64
	power   float64
	weapon  float64 // 武器长度，0 表示没有武器
}

// spawn 创建带身体碰撞体（半径 0.5，中心高 1）的角色
func spawn(em *ecs.EntityManager, f fighter) ecs.EntityID {
	id := em.CreateEntity()
	tr := components.NewTransformComponent(f.pos)
	tr.Transform.Rotation = geom.Euler(geom.Vec3{Y: f.yaw})
	ecs.AddComponent(em, id, tr)
	ecs.AddComponent(em, id, &components.ColliderComponent{
		Shape:  components.ColliderSphere,
		Radius: 0.5,
		Offset: geom.Vec3{Y: 1},
		Layer:  bodyLayer,
	})

	cc := &components.CombatantComponent{
		Name:         "fighter",
		Faction:      f.faction,
		AttackPower:  f.power,
		CenterHeight: 1,
	}
	if f.weapon > 0 {
		weapon := em.CreateEntity()
		ecs.AddComponent(em, weapon, &components.ColliderComponent{
			Shape:       components.ColliderBox,
			HalfExtents: geom.Vec3{X: 0.1, Y: 0.1, Z: f.weapon / 2},
			Offset:      geom.Vec3{Y: 1, Z: 0.5 + f.weapon/2},
			Layer:       weaponLayer,
			Owner:       id,
		})
		cc.Weapon = weapon
	}
	ecs.AddComponent(em, id, cc)

	health := f.health
	if health == 0 {
		health = 100
	}
	ecs.AddComponent(em, id, &components.HealthComponent{Current: health, Max: health})
	if f.poise > 0 {
		ecs.AddComponent(em, id, &components.PoiseComponent{Current: f.poise, Max: f.poise, RecoveryDelay: 1, RecoveryRate: 10})
	}
	ecs.AddComponent(em, id, components.NewStatusComponent())
	return id
}

// jabClip 是 60fps、30 帧的片段，第 10 帧起在正前方 1 米处产生 4 帧球形判定
func jabClip(t *testing.T) *clip.Clip {
	t.Helper()
	c, err := clip.Parse([]byte(`
name: jab
frame_rate: 60
duration_ticks: 30
process: { anticipation_tick: 5, judgment_tick: 10, recovery_tick: 20 }
animation_track:
  - { start_tick: 0, duration_ticks: 30, transition: Jab }
effect_track:
  - { start_tick: 8, duration_ticks: 6, prefab: spark }
collision_track:
  - { start_tick: 10, duration_ticks: 4, group: 1, shape: { kind: sphere, local_pos: [0, 1, 1], radius: 0.6 } }
`))
	if err != nil {
		t.Fatalf("Failed to parse clip: %v", err)
	}
	return c
}

func jabCombo(t *testing.T) *combo.Config {
	return &combo.Config{
		Name:    "jab",
		Clip:    jabClip(t),
		Default: combo.GroupRule{Interval: 1},
		Damage:  combo.DamageParams{Fixed: 5, Multiplier: 1, ResourceMultiplier: 1, Type: "blunt"},
	}
}

// library 是按名称索引的连招库
type library map[string]*combo.Config

func (l library) Combo(name string) (*combo.Config, bool) {
	cfg, ok := l[name]
	return cfg, ok
}

// interruptLog 记录被打断的实体
type interruptLog struct {
	ids    []ecs.EntityID
	result bool
}

func (l *interruptLog) Interrupt(id ecs.EntityID) bool {
	l.ids = append(l.ids, id)
	return l.result
}

func health(em *ecs.EntityManager, id ecs.EntityID) *components.HealthComponent {
	h, _ := ecs.GetComponent[*components.HealthComponent](em, id)
	return h
}

func status(em *ecs.EntityManager, id ecs.EntityID) *components.StatusComponent {
	st, _ := ecs.GetComponent[*components.StatusComponent](em, id)
	return st
}

func colliderIDs(cs []probe.Collider) []ecs.EntityID {
	out := make([]ecs.EntityID, len(cs))
	for i, c := range cs {
		out[i] = ecs.EntityID(c.ColliderID())
	}
	return out
}
