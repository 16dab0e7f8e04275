package game

import (
	"log"
	"sort"

	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/ecs"
	"github.com/decker502/actioncombo/pkg/probe"
	"github.com/decker502/actioncombo/pkg/systems"
)

// 碰撞层
const (
	LayerBody   = 0
	LayerWeapon = 1
)

// FighterSpec 描述一个要生成的战斗角色
type FighterSpec struct {
	Name         string
	Faction      int
	Position     geom.Vec3
	Yaw          float64 // 朝向（度），0 为 +Z
	Health       float64
	Poise        float64
	AttackPower  float64
	CritRate     float64
	Primary      bool
	WeaponMethod string

	BodyRadius   float64
	CenterHeight float64
	// WeaponLength 大于 0 时生成一把沿朝向伸出的武器碰撞体
	WeaponLength float64
}

// ScriptStep 在 At 秒（真实时间）让 Fighter 出招
type ScriptStep struct {
	At      float64
	Fighter string
	Combo   string
	// Queue 为 true 时排在当前连招之后
	Queue bool
}

// BattleOptions 配置战斗世界
type BattleOptions struct {
	Library systems.ComboLibrary
	// Audio 为 nil 时连招静音
	Audio action.AudioAbility
	// Seed 决定暴击判定序列
	Seed uint64
	// SharedGroupCooldown 是共享碰撞组的默认冷却（秒），按组设置见 Arbiter
	SharedGroupCooldown map[int]float64
}

// Battle 把实体管理器、各系统以及时间缩放/镜头震动注册表组装成一个可以逐帧推进的战斗世界
type Battle struct {
	EntityManager *ecs.EntityManager

	Collision *systems.CollisionSystem
	Status    *systems.StatusSystem
	Animation *systems.AnimationSystem
	Effects   *systems.EffectSystem
	Damage    *systems.DamageSystem
	Flash     *systems.FlashEffectSystem
	Combos    *systems.ComboSystem

	TimeScale   *TimeScaleRegistry
	CameraShake *CameraShakeRegistry
	Arbiter     *combo.GroupArbiter

	audio   action.AudioAbility
	elapsed float64
	script  []ScriptStep
}

// NewBattle 创建战斗世界
func NewBattle(opts BattleOptions) *Battle {
	em := ecs.NewEntityManager()
	b := &Battle{
		EntityManager: em,
		Collision:     systems.NewCollisionSystem(em),
		Status:        systems.NewStatusSystem(em),
		Animation:     systems.NewAnimationSystem(em),
		Effects:       systems.NewEffectSystem(em),
		Damage:        systems.NewDamageSystem(em, opts.Seed),
		Flash:         systems.NewFlashEffectSystem(em),
		TimeScale:     NewTimeScaleRegistry(),
		CameraShake:   NewCameraShakeRegistry(),
		Arbiter:       combo.NewGroupArbiter(),
		audio:         opts.Audio,
	}
	for group, cd := range opts.SharedGroupCooldown {
		b.Arbiter.SetCooldown(group, cd)
	}

	b.Combos = systems.NewComboSystem(em, systems.ComboSystemDeps{
		Collision:   b.Collision,
		Status:      b.Status,
		Animation:   b.Animation,
		Effects:     b.Effects,
		Damage:      b.Damage,
		Audio:       opts.Audio,
		TimeScale:   b.TimeScale,
		CameraShake: b.CameraShake,
		Arbiter:     b.Arbiter,
		Library:     opts.Library,
		HitMask:     probe.Layer(LayerBody),
	})
	b.Damage.SetInterrupter(b.Combos)
	return b
}

// Elapsed 返回战斗经过的真实时间（秒）
func (b *Battle) Elapsed() float64 { return b.elapsed }

// SpawnFighter 生成战斗角色及其碰撞体
func (b *Battle) SpawnFighter(spec FighterSpec) ecs.EntityID {
	em := b.EntityManager
	id := em.CreateEntity()

	tr := components.NewTransformComponent(spec.Position)
	tr.Transform.Rotation = geom.Euler(geom.Vec3{Y: spec.Yaw})
	ecs.AddComponent(em, id, tr)

	radius := spec.BodyRadius
	if radius <= 0 {
		radius = 0.5
	}
	center := spec.CenterHeight
	if center <= 0 {
		center = 1
	}
	ecs.AddComponent(em, id, &components.ColliderComponent{
		Shape:  components.ColliderSphere,
		Radius: radius,
		Offset: geom.Vec3{Y: center},
		Layer:  LayerBody,
	})

	cc := &components.CombatantComponent{
		Name:         spec.Name,
		Faction:      spec.Faction,
		AttackPower:  spec.AttackPower,
		CritRate:     spec.CritRate,
		Primary:      spec.Primary,
		WeaponMethod: spec.WeaponMethod,
		CenterHeight: center,
	}
	if spec.WeaponLength > 0 {
		weapon := em.CreateEntity()
		ecs.AddComponent(em, weapon, &components.ColliderComponent{
			Shape:       components.ColliderBox,
			HalfExtents: geom.Vec3{X: 0.1, Y: 0.1, Z: spec.WeaponLength / 2},
			Offset:      geom.Vec3{Y: center, Z: radius + spec.WeaponLength/2},
			Layer:       LayerWeapon,
			Owner:       id,
		})
		cc.Weapon = weapon
	}
	ecs.AddComponent(em, id, cc)

	health := spec.Health
	if health <= 0 {
		health = 100
	}
	ecs.AddComponent(em, id, &components.HealthComponent{Current: health, Max: health})
	if spec.Poise > 0 {
		ecs.AddComponent(em, id, &components.PoiseComponent{
			Current:       spec.Poise,
			Max:           spec.Poise,
			RecoveryDelay: 1.5,
			RecoveryRate:  spec.Poise / 2,
		})
	}
	ecs.AddComponent(em, id, components.NewStatusComponent())
	ecs.AddComponent(em, id, &components.AnimationComponent{Speed: 1})

	log.Printf("[Battle] spawned %s as entity %d (faction %d)", spec.Name, id, spec.Faction)
	return id
}

// Fighters 返回所有战斗角色
func (b *Battle) Fighters() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.CombatantComponent](b.EntityManager)
}

// FindFighter 按名称查找角色
func (b *Battle) FindFighter(name string) (ecs.EntityID, bool) {
	for _, id := range b.Fighters() {
		cc, _ := ecs.GetComponent[*components.CombatantComponent](b.EntityManager, id)
		if cc.Name == name {
			return id, true
		}
	}
	return 0, false
}

// Schedule 追加脚本步骤，按时间顺序执行
func (b *Battle) Schedule(steps ...ScriptStep) {
	b.script = append(b.script, steps...)
	sort.SliceStable(b.script, func(i, j int) bool { return b.script[i].At < b.script[j].At })
}

// Pending 返回尚未执行的脚本步骤数
func (b *Battle) Pending() int { return len(b.script) }

// runScript 执行已到时间的脚本步骤
func (b *Battle) runScript() {
	for len(b.script) > 0 && b.script[0].At <= b.elapsed {
		step := b.script[0]
		b.script = b.script[1:]

		id, ok := b.FindFighter(step.Fighter)
		if !ok {
			log.Printf("[Battle] Warning: script fighter %s not found", step.Fighter)
			continue
		}
		if step.Queue {
			b.Combos.Queue(id, step.Combo)
		} else {
			b.Combos.PlayByName(id, step.Combo)
		}
	}
}

// Update 推进一帧，dt 为真实时间
//
// 顺序：脚本 → 连招（内部按时间缩放换算）→ 绑定型接触 → 伤害结算 →
// 状态/动画/特效/位移（按缩放后的时间）→ 受击闪白与注册表（按真实时间）→ 清理实体。
func (b *Battle) Update(dt float64) {
	b.elapsed += dt
	b.runScript()
	scaled := dt * b.TimeScale.Scale()

	b.Combos.Update(dt)
	b.Collision.Update(scaled)
	b.Damage.Update(scaled)
	b.Status.Update(scaled)
	b.Animation.Update(scaled)
	b.Effects.Update(scaled)
	b.move(scaled)

	b.Flash.Update(dt)
	b.TimeScale.Update(dt)
	b.CameraShake.Update(dt)
	if am, ok := b.audio.(*AudioManager); ok && am != nil {
		am.Update()
	}

	b.EntityManager.RemoveMarkedEntities()
}

// move 按速度移动角色，硬直中的角色不能移动
func (b *Battle) move(dt float64) {
	em := b.EntityManager
	for _, id := range ecs.GetEntitiesWith1[*components.TransformComponent](em) {
		tr, _ := ecs.GetComponent[*components.TransformComponent](em, id)
		if tr.Velocity == (geom.Vec3{}) {
			continue
		}
		if st, ok := ecs.GetComponent[*components.StatusComponent](em, id); ok && st.Staggered() {
			continue
		}
		tr.Transform.Position = tr.Transform.Position.Add(tr.Velocity.Scale(dt))
	}
}
