package combo

import (
	"fmt"
	"strings"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/probe"
)

type dummy struct {
	id      uint64
	faction int
	pos     geom.Vec3
	attack  float64
	crit    float64
	primary bool
}

func (d *dummy) CombatantID() uint64  { return d.id }
func (d *dummy) Faction() int         { return d.faction }
func (d *dummy) Center() geom.Vec3    { return d.pos }
func (d *dummy) AttackPower() float64 { return d.attack }
func (d *dummy) CritRate() float64    { return d.crit }
func (d *dummy) PrimaryPlayer() bool  { return d.primary }
func (d *dummy) WeaponMethod() string { return "sword" }

// dummyCollider 以固定点作为最近点
type dummyCollider struct {
	id  uint64
	pos geom.Vec3
}

func (c dummyCollider) ColliderID() uint64               { return c.id }
func (c dummyCollider) ClosestPoint(geom.Vec3) geom.Vec3 { return c.pos }

type world struct {
	owners map[uint64]*dummy
	hits   []probe.Collider
}

func newWorld(targets ...*dummy) *world {
	w := &world{owners: make(map[uint64]*dummy)}
	for _, d := range targets {
		w.owners[d.id] = d
		w.hits = append(w.hits, dummyCollider{id: d.id, pos: d.pos})
	}
	return w
}

func (w *world) Overlap(probe.Query) []probe.Collider { return w.hits }

func (w *world) Attach(probe.Collider, probe.LayerMask, func(probe.Collider)) func() {
	return func() {}
}

func (w *world) ResolveTarget(c probe.Collider) (Combatant, bool) {
	d, ok := w.owners[c.ColliderID()]
	return d, ok
}

type originOwner struct{}

func (originOwner) WorldTransform() geom.Transform { return geom.Transform{} }
func (originOwner) HitVolume(probe.VolumeKind) (probe.Collider, bool) {
	return nil, false
}

// stateLog 记录状态能力调用及其发生时的 tick
type stateLog struct {
	calls []string
	tick  func() int
}

func (s *stateLog) add(name string) {
	t := -1
	if s.tick != nil {
		t = s.tick()
	}
	s.calls = append(s.calls, fmt.Sprintf("%s@%d", name, t))
}

func (s *stateLog) StartEndure(string, float64)      { s.add("start-endure") }
func (s *stateLog) StopEndure(string)                { s.add("stop-endure") }
func (s *stateLog) StartUnbreakable(string, float64) { s.add("start-unbreakable") }
func (s *stateLog) StopUnbreakable(string)           { s.add("stop-unbreakable") }

// only 返回名称中包含 word 的调用
func (s *stateLog) only(word string) []string {
	var out []string
	for _, c := range s.calls {
		if strings.Contains(c, word) {
			out = append(out, c)
		}
	}
	return out
}

type damageLog struct{ hits []Hit }

func (d *damageLog) AddDamage(h Hit) { d.hits = append(d.hits, h) }

type timeScaleLog struct {
	ids    []string
	scales []float64
}

func (t *timeScaleLog) AddTimeScale(id string, scale, _ float64) {
	t.ids = append(t.ids, id)
	t.scales = append(t.scales, scale)
}
func (t *timeScaleLog) RemoveTimeScale(string) {}

type shakeLog struct {
	ids  []string
	dirs []geom.Vec3
}

func (s *shakeLog) AddShake(id string, _, _, _ float64, dir geom.Vec3) {
	s.ids = append(s.ids, id)
	s.dirs = append(s.dirs, dir)
}
func (s *shakeLog) RemoveShake(string) {}

type soundLog struct{ clips []string }

func (s *soundLog) PlaySound(name string, _ bool, _ float64) int {
	s.clips = append(s.clips, name)
	return len(s.clips)
}
func (s *soundLog) StopSound(int) {}

// processClip 返回 60 帧/秒的片段，判定帧为 30，整段都有一个碰撞窗口
func processClip(duration int, group int) *clip.Clip {
	return &clip.Clip{
		Name:          "slash",
		FrameRate:     60,
		DurationTicks: duration,
		Process:       clip.Process{AnticipationTick: 10, JudgmentTick: 30, RecoveryTick: 45},
		CollisionTrack: []*clip.CollisionEntry{{
			Window: clip.Window{StartTick: 0, DurationTicks: duration},
			Group:  group,
			Shape:  clip.SphereShape(geom.Vec3{}, 2),
		}},
	}
}

func baseConfig(c *clip.Clip) *Config {
	return &Config{
		Name:    "slash",
		Clip:    c,
		Default: GroupRule{Interval: 100},
	}
}

func collaborators(w *world) Collaborators {
	return Collaborators{
		Targets:    w,
		ProbeHost:  w,
		ProbeOwner: originOwner{},
	}
}

// hitTicks 记录每次命中时的 tick
func hitTicks(p *Player) *[]int {
	var out []int
	p.OnHit(func(Hit) { out = append(out, p.Action().CurrentTick()) })
	return &out
}

func process(start, end action.Stage) WindowConfig {
	return WindowConfig{Mode: WindowProcess, StartStage: start, EndStage: end}
}
