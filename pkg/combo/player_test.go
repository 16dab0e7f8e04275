package combo

import (
	"math"
	"reflect"
	"testing"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/action"
)

func newStatePlayer(cfg *Config, co Collaborators) (*Player, *stateLog) {
	state := &stateLog{}
	co.State = state
	p := NewPlayer(cfg, &dummy{id: 1}, co)
	state.tick = p.Action().CurrentTick
	return p, state
}

func TestPlayer_ConcreteEndureScenario(t *testing.T) {
	c := &clip.Clip{
		Name:          "heavy",
		FrameRate:     60,
		DurationTicks: 60,
		Process:       clip.Process{AnticipationTick: 10, JudgmentTick: 30, RecoveryTick: 45},
	}
	cfg := &Config{Name: "heavy", Clip: c, Endure: process(action.StageAnticipation, action.StageRecovery)}
	p, state := newStatePlayer(cfg, Collaborators{})

	p.Start()
	p.Tick(0.5)
	p.Tick(0.5)

	if p.Action().CurrentTick() != 60 || p.Stage() != action.StageEnd {
		t.Fatalf("Expected End @60, got %v @%d", p.Stage(), p.Action().CurrentTick())
	}
	want := []string{"start-endure@10", "stop-endure@45", "stop-endure@60"}
	if got := state.only("endure"); !reflect.DeepEqual(got, want) {
		t.Errorf("Endure calls = %v, want %v", got, want)
	}
	if !p.Finished() {
		t.Error("Non-looping combo should be finished at End")
	}
}

func TestPlayer_WindowClamp(t *testing.T) {
	cfg := baseConfig(processClip(60, 1))
	cfg.Endure = process(action.StageJudgment, action.StageAnticipation)
	p, state := newStatePlayer(cfg, Collaborators{})

	p.Start()
	p.Tick(1)

	want := []string{"start-endure@30", "stop-endure@30", "stop-endure@60"}
	if got := state.only("endure"); !reflect.DeepEqual(got, want) {
		t.Errorf("Endure calls = %v, want %v", got, want)
	}
	// 未配置的无敌窗口也会在结束时关闭
	if got := state.only("unbreakable"); !reflect.DeepEqual(got, []string{"stop-unbreakable@60"}) {
		t.Errorf("Unbreakable calls = %v", got)
	}
}

func TestPlayer_EventWindow(t *testing.T) {
	sameTick := []*clip.EventEntry{
		{Tick: 20, Name: "armor_off"},
		{Tick: 20, Name: "armor_on"},
	}
	tests := []struct {
		name       string
		events     []*clip.EventEntry
		start, end string
		want       []string
	}{
		{"按顺序配置", nil, "armor_on", "armor_off", []string{"start-endure@20", "stop-endure@40", "stop-endure@60"}},
		{"反向配置时交换", nil, "armor_off", "armor_on", []string{"start-endure@20", "stop-endure@40", "stop-endure@60"}},
		{"同一帧按轨道顺序交换", sameTick, "armor_on", "armor_off", []string{"start-endure@20", "stop-endure@20", "stop-endure@60"}},
		{"同一帧顺序正确", sameTick, "armor_off", "armor_on", []string{"start-endure@20", "stop-endure@20", "stop-endure@60"}},
		{"缺少事件时禁用", nil, "armor_on", "missing", []string{"stop-endure@60"}},
		{"事件名为空时禁用", nil, "", "armor_off", []string{"stop-endure@60"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := processClip(60, 1)
			c.EventTrack = tt.events
			if c.EventTrack == nil {
				c.EventTrack = []*clip.EventEntry{
					{Tick: 20, Name: "armor_on"},
					{Tick: 40, Name: "armor_off"},
				}
			}
			cfg := baseConfig(c)
			cfg.Endure = WindowConfig{Mode: WindowEvent, StartEvent: tt.start, EndEvent: tt.end}
			p, state := newStatePlayer(cfg, Collaborators{})

			p.Start()
			p.Tick(1)
			if got := state.only("endure"); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Endure calls = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlayer_StopClosesWindows(t *testing.T) {
	cfg := baseConfig(processClip(60, 1))
	cfg.Unbreakable = process(action.StageStart, action.StageEnd)
	p, state := newStatePlayer(cfg, Collaborators{})

	p.Start()
	p.Tick(0.25)
	p.Stop()

	want := []string{"start-unbreakable@0", "stop-unbreakable@15"}
	if got := state.only("unbreakable"); !reflect.DeepEqual(got, want) {
		t.Errorf("Unbreakable calls = %v, want %v", got, want)
	}
	if p.Stage() != action.StageStop || !p.Finished() {
		t.Errorf("Expected finished Stop, got %v", p.Stage())
	}
}

func TestPlayer_DedupInterval(t *testing.T) {
	w := newWorld(&dummy{id: 2, faction: 1, pos: geom.V(1, 0, 0)})
	cfg := baseConfig(processClip(120, 1))
	cfg.Default = GroupRule{Interval: 0.5}
	p := NewPlayer(cfg, &dummy{id: 1}, collaborators(w))
	ticks := hitTicks(p)

	p.Start()
	for i := 0; i < 60; i++ {
		p.Tick(1.0 / 60)
	}

	want := []int{0, 30, 60}
	if !reflect.DeepEqual(*ticks, want) {
		t.Errorf("Hit ticks = %v, want %v", *ticks, want)
	}
}

func TestPlayer_DedupIntervalLongFrame(t *testing.T) {
	w := newWorld(&dummy{id: 2, faction: 1, pos: geom.V(1, 0, 0)})
	cfg := baseConfig(processClip(120, 1))
	cfg.Default = GroupRule{Interval: 0.5}
	p := NewPlayer(cfg, &dummy{id: 1}, collaborators(w))
	ticks := hitTicks(p)

	// 一次补帧 1 秒，命中节奏应与逐帧推进相同
	p.Start()
	p.Tick(1.0)

	want := []int{0, 30, 60}
	if !reflect.DeepEqual(*ticks, want) {
		t.Errorf("Hit ticks = %v, want %v", *ticks, want)
	}
}

func TestPlayer_DedupMaximum(t *testing.T) {
	w := newWorld(
		&dummy{id: 2, faction: 1},
		&dummy{id: 3, faction: 1},
		&dummy{id: 4, faction: 1},
	)
	cfg := baseConfig(processClip(60, 1))
	cfg.Default = GroupRule{Interval: 0.1, Maximum: 2}
	p := NewPlayer(cfg, &dummy{id: 1}, collaborators(w))

	var targets []uint64
	p.OnHit(func(h Hit) { targets = append(targets, h.Target.CombatantID()) })

	p.Start()
	if !reflect.DeepEqual(targets, []uint64{2, 3}) {
		t.Fatalf("Expected the first two targets only, got %v", targets)
	}
	if p.dedup.count(1) != 2 {
		t.Errorf("Expected 2 records, got %d", p.dedup.count(1))
	}

	// 冷却结束后名额释放
	p.Tick(0.1)
	if !reflect.DeepEqual(targets, []uint64{2, 3, 2, 3}) {
		t.Errorf("Expected the group to refill after the interval, got %v", targets)
	}
}

func TestPlayer_GroupOverride(t *testing.T) {
	w := newWorld(&dummy{id: 2, faction: 1})
	c := processClip(60, 1)
	c.CollisionTrack = append(c.CollisionTrack, &clip.CollisionEntry{
		Window: clip.Window{DurationTicks: 60},
		Group:  2,
		Shape:  clip.SphereShape(geom.Vec3{}, 1),
	})
	cfg := baseConfig(c)
	cfg.Default = GroupRule{Interval: 100}
	cfg.Groups = map[int]GroupRule{2: {Interval: 0.25}}
	p := NewPlayer(cfg, &dummy{id: 1}, collaborators(w))

	counts := map[int]int{}
	p.OnHit(func(h Hit) { counts[h.Channel]++ })

	p.Start()
	for i := 0; i < 30; i++ {
		p.Tick(1.0 / 60)
	}
	if counts[1] != 1 {
		t.Errorf("Group 1 should hit once, got %d", counts[1])
	}
	if counts[2] != 3 {
		t.Errorf("Group 2 should hit at ticks 0, 15 and 30, got %d", counts[2])
	}
}

func TestPlayer_RejectsSelfAndAllies(t *testing.T) {
	attacker := &dummy{id: 1, faction: 0}
	w := newWorld(&dummy{id: 2, faction: 0}, &dummy{id: 3, faction: 1})
	w.owners[1] = attacker
	w.hits = append(w.hits, dummyCollider{id: 1})
	w.hits = append(w.hits, dummyCollider{id: 99})

	p := NewPlayer(baseConfig(processClip(60, 1)), attacker, collaborators(w))
	var targets []uint64
	p.OnHit(func(h Hit) { targets = append(targets, h.Target.CombatantID()) })

	p.Start()
	p.Tick(1)
	if !reflect.DeepEqual(targets, []uint64{3}) {
		t.Errorf("Only the enemy should be hit, got %v", targets)
	}
}

func TestPlayer_SharedGroup(t *testing.T) {
	target := &dummy{id: 9, faction: 1}

	t.Run("没有仲裁者时拒绝", func(t *testing.T) {
		w := newWorld(target)
		cfg := baseConfig(processClip(60, 7))
		cfg.SharedGroups = map[int]bool{7: true}
		p := NewPlayer(cfg, &dummy{id: 1}, collaborators(w))
		ticks := hitTicks(p)
		p.Start()
		p.Tick(1)
		if len(*ticks) != 0 {
			t.Errorf("Expected no hits without arbiter, got %v", *ticks)
		}
	})

	t.Run("同一帧只计一次", func(t *testing.T) {
		w := newWorld(target)
		arbiter := NewGroupArbiter()
		arbiter.SetCooldown(7, 0.5)

		var players []*Player
		hits := 0
		for _, id := range []uint64{1, 2} {
			cfg := baseConfig(processClip(60, 7))
			cfg.SharedGroups = map[int]bool{7: true}
			co := collaborators(w)
			co.Arbiter = arbiter
			p := NewPlayer(cfg, &dummy{id: id}, co)
			p.OnHit(func(Hit) { hits++ })
			players = append(players, p)
		}

		arbiter.BeginFrame()
		for _, p := range players {
			p.Start()
		}
		if hits != 1 {
			t.Fatalf("Expected one hit across both combos, got %d", hits)
		}

		for i := 0; i < 30; i++ {
			arbiter.BeginFrame()
			arbiter.Update(1.0 / 60)
			for _, p := range players {
				p.Tick(1.0 / 60)
			}
		}
		if hits != 2 {
			t.Errorf("Expected a second hit once the cooldown elapsed, got %d", hits)
		}
	})
}

func TestPlayer_HitDispatch(t *testing.T) {
	attacker := &dummy{id: 1, pos: geom.V(0, 1, 0), attack: 10, crit: 0.25, primary: true}
	w := newWorld(&dummy{id: 2, faction: 1, pos: geom.V(3, 5, 4)})
	cfg := baseConfig(processClip(60, 4))
	cfg.HitAudios = []HitAudio{{Clip: "hit_flesh", Volume: 1}}
	cfg.HitFreeze = HitFreeze{Duration: 0.1, TimeScale: 0.05}
	cfg.HitShake = HitShake{Amplitude: 2, Frequency: 20, Duration: 0.2, Directional: true}
	cfg.Damage = DamageParams{Fixed: 5, Multiplier: 1.5, ResourceMultiplier: 2, Type: "physical"}

	sounds := &soundLog{}
	dmg := &damageLog{}
	ts := &timeScaleLog{}
	shakes := &shakeLog{}
	co := collaborators(w)
	co.Abilities = action.Abilities{Audio: sounds}
	co.Damage = dmg
	co.TimeScale = ts
	co.CameraShake = shakes

	p := NewPlayer(cfg, attacker, co)
	p.Start()

	if !reflect.DeepEqual(sounds.clips, []string{"hit_flesh"}) {
		t.Errorf("Hit audio = %v", sounds.clips)
	}
	if len(ts.ids) != 1 || ts.ids[0] != FreezeKey(1, "slash") || ts.scales[0] != 0.05 {
		t.Errorf("Unexpected freeze commands %v %v", ts.ids, ts.scales)
	}
	if len(shakes.dirs) != 1 || math.Abs(shakes.dirs[0].X-0.6) > 1e-9 || math.Abs(shakes.dirs[0].Z-0.8) > 1e-9 {
		t.Errorf("Expected shake along (0.6, 0, 0.8), got %v", shakes.dirs)
	}
	if len(dmg.hits) != 1 {
		t.Fatalf("Expected one damage request, got %d", len(dmg.hits))
	}
	h := dmg.hits[0]
	if h.Value != 20 || h.CritRate != 0.25 || h.ResourceMultiplier != 2 || h.Channel != 4 {
		t.Errorf("Unexpected hit %+v", h)
	}
	if h.Method != "sword" || h.Type != "physical" {
		t.Errorf("Unexpected method/type %q/%q", h.Method, h.Type)
	}
	if h.Direction.Y != 0 || math.Abs(h.Direction.Len()-1) > 1e-9 {
		t.Errorf("Direction should be a horizontal unit vector, got %v", h.Direction)
	}
}

func TestPlayer_ShakeIsOmnidirectionalWithoutPlayer(t *testing.T) {
	w := newWorld(&dummy{id: 2, faction: 1, pos: geom.V(3, 0, 4)})
	cfg := baseConfig(processClip(60, 1))
	cfg.HitShake = HitShake{Amplitude: 1, Directional: true}
	shakes := &shakeLog{}
	co := collaborators(w)
	co.CameraShake = shakes

	p := NewPlayer(cfg, &dummy{id: 1}, co)
	p.Start()
	if len(shakes.dirs) != 1 || shakes.dirs[0] != (geom.Vec3{}) {
		t.Errorf("Expected one omnidirectional shake, got %v", shakes.dirs)
	}
}

func TestPlayer_LoopClearsHistory(t *testing.T) {
	w := newWorld(&dummy{id: 2, faction: 1})
	c := &clip.Clip{
		Name:          "spin",
		FrameRate:     10,
		DurationTicks: 10,
		Process:       clip.Process{AnticipationTick: 2, JudgmentTick: 4, RecoveryTick: 8},
		CollisionTrack: []*clip.CollisionEntry{{
			Window: clip.Window{DurationTicks: 10},
			Group:  1,
			Shape:  clip.SphereShape(geom.Vec3{}, 1),
		}},
	}
	cfg := baseConfig(c)
	cfg.Loop = true
	p := NewPlayer(cfg, &dummy{id: 1}, collaborators(w))
	ticks := hitTicks(p)

	p.Start()
	p.Tick(1.5)

	if !reflect.DeepEqual(*ticks, []int{0, 0}) {
		t.Errorf("Expected one hit per loop, got %v", *ticks)
	}
	if p.Finished() {
		t.Error("Looping combo should not finish on its own")
	}
	p.Stop()
	if !p.Finished() || p.dedup.count(1) != 0 {
		t.Error("Stop should finish the combo and clear its hit history")
	}
}
