package action

import (
	"log"
	"math"
	"math/rand/v2"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/pkg/probe"
	"github.com/google/uuid"
)

// tickEpsilon 吸收时间换算 tick 时的浮点误差，保证 time = n*tickDuration 落在第 n 个 tick
const tickEpsilon = 1e-9

// StageListener 每次阶段切换成功后调用
type StageListener func(prev, next Stage)

// EventListener 处理到事件所在 tick 时调用
type EventListener func(ev *clip.EventEntry)

// CollisionListener 接收探针报告的每次重叠
type CollisionListener func(entry *clip.CollisionEntry, c probe.Collider)

// TickListener 在 Tick 推进的每个 tick 检查之前调用
// elapsed 为上一个 tick 到本 tick 的片段时间
type TickListener func(tick int, elapsed float64)

// Config 播放器配置
type Config struct {
	// Loop 到达最后一个 tick 时从头播放
	Loop bool

	// Abilities 可选的角色能力
	Abilities Abilities

	// 碰撞轨道需要 ProbeHost 和 ProbeOwner 才会运行
	ProbeHost  probe.Host
	ProbeOwner probe.Owner
	// CollisionMask 传给每次探针查询
	CollisionMask probe.LayerMask

	// Seed 音效随机器的种子
	Seed uint64
}

// Player 播放一个动作片段实例
//
// 所有方法都必须在所有者的更新循环中调用，Player 不支持并发访问。
type Player struct {
	id           string
	clip         *clip.Clip
	cfg          Config
	tickDuration float64

	tick  int
	time  float64
	stage Stage

	tracks trackState
	rng    *rand.Rand

	stageListeners     []StageListener
	eventListeners     []EventListener
	namedListeners     map[string][]EventListener
	collisionListeners []CollisionListener
	tickListeners      []TickListener
}

// NewPlayer 为 c 创建一个空闲的播放器
func NewPlayer(c *clip.Clip, cfg Config) *Player {
	p := &Player{
		id:             uuid.NewString(),
		clip:           c,
		cfg:            cfg,
		tracks:         newTrackState(),
		rng:            rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		namedListeners: make(map[string][]EventListener),
	}
	if c != nil {
		p.tickDuration = c.TickDuration()
	}
	if p.tickDuration <= 0 {
		log.Printf("[ActionPlayer] Warning: clip %s has no usable frame rate, playback disabled", p.clipName())
	}
	return p
}

// ID 返回本次播放的唯一 ID
func (p *Player) ID() string { return p.id }

// Clip 返回正在播放的片段
func (p *Player) Clip() *clip.Clip { return p.clip }

// Loop 是否循环播放
func (p *Player) Loop() bool { return p.cfg.Loop }

// Stage 返回当前阶段
func (p *Player) Stage() Stage { return p.stage }

// CurrentTick 返回最后处理的 tick
func (p *Player) CurrentTick() int { return p.tick }

// CurrentTime 返回自上次（重新）开始以来的播放时间（秒）
func (p *Player) CurrentTime() float64 { return p.time }

// OnStageChanged 注册阶段监听器
func (p *Player) OnStageChanged(l StageListener) {
	p.stageListeners = append(p.stageListeners, l)
}

// OnEvents 注册所有事件的监听器
func (p *Player) OnEvents(l EventListener) {
	p.eventListeners = append(p.eventListeners, l)
}

// OnEvent 注册名为 name 的事件监听器
func (p *Player) OnEvent(name string, l EventListener) {
	p.namedListeners[name] = append(p.namedListeners[name], l)
}

// OnCollision 注册探针重叠监听器
func (p *Player) OnCollision(l CollisionListener) {
	p.collisionListeners = append(p.collisionListeners, l)
}

// OnTickAdvanced 注册 tick 监听器，Tick 每推进一个 tick 调用一次，补帧的 tick 也包括在内
func (p *Player) OnTickAdvanced(l TickListener) {
	p.tickListeners = append(p.tickListeners, l)
}

// ActiveProbes 按片段顺序返回生效中的探针
func (p *Player) ActiveProbes() []*probe.Probe {
	if p.clip == nil {
		return nil
	}
	var out []*probe.Probe
	for _, e := range p.clip.CollisionTrack {
		if pr, ok := p.tracks.probes[e]; ok {
			out = append(out, pr)
		}
	}
	return out
}

// Start 从 tick 0 开始播放（循环时为重新开始）
//
// 已经开始的非循环播放器会忽略 Start，被打断的播放器保持打断状态。
func (p *Player) Start() {
	if !p.cfg.Loop && p.stage >= StageStart {
		return
	}
	if p.stage == StageStop || p.tickDuration <= 0 {
		return
	}

	p.tick = 0
	p.time = 0
	p.clearTracks()
	p.setStage(StageStart)
	p.checkTimeline(0)
}

// Tick 推进 dt 秒
//
// dt 跨越多个 tick 时，按顺序对每个中间 tick 做完整的时间轴检查后再结转剩余时间，
// 阶段切换和事件都不会被跳过。循环片段到达最后一个 tick 时原地重新开始，
// 并继续消耗剩余时间。
func (p *Player) Tick(dt float64) {
	if dt <= 0 || p.tickDuration <= 0 {
		return
	}

	for {
		if p.stage == StageIdle {
			return
		}
		if p.stage >= StageEnd && !(p.cfg.Loop && p.stage == StageEnd) {
			return
		}

		total := p.time + dt
		newTick := int(math.Floor(total/p.tickDuration + tickEpsilon))
		if newTick <= p.tick {
			p.time = total
			return
		}

		next := p.tick + 1
		nextTime := float64(next) * p.tickDuration
		dt = math.Max(0, total-nextTime)
		p.tick = next
		p.time = nextTime

		for _, l := range p.tickListeners {
			l(next, p.tickDuration)
		}
		p.checkTimeline(next)
		if p.cfg.Loop && p.stage == StageEnd {
			p.Start()
		}
	}
}

// Stop 打断播放，已经结束的播放不受影响
func (p *Player) Stop() {
	if p.stage.Terminal() {
		return
	}
	p.setStage(StageStop)
}

// setStage 按单调递增规则（循环除外）切换阶段并通知监听器
// 进入终止阶段前先释放所有轨道实例
func (p *Player) setStage(next Stage) bool {
	if !CanTransition(p.stage, next, p.cfg.Loop) {
		return false
	}
	prev := p.stage
	p.stage = next
	log.Printf("[ActionPlayer] %s: %v -> %v (tick %d)", p.clipName(), prev, next, p.tick)

	if next.Terminal() {
		p.clearTracks()
	}
	for _, l := range p.stageListeners {
		l(prev, next)
	}
	return true
}

// checkTimeline 按固定顺序执行单个 tick 的检查:
// 阶段推进、动画槽、区间轨道、事件、片段结束
func (p *Player) checkTimeline(tick int) {
	p.promoteProcess(tick)
	if p.interrupted() {
		return
	}
	p.updateAnimation(tick)
	p.updateAudio(tick)
	p.updateEffects(tick)
	p.updateCollisions(tick)
	if p.interrupted() {
		return
	}
	p.fireEvents(tick)
	if p.interrupted() {
		return
	}
	if tick >= p.clip.DurationTicks {
		p.setStage(StageEnd)
	}
}

// interrupted 监听器是否在检查中途停止了播放
func (p *Player) interrupted() bool {
	return p.stage == StageStop
}

func (p *Player) promoteProcess(tick int) {
	proc := p.clip.Process
	if tick >= proc.AnticipationTick {
		p.setStage(StageAnticipation)
	}
	if tick >= proc.JudgmentTick {
		p.setStage(StageJudgment)
	}
	if tick >= proc.RecoveryTick {
		p.setStage(StageRecovery)
	}
}

// updateAnimation 让动画槽停在起始 tick 不晚于 tick 的最后一个条目上
func (p *Player) updateAnimation(tick int) {
	var best *clip.AnimationEntry
	for _, e := range p.clip.AnimationTrack {
		if e.StartTick <= tick && (best == nil || e.StartTick >= best.StartTick) {
			best = e
		}
	}
	if best == nil || best == p.tracks.animation {
		return
	}

	p.tracks.animation = best
	anim := p.cfg.Abilities.Animation
	if anim == nil {
		return
	}
	handle := anim.PlayAction(best.Transition)
	if handle != nil {
		handle.SetSpeed(best.Speed)
	}
	p.tracks.animationHandle = handle
}

func (p *Player) updateAudio(tick int) {
	audio := p.cfg.Abilities.Audio
	if audio == nil {
		return
	}
	windowed(p.clip.AudioTrack, audioWindow, p.tracks.sounds, tick,
		func(e *clip.AudioEntry) int {
			name, volume := p.resolveAudio(e)
			return audio.PlaySound(name, false, volume)
		},
		func(_ *clip.AudioEntry, id int) {
			if id != 0 {
				audio.StopSound(id)
			}
		})
}

func (p *Player) updateEffects(tick int) {
	fx := p.cfg.Abilities.Effect
	if fx == nil {
		return
	}
	windowed(p.clip.EffectTrack, effectWindow, p.tracks.effects, tick,
		func(e *clip.EffectEntry) int {
			return fx.AddEffect(e.Prefab, e.LocalTransform, EffectLifetime{
				Kind:            e.Kind,
				StartLifetime:   e.StartLifetime,
				SimulationSpeed: e.SimSpeed,
				Duration:        float64(e.EndTick()-e.StartTick) * p.tickDuration,
			})
		},
		func(_ *clip.EffectEntry, id int) {
			if id != 0 {
				fx.RemoveEffect(id)
			}
		})
}

func (p *Player) updateCollisions(tick int) {
	if p.cfg.ProbeHost == nil {
		return
	}
	windowed(p.clip.CollisionTrack, collisionWindow, p.tracks.probes, tick,
		func(e *clip.CollisionEntry) *probe.Probe {
			pr := probe.New(e.Shape, p.cfg.ProbeOwner, p.cfg.ProbeHost, p.cfg.CollisionMask)
			pr.Init(p.collisionCallback(e))
			return pr
		},
		func(_ *clip.CollisionEntry, pr *probe.Probe) {
			pr.Destroy()
		})

	for _, e := range p.clip.CollisionTrack {
		if pr, ok := p.tracks.probes[e]; ok {
			pr.Tick(p.collisionCallback(e))
			if p.interrupted() {
				return
			}
		}
	}
}

func (p *Player) collisionCallback(e *clip.CollisionEntry) func(probe.Collider) {
	return func(c probe.Collider) {
		if p.stage.Terminal() {
			return
		}
		for _, l := range p.collisionListeners {
			l(e, c)
		}
	}
}

func (p *Player) fireEvents(tick int) {
	for _, ev := range p.clip.EventTrack {
		if ev.Tick != tick {
			continue
		}
		for _, l := range p.eventListeners {
			l(ev)
		}
		for _, l := range p.namedListeners[ev.Name] {
			l(ev)
		}
		if p.interrupted() {
			return
		}
	}
}

// clearTracks 释放动画槽、音效、特效和探针
// 终止阶段和（重新）开始都会调用
func (p *Player) clearTracks() {
	if p.tracks.animationHandle != nil && p.cfg.Abilities.Animation != nil {
		p.cfg.Abilities.Animation.StopAction(p.tracks.animationHandle)
	}
	p.tracks.animation = nil
	p.tracks.animationHandle = nil

	if p.clip != nil {
		for _, e := range p.clip.AudioTrack {
			if id, ok := p.tracks.sounds[e]; ok && id != 0 && p.cfg.Abilities.Audio != nil {
				p.cfg.Abilities.Audio.StopSound(id)
			}
		}
		for _, e := range p.clip.EffectTrack {
			if id, ok := p.tracks.effects[e]; ok && id != 0 && p.cfg.Abilities.Effect != nil {
				p.cfg.Abilities.Effect.RemoveEffect(id)
			}
		}
		for _, e := range p.clip.CollisionTrack {
			if pr, ok := p.tracks.probes[e]; ok {
				pr.Destroy()
			}
		}
	}
	p.tracks = newTrackState()
}

// resolveAudio 选出音频条目的音效和音量，有随机器时随机选取
func (p *Player) resolveAudio(e *clip.AudioEntry) (string, float64) {
	r := e.Randomizer
	if r == nil || len(r.Clips) == 0 {
		return e.Clip, e.Volume
	}
	name := r.Clips[p.rng.IntN(len(r.Clips))]
	volume := e.Volume
	if r.VolumeJitter > 0 {
		volume *= 1 + (p.rng.Float64()*2-1)*r.VolumeJitter
	}
	return name, math.Max(0, volume)
}

func (p *Player) clipName() string {
	if p.clip == nil {
		return "<nil>"
	}
	return p.clip.Name
}

func audioWindow(e *clip.AudioEntry) clip.Window         { return e.Window }
func effectWindow(e *clip.EffectEntry) clip.Window       { return e.Window }
func collisionWindow(e *clip.CollisionEntry) clip.Window { return e.Window }
