package combo

import (
	"log"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/probe"
)

// Player 播放一个连招：动作片段播放加上战斗语义
//
// 与 action.Player 一样只能在单个更新循环中驱动。
type Player struct {
	cfg      *Config
	attacker Combatant
	co       Collaborators

	action *action.Player
	stage  action.Stage

	dedup       *dedupTable
	endure      buffWindow
	unbreakable buffWindow

	hitListeners []func(Hit)
}

// NewPlayer 为 attacker 创建空闲的连招播放器
// 窗口配置在这里校验，问题只记录日志并自动修正，不返回错误。
func NewPlayer(cfg *Config, attacker Combatant, co Collaborators) *Player {
	p := &Player{
		cfg:      cfg,
		attacker: attacker,
		co:       co,
		dedup:    newDedupTable(),
	}
	p.action = action.NewPlayer(cfg.Clip, action.Config{
		Loop:          cfg.Loop,
		Abilities:     co.Abilities,
		ProbeHost:     co.ProbeHost,
		ProbeOwner:    co.ProbeOwner,
		CollisionMask: co.CollisionMask,
		Seed:          attacker.CombatantID(),
	})

	p.endure = resolveWindow("endure", cfg.Name, cfg.Endure, cfg.Clip,
		func() { p.startState(true) }, func() { p.stopState(true) })
	p.unbreakable = resolveWindow("unbreakable", cfg.Name, cfg.Unbreakable, cfg.Clip,
		func() { p.startState(false) }, func() { p.stopState(false) })

	p.action.OnStageChanged(p.onActionStage)
	p.action.OnTickAdvanced(p.onTickAdvanced)
	p.endure.bind(p.action)
	p.unbreakable.bind(p.action)
	p.action.OnCollision(p.onOverlap)
	return p
}

// ID 返回播放实例 ID
func (p *Player) ID() string { return p.action.ID() }

// Name 返回连招名称
func (p *Player) Name() string { return p.cfg.Name }

// Config 返回连招配置
func (p *Player) Config() *Config { return p.cfg }

// Attacker 返回出招的角色
func (p *Player) Attacker() Combatant { return p.attacker }

// Stage 返回连招阶段
func (p *Player) Stage() action.Stage { return p.stage }

// Action 返回底层的片段播放器
func (p *Player) Action() *action.Player { return p.action }

// Finished 判断连招是否已结束或被打断，循环连招只有被打断才算结束
func (p *Player) Finished() bool {
	if p.stage == action.StageStop {
		return true
	}
	return p.stage == action.StageEnd && !p.cfg.Loop
}

// OnHit 注册有效命中监听器，在反馈分发之后调用
func (p *Player) OnHit(fn func(Hit)) {
	p.hitListeners = append(p.hitListeners, fn)
}

func (p *Player) Start() { p.action.Start() }

// Tick 推进 dt 秒
// 命中历史在补帧循环中逐 tick 老化，一次长帧与多次短帧的节流结果相同。
func (p *Player) Tick(dt float64) { p.action.Tick(dt) }

// onTickAdvanced 在本 tick 的探针查询之前老化命中历史
func (p *Player) onTickAdvanced(_ int, elapsed float64) {
	p.dedup.update(elapsed)
}

func (p *Player) Stop() { p.action.Stop() }

// onActionStage 同步播放阶段并驱动霸体与不破窗口
func (p *Player) onActionStage(_, next action.Stage) {
	if !action.CanTransition(p.stage, next, p.cfg.Loop) {
		return
	}
	p.stage = next

	p.endure.onStage(next)
	p.unbreakable.onStage(next)

	if next.Terminal() {
		p.dedup.clear()
		p.stopState(true)
		p.stopState(false)
	}
}

func (p *Player) startState(endure bool) {
	if p.co.State == nil {
		return
	}
	if endure {
		log.Printf("[ComboPlayer] %s: endure on", p.cfg.Name)
		p.co.State.StartEndure(p.cfg.Name, infinite)
		return
	}
	log.Printf("[ComboPlayer] %s: unbreakable on", p.cfg.Name)
	p.co.State.StartUnbreakable(p.cfg.Name, infinite)
}

func (p *Player) stopState(endure bool) {
	if p.co.State == nil {
		return
	}
	if endure {
		p.co.State.StopEndure(p.cfg.Name)
		return
	}
	p.co.State.StopUnbreakable(p.cfg.Name)
}

// onOverlap 过滤一次探针重叠，通过时作为命中分发
func (p *Player) onOverlap(entry *clip.CollisionEntry, c probe.Collider) {
	if p.co.Targets == nil {
		return
	}
	target, ok := p.co.Targets.ResolveTarget(c)
	if !ok || target == nil {
		return
	}
	if target.CombatantID() == p.attacker.CombatantID() || target.Faction() == p.attacker.Faction() {
		return
	}

	group := entry.Group
	if p.cfg.Shared(group) {
		if p.co.Arbiter == nil || !p.co.Arbiter.TryClaim(group, c) {
			return
		}
	} else if !p.dedup.tryAdd(group, target.CombatantID(), p.cfg.Rule(group)) {
		return
	}

	p.applyHit(group, target, c)
}
