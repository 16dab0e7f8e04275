// verify_combo - 连招验证程序
// 加载连招库与演示场景，在无界面的战斗世界中逐个播放连招并检查
// 阶段顺序、命中、命中节流、霸体/不破防窗口和结束清理
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/decker502/actioncombo/pkg/action"
	"github.com/decker502/actioncombo/pkg/combo"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/config"
	"github.com/decker502/actioncombo/pkg/ecs"
	"github.com/decker502/actioncombo/pkg/game"
	"github.com/decker502/actioncombo/pkg/systems"
)

var (
	dataDir   = flag.String("data", "data", "数据目录（包含 combos/、clips/ 与场景文件）")
	comboDir  = flag.String("combos", "combos", "连招配置目录，相对于数据目录")
	arenaFile = flag.String("arena", "arena.yaml", "演示场景文件，相对于数据目录")
	comboName = flag.String("combo", "", "只验证指定的连招（默认全部）")
	loops     = flag.Int("loops", 2, "循环连招播放的轮数")
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
)

// ========== 验证报告结构 ==========

type ValidationReport struct {
	TestName string
	Passed   bool
	Message  string
}

var validationReports []ValidationReport

func addReport(testName string, passed bool, message string) {
	validationReports = append(validationReports, ValidationReport{
		TestName: testName,
		Passed:   passed,
		Message:  message,
	})
	status := "✗ FAIL"
	if passed {
		status = "✓ PASS"
	}
	fmt.Printf("%s | %-36s | %s\n", status, testName, message)
}

func printFinalReport() int {
	fmt.Println("\n========================================")
	fmt.Println("         验证报告摘要")
	fmt.Println("========================================")

	passCount := 0
	for _, r := range validationReports {
		if r.Passed {
			passCount++
		}
	}
	fmt.Printf("总计: %d 通过, %d 失败\n", passCount, len(validationReports)-passCount)
	if passCount == len(validationReports) {
		fmt.Println("所有验证通过")
	} else {
		fmt.Println("部分验证失败")
	}
	fmt.Println("========================================")
	return len(validationReports) - passCount
}

// ========== 单个连招的模拟 ==========

type hitRecord struct {
	at     float64 // 战斗时间（秒，已按时间缩放）
	group  int
	target uint64
}

// playback 记录一次连招播放中观察到的现象
type playback struct {
	stages      []action.Stage
	hits        []hitRecord
	endure      bool
	unbreakable bool
	froze       bool
	residual    []string
}

func (pb *playback) observeStage(s action.Stage) {
	if n := len(pb.stages); n == 0 || pb.stages[n-1] != s {
		pb.stages = append(pb.stages, s)
	}
}

func (pb *playback) stageNames() string {
	names := make([]string, len(pb.stages))
	for i, s := range pb.stages {
		names[i] = s.String()
	}
	return strings.Join(names, " → ")
}

// newBattle 按场景配置生成战斗世界，返回攻击者（主角或第一个角色）
func newBattle(lib *config.ComboConfigManager, arena *config.ArenaConfig) (*game.Battle, ecs.EntityID) {
	b := game.NewBattle(game.BattleOptions{
		Library:             lib,
		Seed:                arena.Seed,
		SharedGroupCooldown: lib.GetGlobalConfig().SharedGroupCooldown,
	})
	var attacker ecs.EntityID
	for i := range arena.Fighters {
		spec := arena.Fighters[i].Spec()
		id := b.SpawnFighter(spec)
		if attacker == 0 || spec.Primary {
			attacker = id
		}
	}
	return b, attacker
}

// simulate 在新的战斗世界里播放一次连招
func simulate(lib *config.ComboConfigManager, arena *config.ArenaConfig, cfg *combo.Config, tps int) (*playback, error) {
	b, attacker := newBattle(lib, arena)
	p := b.Combos.Play(attacker, cfg)
	if p == nil {
		return nil, fmt.Errorf("攻击者无法出招")
	}

	pb := &playback{}
	pb.observeStage(p.Stage())
	p.Action().OnStageChanged(func(_, next action.Stage) { pb.observeStage(next) })
	combatTime := 0.0
	p.OnHit(func(h combo.Hit) {
		pb.hits = append(pb.hits, hitRecord{at: combatTime, group: h.Channel, target: h.Target.CombatantID()})
	})

	dt := 1.0 / float64(tps)
	clipSeconds := float64(cfg.Clip.DurationTicks) / float64(cfg.Clip.FrameRate)
	budget := clipSeconds*4 + 1
	if cfg.Loop {
		budget = clipSeconds * float64(max(*loops, 1))
	}

	freezeKey := combo.FreezeKey(uint64(attacker), cfg.Name)
	for elapsed := 0.0; elapsed < budget && !p.Finished(); elapsed += dt {
		scale := b.TimeScale.Scale()
		b.Update(dt)
		combatTime += dt * scale

		if st, ok := ecs.GetComponent[*components.StatusComponent](b.EntityManager, attacker); ok {
			pb.endure = pb.endure || st.Enduring()
			pb.unbreakable = pb.unbreakable || st.IsUnbreakable()
		}
		pb.froze = pb.froze || b.TimeScale.Active(freezeKey)
	}
	if !p.Finished() {
		b.Combos.Interrupt(attacker)
	}
	b.Update(dt)

	if st, ok := ecs.GetComponent[*components.StatusComponent](b.EntityManager, attacker); ok {
		if st.Enduring() {
			pb.residual = append(pb.residual, "霸体")
		}
		if st.IsUnbreakable() {
			pb.residual = append(pb.residual, "不破防")
		}
	}
	if n := len(p.Action().ActiveProbes()); n > 0 {
		pb.residual = append(pb.residual, fmt.Sprintf("%d 个探针", n))
	}
	if b.Combos.Current(attacker) != nil {
		pb.residual = append(pb.residual, "连招组件")
	}
	return pb, nil
}

// ========== 验证函数 ==========

// validateStages 阶段只能递增，循环连招允许 End → Start
func validateStages(cfg *combo.Config, pb *playback) {
	name := cfg.Name + ": 阶段顺序"
	for i := 1; i < len(pb.stages); i++ {
		if !action.CanTransition(pb.stages[i-1], pb.stages[i], cfg.Loop) {
			addReport(name, false, "非法切换 "+pb.stageNames())
			return
		}
	}
	last := pb.stages[len(pb.stages)-1]
	if !last.Terminal() {
		addReport(name, false, fmt.Sprintf("未结束，停在 %s", last))
		return
	}
	addReport(name, true, pb.stageNames())
}

func validateHits(cfg *combo.Config, pb *playback) {
	name := cfg.Name + ": 命中"
	if len(cfg.Clip.CollisionTrack) == 0 {
		addReport(name, true, "无碰撞轨道")
		return
	}
	targets := make(map[uint64]bool)
	for _, h := range pb.hits {
		targets[h.target] = true
	}
	addReport(name, len(pb.hits) > 0, fmt.Sprintf("%d 次命中，%d 个目标", len(pb.hits), len(targets)))
}

// validateThrottle 同一组对同一目标的两次命中间隔不能小于组间隔
// 允许一帧误差；循环连招每轮会清空记录，只检查单轮内的间隔
func validateThrottle(cfg *combo.Config, pb *playback, tps int) {
	name := cfg.Name + ": 命中节流"
	if len(pb.hits) == 0 {
		addReport(name, true, "无命中")
		return
	}
	slack := 1.0 / float64(tps)
	roundLength := math.Inf(1)
	if cfg.Loop {
		roundLength = float64(cfg.Clip.DurationTicks) / float64(cfg.Clip.FrameRate)
	}

	type key struct {
		group  int
		target uint64
	}
	last := make(map[key]float64)
	minGap := math.Inf(1)
	for _, h := range pb.hits {
		k := key{h.group, h.target}
		prev, seen := last[k]
		last[k] = h.at
		if !seen || math.Floor(prev/roundLength) != math.Floor(h.at/roundLength) {
			continue
		}
		gap := h.at - prev
		minGap = min(minGap, gap)
		if interval := cfg.Rule(h.group).Interval; gap+slack < interval {
			addReport(name, false, fmt.Sprintf("组 %d 目标 %d 间隔 %.3fs < %.3fs", h.group, h.target, gap, interval))
			return
		}
	}
	if math.IsInf(minGap, 1) {
		addReport(name, true, "每个目标只命中一次")
		return
	}
	addReport(name, true, fmt.Sprintf("最小间隔 %.3fs", minGap))
}

func validateWindow(cfg *combo.Config, kind string, w combo.WindowConfig, observed bool) {
	name := fmt.Sprintf("%s: %s窗口", cfg.Name, kind)
	if w.Mode == combo.WindowNone {
		addReport(name, !observed, "未配置")
		return
	}
	state := "播放中已开启"
	if !observed {
		state = "播放中未开启"
	}
	addReport(name, observed, fmt.Sprintf("%s 模式，%s", w.Mode, state))
}

func validateFreeze(cfg *combo.Config, pb *playback) {
	if cfg.HitFreeze.Duration <= 0 || len(pb.hits) == 0 {
		return
	}
	addReport(cfg.Name+": 顿帧", pb.froze, fmt.Sprintf("%.2fs × %.2f", cfg.HitFreeze.Duration, cfg.HitFreeze.TimeScale))
}

func validateCleanup(cfg *combo.Config, pb *playback) {
	name := cfg.Name + ": 结束清理"
	if len(pb.residual) > 0 {
		addReport(name, false, "残留 "+strings.Join(pb.residual, ", "))
		return
	}
	addReport(name, true, "状态、探针与组件均已清理")
}

// validateArena 完整运行场景脚本
func validateArena(lib *config.ComboConfigManager, arena *config.ArenaConfig, tps int) {
	b, _ := newBattle(lib, arena)
	b.Schedule(arena.Steps()...)

	hits := 0
	b.Damage.OnDamage(func(systems.DamageEvent) { hits++ })

	dt := 1.0 / float64(tps)
	for b.Elapsed() < arena.RunTime() {
		b.Update(dt)
	}

	addReport("场景: 脚本执行", b.Pending() == 0, fmt.Sprintf("%d 步，剩余 %d 步", len(arena.Script), b.Pending()))
	addReport("场景: 伤害结算", hits > 0, fmt.Sprintf("共结算 %d 次伤害", hits))
	for _, id := range b.Fighters() {
		cc, _ := ecs.GetComponent[*components.CombatantComponent](b.EntityManager, id)
		hp, _ := ecs.GetComponent[*components.HealthComponent](b.EntityManager, id)
		log.Printf("[verify_combo] %s: %.1f / %.1f", cc.Name, hp.Current, hp.Max)
	}
}

func main() {
	flag.Parse()

	if *verbose {
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime)
	} else {
		log.SetOutput(io.Discard)
	}

	fmt.Println("====== 连招系统验证 ======")
	fsys := os.DirFS(*dataDir)

	lib, err := config.NewComboConfigManager(fsys, *comboDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载连招库失败: %v\n", err)
		os.Exit(2)
	}
	arena, err := config.LoadArenaConfig(fsys, *arenaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载场景失败: %v\n", err)
		os.Exit(2)
	}
	tps := lib.GetGlobalConfig().Playback.TPS

	names := lib.ListCombos()
	if *comboName != "" {
		names = []string{*comboName}
	}
	for _, name := range names {
		cfg, err := lib.GetCombo(name)
		if err != nil {
			addReport(name, false, err.Error())
			continue
		}
		fmt.Printf("\n>>> %s (%s, %d ticks @ %dfps)\n", name, cfg.Clip.Name, cfg.Clip.DurationTicks, cfg.Clip.FrameRate)

		pb, err := simulate(lib, arena, cfg, tps)
		if err != nil {
			addReport(name+": 出招", false, err.Error())
			continue
		}
		validateStages(cfg, pb)
		validateHits(cfg, pb)
		validateThrottle(cfg, pb, tps)
		validateWindow(cfg, "霸体", cfg.Endure, pb.endure)
		validateWindow(cfg, "不破防", cfg.Unbreakable, pb.unbreakable)
		validateFreeze(cfg, pb)
		validateCleanup(cfg, pb)
	}

	if *comboName == "" {
		fmt.Printf("\n>>> 场景 %s\n", arena.Name)
		validateArena(lib, arena, tps)
	}

	if failed := printFinalReport(); failed > 0 {
		os.Exit(1)
	}
}
