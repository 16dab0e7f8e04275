package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/decker502/actioncombo/internal/clip"
	"github.com/decker502/actioncombo/internal/geom"
	"github.com/decker502/actioncombo/pkg/components"
	"github.com/decker502/actioncombo/pkg/config"
	"github.com/decker502/actioncombo/pkg/ecs"
	"github.com/decker502/actioncombo/pkg/embedded"
	"github.com/decker502/actioncombo/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/quasilyte/gdata/v2"
)

const (
	screenWidth  = 960
	screenHeight = 640
)

var (
	verbose   = flag.Bool("verbose", false, "显示详细调试信息")
	arenaPath = flag.String("arena", "arena.yaml", "演示场景文件，相对于嵌入的 data 目录")
)

var comboKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

var (
	colorBackground = color.RGBA{R: 28, G: 30, B: 36, A: 255}
	colorGrid       = color.RGBA{R: 44, G: 47, B: 56, A: 255}
	colorProbe      = color.RGBA{R: 255, G: 196, B: 0, A: 255}
	colorWeapon     = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	colorFacing     = color.RGBA{R: 255, G: 255, B: 255, A: 160}
	factionColors   = []color.RGBA{
		{R: 80, G: 160, B: 255, A: 255},
		{R: 240, G: 90, B: 80, A: 255},
		{R: 120, G: 220, B: 120, A: 255},
	}
)

// Showcase 连招调试展示：俯视图显示碰撞体、生效中的探针和受击闪白
type Showcase struct {
	library  *config.ComboConfigManager
	arena    *config.ArenaConfig
	audio    *game.AudioManager
	settings *game.SettingsManager

	battle *game.Battle
	combos []string
	hero   ecs.EntityID
}

// NewShowcase 加载嵌入的连招库和演示场景
func NewShowcase(ctx *audio.Context, settings *game.SettingsManager) (*Showcase, error) {
	library, err := config.NewEmbeddedComboConfigManager("data/combos")
	if err != nil {
		return nil, fmt.Errorf("failed to load combo library: %w", err)
	}
	data, err := embedded.Sub("data")
	if err != nil {
		return nil, err
	}
	arena, err := config.LoadArenaConfig(data, *arenaPath)
	if err != nil {
		return nil, err
	}

	am := game.NewAudioManager(ctx, data, "audio")
	if err := am.Preload(library.Sounds()); err != nil {
		log.Printf("[Showcase] Warning: %v", err)
	}
	settings.ApplyAudio(am)

	s := &Showcase{
		library:  library,
		arena:    arena,
		audio:    am,
		settings: settings,
		combos:   library.ListCombos(),
	}
	s.restart()
	return s, nil
}

// restart 重新生成场景并从头执行脚本
func (s *Showcase) restart() {
	s.battle = game.NewBattle(game.BattleOptions{
		Library:             s.library,
		Audio:               s.audio,
		Seed:                s.arena.Seed,
		SharedGroupCooldown: s.library.GetGlobalConfig().SharedGroupCooldown,
	})
	s.hero = 0
	for i := range s.arena.Fighters {
		spec := s.arena.Fighters[i].Spec()
		id := s.battle.SpawnFighter(spec)
		if s.hero == 0 || spec.Primary {
			s.hero = id
		}
	}
	s.battle.Schedule(s.arena.Steps()...)
	log.Printf("[Showcase] Arena %s started with %d fighters", s.arena.Name, len(s.arena.Fighters))
}

func (s *Showcase) Update() error {
	s.handleInput()
	s.battle.Update(1 / float64(ebiten.TPS()))
	return nil
}

func (s *Showcase) handleInput() {
	queue := ebiten.IsKeyPressed(ebiten.KeyShift)
	for i, name := range s.combos {
		if i >= len(comboKeys) || !inpututil.IsKeyJustPressed(comboKeys[i]) {
			continue
		}
		if queue {
			s.battle.Combos.Queue(s.hero, name)
		} else {
			s.battle.Combos.PlayByName(s.hero, name)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		s.restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		s.battle.Combos.Interrupt(s.hero)
	}

	cfg := s.settings.GetSettings()
	changed := true
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		s.settings.ToggleColliders()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		s.settings.ToggleProbes()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		s.settings.SetZoom(cfg.Zoom * 1.25)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		s.settings.SetZoom(cfg.Zoom / 1.25)
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		s.settings.SetSoundEnabled(!cfg.SoundEnabled)
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		s.settings.SetSoundVolume(cfg.SoundVolume + 0.1)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		s.settings.SetSoundVolume(cfg.SoundVolume - 0.1)
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		s.settings.SetFullscreen(!cfg.Fullscreen)
		ebiten.SetFullscreen(cfg.Fullscreen)
	default:
		changed = false
	}
	if changed {
		s.settings.ApplyAudio(s.audio)
		if err := s.settings.Save(); err != nil {
			log.Printf("[Showcase] Warning: %v", err)
		}
	}
}

// view 把世界坐标（X 向右，Z 向上）换算为屏幕坐标
type view struct {
	origin geom.Vec3
	zoom   float64
}

func (v view) point(p geom.Vec3) (float32, float32) {
	x := screenWidth/2 + (p.X-v.origin.X)*v.zoom
	y := screenHeight/2 - (p.Z-v.origin.Z)*v.zoom
	return float32(x), float32(y)
}

func (v view) length(l float64) float32 { return float32(l * v.zoom) }

func (v view) line(dst *ebiten.Image, a, b geom.Vec3, width float32, clr color.Color) {
	x0, y0 := v.point(a)
	x1, y1 := v.point(b)
	vector.StrokeLine(dst, x0, y0, x1, y1, width, clr, true)
}

func (v view) obb(dst *ebiten.Image, box geom.OBB, width float32, clr color.Color) {
	axes := box.Rotation.Axes()
	right := axes[0].Scale(box.HalfExtents.X)
	forward := axes[2].Scale(box.HalfExtents.Z)
	corners := [4]geom.Vec3{
		box.Center.Add(right).Add(forward),
		box.Center.Sub(right).Add(forward),
		box.Center.Sub(right).Sub(forward),
		box.Center.Add(right).Sub(forward),
	}
	for i := range corners {
		v.line(dst, corners[i], corners[(i+1)%4], width, clr)
	}
}

func (s *Showcase) camera() view {
	var sum geom.Vec3
	fighters := s.battle.Fighters()
	for _, id := range fighters {
		tr, _ := ecs.GetComponent[*components.TransformComponent](s.battle.EntityManager, id)
		sum = sum.Add(tr.Transform.Position)
	}
	if len(fighters) > 0 {
		sum = sum.Scale(1 / float64(len(fighters)))
	}
	shake := s.battle.CameraShake.Offset()
	return view{origin: sum.Add(shake), zoom: s.settings.GetSettings().Zoom}
}

func (s *Showcase) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	v := s.camera()
	s.drawGrid(screen, v)

	cfg := s.settings.GetSettings()
	if cfg.ShowColliders {
		s.drawColliders(screen, v)
	}
	if cfg.ShowProbes {
		s.drawProbes(screen, v)
	}
	ebitenutil.DebugPrint(screen, s.hud())
}

func (s *Showcase) drawGrid(screen *ebiten.Image, v view) {
	const extent = 20
	for i := -extent; i <= extent; i++ {
		f := float64(i)
		v.line(screen, geom.V(f, 0, -extent), geom.V(f, 0, extent), 1, colorGrid)
		v.line(screen, geom.V(-extent, 0, f), geom.V(extent, 0, f), 1, colorGrid)
	}
}

func (s *Showcase) drawColliders(screen *ebiten.Image, v view) {
	em := s.battle.EntityManager
	for _, c := range s.battle.Collision.Colliders() {
		if c.Box {
			v.obb(screen, c.OBB, 2, colorWeapon)
			continue
		}

		clr := colorWeapon
		if cc, ok := ecs.GetComponent[*components.CombatantComponent](em, c.Owner); ok && cc.Faction >= 0 {
			clr = factionColors[cc.Faction%len(factionColors)]
		}
		if hp, ok := ecs.GetComponent[*components.HealthComponent](em, c.Owner); ok && hp.Dead {
			clr.A = 80
		}
		x, y := v.point(c.Center)
		if flash, ok := ecs.GetComponent[*components.FlashEffectComponent](em, c.Owner); ok && flash.Duration > 0 {
			fade := 1 - flash.Elapsed/flash.Duration
			alpha := uint8(255 * max(0, min(1, flash.Intensity*fade)))
			vector.DrawFilledCircle(screen, x, y, v.length(c.Radius), color.RGBA{R: alpha, G: alpha, B: alpha, A: alpha}, true)
		}
		vector.StrokeCircle(screen, x, y, v.length(c.Radius), 2, clr, true)

		if tr, ok := ecs.GetComponent[*components.TransformComponent](em, c.Entity); ok {
			v.line(screen, c.Center, c.Center.Add(tr.Transform.Forward().Horizontal().Scale(c.Radius*1.4)), 2, colorFacing)
		}
	}
}

func (s *Showcase) drawProbes(screen *ebiten.Image, v view) {
	em := s.battle.EntityManager
	for _, id := range s.battle.Fighters() {
		cur := s.battle.Combos.Current(id)
		if cur == nil {
			continue
		}
		for _, p := range cur.Action().ActiveProbes() {
			shape := p.Shape()
			if shape.Kind == clip.ShapeBindToOwner {
				// 绑定型探针高亮武器碰撞体
				cc, _ := ecs.GetComponent[*components.CombatantComponent](em, id)
				for _, c := range s.battle.Collision.Colliders() {
					if c.Entity == cc.Weapon && c.Box {
						v.obb(screen, c.OBB, 4, colorProbe)
					}
				}
				continue
			}
			q, ok := p.WorldQuery()
			if !ok {
				continue
			}
			switch shape.Kind {
			case clip.ShapeBox:
				v.obb(screen, geom.OBB{Center: q.Center, HalfExtents: q.HalfExtents, Rotation: q.Rotation}, 2, colorProbe)
			case clip.ShapeSphere:
				x, y := v.point(q.Center)
				vector.StrokeCircle(screen, x, y, v.length(q.Radius), 2, colorProbe, true)
			case clip.ShapeSector:
				drawSector(screen, v, q.Center, q.Rotation, shape)
			}
		}
	}
}

// drawSector 绘制扇形探针的水平投影
func drawSector(screen *ebiten.Image, v view, center geom.Vec3, rot geom.Quat, shape clip.CollisionShape) {
	const segments = 24
	yaw := geom.YawAngle(rot.Rotate(geom.Vec3{Z: 1})) + shape.PivotAngle*math.Pi/180
	half := shape.ArcAngle * math.Pi / 360
	at := func(angle, radius float64) geom.Vec3 {
		return center.Add(geom.V(math.Sin(angle)*radius, 0, math.Cos(angle)*radius))
	}

	from, to := yaw-half, yaw+half
	v.line(screen, at(from, shape.InnerRadius), at(from, shape.OuterRadius), 2, colorProbe)
	v.line(screen, at(to, shape.InnerRadius), at(to, shape.OuterRadius), 2, colorProbe)
	for i := 0; i < segments; i++ {
		a0 := from + (to-from)*float64(i)/segments
		a1 := from + (to-from)*float64(i+1)/segments
		v.line(screen, at(a0, shape.OuterRadius), at(a1, shape.OuterRadius), 2, colorProbe)
		if shape.InnerRadius > 0 {
			v.line(screen, at(a0, shape.InnerRadius), at(a1, shape.InnerRadius), 2, colorProbe)
		}
	}
}

func (s *Showcase) hud() string {
	em := s.battle.EntityManager
	var b strings.Builder
	fmt.Fprintf(&b, "%s  t=%.2fs  scale=%.2f  TPS=%.0f\n", s.arena.Name, s.battle.Elapsed(), s.battle.TimeScale.Scale(), ebiten.ActualTPS())

	for _, id := range s.battle.Fighters() {
		cc, _ := ecs.GetComponent[*components.CombatantComponent](em, id)
		hp, _ := ecs.GetComponent[*components.HealthComponent](em, id)
		fmt.Fprintf(&b, "%-8s HP %5.1f/%-5.1f", cc.Name, hp.Current, hp.Max)
		if poise, ok := ecs.GetComponent[*components.PoiseComponent](em, id); ok {
			fmt.Fprintf(&b, " poise %4.1f", poise.Current)
		}
		if st, ok := ecs.GetComponent[*components.StatusComponent](em, id); ok {
			if st.Enduring() {
				b.WriteString(" [endure]")
			}
			if st.IsUnbreakable() {
				b.WriteString(" [unbreakable]")
			}
			if st.Staggered() {
				fmt.Fprintf(&b, " [stagger %.2f]", st.Stagger)
			}
		}
		if cur := s.battle.Combos.Current(id); cur != nil {
			fmt.Fprintf(&b, "  %s %s tick %d", cur.Name(), cur.Stage(), cur.Action().CurrentTick())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for i, name := range s.combos {
		if i >= len(comboKeys) {
			break
		}
		fmt.Fprintf(&b, "[%d] %s  ", i+1, name)
	}
	cfg := s.settings.GetSettings()
	fmt.Fprintf(&b, "\nShift+N queue  X interrupt  R restart  C colliders  P probes  +/- zoom  M sound(%v)  Up/Down volume %.1f  F fullscreen",
		cfg.SoundEnabled, cfg.SoundVolume)
	return b.String()
}

func (s *Showcase) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	embedded.Init(dataFS)

	// gdata 不可用时只使用内存中的设置
	var store *gdata.Manager
	if m, err := gdata.Open(gdata.Config{AppName: "actioncombo_showcase"}); err != nil {
		log.Printf("[Showcase] Warning: settings storage unavailable: %v", err)
	} else {
		store = m
	}
	settings := game.NewSettingsManager(store)

	showcase, err := NewShowcase(audio.NewContext(48000), settings)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("Failed to start showcase: %v", err)
	}

	ebiten.SetTPS(showcase.library.GetGlobalConfig().Playback.TPS)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("连招调试 - " + showcase.arena.Name)
	ebiten.SetFullscreen(settings.GetSettings().Fullscreen)

	if err := ebiten.RunGame(showcase); err != nil {
		log.Fatal(err)
	}
}
