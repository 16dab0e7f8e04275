package clip

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/decker502/actioncombo/internal/geom"
	"gopkg.in/yaml.v3"
)

// clipDoc 对应片段文件的 YAML 结构，由 build 转换为 Clip 并完成校验
type clipDoc struct {
	Name           string          `yaml:"name"`
	FrameRate      int             `yaml:"frame_rate"`
	DurationTicks  int             `yaml:"duration_ticks"`
	Process        processDoc      `yaml:"process"`
	AnimationTrack []animationDoc  `yaml:"animation_track,omitempty"`
	AudioTrack     []audioDoc      `yaml:"audio_track,omitempty"`
	EffectTrack    []effectDoc     `yaml:"effect_track,omitempty"`
	CollisionTrack []collisionDoc  `yaml:"collision_track,omitempty"`
	EventTrack     []eventDoc      `yaml:"event_track,omitempty"`
	Randomizers    []randomizerDoc `yaml:"randomizers,omitempty"`
}

type processDoc struct {
	AnticipationTick int `yaml:"anticipation_tick"`
	JudgmentTick     int `yaml:"judgment_tick"`
	RecoveryTick     int `yaml:"recovery_tick"`
}

type windowDoc struct {
	StartTick     int `yaml:"start_tick"`
	DurationTicks int `yaml:"duration_ticks"`
}

type animationDoc struct {
	windowDoc  `yaml:",inline"`
	Transition string   `yaml:"transition"`
	Speed      *float64 `yaml:"speed,omitempty"`
}

type audioDoc struct {
	windowDoc  `yaml:",inline"`
	Clip       string   `yaml:"clip,omitempty"`
	Randomizer string   `yaml:"randomizer,omitempty"`
	Volume     *float64 `yaml:"volume,omitempty"`
}

type randomizerDoc struct {
	Name         string   `yaml:"name"`
	Clips        []string `yaml:"clips"`
	VolumeJitter float64  `yaml:"volume_jitter,omitempty"`
}

type transformDoc struct {
	Position []float64 `yaml:"position,omitempty"`
	Rotation []float64 `yaml:"rotation,omitempty"`
	Scale    []float64 `yaml:"scale,omitempty"`
}

type effectDoc struct {
	windowDoc      `yaml:",inline"`
	Prefab         string       `yaml:"prefab"`
	Kind           string       `yaml:"kind,omitempty"`
	LocalTransform transformDoc `yaml:"local_transform,omitempty"`
	StartLifetime  float64      `yaml:"start_lifetime,omitempty"`
	SimSpeed       *float64     `yaml:"sim_speed,omitempty"`
}

type shapeDoc struct {
	Kind        string    `yaml:"kind"`
	LocalPos    []float64 `yaml:"local_pos,omitempty"`
	LocalRot    []float64 `yaml:"local_rot,omitempty"`
	Size        []float64 `yaml:"size,omitempty"`
	Radius      float64   `yaml:"radius,omitempty"`
	InnerRadius float64   `yaml:"inner_radius,omitempty"`
	OuterRadius float64   `yaml:"outer_radius,omitempty"`
	Height      float64   `yaml:"height,omitempty"`
	PivotAngle  float64   `yaml:"pivot_angle,omitempty"`
	ArcAngle    float64   `yaml:"arc_angle,omitempty"`
}

type collisionDoc struct {
	windowDoc `yaml:",inline"`
	Group     int      `yaml:"group"`
	Shape     shapeDoc `yaml:"shape"`
}

type eventDoc struct {
	Tick    int          `yaml:"tick"`
	Name    string       `yaml:"name"`
	Payload EventPayload `yaml:"payload,omitempty"`
}

// UnmarshalYAML 解析形如 {kind: int, value: 3} 的事件数据，value 按 kind 解码
func (p *EventPayload) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Kind  string    `yaml:"kind"`
		Value yaml.Node `yaml:"value"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	hasValue := raw.Value.Kind != 0
	switch raw.Kind {
	case "", "none":
		*p = EventPayload{}
		return nil
	case "bool":
		p.Kind = PayloadBool
		if hasValue {
			return raw.Value.Decode(&p.Bool)
		}
	case "int":
		p.Kind = PayloadInt
		if hasValue {
			return raw.Value.Decode(&p.Int)
		}
	case "float":
		p.Kind = PayloadFloat
		if hasValue {
			return raw.Value.Decode(&p.Float)
		}
	case "string":
		p.Kind = PayloadString
		if hasValue {
			return raw.Value.Decode(&p.String)
		}
	case "ref":
		p.Kind = PayloadRef
		if hasValue {
			return raw.Value.Decode(&p.Ref)
		}
	default:
		return fmt.Errorf("line %d: unknown payload kind %q", node.Line, raw.Kind)
	}
	return nil
}

// Parse 从 YAML 字节解析并校验片段
func Parse(data []byte) (*Clip, error) {
	var doc clipDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse clip YAML: %w", err)
	}
	c, err := doc.build()
	if err != nil {
		name := doc.Name
		if name == "" {
			name = "<unnamed>"
		}
		return nil, fmt.Errorf("invalid clip %s: %w", name, err)
	}
	return c, nil
}

// ParseFile 从磁盘解析片段文件
//
// 示例:
//
//	c, err := clip.ParseFile("data/clips/sword_light_1.yaml")
//	if err != nil {
//	    log.Fatalf("Failed to parse clip: %v", err)
//	}
//	fmt.Printf("Clip ticks: %d @ %d fps\n", c.DurationTicks, c.FrameRate)
func ParseFile(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip file '%s': %w", path, err)
	}
	return parseNamed(path, data)
}

// ParseFS 从文件系统（例如嵌入的 data 目录）解析片段文件
func ParseFS(fsys fs.FS, path string) (*Clip, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip file '%s': %w", path, err)
	}
	return parseNamed(path, data)
}

func parseNamed(path string, data []byte) (*Clip, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return c, nil
}

func (d *clipDoc) build() (*Clip, error) {
	c := &Clip{
		Name:          d.Name,
		FrameRate:     d.FrameRate,
		DurationTicks: d.DurationTicks,
		Process: Process{
			AnticipationTick: d.Process.AnticipationTick,
			JudgmentTick:     d.Process.JudgmentTick,
			RecoveryTick:     d.Process.RecoveryTick,
		},
	}

	randomizers := make(map[string]*AudioRandomizer, len(d.Randomizers))
	for i, r := range d.Randomizers {
		if r.Name == "" {
			return nil, fmt.Errorf("randomizer #%d is missing 'name'", i)
		}
		if _, dup := randomizers[r.Name]; dup {
			return nil, fmt.Errorf("duplicate randomizer %q", r.Name)
		}
		if len(r.Clips) == 0 {
			return nil, fmt.Errorf("randomizer %q has no clips", r.Name)
		}
		randomizers[r.Name] = &AudioRandomizer{Name: r.Name, Clips: r.Clips, VolumeJitter: r.VolumeJitter}
	}

	for _, a := range d.AnimationTrack {
		c.AnimationTrack = append(c.AnimationTrack, &AnimationEntry{
			Window:     a.window(),
			Transition: a.Transition,
			Speed:      orDefault(a.Speed, 1),
		})
	}

	for i, a := range d.AudioTrack {
		entry := &AudioEntry{Window: a.window(), Clip: a.Clip, Volume: orDefault(a.Volume, 1)}
		if a.Randomizer != "" {
			r, ok := randomizers[a.Randomizer]
			if !ok {
				return nil, fmt.Errorf("audio entry #%d references unknown randomizer %q", i, a.Randomizer)
			}
			entry.Randomizer = r
		}
		c.AudioTrack = append(c.AudioTrack, entry)
	}

	for i, e := range d.EffectTrack {
		kind := EffectDynamic
		switch e.Kind {
		case "", "dynamic":
		case "fixed":
			kind = EffectFixed
		default:
			return nil, fmt.Errorf("effect entry #%d has unknown kind %q", i, e.Kind)
		}
		tr, err := e.LocalTransform.build()
		if err != nil {
			return nil, fmt.Errorf("effect entry #%d: %w", i, err)
		}
		c.EffectTrack = append(c.EffectTrack, &EffectEntry{
			Window:         e.window(),
			Prefab:         e.Prefab,
			Kind:           kind,
			LocalTransform: tr,
			StartLifetime:  e.StartLifetime,
			SimSpeed:       orDefault(e.SimSpeed, 1),
		})
	}

	for i, cd := range d.CollisionTrack {
		shape, err := cd.Shape.build()
		if err != nil {
			return nil, fmt.Errorf("collision entry #%d: %w", i, err)
		}
		c.CollisionTrack = append(c.CollisionTrack, &CollisionEntry{
			Window: cd.window(),
			Group:  cd.Group,
			Shape:  shape,
		})
	}

	for _, e := range d.EventTrack {
		c.EventTrack = append(c.EventTrack, &EventEntry{Tick: e.Tick, Name: e.Name, Payload: e.Payload})
	}

	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (w windowDoc) window() Window {
	return Window{StartTick: w.StartTick, DurationTicks: w.DurationTicks}
}

func (s shapeDoc) build() (CollisionShape, error) {
	kind, err := ParseShapeKind(s.Kind)
	if err != nil {
		return CollisionShape{}, err
	}
	pos, err := vec3(s.LocalPos, geom.Vec3{})
	if err != nil {
		return CollisionShape{}, fmt.Errorf("local_pos: %w", err)
	}
	rot, err := vec3(s.LocalRot, geom.Vec3{})
	if err != nil {
		return CollisionShape{}, fmt.Errorf("local_rot: %w", err)
	}

	switch kind {
	case ShapeBox:
		size, err := vec3(s.Size, geom.V(1, 1, 1))
		if err != nil {
			return CollisionShape{}, fmt.Errorf("size: %w", err)
		}
		return BoxShape(pos, rot, size), nil
	case ShapeSphere:
		return SphereShape(pos, s.Radius), nil
	case ShapeSector:
		return SectorShape(pos, rot, s.InnerRadius, s.OuterRadius, s.Height, s.PivotAngle, s.ArcAngle), nil
	default:
		return CollisionShape{Kind: kind}, nil
	}
}

func (t transformDoc) build() (geom.Transform, error) {
	pos, err := vec3(t.Position, geom.Vec3{})
	if err != nil {
		return geom.Transform{}, fmt.Errorf("position: %w", err)
	}
	rot, err := vec3(t.Rotation, geom.Vec3{})
	if err != nil {
		return geom.Transform{}, fmt.Errorf("rotation: %w", err)
	}
	scale, err := vec3(t.Scale, geom.V(1, 1, 1))
	if err != nil {
		return geom.Transform{}, fmt.Errorf("scale: %w", err)
	}
	return geom.Transform{Position: pos, Rotation: geom.Euler(rot), Scale: scale}, nil
}

func vec3(v []float64, def geom.Vec3) (geom.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return geom.V(v[0], v[1], v[2]), nil
	default:
		return geom.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
