package game

import (
	"math"

	"github.com/decker502/actioncombo/internal/geom"
)

type shakeCommand struct {
	amplitude float64
	frequency float64
	duration  float64
	elapsed   float64
	direction geom.Vec3
}

// strength 返回随时间线性衰减后的振幅
func (c *shakeCommand) strength() float64 {
	if c.duration <= 0 {
		return 0
	}
	return c.amplitude * math.Max(0, 1-c.elapsed/c.duration)
}

// CameraShakeRegistry 管理按 id 注册的镜头震动
//
// 有方向的震动沿方向来回摆动；无方向的震动在水平面上画圈。
// 同一 id 重复添加会从头开始。
type CameraShakeRegistry struct {
	shakes map[string]*shakeCommand
	// 默认频率，命令未指定频率时使用
	defaultFrequency float64
}

// NewCameraShakeRegistry 创建镜头震动注册表
func NewCameraShakeRegistry() *CameraShakeRegistry {
	return &CameraShakeRegistry{
		shakes:           make(map[string]*shakeCommand),
		defaultFrequency: 25,
	}
}

// AddShake 添加或重新开始一个震动
func (r *CameraShakeRegistry) AddShake(id string, amplitude, frequency, duration float64, direction geom.Vec3) {
	if amplitude <= 0 || duration <= 0 {
		return
	}
	if frequency <= 0 {
		frequency = r.defaultFrequency
	}
	r.shakes[id] = &shakeCommand{
		amplitude: amplitude,
		frequency: frequency,
		duration:  duration,
		direction: direction.Horizontal().Normalize(),
	}
}

// RemoveShake 移除震动，id 不存在时无副作用
func (r *CameraShakeRegistry) RemoveShake(id string) {
	delete(r.shakes, id)
}

// Len 返回正在进行的震动数
func (r *CameraShakeRegistry) Len() int { return len(r.shakes) }

// Direction 返回震动的方向，无方向震动返回零向量
func (r *CameraShakeRegistry) Direction(id string) (geom.Vec3, bool) {
	c, ok := r.shakes[id]
	if !ok {
		return geom.Vec3{}, false
	}
	return c.direction, true
}

// Update 推进震动并移除结束的震动
func (r *CameraShakeRegistry) Update(dt float64) {
	for id, c := range r.shakes {
		c.elapsed += dt
		if c.elapsed >= c.duration {
			delete(r.shakes, id)
		}
	}
}

// Offset 返回当前所有震动叠加后的镜头偏移
func (r *CameraShakeRegistry) Offset() geom.Vec3 {
	var total geom.Vec3
	for _, c := range r.shakes {
		phase := 2 * math.Pi * c.frequency * c.elapsed
		s := c.strength()
		if c.direction == (geom.Vec3{}) {
			total = total.Add(geom.Vec3{X: s * math.Sin(phase), Z: s * math.Cos(phase)})
			continue
		}
		total = total.Add(c.direction.Scale(s * math.Sin(phase)))
	}
	return total
}
