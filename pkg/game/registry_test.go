package game

import (
	"math"
	"testing"

	"github.com/decker502/actioncombo/internal/geom"
)

func TestTimeScaleRegistry(t *testing.T) {
	r := NewTimeScaleRegistry()
	if r.Scale() != 1 {
		t.Errorf("Empty registry should scale by 1, got %v", r.Scale())
	}

	r.AddTimeScale("hitfreeze:1:jab", 0.1, 0.1)
	r.AddTimeScale("hitfreeze:2:jab", 0.5, 0.3)
	r.AddTimeScale("ignored", 0, 0)
	if r.Len() != 2 {
		t.Errorf("Expected 2 commands, got %d", r.Len())
	}
	if r.Scale() != 0.1 {
		t.Errorf("Effective scale should be the minimum, got %v", r.Scale())
	}

	// 刷新而不是叠加
	r.Update(0.08)
	r.AddTimeScale("hitfreeze:1:jab", 0.1, 0.1)
	r.Update(0.08)
	if !r.Active("hitfreeze:1:jab") {
		t.Error("Refreshed command should still be active")
	}

	r.Update(0.05)
	if r.Active("hitfreeze:1:jab") {
		t.Error("Command should expire after its duration")
	}
	if r.Scale() != 0.5 {
		t.Errorf("Expected remaining scale 0.5, got %v", r.Scale())
	}

	r.RemoveTimeScale("hitfreeze:2:jab")
	r.RemoveTimeScale("hitfreeze:2:jab")
	if r.Len() != 0 || r.Scale() != 1 {
		t.Errorf("Expected empty registry, got %d commands at scale %v", r.Len(), r.Scale())
	}
}

func TestCameraShakeRegistry(t *testing.T) {
	r := NewCameraShakeRegistry()

	r.AddShake("shake:1:jab", 0.2, 10, 0.5, geom.V(3, 7, 4))
	dir, ok := r.Direction("shake:1:jab")
	if !ok {
		t.Fatal("Expected shake to be registered")
	}
	if math.Abs(dir.X-0.6) > 1e-9 || dir.Y != 0 || math.Abs(dir.Z-0.8) > 1e-9 {
		t.Errorf("Direction should be horizontal and normalized, got %+v", dir)
	}

	// 四分之一周期时沿方向达到最大偏移
	r.Update(0.025)
	off := r.Offset()
	want := 0.2 * (1 - 0.025/0.5)
	if math.Abs(off.Len()-want) > 1e-9 {
		t.Errorf("Expected offset length %v, got %v", want, off.Len())
	}
	if off.Y != 0 || math.Abs(off.X/off.Z-0.75) > 1e-9 {
		t.Errorf("Directional shake should move along its direction, got %+v", off)
	}

	r.AddShake("shake:2:jab", 0.1, 0, 0.2, geom.Vec3{})
	if d, _ := r.Direction("shake:2:jab"); d != (geom.Vec3{}) {
		t.Errorf("Omnidirectional shake should have no direction, got %+v", d)
	}
	r.AddShake("ignored", 0, 10, 1, geom.Vec3{})
	if r.Len() != 2 {
		t.Errorf("Expected 2 shakes, got %d", r.Len())
	}

	r.Update(0.2)
	if r.Len() != 1 {
		t.Errorf("Short shake should have ended, %d left", r.Len())
	}
	r.RemoveShake("shake:1:jab")
	if r.Len() != 0 || r.Offset() != (geom.Vec3{}) {
		t.Errorf("Expected no shake after removal, got %d", r.Len())
	}
}
