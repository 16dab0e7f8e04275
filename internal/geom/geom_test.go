package geom

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func vecApprox(a, b Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestEulerYawRotatesForwardToRight(t *testing.T) {
	q := Euler(V(0, 90, 0))
	got := q.Rotate(V(0, 0, 1))
	if !vecApprox(got, V(1, 0, 0)) {
		t.Errorf("Expected (1,0,0), got %+v", got)
	}
}

func TestTransformPointRoundTrip(t *testing.T) {
	tr := Transform{Position: V(1, 2, 3), Rotation: Euler(V(10, 45, 0)), Scale: V(1, 1, 1)}
	local := V(0.5, -1, 2)
	world := tr.Point(local)
	back := tr.InversePoint(world)
	if !vecApprox(back, local) {
		t.Errorf("Round trip mismatch: %+v != %+v", back, local)
	}
}

func TestTransformZeroValueIsIdentity(t *testing.T) {
	var tr Transform
	if got := tr.Point(V(1, 2, 3)); !vecApprox(got, V(1, 2, 3)) {
		t.Errorf("Zero transform should be identity, got %+v", got)
	}
}

func TestHorizontal(t *testing.T) {
	if got := V(3, 7, -4).Horizontal(); got != V(3, 0, -4) {
		t.Errorf("Expected Y dropped, got %+v", got)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := WrapAngle(tt.in); !approx(got, tt.want) {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOBBOverlapsSphere(t *testing.T) {
	b := OBB{Center: V(0, 0, 0), HalfExtents: V(1, 1, 1), Rotation: Identity}
	if !b.OverlapsSphere(V(1.5, 0, 0), 0.6) {
		t.Error("Sphere touching the face should overlap")
	}
	if b.OverlapsSphere(V(3, 0, 0), 0.5) {
		t.Error("Distant sphere should not overlap")
	}
}

func TestOBBOverlapsOBB(t *testing.T) {
	a := OBB{Center: V(0, 0, 0), HalfExtents: V(1, 1, 1)}
	rotated := OBB{Center: V(2.3, 0, 0), HalfExtents: V(1, 1, 1), Rotation: Euler(V(0, 45, 0))}
	// 旋转 45° 后的半对角线约为 1.414，与 a 的间距 2.3 - 1 = 1.3 相交
	if !a.OverlapsOBB(rotated) {
		t.Error("Rotated box corner should reach the first box")
	}
	far := OBB{Center: V(2.6, 0, 0), HalfExtents: V(1, 1, 1), Rotation: Identity}
	if a.OverlapsOBB(far) {
		t.Error("Separated axis-aligned boxes should not overlap")
	}
}
