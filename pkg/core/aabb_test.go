package core

import (
	"testing"
)

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name      string
		ray       Ray
		tMin      float64
		tMax      float64
		shouldHit bool
	}{
		{
			name:      "Ray through center",
			ray:       NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      100,
			shouldHit: true,
		},
		{
			name:      "Ray misses box",
			ray:       NewRay(NewVec3(5, 5, -5), NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      100,
			shouldHit: false,
		},
		{
			name:      "Ray pointing away",
			ray:       NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, -1)),
			tMin:      0.001,
			tMax:      100,
			shouldHit: false,
		},
		{
			name:      "Ray parallel to axis inside slab",
			ray:       NewRay(NewVec3(0.5, 0.5, -5), NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      100,
			shouldHit: true,
		},
		{
			name:      "Ray parallel to axis outside slab",
			ray:       NewRay(NewVec3(2, 0, -5), NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      100,
			shouldHit: false,
		},
		{
			name:      "Hit beyond tMax",
			ray:       NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      1.0,
			shouldHit: false,
		},
		{
			name:      "Ray starting inside box",
			ray:       NewRay(NewVec3(0, 0, 0), NewVec3(1, 0, 0)),
			tMin:      0.001,
			tMax:      100,
			shouldHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.ray, tt.tMin, tt.tMax); got != tt.shouldHit {
				t.Errorf("Expected hit=%v, got %v", tt.shouldHit, got)
			}
		})
	}
}

func TestAABB_Union(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(-2, 0.5, 0), NewVec3(0, 3, 0.5))

	union := a.Union(b)

	expectedMin := NewVec3(-2, 0, 0)
	expectedMax := NewVec3(1, 3, 1)
	if union.Min != expectedMin || union.Max != expectedMax {
		t.Errorf("Expected [%v, %v], got [%v, %v]", expectedMin, expectedMax, union.Min, union.Max)
	}
}

func TestAABB_LongestAxis(t *testing.T) {
	tests := []struct {
		name     string
		box      AABB
		expected int
	}{
		{"X longest", NewAABB(NewVec3(0, 0, 0), NewVec3(10, 1, 1)), 0},
		{"Y longest", NewAABB(NewVec3(0, 0, 0), NewVec3(1, 10, 1)), 1},
		{"Z longest", NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 10)), 2},
		{"Cube picks X", NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.LongestAxis(); got != tt.expected {
				t.Errorf("Expected axis %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestSetFaceNormal(t *testing.T) {
	ray := NewRay(NewVec3(0, 0, -1), NewVec3(0, 0, 1))
	outward := NewVec3(0, 0, -1)

	var hit RayHit
	hit.SetFaceNormal(ray, outward)

	if !hit.FrontFace {
		t.Error("Expected front face hit")
	}
	if hit.Normal != outward {
		t.Errorf("Expected normal %v, got %v", outward, hit.Normal)
	}

	// Ray from the other side sees the flipped normal
	backRay := NewRay(NewVec3(0, 0, 1), NewVec3(0, 0, -1))
	hit.SetFaceNormal(backRay, NewVec3(0, 0, -1))

	if hit.FrontFace {
		t.Error("Expected back face hit")
	}
	if hit.Normal != (NewVec3(0, 0, 1)) {
		t.Errorf("Expected flipped normal, got %v", hit.Normal)
	}
}
