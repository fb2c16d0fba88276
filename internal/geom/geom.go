// Package geom provides the 2D geometry shared by the tracking and game packages.
package geom

import "math"

// Vec2 is a point or displacement in game-pixel space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Lerp interpolates between v and o. t=0 yields v, t=1 yields o.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// CirclesOverlap reports whether two circles intersect.
// Touching circles (distance == ra+rb) do not overlap.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	return Distance(a, b) < ra+rb
}

// Rect is an axis-aligned box with its top-left corner at X, Y.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Inset shrinks r by dx on the left, dy on top and by w and h off its size.
func (r Rect) Inset(dx, dy, w, h float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - w, H: r.H - h}
}

// Overlaps reports whether two boxes share interior area. Boxes that only
// touch along an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Bounds is an axis-aligned play area anchored at the origin.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the play area.
func (b Bounds) Center() Vec2 {
	return Vec2{X: b.Width / 2, Y: b.Height / 2}
}

// Contains returns true if p lies inside the area shrunk by margin on every side.
// A negative margin grows the area, which is how off-screen culling is expressed.
func (b Bounds) Contains(p Vec2, margin float64) bool {
	return p.X >= margin && p.X <= b.Width-margin &&
		p.Y >= margin && p.Y <= b.Height-margin
}

// Clamp moves p to the nearest point inside the area shrunk by margin.
// If the margin leaves no room on an axis, that axis collapses to the center.
func (b Bounds) Clamp(p Vec2, margin float64) Vec2 {
	return Vec2{
		X: clampAxis(p.X, margin, b.Width-margin, b.Width/2),
		Y: clampAxis(p.Y, margin, b.Height-margin, b.Height/2),
	}
}

// FromNormalized maps a point in [0,1]x[0,1] input space to game pixels.
func (b Bounds) FromNormalized(x, y float64) Vec2 {
	return Vec2{X: x * b.Width, Y: y * b.Height}
}

func clampAxis(v, lo, hi, mid float64) float64 {
	if lo > hi {
		return mid
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
