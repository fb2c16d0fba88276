package game

import (
	"github.com/ayusman/handarcade/internal/geom"
	"github.com/ayusman/handarcade/internal/shape"
)

// RenderState is a read-only snapshot of a model for the renderer.
// Only the fields of the active exercise are populated.
type RenderState struct {
	Exercise Exercise `json:"exercise"`
	Frame    int      `json:"frame"`
	Stats    Stats    `json:"stats"`

	Projectiles []Projectile `json:"projectiles,omitempty"`

	Obstacles    []Obstacle `json:"obstacles,omitempty"`
	Player       geom.Vec2  `json:"player"`
	PlayerRadius float64    `json:"player_radius,omitempty"`

	Path      *shape.Path `json:"path,omitempty"`
	Target    int         `json:"target"`
	ShapeName string      `json:"shape_name,omitempty"`

	Targets []TapTarget `json:"targets,omitempty"`

	Runner   geom.Rect   `json:"runner,omitzero"`
	Cacti    []geom.Rect `json:"cacti,omitempty"`
	GroundY  float64     `json:"ground_y,omitempty"`
	Speed    float64     `json:"speed,omitempty"`
	Distance int         `json:"distance,omitempty"`
	Night    bool        `json:"night,omitempty"`
	Crashed  bool        `json:"crashed,omitempty"`
}

// Clone returns a deep copy.
func (r RenderState) Clone() RenderState {
	r.Projectiles = append([]Projectile(nil), r.Projectiles...)
	r.Obstacles = append([]Obstacle(nil), r.Obstacles...)
	r.Targets = append([]TapTarget(nil), r.Targets...)
	r.Cacti = append([]geom.Rect(nil), r.Cacti...)
	if r.Path != nil {
		r.Path = r.Path.Clone()
	}
	return r
}

// SliceOffset returns how far the two halves of a sliced projectile have
// drifted apart at frame, in pixels along each axis.
func SliceOffset(p Projectile, frame int) float64 {
	if !p.Sliced {
		return 0
	}
	return float64(frame-p.SliceFrame) * SliceDriftPerFrame
}
