package game

import (
	"math/rand/v2"

	"github.com/ayusman/handarcade/internal/geom"
)

// Fruit slicer tuning.
const (
	SlicerSpawnInterval = 50  // frames; a projectile spawns once the timer exceeds this
	SlicerGravity       = 0.5 // px/frame²
	ProjectileRadius    = 40
	SliceReach          = 20
	SlicePoints         = 10
	SliceDriftPerFrame  = 3
	cullMargin          = 100
)

// Variety is the cosmetic fruit kind.
type Variety string

const (
	Apple      Variety = "apple"
	Orange     Variety = "orange"
	Watermelon Variety = "watermelon"
)

var varieties = []Variety{Apple, Orange, Watermelon}

// Projectile is a thrown fruit under gravity.
type Projectile struct {
	Pos        geom.Vec2 `json:"pos"`
	Vel        geom.Vec2 `json:"vel"`
	Radius     float64   `json:"radius"`
	Variety    Variety   `json:"variety"`
	Sliced     bool      `json:"sliced"`
	SliceFrame int       `json:"slice_frame"`
}

func (p *Projectile) Position() geom.Vec2 { return p.Pos }
func (p *Projectile) HitRadius() float64  { return p.Radius }

// Slicer is the projectile-slice model. Sliced projectiles stay in flight so
// the renderer can split them; they are removed only when they leave the area.
type Slicer struct {
	area        geom.Bounds
	rng         *rand.Rand
	frame       int
	spawnTimer  int
	projectiles []Projectile
	slices      int
}

// NewSlicer creates an empty projectile-slice model.
func NewSlicer(cfg Config, rng *rand.Rand) *Slicer {
	return &Slicer{area: cfg.Area, rng: rng}
}

func (s *Slicer) Exercise() Exercise { return FruitSlicer }

// SpawnTick launches a projectile from the left, right or bottom edge every
// SlicerSpawnInterval+1 frames.
func (s *Slicer) SpawnTick() {
	s.spawnTimer++
	if s.spawnTimer <= SlicerSpawnInterval {
		return
	}
	s.spawnTimer = 0
	s.projectiles = append(s.projectiles, s.launch())
}

func (s *Slicer) launch() Projectile {
	w, h := int(s.area.Width), int(s.area.Height)
	p := Projectile{
		Radius:  ProjectileRadius,
		Variety: varieties[s.rng.IntN(len(varieties))],
	}

	switch s.rng.IntN(3) {
	case 0: // left
		p.Pos = geom.Vec2{X: 0, Y: float64(randInt(s.rng, 100, h-100))}
		p.Vel = geom.Vec2{X: float64(randInt(s.rng, 5, 10)), Y: float64(randInt(s.rng, -3, 3))}
	case 1: // right
		p.Pos = geom.Vec2{X: s.area.Width, Y: float64(randInt(s.rng, 100, h-100))}
		p.Vel = geom.Vec2{X: float64(randInt(s.rng, -10, -5)), Y: float64(randInt(s.rng, -3, 3))}
	default: // bottom
		p.Pos = geom.Vec2{X: float64(randInt(s.rng, 100, w-100)), Y: s.area.Height}
		p.Vel = geom.Vec2{X: float64(randInt(s.rng, -3, 3)), Y: float64(randInt(s.rng, -15, -10))}
	}
	return p
}

// Advance runs frames steps.
func (s *Slicer) Advance(frames int, in Input) Outcome {
	var out Outcome
	for i := 0; i < frames; i++ {
		s.frame++
		s.SpawnTick()
		out.merge(s.step(in))
	}
	return out
}

func (s *Slicer) step(in Input) Outcome {
	var out Outcome

	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		p.Pos = p.Pos.Add(p.Vel)
		p.Vel.Y += SlicerGravity

		// Projectiles may arc above the top edge and fall back, so only the
		// sides and the bottom cull.
		if p.Pos.X < -cullMargin || p.Pos.X > s.area.Width+cullMargin || p.Pos.Y > s.area.Height+cullMargin {
			continue
		}
		kept = append(kept, p)
	}
	s.projectiles = kept

	if !in.Detected {
		return out
	}

	// At most one slice per frame.
	for i := range s.projectiles {
		p := &s.projectiles[i]
		if p.Sliced || !touches(in.Cursor, p, SliceReach) {
			continue
		}
		p.Sliced = true
		p.SliceFrame = s.frame
		s.slices++
		out.add(Event{Kind: EventSliced, Points: SlicePoints, Frame: s.frame})
		break
	}
	return out
}

// RenderState returns the projectile snapshot.
func (s *Slicer) RenderState() RenderState {
	projectiles := make([]Projectile, len(s.projectiles))
	copy(projectiles, s.projectiles)
	return RenderState{
		Exercise:    FruitSlicer,
		Frame:       s.frame,
		Stats:       Stats{Slices: s.slices},
		Projectiles: projectiles,
	}
}
