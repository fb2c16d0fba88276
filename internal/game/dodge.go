package game

import (
	"math/rand/v2"

	"github.com/ayusman/handarcade/internal/geom"
)

// Obstacle dodge tuning.
const (
	PlayerRadius        = 25
	ObstacleRadius      = 40
	HitPenalty          = 5
	DodgeReward         = 5
	dodgeBaseInterval   = 60
	dodgeMinInterval    = 30
	dodgeIntervalRamp   = 100 // frames per one-frame reduction of the spawn interval
	dodgeMinSpeed       = 6
	dodgeBaseMaxSpeed   = 10
	dodgeTopSpeed       = 14
	dodgeSpeedRamp      = 900 // frames per +1 of the maximum speed
	dodgeSpawnEdgeInset = 50
)

// Obstacle moves in a straight line across the play area.
type Obstacle struct {
	Pos    geom.Vec2 `json:"pos"`
	Vel    geom.Vec2 `json:"vel"`
	Radius float64   `json:"radius"`
}

func (o *Obstacle) Position() geom.Vec2 { return o.Pos }
func (o *Obstacle) HitRadius() float64  { return o.Radius }

// Dodge is the obstacle-dodge model. The player token follows the cursor
// directly while the hand is detected and otherwise stays where it was.
type Dodge struct {
	area       geom.Bounds
	rng        *rand.Rand
	frame      int
	spawnTimer int
	player     geom.Vec2
	obstacles  []Obstacle
	hits       int
	dodges     int
}

// NewDodge creates an empty obstacle-dodge model with the player centered.
func NewDodge(cfg Config, rng *rand.Rand) *Dodge {
	return &Dodge{
		area:   cfg.Area,
		rng:    rng,
		player: cfg.Area.Center(),
	}
}

func (d *Dodge) Exercise() Exercise { return DodgeObstacles }

// SpawnInterval returns the frames between spawns at the current difficulty.
func (d *Dodge) SpawnInterval() int {
	return max(dodgeMinInterval, dodgeBaseInterval-d.frame/dodgeIntervalRamp)
}

// MaxSpeed returns the upper bound of the obstacle speed range at the current difficulty.
func (d *Dodge) MaxSpeed() int {
	return min(dodgeTopSpeed, dodgeBaseMaxSpeed+d.frame/dodgeSpeedRamp)
}

// SpawnTick releases an obstacle from a random edge once the timer passes the
// current interval.
func (d *Dodge) SpawnTick() {
	d.spawnTimer++
	if d.spawnTimer <= d.SpawnInterval() {
		return
	}
	d.spawnTimer = 0
	d.obstacles = append(d.obstacles, d.launch())
}

func (d *Dodge) launch() Obstacle {
	w, h := int(d.area.Width), int(d.area.Height)
	speed := float64(randInt(d.rng, dodgeMinSpeed, d.MaxSpeed()))
	o := Obstacle{Radius: ObstacleRadius}

	switch d.rng.IntN(4) {
	case 0: // left
		o.Pos = geom.Vec2{X: 0, Y: float64(randInt(d.rng, dodgeSpawnEdgeInset, h-dodgeSpawnEdgeInset))}
		o.Vel = geom.Vec2{X: speed}
	case 1: // right
		o.Pos = geom.Vec2{X: d.area.Width, Y: float64(randInt(d.rng, dodgeSpawnEdgeInset, h-dodgeSpawnEdgeInset))}
		o.Vel = geom.Vec2{X: -speed}
	case 2: // top
		o.Pos = geom.Vec2{X: float64(randInt(d.rng, dodgeSpawnEdgeInset, w-dodgeSpawnEdgeInset)), Y: 0}
		o.Vel = geom.Vec2{Y: speed}
	default: // bottom
		o.Pos = geom.Vec2{X: float64(randInt(d.rng, dodgeSpawnEdgeInset, w-dodgeSpawnEdgeInset)), Y: d.area.Height}
		o.Vel = geom.Vec2{Y: -speed}
	}
	return o
}

// Advance runs frames steps.
func (d *Dodge) Advance(frames int, in Input) Outcome {
	var out Outcome
	for i := 0; i < frames; i++ {
		d.frame++
		d.SpawnTick()
		out.merge(d.step(in))
	}
	return out
}

func (d *Dodge) step(in Input) Outcome {
	var out Outcome
	if in.Detected {
		d.player = in.Cursor
	}

	kept := d.obstacles[:0]
	for _, o := range d.obstacles {
		o.Pos = o.Pos.Add(o.Vel)

		if geom.CirclesOverlap(d.player, PlayerRadius, o.Pos, o.Radius) {
			d.hits++
			out.add(Event{Kind: EventHit, Points: -HitPenalty, Frame: d.frame})
			continue
		}
		if outside(d.area, o.Pos, cullMargin) {
			d.dodges++
			out.add(Event{Kind: EventDodged, Points: DodgeReward, Frame: d.frame})
			continue
		}
		kept = append(kept, o)
	}
	d.obstacles = kept
	return out
}

// RenderState returns the obstacle and player snapshot.
func (d *Dodge) RenderState() RenderState {
	obstacles := make([]Obstacle, len(d.obstacles))
	copy(obstacles, d.obstacles)
	return RenderState{
		Exercise:     DodgeObstacles,
		Frame:        d.frame,
		Stats:        Stats{Hits: d.hits, Dodges: d.dodges},
		Obstacles:    obstacles,
		Player:       d.player,
		PlayerRadius: PlayerRadius,
	}
}
