package game

import (
	"math/rand/v2"

	"github.com/ayusman/handarcade/internal/geom"
)

// Speed tapper tuning.
const (
	TapperSpawnInterval = 60
	MaxTargets          = 3
	TargetRadius        = 60
	TargetLifetime      = 90 // frames
	TapPoints           = 10
	targetEdgeInset     = 100
)

// TapTarget is a short-lived circle the cursor must reach.
type TapTarget struct {
	Pos         geom.Vec2 `json:"pos"`
	Radius      float64   `json:"radius"`
	Lifetime    int       `json:"lifetime"`
	MaxLifetime int       `json:"max_lifetime"`
}

func (t *TapTarget) Position() geom.Vec2 { return t.Pos }
func (t *TapTarget) HitRadius() float64  { return t.Radius }

// Remaining returns the fraction of lifetime left in [0, 1].
func (t TapTarget) Remaining() float64 {
	if t.MaxLifetime <= 0 {
		return 0
	}
	return max(0, float64(t.Lifetime)/float64(t.MaxLifetime))
}

// Tapper is the timed-tap model.
type Tapper struct {
	area       geom.Bounds
	rng        *rand.Rand
	frame      int
	spawnTimer int
	targets    []TapTarget
	taps       int
	expired    int
}

// NewTapper creates an empty timed-tap model.
func NewTapper(cfg Config, rng *rand.Rand) *Tapper {
	return &Tapper{area: cfg.Area, rng: rng}
}

func (t *Tapper) Exercise() Exercise { return SpeedTapper }

// SpawnTick places a target once the timer passes TapperSpawnInterval and
// fewer than MaxTargets are live. The timer keeps counting while at the cap.
func (t *Tapper) SpawnTick() {
	t.spawnTimer++
	if t.spawnTimer <= TapperSpawnInterval || len(t.targets) >= MaxTargets {
		return
	}
	t.spawnTimer = 0

	w, h := int(t.area.Width), int(t.area.Height)
	t.targets = append(t.targets, TapTarget{
		Pos: geom.Vec2{
			X: float64(randInt(t.rng, targetEdgeInset, w-targetEdgeInset)),
			Y: float64(randInt(t.rng, targetEdgeInset, h-targetEdgeInset)),
		},
		Radius:      TargetRadius,
		Lifetime:    TargetLifetime,
		MaxLifetime: TargetLifetime,
	})
}

// Advance runs frames steps.
func (t *Tapper) Advance(frames int, in Input) Outcome {
	var out Outcome
	for i := 0; i < frames; i++ {
		t.frame++
		t.SpawnTick()
		out.merge(t.step(in))
	}
	return out
}

// step decrements every lifetime, then resolves taps before expiry.
func (t *Tapper) step(in Input) Outcome {
	var out Outcome

	kept := t.targets[:0]
	for _, target := range t.targets {
		target.Lifetime--

		if in.Detected && touches(in.Cursor, &target, 0) {
			t.taps++
			out.add(Event{Kind: EventTapped, Points: TapPoints, Frame: t.frame})
			continue
		}
		if target.Lifetime <= 0 {
			t.expired++
			out.add(Event{Kind: EventExpired, Frame: t.frame})
			continue
		}
		kept = append(kept, target)
	}
	t.targets = kept
	return out
}

// RenderState returns the live target snapshot.
func (t *Tapper) RenderState() RenderState {
	targets := make([]TapTarget, len(t.targets))
	copy(targets, t.targets)
	return RenderState{
		Exercise: SpeedTapper,
		Frame:    t.frame,
		Stats:    Stats{Taps: t.taps, Expired: t.expired},
		Targets:  targets,
	}
}
