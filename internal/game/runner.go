package game

import (
	"math/rand/v2"

	"github.com/ayusman/handarcade/internal/geom"
)

// Runner tuning. Speeds are pixels per frame.
const (
	RunnerX             = 80
	RunnerSize          = 50
	RunnerGravity       = 0.8
	JumpVelocity        = -16
	RunnerBaseSpeed     = 6
	RunnerTopSpeed      = 15
	RunnerSpawnInterval = 90
	RunnerMinInterval   = 40
	NightEvery          = 500 // distance between day/night flips
	RunPoints           = 1
	runnerSpeedRamp     = 100 // distance per +1 speed; difficulty is re-evaluated on these marks
	runnerIntervalRamp  = 200 // distance per one-frame reduction of the spawn interval
	runnerGround        = 0.75
	cactusSink          = 10
)

var (
	cactusHeights = []float64{40, 50, 60}
	cactusWidths  = []float64{30, 40}
)

// Runner is the side-scrolling jump model. The runner stays at a fixed x and
// leaves the ground only on a raise; cacti scroll in from the right edge.
// Hitting one ends the run, and the next raise starts a fresh one within the
// same session.
type Runner struct {
	area    geom.Bounds
	rng     *rand.Rand
	frame   int
	groundY float64

	y, vy    float64
	airborne bool

	cacti      []geom.Rect
	spawnTimer int
	interval   int
	speed      float64
	distance   int
	night      bool
	nightMark  int
	crashed    bool

	jumps   int
	crashes int
	bestRun int
}

// NewRunner creates a runner standing on the ground at the start of a run.
func NewRunner(cfg Config, rng *rand.Rand) *Runner {
	r := &Runner{
		area:    cfg.Area,
		rng:     rng,
		groundY: cfg.Area.Height * runnerGround,
	}
	r.restart()
	return r
}

func (r *Runner) Exercise() Exercise { return DinoRunner }

func (r *Runner) restart() {
	r.y, r.vy, r.airborne = r.groundY, 0, false
	r.cacti = nil
	r.spawnTimer = 0
	r.interval = RunnerSpawnInterval
	r.speed = RunnerBaseSpeed
	r.distance = 0
	r.night, r.nightMark = false, 0
	r.crashed = false
}

// Box returns the runner's bounding box.
func (r *Runner) Box() geom.Rect {
	return geom.Rect{X: RunnerX, Y: r.y, W: RunnerSize, H: RunnerSize}
}

// SpawnTick drops a cactus at the right edge once the timer reaches the
// current interval. Nothing spawns after a crash.
func (r *Runner) SpawnTick() {
	if r.crashed {
		return
	}
	r.spawnTimer++
	if r.spawnTimer < r.interval {
		return
	}
	r.spawnTimer = 0

	h := cactusHeights[r.rng.IntN(len(cactusHeights))]
	w := cactusWidths[r.rng.IntN(len(cactusWidths))]
	r.cacti = append(r.cacti, geom.Rect{
		X: r.area.Width,
		Y: r.groundY + RunnerSize - h + cactusSink,
		W: w,
		H: h,
	})
}

// Advance runs frames steps.
func (r *Runner) Advance(frames int, in Input) Outcome {
	var out Outcome
	for i := 0; i < frames; i++ {
		r.frame++
		r.SpawnTick()
		out.merge(r.step(in))
	}
	return out
}

func (r *Runner) step(in Input) Outcome {
	var out Outcome

	if r.crashed {
		if in.Jump {
			r.restart()
			out.add(Event{Kind: EventRestarted, Frame: r.frame})
		}
		return out
	}

	if in.Jump && !r.airborne {
		r.vy = JumpVelocity
		r.airborne = true
		r.jumps++
		out.add(Event{Kind: EventJumped, Frame: r.frame})
	}

	if r.distance > 0 && r.distance%NightEvery == 0 && r.distance != r.nightMark {
		r.night = !r.night
		r.nightMark = r.distance
	}

	if r.airborne {
		r.y += r.vy
		r.vy += RunnerGravity
		if r.y >= r.groundY {
			r.y, r.vy, r.airborne = r.groundY, 0, false
		}
	}

	r.distance++
	out.add(Event{Kind: EventRan, Points: RunPoints, Frame: r.frame})
	if r.distance%runnerSpeedRamp == 0 {
		r.speed = min(RunnerBaseSpeed+float64(r.distance/runnerSpeedRamp), RunnerTopSpeed)
		r.interval = max(RunnerMinInterval, RunnerSpawnInterval-r.distance/runnerIntervalRamp)
	}

	kept := r.cacti[:0]
	for _, c := range r.cacti {
		c.X -= r.speed
		if c.X > -c.W {
			kept = append(kept, c)
		}
	}
	r.cacti = kept

	body := r.Box().Inset(5, 5, 10, 5)
	for _, c := range r.cacti {
		if body.Overlaps(c.Inset(5, 0, 10, 0)) {
			r.crashed = true
			r.crashes++
			r.bestRun = max(r.bestRun, r.distance)
			out.add(Event{Kind: EventCrashed, Frame: r.frame})
			break
		}
	}
	return out
}

// RenderState returns the scene snapshot. BestRun includes the run in progress.
func (r *Runner) RenderState() RenderState {
	cacti := make([]geom.Rect, len(r.cacti))
	copy(cacti, r.cacti)
	return RenderState{
		Exercise: DinoRunner,
		Frame:    r.frame,
		Stats: Stats{
			Jumps:   r.jumps,
			Crashes: r.crashes,
			BestRun: max(r.bestRun, r.distance),
		},
		Runner:   r.Box(),
		Cacti:    cacti,
		GroundY:  r.groundY + RunnerSize + cactusSink,
		Speed:    r.speed,
		Distance: r.distance,
		Night:    r.night,
		Crashed:  r.crashed,
	}
}
