package game

import (
	"fmt"

	"github.com/ayusman/handarcade/internal/geom"
	"github.com/ayusman/handarcade/internal/shape"
)

// Shape trace scoring.
const (
	NodePoints = 15
	ShapeBonus = 50
)

// Trace is the path-trace model. Nodes must be visited in order; the cursor
// only ever tests against the current target.
type Trace struct {
	area      geom.Bounds
	gen       *shape.Generator
	frame     int
	path      *shape.Path
	target    int
	completed int
	err       error
}

// NewTrace creates a trace model holding the first shape of the cycle.
func NewTrace(cfg Config) (*Trace, error) {
	t := &Trace{
		area: cfg.Area,
		gen:  shape.NewGenerator(cfg.Area, shape.DefaultMargin),
	}
	path, err := t.gen.Generate(shape.KindFor(0), cfg.Area.Center(), 0)
	if err != nil {
		return nil, fmt.Errorf("first shape: %w", err)
	}
	t.path = path
	return t, nil
}

func (t *Trace) Exercise() Exercise { return ShapeTrace }

// SpawnTick is a no-op; shapes are generated on completion.
func (t *Trace) SpawnTick() {}

// Target returns the index of the node the cursor must reach next.
func (t *Trace) Target() int { return t.target }

// Completed returns the number of finished shapes.
func (t *Trace) Completed() int { return t.completed }

// Err returns the last shape generation error, if any. The model keeps
// replaying its previous shape while this is set.
func (t *Trace) Err() error { return t.err }

// Advance runs frames steps.
func (t *Trace) Advance(frames int, in Input) Outcome {
	var out Outcome
	for i := 0; i < frames; i++ {
		t.frame++
		t.SpawnTick()
		out.merge(t.step(in))
	}
	return out
}

// step advances at most one node per frame.
func (t *Trace) step(in Input) Outcome {
	var out Outcome
	if !in.Detected || t.target >= t.path.Len() {
		return out
	}

	node := &t.path.Nodes[t.target]
	if geom.Distance(in.Cursor, node.Pos) >= node.Radius {
		return out
	}
	if !node.Hit {
		node.Hit = true
		out.add(Event{Kind: EventNodeHit, Points: NodePoints, Frame: t.frame, Index: node.Index})
	}
	t.target++

	if t.target >= t.path.Len() {
		out.add(Event{Kind: EventShapeComplete, Points: ShapeBonus, Frame: t.frame, Index: t.target})
		t.completed++
		t.next()
	}
	return out
}

func (t *Trace) next() {
	kind := shape.KindFor(t.completed)
	path, err := t.gen.Generate(kind, t.area.Center(), t.completed)
	if err != nil {
		t.err = err
		for i := range t.path.Nodes {
			t.path.Nodes[i].Hit = false
		}
	} else {
		t.err = nil
		t.path = path
	}
	t.target = 0
}

// RenderState returns the active path snapshot.
func (t *Trace) RenderState() RenderState {
	return RenderState{
		Exercise:  ShapeTrace,
		Frame:     t.frame,
		Stats:     Stats{Completed: t.completed},
		Path:      t.path.Clone(),
		Target:    t.target,
		ShapeName: t.path.Kind.DisplayName(),
	}
}
