// Package shape generates the waypoint paths traced in the path-trace exercise.
package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/handarcade/internal/geom"
)

// Kind identifies a shape family.
type Kind string

const (
	Circle   Kind = "circle"
	Square   Kind = "square"
	Triangle Kind = "triangle"
	Star     Kind = "star"
	Heart    Kind = "heart"
	Zigzag   Kind = "zigzag"
)

// Order is the fixed rotation of shapes; the n-th completed shape is followed by Order[(n) % len(Order)].
var Order = []Kind{Circle, Square, Triangle, Star, Heart, Zigzag}

// ErrUnknownKind is returned when asked to generate a shape outside Order.
var ErrUnknownKind = errors.New("unknown shape kind")

// Node radii in pixels.
const (
	DefaultNodeRadius = 45
	StarNodeRadius    = 40
)

// DefaultMargin keeps node centers this far inside the play area.
const DefaultMargin = 20

// Node is one waypoint of a Path.
type Node struct {
	Index  int       `json:"index"`
	Pos    geom.Vec2 `json:"pos"`
	Radius float64   `json:"radius"`
	Hit    bool      `json:"hit"`
}

// Path is an ordered, closed sequence of nodes. Drawing connects the last
// node back to the first.
type Path struct {
	Kind      Kind      `json:"kind"`
	Iteration int       `json:"iteration"`
	Center    geom.Vec2 `json:"center"`
	Nodes     []Node    `json:"nodes"`
}

// Len returns the number of nodes.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}

// HitCount returns how many nodes have been hit.
func (p *Path) HitCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, node := range p.Nodes {
		if node.Hit {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can snapshot a path that is still being traced.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	c := *p
	c.Nodes = make([]Node, len(p.Nodes))
	copy(c.Nodes, p.Nodes)
	return &c
}

// KindFor returns the shape to trace after completed shapes.
func KindFor(completed int) Kind {
	n := len(Order)
	return Order[((completed%n)+n)%n]
}

// DisplayName returns the label shown to the player.
func (k Kind) DisplayName() string {
	switch k {
	case Circle:
		return "Circle"
	case Square:
		return "Square"
	case Triangle:
		return "Triangle"
	case Star:
		return "Star"
	case Heart:
		return "Heart"
	case Zigzag:
		return "Lightning"
	default:
		return string(k)
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	for _, o := range Order {
		if k == o {
			return true
		}
	}
	return false
}

// Generator builds paths that fit inside a play area.
type Generator struct {
	area   geom.Bounds
	margin float64
}

// NewGenerator creates a Generator for the given area. A negative margin is treated as zero.
func NewGenerator(area geom.Bounds, margin float64) *Generator {
	if margin < 0 {
		margin = 0
	}
	return &Generator{area: area, margin: margin}
}

// Generate builds the path for kind centered on center. The result depends
// only on the arguments and the generator's area, and every node starts un-hit.
// Nodes that would fall outside the area minus the margin are clamped inside it.
func (g *Generator) Generate(kind Kind, center geom.Vec2, iteration int) (*Path, error) {
	var points []geom.Vec2
	radius := float64(DefaultNodeRadius)

	switch kind {
	case Circle:
		points = circle(center)
	case Square:
		points = square(center)
	case Triangle:
		points = triangle(center)
	case Star:
		points = star(center)
		radius = StarNodeRadius
	case Heart:
		points = heart(center)
	case Zigzag:
		points = zigzag(center)
	default:
		return nil, fmt.Errorf("generate %q: %w", kind, ErrUnknownKind)
	}

	path := &Path{
		Kind:      kind,
		Iteration: iteration,
		Center:    center,
		Nodes:     make([]Node, len(points)),
	}
	for i, p := range points {
		path.Nodes[i] = Node{
			Index:  i,
			Pos:    g.area.Clamp(p, g.margin),
			Radius: radius,
		}
	}
	return path, nil
}

// pixel truncates toward zero so node positions land on whole pixels.
func pixel(x, y float64) geom.Vec2 {
	return geom.Vec2{X: math.Trunc(x), Y: math.Trunc(y)}
}

// circle places 12 nodes evenly on a ring of radius 180.
func circle(c geom.Vec2) []geom.Vec2 {
	const n, r = 12, 180.0
	pts := make([]geom.Vec2, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / n
		pts = append(pts, pixel(c.X+r*math.Cos(a), c.Y+r*math.Sin(a)))
	}
	return pts
}

// square walks the perimeter clockwise from the top-left corner, four points
// per side with shared corners emitted once.
func square(c geom.Vec2) []geom.Vec2 {
	const size, perSide = 300.0, 4
	half := size / 2
	step := func(i int) float64 { return math.Floor(size * float64(i) / (perSide - 1)) }

	pts := make([]geom.Vec2, 0, 4*(perSide-1))
	for i := 0; i < perSide; i++ {
		pts = append(pts, geom.Vec2{X: c.X - half + step(i), Y: c.Y - half})
	}
	for i := 1; i < perSide; i++ {
		pts = append(pts, geom.Vec2{X: c.X + half, Y: c.Y - half + step(i)})
	}
	for i := 1; i < perSide; i++ {
		pts = append(pts, geom.Vec2{X: c.X + half - step(i), Y: c.Y + half})
	}
	for i := 1; i < perSide-1; i++ {
		pts = append(pts, geom.Vec2{X: c.X - half, Y: c.Y + half - step(i)})
	}
	return pts
}

// triangle emits each vertex followed by three interpolated points toward the next vertex.
func triangle(c geom.Vec2) []geom.Vec2 {
	const r, perEdge = 200.0, 4
	vertex := func(i int) geom.Vec2 {
		a := 2*math.Pi*float64(i)/3 - math.Pi/2
		return geom.Vec2{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}

	pts := make([]geom.Vec2, 0, 3*perEdge)
	for i := 0; i < 3; i++ {
		from, to := vertex(i), vertex((i+1)%3)
		for j := 0; j < perEdge; j++ {
			p := from.Lerp(to, float64(j)/perEdge)
			pts = append(pts, pixel(p.X, p.Y))
		}
	}
	return pts
}

// star alternates outer and inner radii, starting at the top.
func star(c geom.Vec2) []geom.Vec2 {
	const n, outer, inner = 10, 200.0, 80.0
	pts := make([]geom.Vec2, 0, n)
	for i := 0; i < n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := 2*math.Pi*float64(i)/n - math.Pi/2
		pts = append(pts, pixel(c.X+r*math.Cos(a), c.Y+r*math.Sin(a)))
	}
	return pts
}

// heart samples the classic parametric heart curve, scaled by 12 and raised 30px.
func heart(c geom.Vec2) []geom.Vec2 {
	const n, scale, lift = 16, 12.0, 30.0
	pts := make([]geom.Vec2, 0, n)
	for i := 0; i < n; i++ {
		t := 2 * math.Pi * float64(i) / n
		x := 16 * math.Pow(math.Sin(t), 3)
		y := -(13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t))
		pts = append(pts, pixel(c.X+x*scale, c.Y+y*scale-lift))
	}
	return pts
}

// zigzag alternates between two rows across a 400x200 box.
func zigzag(c geom.Vec2) []geom.Vec2 {
	const zigs, width, height = 5, 400.0, 200.0
	startX := c.X - width/2
	startY := c.Y - height/2

	pts := make([]geom.Vec2, 0, 2*zigs+1)
	for i := 0; i <= 2*zigs; i++ {
		y := startY
		if i%2 == 1 {
			y += height
		}
		pts = append(pts, pixel(startX+math.Floor(width*float64(i)/(2*zigs)), y))
	}
	return pts
}
