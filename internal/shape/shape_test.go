package shape

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ayusman/handarcade/internal/geom"
)

var area = geom.Bounds{Width: 800, Height: 600}

func TestGenerate_NodeCounts(t *testing.T) {
	tests := []struct {
		kind       Kind
		wantNodes  int
		wantRadius float64
	}{
		{Circle, 12, DefaultNodeRadius},
		{Square, 12, DefaultNodeRadius},
		{Triangle, 12, DefaultNodeRadius},
		{Star, 10, StarNodeRadius},
		{Heart, 16, DefaultNodeRadius},
		{Zigzag, 11, DefaultNodeRadius},
	}

	g := NewGenerator(area, DefaultMargin)
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			path, err := g.Generate(tt.kind, area.Center(), 0)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if path.Len() != tt.wantNodes {
				t.Errorf("Len() = %d, want %d", path.Len(), tt.wantNodes)
			}
			for _, n := range path.Nodes {
				if n.Radius != tt.wantRadius {
					t.Errorf("node %d radius = %f, want %f", n.Index, n.Radius, tt.wantRadius)
				}
			}
		})
	}
}

func TestGenerate_Invariants(t *testing.T) {
	g := NewGenerator(area, DefaultMargin)

	for i, kind := range Order {
		path, err := g.Generate(kind, area.Center(), i)
		if err != nil {
			t.Fatalf("Generate(%s) error = %v", kind, err)
		}
		if path.Len() < 3 {
			t.Errorf("%s: %d nodes, want at least 3", kind, path.Len())
		}
		if path.HitCount() != 0 {
			t.Errorf("%s: %d nodes pre-hit", kind, path.HitCount())
		}
		for j, n := range path.Nodes {
			if n.Index != j {
				t.Errorf("%s: node %d has index %d", kind, j, n.Index)
			}
			if !area.Contains(n.Pos, DefaultMargin) {
				t.Errorf("%s: node %d at %+v outside play area margin", kind, j, n.Pos)
			}
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator(area, DefaultMargin)
	c := geom.Vec2{X: 410, Y: 290}

	for _, kind := range Order {
		a, err := g.Generate(kind, c, 3)
		if err != nil {
			t.Fatalf("Generate(%s) error = %v", kind, err)
		}
		b, err := g.Generate(kind, c, 3)
		if err != nil {
			t.Fatalf("Generate(%s) error = %v", kind, err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: two calls with identical arguments differ", kind)
		}
	}
}

func TestGenerate_UnknownKind(t *testing.T) {
	g := NewGenerator(area, DefaultMargin)

	path, err := g.Generate(Kind("hexagon"), area.Center(), 0)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
	if path != nil {
		t.Error("expected nil path for unknown kind")
	}
}

func TestGenerate_ClampsOffCenterShapes(t *testing.T) {
	g := NewGenerator(area, DefaultMargin)

	// A circle centered in a corner would leave the screen without clamping.
	path, err := g.Generate(Circle, geom.Vec2{X: 0, Y: 0}, 0)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, n := range path.Nodes {
		if !area.Contains(n.Pos, DefaultMargin) {
			t.Errorf("node %d at %+v escaped the play area", n.Index, n.Pos)
		}
	}
}

func TestSquare_CornersNotDuplicated(t *testing.T) {
	pts := square(area.Center())
	seen := make(map[geom.Vec2]bool)
	for _, p := range pts {
		if seen[p] {
			t.Errorf("duplicate square point %+v", p)
		}
		seen[p] = true
	}
	if pts[0] != (geom.Vec2{X: 250, Y: 150}) {
		t.Errorf("first point = %+v, want top-left corner {250 150}", pts[0])
	}
}

func TestZigzag_AlternatesRows(t *testing.T) {
	pts := zigzag(area.Center())
	for i, p := range pts {
		want := 200.0
		if i%2 == 1 {
			want = 400
		}
		if p.Y != want {
			t.Errorf("point %d y = %f, want %f", i, p.Y, want)
		}
	}
	if pts[0].X != 200 || pts[len(pts)-1].X != 600 {
		t.Errorf("zigzag spans %f..%f, want 200..600", pts[0].X, pts[len(pts)-1].X)
	}
}

func TestKindFor_Cycles(t *testing.T) {
	for i := 0; i < 3*len(Order); i++ {
		if got, want := KindFor(i), Order[i%len(Order)]; got != want {
			t.Errorf("KindFor(%d) = %s, want %s", i, got, want)
		}
	}
	if KindFor(-1) != Zigzag {
		t.Errorf("KindFor(-1) = %s, want %s", KindFor(-1), Zigzag)
	}
}

func TestKind_DisplayName(t *testing.T) {
	if Zigzag.DisplayName() != "Lightning" {
		t.Errorf("Zigzag.DisplayName() = %q", Zigzag.DisplayName())
	}
	if !Heart.Valid() || Kind("blob").Valid() {
		t.Error("Valid() misclassified kinds")
	}
}

func TestPath_CloneIsIndependent(t *testing.T) {
	g := NewGenerator(area, DefaultMargin)
	path, _ := g.Generate(Star, area.Center(), 0)

	c := path.Clone()
	c.Nodes[0].Hit = true
	if path.Nodes[0].Hit {
		t.Error("mutating the clone changed the original")
	}
}
