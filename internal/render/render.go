// Package render draws engine snapshots with OpenCV: the play area on the
// left and the mirrored camera feed in a side panel on the right.
package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/geom"
	"github.com/ayusman/handarcade/internal/session"
	"github.com/ayusman/handarcade/internal/shape"
)

// DefaultPanelWidth is the width of the camera panel.
const DefaultPanelWidth = 400

var (
	white      = color.RGBA{255, 255, 255, 0}
	black      = color.RGBA{0, 0, 0, 0}
	red        = color.RGBA{255, 50, 50, 0}
	green      = color.RGBA{50, 255, 50, 0}
	blue       = color.RGBA{50, 150, 255, 0}
	yellow     = color.RGBA{255, 220, 50, 0}
	purple     = color.RGBA{200, 50, 255, 0}
	orange     = color.RGBA{255, 150, 50, 0}
	pink       = color.RGBA{255, 100, 180, 0}
	grey       = color.RGBA{200, 200, 200, 0}
	background = color.RGBA{240, 248, 255, 0}
	sky        = color.RGBA{135, 206, 235, 0}
	nightSky   = color.RGBA{25, 25, 50, 0}
	cactus     = color.RGBA{34, 139, 34, 0}
	dino       = color.RGBA{50, 150, 50, 0}
)

var shapeColors = map[shape.Kind]color.RGBA{
	shape.Circle:   purple,
	shape.Square:   blue,
	shape.Triangle: green,
	shape.Star:     yellow,
	shape.Heart:    red,
	shape.Zigzag:   orange,
}

var fruitColors = map[game.Variety]color.RGBA{
	game.Apple:      red,
	game.Orange:     orange,
	game.Watermelon: green,
}

// Config holds configuration options for the Renderer.
type Config struct {
	Area       geom.Bounds
	PanelWidth int
}

// DefaultConfig returns the 800x600 play area with a 400 pixel camera panel.
func DefaultConfig() Config {
	return Config{Area: game.DefaultArea, PanelWidth: DefaultPanelWidth}
}

// Renderer owns a reusable canvas. It is safe for concurrent use; Render
// serializes access to the canvas.
type Renderer struct {
	cfg    Config
	mu     sync.Mutex
	canvas gocv.Mat
	panel  gocv.Mat
}

// New allocates the canvas.
func New(cfg Config) *Renderer {
	if cfg.Area.Width <= 0 || cfg.Area.Height <= 0 {
		cfg.Area = game.DefaultArea
	}
	if cfg.PanelWidth < 0 {
		cfg.PanelWidth = 0
	}
	w := int(cfg.Area.Width) + cfg.PanelWidth
	h := int(cfg.Area.Height)
	return &Renderer{
		cfg:    cfg,
		canvas: gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3),
		panel:  gocv.NewMat(),
	}
}

// Size returns the canvas size in pixels.
func (r *Renderer) Size() (width, height int) {
	return int(r.cfg.Area.Width) + r.cfg.PanelWidth, int(r.cfg.Area.Height)
}

// Close releases the canvas.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panel.Close()
	return r.canvas.Close()
}

// Render draws snap and the optional camera frame and returns a copy of the
// canvas. The caller closes the result.
func (r *Renderer) Render(snap arcade.Snapshot, camera *gocv.Mat) gocv.Mat {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.canvas.SetTo(scalar(background))
	r.drawPanel(camera)

	switch snap.Mode {
	case session.Menu:
		r.drawMenu(snap)
	case session.Playing:
		r.drawGame(snap)
		r.drawTrail(snap)
		r.drawHUD(snap)
	case session.Complete:
		r.drawComplete(snap)
	}
	r.drawCursor(snap)

	return r.canvas.Clone()
}

// Encode renders snap and returns it as a JPEG.
func (r *Renderer) Encode(snap arcade.Snapshot, camera *gocv.Mat) ([]byte, error) {
	frame := r.Render(snap, camera)
	defer frame.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close.
	return append([]byte(nil), buf.GetBytes()...), nil
}

func (r *Renderer) drawPanel(camera *gocv.Mat) {
	if r.cfg.PanelWidth == 0 {
		return
	}
	x0 := int(r.cfg.Area.Width)
	h := int(r.cfg.Area.Height)
	gocv.Rectangle(&r.canvas, image.Rect(x0, 0, x0+r.cfg.PanelWidth, h), black, -1)

	if camera == nil || camera.Empty() {
		putText(&r.canvas, "No camera", image.Pt(x0+20, h/2), 0.8, white)
		return
	}

	pw := r.cfg.PanelWidth
	ph := pw * camera.Rows() / max(1, camera.Cols())
	ph = min(ph, h)
	gocv.Resize(*camera, &r.panel, image.Pt(pw, ph), 0, 0, gocv.InterpolationLinear)

	roi := r.canvas.Region(image.Rect(x0, 0, x0+pw, ph))
	r.panel.CopyTo(&roi)
	roi.Close()
}

func (r *Renderer) drawMenu(snap arcade.Snapshot) {
	cx := int(r.cfg.Area.Width) / 2
	centered(&r.canvas, "Hand Arcade", cx, 100, 1.4, black)
	centered(&r.canvas, "Raise your hand and hold to start", cx, 200, 0.7, blue)

	y := 280
	for i, ex := range snap.Exercises {
		c := black
		if i == snap.ExerciseIndex {
			c = green
		}
		label := fmt.Sprintf("%d. %s", i+1, ex.Name)
		if ex.Best > 0 {
			label += fmt.Sprintf("  (best %d)", ex.Best)
		}
		centered(&r.canvas, label, cx, y, 0.7, c)
		y += 45
	}
	r.drawConfirm(snap)
}

func (r *Renderer) drawComplete(snap arcade.Snapshot) {
	cx := int(r.cfg.Area.Width) / 2
	centered(&r.canvas, "Exercise Complete!", cx, 150, 1.2, green)
	centered(&r.canvas, fmt.Sprintf("Score: %d", snap.Score), cx, 250, 1.0, black)
	centered(&r.canvas, fmt.Sprintf("Best: %d", snap.Best), cx, 300, 0.8, purple)
	if snap.Game != nil {
		centered(&r.canvas, statsLine(*snap.Game), cx, 350, 0.7, blue)
	}
	centered(&r.canvas, "Raise your hand for the next exercise", cx, 430, 0.7, black)
	r.drawConfirm(snap)
}

func (r *Renderer) drawConfirm(snap arcade.Snapshot) {
	if snap.Confirm <= 0 {
		return
	}
	cx, y := int(r.cfg.Area.Width)/2, int(r.cfg.Area.Height)-60
	gocv.Rectangle(&r.canvas, image.Rect(cx-150, y, cx+150, y+16), grey, 2)
	fill := int(300 * snap.Confirm)
	gocv.Rectangle(&r.canvas, image.Rect(cx-150, y, cx-150+fill, y+16), green, -1)
}

func (r *Renderer) drawHUD(snap arcade.Snapshot) {
	putText(&r.canvas, fmt.Sprintf("Score: %d", snap.Score), image.Pt(20, 40), 0.9, black)
	putText(&r.canvas, fmt.Sprintf("Time: %ds", snap.Remaining), image.Pt(20, 80), 0.9, black)
	putText(&r.canvas, snap.Exercise.String(), image.Pt(int(r.cfg.Area.Width)-260, 40), 0.8, blue)
	if snap.Game != nil {
		c := black
		if snap.Game.Path != nil {
			c = shapeColors[snap.Game.Path.Kind]
		}
		putText(&r.canvas, statsLine(*snap.Game), image.Pt(20, int(r.cfg.Area.Height)-20), 0.6, c)
	}
}

func statsLine(rs game.RenderState) string {
	switch rs.Exercise {
	case game.FruitSlicer:
		return fmt.Sprintf("Fruits sliced: %d", rs.Stats.Slices)
	case game.DodgeObstacles:
		return fmt.Sprintf("Hits: %d | Dodged: %d", rs.Stats.Hits, rs.Stats.Dodges)
	case game.ShapeTrace:
		progress := 0
		if rs.Path != nil {
			progress = rs.Path.Len()
		}
		return fmt.Sprintf("Shape: %s | Progress: %d/%d | Completed: %d", rs.ShapeName, rs.Target, progress, rs.Stats.Completed)
	case game.SpeedTapper:
		return fmt.Sprintf("Targets tapped: %d", rs.Stats.Taps)
	case game.DinoRunner:
		return fmt.Sprintf("Best run: %d | Jumps: %d | Crashes: %d", rs.Stats.BestRun, rs.Stats.Jumps, rs.Stats.Crashes)
	}
	return ""
}

func (r *Renderer) drawGame(snap arcade.Snapshot) {
	rs := snap.Game
	if rs == nil {
		return
	}
	if rs.Exercise == game.DinoRunner {
		r.drawRunner(rs)
		return
	}

	for _, p := range rs.Projectiles {
		c := fruitColors[p.Variety]
		if p.Sliced {
			off := game.SliceOffset(p, rs.Frame)
			half := int(p.Radius / 2)
			gocv.Circle(&r.canvas, pt(p.Pos.Sub(geom.Vec2{X: off, Y: off})), half, c, -1)
			gocv.Circle(&r.canvas, pt(p.Pos.Add(geom.Vec2{X: off, Y: off})), half, c, -1)
			continue
		}
		gocv.Circle(&r.canvas, pt(p.Pos), int(p.Radius), c, -1)
		gocv.Circle(&r.canvas, pt(p.Pos), int(p.Radius), black, 2)
	}

	for _, o := range rs.Obstacles {
		gocv.Circle(&r.canvas, pt(o.Pos), int(o.Radius), red, -1)
	}
	if rs.Exercise == game.DodgeObstacles {
		gocv.Circle(&r.canvas, pt(rs.Player), int(rs.PlayerRadius), blue, -1)
	}

	if rs.Path != nil {
		r.drawPath(rs.Path, rs.Target)
	}

	for _, t := range rs.Targets {
		gocv.Circle(&r.canvas, pt(t.Pos), int(t.Radius), pink, -1)
		inner := int(t.Radius * t.Remaining())
		if inner > 0 {
			gocv.Circle(&r.canvas, pt(t.Pos), inner, white, 3)
		}
	}
}

func (r *Renderer) drawRunner(rs *game.RenderState) {
	w, h := int(r.cfg.Area.Width), int(r.cfg.Area.Height)
	bg, ink := sky, black
	if rs.Night {
		bg, ink = nightSky, white
	}
	gocv.Rectangle(&r.canvas, image.Rect(0, 0, w, h), bg, -1)

	ground := int(rs.GroundY)
	gocv.Line(&r.canvas, image.Pt(0, ground), image.Pt(w, ground), ink, 3)
	offset := (rs.Distance * 2) % 40
	for x := -offset; x < w; x += 40 {
		gocv.Line(&r.canvas, image.Pt(x, ground+4), image.Pt(x+20, ground+4), grey, 2)
	}

	for _, c := range rs.Cacti {
		gocv.Rectangle(&r.canvas, box(c), cactus, -1)
	}

	body := dino
	if rs.Crashed {
		body = red
	}
	gocv.Rectangle(&r.canvas, box(rs.Runner), body, -1)
	head := image.Rect(int(rs.Runner.X+rs.Runner.W)-15, int(rs.Runner.Y)-15, int(rs.Runner.X+rs.Runner.W)+10, int(rs.Runner.Y)+10)
	gocv.Rectangle(&r.canvas, head, body, -1)

	putText(&r.canvas, fmt.Sprintf("Run: %d  Speed: %.0f", rs.Distance, rs.Speed), image.Pt(20, 120), 0.7, ink)
	if rs.Crashed {
		centered(&r.canvas, "Crashed! Raise your hand to run again", w/2, h/2-60, 0.8, ink)
	}
}

func (r *Renderer) drawPath(p *shape.Path, target int) {
	c := shapeColors[p.Kind]
	n := p.Len()
	for i, node := range p.Nodes {
		next := p.Nodes[(i+1)%n]
		lc := grey
		if node.Hit && next.Hit {
			lc = c
		}
		gocv.Line(&r.canvas, pt(node.Pos), pt(next.Pos), lc, 4)
	}
	for i, node := range p.Nodes {
		switch {
		case node.Hit:
			gocv.Circle(&r.canvas, pt(node.Pos), int(node.Radius), c, -1)
		case i == target:
			gocv.Circle(&r.canvas, pt(node.Pos), int(node.Radius), c, 5)
			putText(&r.canvas, fmt.Sprint(i+1), pt(node.Pos).Sub(image.Pt(8, -8)), 0.7, c)
		default:
			gocv.Circle(&r.canvas, pt(node.Pos), int(node.Radius), grey, 2)
		}
	}
}

func (r *Renderer) drawTrail(snap arcade.Snapshot) {
	for i := 1; i < len(snap.Trail); i++ {
		thickness := 2 + 8*i/len(snap.Trail)
		gocv.Line(&r.canvas, pt(snap.Trail[i-1]), pt(snap.Trail[i]), yellow, thickness)
	}
}

func (r *Renderer) drawCursor(snap arcade.Snapshot) {
	if !snap.Detected {
		return
	}
	c := green
	if snap.Gesture.Up {
		c = orange
	}
	gocv.Circle(&r.canvas, pt(snap.Cursor), 15, c, -1)
	gocv.Circle(&r.canvas, pt(snap.Cursor), 15, black, 2)
}

func pt(v geom.Vec2) image.Point {
	return image.Pt(int(v.X), int(v.Y))
}

func box(b geom.Rect) image.Rectangle {
	return image.Rect(int(b.X), int(b.Y), int(b.X+b.W), int(b.Y+b.H))
}

func scalar(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

func putText(m *gocv.Mat, text string, at image.Point, scale float64, c color.RGBA) {
	gocv.PutText(m, text, at, gocv.FontHersheySimplex, scale, c, 2)
}

func centered(m *gocv.Mat, text string, cx, y int, scale float64, c color.RGBA) {
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, 2)
	putText(m, text, image.Pt(cx-size.X/2, y), scale, c)
}
