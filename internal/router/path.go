package router

import (
	"fmt"
	"math"

	"shegen/internal/viewport"
)

// Point is a screen-space position.
type Point = viewport.Point

// Path is the drawn geometry of one wire: a quadratic from Start bending
// through Control to Mid, then the reflected quadratic from Mid to End.
// The reflected control is (Control.X, End.Y), so the curve leaves and
// enters horizontally.
type Path struct {
	WireID  string
	Start   Point
	Control Point
	Mid     Point
	End     Point
}

// NewPath builds the curve between two port centers.
func NewPath(wireID string, start, end Point) Path {
	mid := Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	return Path{
		WireID:  wireID,
		Start:   start,
		Control: Point{X: mid.X, Y: start.Y},
		Mid:     mid,
		End:     end,
	}
}

// Reflected returns the implicit control point of the second segment.
func (p Path) Reflected() Point {
	return Point{X: 2*p.Mid.X - p.Control.X, Y: 2*p.Mid.Y - p.Control.Y}
}

// D returns SVG path data.
func (p Path) D() string {
	return fmt.Sprintf("M %g %g Q %g %g, %g %g T %g %g",
		p.Start.X, p.Start.Y, p.Control.X, p.Control.Y, p.Mid.X, p.Mid.Y, p.End.X, p.End.Y)
}

// At evaluates the curve for t in [0, 1]. At(0) is Start, At(0.5) is Mid
// and At(1) is End.
func (p Path) At(t float64) Point {
	switch {
	case t <= 0:
		return p.Start
	case t >= 1:
		return p.End
	case t < 0.5:
		return quad(p.Start, p.Control, p.Mid, 2*t)
	default:
		return quad(p.Mid, p.Reflected(), p.End, 2*t-1)
	}
}

// Sample returns n+1 evenly spaced points along the curve.
func (p Path) Sample(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = p.At(float64(i) / float64(n))
	}
	return pts
}

// Distance approximates the shortest distance from q to the curve.
func (p Path) Distance(q Point) float64 {
	pts := p.Sample(samplesPerPath)
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := segmentDistance(q, pts[i-1], pts[i]); d < best {
			best = d
		}
	}
	return best
}

const samplesPerPath = 48

func quad(a, c, b Point, u float64) Point {
	v := 1 - u
	return Point{
		X: v*v*a.X + 2*v*u*c.X + u*u*b.X,
		Y: v*v*a.Y + 2*v*u*c.Y + u*u*b.Y,
	}
}

func segmentDistance(q, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(q.X-a.X, q.Y-a.Y)
	}
	t := ((q.X-a.X)*dx + (q.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(q.X-(a.X+t*dx), q.Y-(a.Y+t*dy))
}
