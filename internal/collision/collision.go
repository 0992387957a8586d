// Package collision answers overlap questions for node placement and
// implements the grid "magnet" used while placing and dragging nodes.
package collision

import "math"

// Rect is an axis-aligned box in world coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Overlaps reports whether r and o share any interior area. Touching edges
// do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Y < o.Y+o.H &&
		r.Y+r.H > o.Y
}

// Entry is one occupied box in an Index.
type Entry struct {
	ID   string
	Rect Rect
}

// Index is a snapshot of occupied boxes. It is rebuilt per query by its
// callers; diagrams are small enough that a linear scan is fine.
type Index struct {
	entries []Entry
}

// NewIndex builds an index over the given entries.
func NewIndex(entries []Entry) *Index {
	return &Index{entries: entries}
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// HasCollision reports whether r overlaps any entry other than the one
// with the given id. Pass an empty id for a node that does not exist yet.
func (ix *Index) HasCollision(id string, r Rect) bool {
	for _, e := range ix.entries {
		if id != "" && e.ID == id {
			continue
		}
		if r.Overlaps(e.Rect) {
			return true
		}
	}
	return false
}

// Colliding returns the ids of every entry r overlaps, skipping id.
func (ix *Index) Colliding(id string, r Rect) []string {
	var hits []string
	for _, e := range ix.entries {
		if id != "" && e.ID == id {
			continue
		}
		if r.Overlaps(e.Rect) {
			hits = append(hits, e.ID)
		}
	}
	return hits
}

// Snap rounds v to the nearest multiple of grid. A non-positive grid
// leaves v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapPoint snaps both axes independently.
func SnapPoint(x, y, grid float64) (float64, float64) {
	return Snap(x, grid), Snap(y, grid)
}

// Nudge walks (x, y) diagonally by step until collides returns false or
// attempts run out. The last tried position is returned either way, and
// ok tells whether a free spot was found.
func Nudge(x, y, step float64, attempts int, collides func(x, y float64) bool) (float64, float64, bool) {
	for i := 0; i < attempts; i++ {
		if !collides(x, y) {
			return x, y, true
		}
		x += step
		y += step
	}
	return x, y, !collides(x, y)
}

// Policy holds the two placement modes the editor toggles.
type Policy struct {
	// Magnet snaps positions to the grid.
	Magnet bool
	// Layer rejects placements that overlap another node.
	Layer bool
}
