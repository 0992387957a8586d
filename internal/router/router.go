// Package router turns wires into drawable screen-space curves and finds
// the wire under the pointer.
package router

import (
	"go.uber.org/zap"

	"shegen/internal/diagram"
	"shegen/internal/viewport"
)

// Hit is the result of a wire hit test.
type Hit struct {
	WireID string
	// Mid is the midpoint between the two port centers, where a delete
	// affordance is drawn.
	Mid      Point
	Distance float64
}

// Router caches one Path per wire. Paths go stale whenever a node moves,
// the viewport changes or a wire is added, so callers run UpdateAll after
// each of those.
type Router struct {
	model  *diagram.Model
	view   *viewport.Viewport
	logger *zap.Logger

	paths map[string]Path
	order []string
}

// New returns a router over a model and viewport. A nil logger is allowed.
func New(model *diagram.Model, view *viewport.Viewport, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		model:  model,
		view:   view,
		logger: logger,
		paths:  make(map[string]Path),
	}
}

// PortPosition returns the screen-space center of a port: node base
// position plus the port offset, through the current transform.
func (r *Router) PortPosition(ref diagram.PortRef) (Point, bool) {
	p, ok := r.model.PortPosition(ref)
	if !ok {
		return Point{}, false
	}
	return r.view.WorldToScreen(p), true
}

// UpdateAll recomputes every wire path and drops paths of deleted wires.
func (r *Router) UpdateAll() {
	wires := r.model.Wires()
	paths := make(map[string]Path, len(wires))
	order := make([]string, 0, len(wires))
	for _, w := range wires {
		p, ok := r.compute(w)
		if !ok {
			continue
		}
		paths[w.ID] = p
		order = append(order, w.ID)
	}
	r.paths = paths
	r.order = order
}

// Update recomputes a single wire. It returns false if the wire is gone,
// in which case its cached path is dropped too.
func (r *Router) Update(wireID string) bool {
	w, ok := r.model.Wire(wireID)
	if !ok {
		r.forget(wireID)
		return false
	}
	p, ok := r.compute(w)
	if !ok {
		r.forget(wireID)
		return false
	}
	if _, seen := r.paths[wireID]; !seen {
		r.order = append(r.order, wireID)
	}
	r.paths[wireID] = p
	return true
}

func (r *Router) compute(w *diagram.Wire) (Path, bool) {
	start, ok := r.PortPosition(w.Source)
	if !ok {
		r.logger.Warn("wire source missing", zap.String("wire", w.ID), zap.Stringer("port", w.Source))
		return Path{}, false
	}
	end, ok := r.PortPosition(w.Target)
	if !ok {
		r.logger.Warn("wire target missing", zap.String("wire", w.ID), zap.Stringer("port", w.Target))
		return Path{}, false
	}
	return NewPath(w.ID, start, end), true
}

func (r *Router) forget(wireID string) {
	if _, ok := r.paths[wireID]; !ok {
		return
	}
	delete(r.paths, wireID)
	for i, id := range r.order {
		if id == wireID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Path returns the cached path of a wire.
func (r *Router) Path(wireID string) (Path, bool) {
	p, ok := r.paths[wireID]
	return p, ok
}

// Paths returns cached paths in wire creation order.
func (r *Router) Paths() []Path {
	out := make([]Path, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.paths[id])
	}
	return out
}

// HitTest returns the wire nearest to screen point p, if it is within
// tolerance.
func (r *Router) HitTest(p Point, tolerance float64) (Hit, bool) {
	var best Hit
	found := false
	for _, id := range r.order {
		path := r.paths[id]
		d := path.Distance(p)
		if d > tolerance {
			continue
		}
		if !found || d < best.Distance {
			best = Hit{WireID: id, Mid: path.Mid, Distance: d}
			found = true
		}
	}
	return best, found
}

// Preview is the curve drawn while a connection is being dragged out
// from a port.
func (r *Router) Preview(from, to Point) Path {
	return NewPath("", from, to)
}
