package viewport

// BeginPan starts a drag-to-pan gesture at a screen point.
func (v *Viewport) BeginPan(sx, sy float64) {
	v.pan = Panning
	v.panStartX = sx - v.TranslateX
	v.panStartY = sy - v.TranslateY
}

// PanTo moves the gesture to a new screen point. It reports whether the
// viewport is panning; outside a gesture it does nothing.
func (v *Viewport) PanTo(sx, sy float64) bool {
	if v.pan != Panning {
		return false
	}
	minX, minY := v.TranslateBounds()
	v.TranslateX = clamp(sx-v.panStartX, minX)
	v.TranslateY = clamp(sy-v.panStartY, minY)
	return true
}

// EndPan finishes the gesture. Also used when the pointer leaves the
// surface.
func (v *Viewport) EndPan() {
	v.pan = PanIdle
}

// IsPanning reports the gesture state.
func (v *Viewport) IsPanning() bool {
	return v.pan == Panning
}

// PanBy shifts the translation by a screen delta, clamped. Used for
// keyboard panning.
func (v *Viewport) PanBy(dx, dy float64) {
	minX, minY := v.TranslateBounds()
	v.TranslateX = clamp(v.TranslateX+dx, minX)
	v.TranslateY = clamp(v.TranslateY+dy, minY)
}
