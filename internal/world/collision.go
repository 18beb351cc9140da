package world

// CollisionHandler resolves an overlap between two bodies. It reports
// whether it changed anything.
type CollisionHandler interface {
	HandleCollision(a, b *Body) bool
}

// CollisionHandlerFunc adapts a function to CollisionHandler.
type CollisionHandlerFunc func(a, b *Body) bool

func (f CollisionHandlerFunc) HandleCollision(a, b *Body) bool { return f(a, b) }

// StandardCollisionHandler pushes a dynamic body out of a static one along
// the axis of least penetration. A wide, flat overlap separates vertically
// and the dynamic body picks up the static body's Y friction on its X axis,
// so standing on a floor slows horizontal motion. A tall overlap separates
// horizontally with the X friction feeding the Y axis. Other pairs are left
// alone.
type StandardCollisionHandler struct{}

func (StandardCollisionHandler) HandleCollision(a, b *Body) bool {
	var dyn, st *Body
	switch {
	case a.Type == Dynamic && b.Type == Static:
		dyn, st = a, b
	case a.Type == Static && b.Type == Dynamic:
		dyn, st = b, a
	default:
		return false
	}

	db, sb := dyn.RotatedBounds(), st.RotatedBounds()
	overlap, ok := db.Intersection(sb)
	if !ok {
		return false
	}

	if overlap.Width > overlap.Height {
		if db.CenterY() < sb.CenterY() {
			dyn.Bounds.Y -= overlap.Height
		} else {
			dyn.Bounds.Y += overlap.Height
		}
		dyn.Physics.FrictionOnSelf.X += st.Physics.FrictionToApply.Y
	} else {
		if db.CenterX() < sb.CenterX() {
			dyn.Bounds.X -= overlap.Width
		} else {
			dyn.Bounds.X += overlap.Width
		}
		dyn.Physics.FrictionOnSelf.Y += st.Physics.FrictionToApply.X
	}
	return true
}
