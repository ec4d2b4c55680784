package state

// SinglePointPadding is the half-size of the box produced for a one-point path,
// so that a tap still yields a non-degenerate region.
const SinglePointPadding = 1.0

// BoundingBox is an axis-aligned rectangle used as an erase query region.
type BoundingBox struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// BoundingBoxOf returns the tight box around points. A single point gets a
// padded box centered on it.
func BoundingBoxOf(points []Point) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, ErrEmptyInput
	}

	if len(points) == 1 {
		p := points[0]
		return BoundingBox{
			MinX: p.X - SinglePointPadding,
			MaxX: p.X + SinglePointPadding,
			MinY: p.Y - SinglePointPadding,
			MaxY: p.Y + SinglePointPadding,
		}, nil
	}

	box := BoundingBox{
		MinX: points[0].X, MaxX: points[0].X,
		MinY: points[0].Y, MaxY: points[0].Y,
	}
	for _, p := range points[1:] {
		if p.X < box.MinX {
			box.MinX = p.X
		}
		if p.X > box.MaxX {
			box.MaxX = p.X
		}
		if p.Y < box.MinY {
			box.MinY = p.Y
		}
		if p.Y > box.MaxY {
			box.MaxY = p.Y
		}
	}
	return box, nil
}

// Valid reports whether the min/max ordering invariant holds.
func (b BoundingBox) Valid() bool {
	return b.MinX <= b.MaxX && b.MinY <= b.MaxY
}

func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

// Contains is inclusive on every edge.
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX &&
		p.Y >= b.MinY && p.Y <= b.MaxY
}

// Touches reports whether any point of path lies inside the box. Erasing is
// point based: a stroke whose segments cross the box without a vertex inside
// it is not touched.
func (b BoundingBox) Touches(path []Point) bool {
	for _, p := range path {
		if b.Contains(p) {
			return true
		}
	}
	return false
}
