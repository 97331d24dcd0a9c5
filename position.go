package textart

import "fmt"

// Position is a signed cell coordinate. Negative values are legal because
// layers may be offset above or left of the buffer origin.
type Position struct {
	X, Y int
}

// Pos is shorthand for constructing a Position.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// PositionFromIndex converts a linear row-major index into a Position for
// the given line width.
func PositionFromIndex(i, width int) Position {
	return Position{X: i % width, Y: i / width}
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by the negation of q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// WithX returns p with a replaced X.
func (p Position) WithX(x int) Position {
	return Position{X: x, Y: p.Y}
}

// WithY returns p with a replaced Y.
func (p Position) WithY(y int) Position {
	return Position{X: p.X, Y: y}
}

// Less orders positions row-major: by Y first, then X.
func (p Position) Less(q Position) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

func (p Position) String() string {
	return fmt.Sprintf("(x: %d, y: %d)", p.X, p.Y)
}

// Size is a width/height pair measured in cells (or pixels for rasters).
type Size struct {
	Width, Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rectangle is a half-open region [Start, Start+Size) on the cell grid.
type Rectangle struct {
	Start Position
	Size  Size
}

// Rect constructs a Rectangle from its corner and dimensions.
func Rect(x, y, w, h int) Rectangle {
	return Rectangle{Start: Position{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// RectFromCorners constructs the smallest Rectangle covering both corners
// inclusively.
func RectFromCorners(a, b Position) Rectangle {
	x0, x1 := minInt(a.X, b.X), maxInt(a.X, b.X)
	y0, y1 := minInt(a.Y, b.Y), maxInt(a.Y, b.Y)
	return Rect(x0, y0, x1-x0+1, y1-y0+1)
}

// Contains reports whether p lies inside r.
func (r Rectangle) Contains(p Position) bool {
	return p.X >= r.Start.X && p.X < r.Start.X+r.Size.Width &&
		p.Y >= r.Start.Y && p.Y < r.Start.Y+r.Size.Height
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rectangle) ContainsRect(o Rectangle) bool {
	return o.Start.X >= r.Start.X && o.Start.Y >= r.Start.Y &&
		o.Start.X+o.Size.Width <= r.Start.X+r.Size.Width &&
		o.Start.Y+o.Size.Height <= r.Start.Y+r.Size.Height
}

// Intersect returns the overlap of r and o; the result has non-positive
// size when they are disjoint.
func (r Rectangle) Intersect(o Rectangle) Rectangle {
	x0 := maxInt(r.Start.X, o.Start.X)
	y0 := maxInt(r.Start.Y, o.Start.Y)
	x1 := minInt(r.Start.X+r.Size.Width, o.Start.X+o.Size.Width)
	y1 := minInt(r.Start.Y+r.Size.Height, o.Start.Y+o.Size.Height)
	return Rect(x0, y0, x1-x0, y1-y0)
}

// Union returns the smallest rectangle covering both r and o.
func (r Rectangle) Union(o Rectangle) Rectangle {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x0 := minInt(r.Start.X, o.Start.X)
	y0 := minInt(r.Start.Y, o.Start.Y)
	x1 := maxInt(r.Start.X+r.Size.Width, o.Start.X+o.Size.Width)
	y1 := maxInt(r.Start.Y+r.Size.Height, o.Start.Y+o.Size.Height)
	return Rect(x0, y0, x1-x0, y1-y0)
}

// Translate returns r moved by delta.
func (r Rectangle) Translate(delta Position) Rectangle {
	return Rectangle{Start: r.Start.Add(delta), Size: r.Size}
}

// IsEmpty reports whether r covers no cells.
func (r Rectangle) IsEmpty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
