package vertex

import "github.com/Faultbox/xenotech/pkg/math"

// Direction identifies one of the six axis-aligned block faces.
// It is stored in the top byte of word 2.
type Direction uint8

// Face directions in wire order.
const (
	Left Direction = iota
	Right
	Forward
	Back
	Up
	Down
)

// DirectionCount is the number of valid face directions.
const DirectionCount = 6

// Directions lists every face in wire order.
var Directions = [DirectionCount]Direction{Left, Right, Forward, Back, Up, Down}

// normals is indexed by Direction. The pipeline stores the negated face
// normal, so Left (the -X face) maps to +X.
var normals = [DirectionCount]math.Vec3{
	{X: 1},
	{X: -1},
	{Y: 1},
	{Y: -1},
	{Z: 1},
	{Z: -1},
}

// Valid reports whether d is one of the six face codes.
func (d Direction) Valid() bool {
	return d < DirectionCount
}

// Normal returns the stored normal for d. Codes outside 0-5 are a caller
// error and yield the zero vector.
func (d Direction) Normal() math.Vec3 {
	if !d.Valid() {
		return math.Vec3{}
	}
	return normals[d]
}

// Opposite returns the face on the other side of the block.
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return d
	}
	return d ^ 1
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Forward:
		return "forward"
	case Back:
		return "back"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "invalid"
}
