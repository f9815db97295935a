package prim

import "fmt"

// Kind is a primitive class. Each class has its own draw strategy.
type Kind uint8

// Primitive classes.
const (
	KindPoint Kind = iota
	KindLine
	KindTriangle

	// KindCount is the number of primitive classes.
	KindCount
)

// String returns the class name.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Vertices returns the number of vertices a primitive of class k uses.
func (k Kind) Vertices() int {
	switch k {
	case KindPoint:
		return 1
	case KindLine:
		return 2
	case KindTriangle:
		return 3
	default:
		return 0
	}
}

// Primitive is one element of a batch. Only the first Kind.Vertices()
// entries of V are meaningful.
type Primitive struct {
	Kind Kind
	V    [3]Vertex
}

// Point returns a point primitive.
func Point(a Vertex) Primitive {
	return Primitive{Kind: KindPoint, V: [3]Vertex{a}}
}

// Line returns a line primitive.
func Line(a, b Vertex) Primitive {
	return Primitive{Kind: KindLine, V: [3]Vertex{a, b}}
}

// Triangle returns a triangle primitive.
func Triangle(a, b, c Vertex) Primitive {
	return Primitive{Kind: KindTriangle, V: [3]Vertex{a, b, c}}
}

// Batch is an ordered primitive stream submitted in one call.
type Batch []Primitive
