package metadata

/** @brief Number of float components per vertex (x, y, z). */
const VertexComponents = 3

type GeometryKind uint8

const (
	GeometryTriangle GeometryKind = iota
	GeometryQuad
)

func ParseGeometryKind(name string) (GeometryKind, bool) {
	switch name {
	case "triangle":
		return GeometryTriangle, true
	case "quad":
		return GeometryQuad, true
	}
	return 0, false
}

func (k GeometryKind) String() string {
	if k == GeometryQuad {
		return "quad"
	}
	return "triangle"
}

/**
 * @brief Vertex positions in normalized device coordinates, drawn as a
 * triangle list.
 */
func (k GeometryKind) Vertices() []float32 {
	switch k {
	case GeometryQuad:
		return []float32{
			-1.0, -1.0, 0.0,
			1.0, -1.0, 0.0,
			1.0, 1.0, 0.0,
			-1.0, -1.0, 0.0,
			1.0, 1.0, 0.0,
			-1.0, 1.0, 0.0,
		}
	default:
		return []float32{
			-0.5, -0.5, 0.0, // bottom left
			0.5, -0.5, 0.0, // bottom right
			0.0, 0.5, 0.0, // top
		}
	}
}

/**
 * @brief An immutable vertex buffer uploaded once and re-bound every frame.
 */
type Geometry struct {
	/** @brief The backend buffer name. */
	ID uint32
	/** @brief The number of vertices. */
	VertexCount uint32
	/** @brief Positions, VertexComponents floats per vertex. */
	Vertices []float32
	/** @brief Backend specific data. */
	InternalData interface{}
}
