// Package iobj defines IObj, the tagged handle used as a common
// identifier for a vertex, edge, or face of some polyhedron. It is the
// Go analogue of carve::csg::IObj in the original Carve CSG library:
// there, a hand-written hash functor (IObj_hash) was required to use
// it as a std::unordered_map key; here a plain comparable struct does
// the same job natively, since (kind, pointer) is already comparable.
package iobj

import "github.com/lignin-csg/lignin/pkg/kernel/meshcsg/polyhedron"

// Kind identifies which primitive an IObj refers to.
type Kind int

const (
	// None is the zero value: an IObj referring to nothing.
	None Kind = iota
	VertexKind
	EdgeKind
	FaceKind
)

// IObj is a small, copyable, comparable handle identifying one vertex,
// edge, or face. Its equality and use as a map key are governed by the
// (Kind, pointer) pair — a None IObj never equals another None IObj
// unless both are the zero value, since all the pointer fields are
// nil in that case.
type IObj struct {
	kind   Kind
	vertex *polyhedron.Vertex
	edge   *polyhedron.Edge
	face   *polyhedron.Face
}

// FromVertex returns an IObj identifying v.
func FromVertex(v *polyhedron.Vertex) IObj { return IObj{kind: VertexKind, vertex: v} }

// FromEdge returns an IObj identifying e.
func FromEdge(e *polyhedron.Edge) IObj { return IObj{kind: EdgeKind, edge: e} }

// FromFace returns an IObj identifying f.
func FromFace(f *polyhedron.Face) IObj { return IObj{kind: FaceKind, face: f} }

// Kind reports which primitive this IObj refers to.
func (o IObj) Kind() Kind { return o.kind }

// Vertex returns the referenced vertex, or nil if o is not a vertex IObj.
func (o IObj) Vertex() *polyhedron.Vertex { return o.vertex }

// Edge returns the referenced edge, or nil if o is not an edge IObj.
func (o IObj) Edge() *polyhedron.Edge { return o.edge }

// Face returns the referenced face, or nil if o is not a face IObj.
func (o IObj) Face() *polyhedron.Face { return o.face }

// IsNone reports whether o refers to nothing.
func (o IObj) IsNone() bool { return o.kind == None }

// FacesForObject dispatches on obj's kind and appends the faces it
// identifies, or is incident on, to out:
//
//   - a vertex IObj appends its incident faces;
//   - an edge IObj appends its bordering faces, skipping a boundary
//     edge's nil side;
//   - a face IObj appends just itself;
//   - a None IObj appends nothing.
//
// The owning polyhedron is read off the primitive itself (Vertex.Owner /
// Edge.Owner), the same way carve::csg::Intersections::facesForVertex
// reaches v->owner rather than taking it as a parameter.
func FacesForObject(obj IObj, out []*polyhedron.Face) []*polyhedron.Face {
	switch obj.kind {
	case VertexKind:
		p := obj.vertex.Owner
		out = append(out, p.FacesOfVertexIndex(p.VertexIndex(obj.vertex))...)
	case EdgeKind:
		p := obj.edge.Owner
		for _, f := range p.FacesOfEdgeIndex(p.EdgeIndex(obj.edge)) {
			if f != nil {
				out = append(out, f)
			}
		}
	case FaceKind:
		out = append(out, obj.face)
	}
	return out
}
