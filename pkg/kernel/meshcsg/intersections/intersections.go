// Package intersections implements the intersection relation store: a
// symmetric mapping from IObj to IObj recording where two primitives
// of two (possibly different) polyhedra meet, plus the higher-level
// incident-face queries the CSG classifier builds on.
//
// Grounded directly on carve::csg::Intersections in the Carve CSG
// library (original_source/include/carve/intersection.hpp), which
// every operation here mirrors.
package intersections

import (
	"sort"
	"unsafe"

	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/iobj"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/polyhedron"
)

// Intersections maps IObj -> (IObj -> intersection vertex). Both the
// outer map and each inner map have unique keys; record keeps the
// mapping symmetric by writing both directions in one call.
type Intersections struct {
	m map[iobj.IObj]map[iobj.IObj]*polyhedron.Vertex
}

// New returns an empty intersection store.
func New() *Intersections {
	return &Intersections{m: make(map[iobj.IObj]map[iobj.IObj]*polyhedron.Vertex)}
}

// Record stores that a and b intersect at point p, symmetrically: both
// store[a][b] and store[b][a] are set to p. If either entry already
// exists with a different point, the new point overwrites it —
// last-writer-wins, per the store's failure model; callers are expected
// not to record the same pair with conflicting points.
func (x *Intersections) Record(a, b iobj.IObj, p *polyhedron.Vertex) {
	x.put(a, b, p)
	x.put(b, a, p)
}

func (x *Intersections) put(a, b iobj.IObj, p *polyhedron.Vertex) {
	inner := x.m[a]
	if inner == nil {
		inner = make(map[iobj.IObj]*polyhedron.Vertex)
		x.m[a] = inner
	}
	inner[b] = p
}

// IntersectsExactly reports whether b is recorded as intersecting a.
func (x *Intersections) IntersectsExactly(a, b iobj.IObj) bool {
	inner, ok := x.m[a]
	if !ok {
		return false
	}
	_, ok = inner[b]
	return ok
}

// IntersectsVertex reports whether a intersects vertex v.
func (x *Intersections) IntersectsVertex(a iobj.IObj, v *polyhedron.Vertex) bool {
	return x.IntersectsExactly(a, iobj.FromVertex(v))
}

// IntersectsEdge reports whether a intersects edge e — either directly,
// or at either of e's endpoints. An intersection with an endpoint of e
// counts as intersecting e.
func (x *Intersections) IntersectsEdge(a iobj.IObj, e *polyhedron.Edge) bool {
	inner, ok := x.m[a]
	if !ok {
		return false
	}
	if _, ok := inner[iobj.FromEdge(e)]; ok {
		return true
	}
	if _, ok := inner[iobj.FromVertex(e.V1)]; ok {
		return true
	}
	if _, ok := inner[iobj.FromVertex(e.V2)]; ok {
		return true
	}
	return false
}

// IntersectsFace reports whether a intersects face f — directly, on
// one of f's edges, or on one of f's vertices.
func (x *Intersections) IntersectsFace(a iobj.IObj, f *polyhedron.Face) bool {
	inner, ok := x.m[a]
	if !ok {
		return false
	}
	if _, ok := inner[iobj.FromFace(f)]; ok {
		return true
	}
	for _, e := range f.EdgesOf() {
		if _, ok := inner[iobj.FromEdge(e)]; ok {
			return true
		}
	}
	for _, v := range f.Vertices() {
		if _, ok := inner[iobj.FromVertex(v)]; ok {
			return true
		}
	}
	return false
}

// EdgesIntersect reports whether e1 and e2 intersect, accounting for
// intersections recorded at either edge's endpoints. Symmetric by
// construction of the store.
func (x *Intersections) EdgesIntersect(e1, e2 *polyhedron.Edge) bool {
	return x.IntersectsEdge(iobj.FromVertex(e1.V1), e2) ||
		x.IntersectsEdge(iobj.FromVertex(e1.V2), e2) ||
		x.IntersectsEdge(iobj.FromEdge(e1), e2)
}

// EdgeFaceIntersect reports whether e and f intersect, accounting for
// intersections recorded at e's endpoints.
func (x *Intersections) EdgeFaceIntersect(e *polyhedron.Edge, f *polyhedron.Face) bool {
	return x.IntersectsFace(iobj.FromVertex(e.V1), f) ||
		x.IntersectsFace(iobj.FromVertex(e.V2), f) ||
		x.IntersectsFace(iobj.FromEdge(e), f)
}

// Collect iterates store[obj] and routes each key into the matching
// output slice by kind.
func (x *Intersections) Collect(obj iobj.IObj) (vertices []*polyhedron.Vertex, edges []*polyhedron.Edge, faces []*polyhedron.Face) {
	for k := range x.m[obj] {
		switch k.Kind() {
		case iobj.VertexKind:
			vertices = append(vertices, k.Vertex())
		case iobj.EdgeKind:
			edges = append(edges, k.Edge())
		case iobj.FaceKind:
			faces = append(faces, k.Face())
		}
	}
	return vertices, edges, faces
}

// IntersectedFaces collects the faces intersected by obj: every vertex
// and edge obj is recorded as intersecting is expanded to its incident
// faces via the connectivity adapter, and every face obj intersects
// directly is appended verbatim. No deduplication is applied beyond
// what the caller's use of the result provides.
func (x *Intersections) IntersectedFaces(obj iobj.IObj) []*polyhedron.Face {
	vertices, edges, faces := x.Collect(obj)

	var out []*polyhedron.Face
	for _, v := range vertices {
		out = iobj.FacesForObject(iobj.FromVertex(v), out)
	}
	for _, e := range edges {
		out = iobj.FacesForObject(iobj.FromEdge(e), out)
	}
	out = append(out, faces...)
	return out
}

// CommonFaces computes the intersection, over all vertices in verts, of
// each vertex's IntersectedFaces set — the faces shared by every vertex
// in the set. Uses a sorted-merge intersection (not a hash
// intersection) so results are in a stable, deterministic order, per
// the store's explicit requirement. Empty input yields empty output.
func (x *Intersections) CommonFaces(verts []*polyhedron.Vertex) []*polyhedron.Face {
	if len(verts) == 0 {
		return nil
	}

	working := sortedUniqueFaces(x.IntersectedFaces(iobj.FromVertex(verts[0])))
	for _, v := range verts[1:] {
		next := sortedUniqueFaces(x.IntersectedFaces(iobj.FromVertex(v)))
		working = sortedMergeIntersect(working, next)
		if len(working) == 0 {
			break
		}
	}
	return working
}

// Clear forgets all records.
func (x *Intersections) Clear() {
	x.m = make(map[iobj.IObj]map[iobj.IObj]*polyhedron.Vertex)
}

// faceOrdinal gives faces within one polyhedron a total order; faces
// from different polyhedra are ordered by the owning polyhedron's
// pointer address (comparePolyhedronPointers). Within CommonFaces,
// which only ever deals with faces of a single pair of input polyhedra,
// ordering first by owner pointer and then by face index is sufficient
// and deterministic for a given process run.
func faceOrdinal(f *polyhedron.Face) (owner *polyhedron.Polyhedron, index int) {
	return f.Owner, f.Owner.FaceIndex(f)
}

func sortedUniqueFaces(fs []*polyhedron.Face) []*polyhedron.Face {
	seen := make(map[*polyhedron.Face]bool, len(fs))
	out := make([]*polyhedron.Face, 0, len(fs))
	for _, f := range fs {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi, ii := faceOrdinal(out[i])
		oj, ij := faceOrdinal(out[j])
		if oi != oj {
			return comparePolyhedronPointers(oi, oj)
		}
		return ii < ij
	})
	return out
}

// comparePolyhedronPointers gives a deterministic (if arbitrary) total
// order between two distinct *Polyhedron values, so the sort above is
// well-defined regardless of which polyhedron a face belongs to.
func comparePolyhedronPointers(a, b *polyhedron.Polyhedron) bool {
	return uintptr(unsafe.Pointer(a)) < uintptr(unsafe.Pointer(b))
}

// sortedMergeIntersect returns the elements common to both a and b,
// both of which must already be sorted by faceOrdinal, using a linear
// merge rather than a hash-based intersection.
func sortedMergeIntersect(a, b []*polyhedron.Face) []*polyhedron.Face {
	var out []*polyhedron.Face
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		oa, ia := faceOrdinal(a[i])
		ob, ib := faceOrdinal(b[j])
		switch {
		case oa == ob && ia == ib:
			out = append(out, a[i])
			i++
			j++
		case oa != ob && comparePolyhedronPointers(oa, ob), oa == ob && ia < ib:
			i++
		default:
			j++
		}
	}
	return out
}
