// Package polyhedron holds the vertex/edge/face mesh structure and its
// connectivity adapter. The octree and intersection store (see
// pkg/kernel/meshcsg/octree and pkg/kernel/meshcsg/intersections) only
// ever hold borrowed references into a Polyhedron; this package is the
// sole owner of the underlying storage.
package polyhedron

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/geom"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/tagepoch"
)

// Vertex is a point in space owned by a Polyhedron. Its identity is
// its pointer value — the octree and intersection store never copy a
// Vertex, only pass its address around.
type Vertex struct {
	Pos   v3.Vec
	Owner *Polyhedron

	index int // position in Owner.Vertices, set by Build
}

// Edge is an ordered pair of vertex endpoints. Carries a tag for the
// octree's per-query dedup (see tagepoch.Tag).
type Edge struct {
	V1, V2 *Vertex
	Owner  *Polyhedron

	tagepoch.Tag
	index int
}

// Face is an ordered ring of vertices and the edges between
// consecutive vertices in that ring. Its plane equation and AABB are
// computed once by Build.
type Face struct {
	Verts []*Vertex
	Edges []*Edge
	Owner *Polyhedron

	plane geom.Plane
	aabb  geom.AABB

	tagepoch.Tag
	index int
}

// PlaneEqn returns the face's precomputed plane equation.
func (f *Face) PlaneEqn() geom.Plane { return f.plane }

// AABB returns the face's precomputed bounding box.
func (f *Face) AABB() geom.AABB { return f.aabb }

// Vertices returns the face's vertex ring.
func (f *Face) Vertices() []*Vertex { return f.Verts }

// EdgesOf returns the face's incident edges, one per ring segment.
func (f *Face) EdgesOf() []*Edge { return f.Edges }

// Polyhedron owns a closed mesh's vertices, edges, and faces in stable
// storage, plus the vertex/edge-to-face adjacency tables that back the
// connectivity adapter used by octree and intersections.
type Polyhedron struct {
	Vertices []*Vertex
	Edges    []*Edge
	Faces    []*Face

	vertexToFace [][]*Face
	edgeToFace   [][2]*Face // nil entry at either slot marks a boundary edge
}

// New returns an empty polyhedron. Append to Vertices, Edges, and
// Faces directly (setting each primitive's Owner to the returned
// Polyhedron), then call Build once construction is complete.
func New() *Polyhedron {
	return &Polyhedron{}
}

// AddVertex appends a new vertex at pos and returns it.
func (p *Polyhedron) AddVertex(pos v3.Vec) *Vertex {
	v := &Vertex{Pos: pos, Owner: p}
	p.Vertices = append(p.Vertices, v)
	return v
}

// AddEdge appends a new edge between v1 and v2 and returns it.
func (p *Polyhedron) AddEdge(v1, v2 *Vertex) *Edge {
	e := &Edge{V1: v1, V2: v2, Owner: p}
	p.Edges = append(p.Edges, e)
	return e
}

// AddFace appends a new face bounded by verts/edges and returns it.
// The plane equation and AABB are not valid until Build runs.
func (p *Polyhedron) AddFace(verts []*Vertex, edges []*Edge) *Face {
	f := &Face{Verts: verts, Edges: edges, Owner: p}
	p.Faces = append(p.Faces, f)
	return f
}

// Build finalizes the polyhedron after all vertices, edges, and faces
// have been appended: it stamps each primitive's stable index, computes
// every face's plane equation and AABB (Newell's method, matching the
// precomputed carve::poly::Face plane the octree predicates assume),
// and populates the vertex/edge-to-face adjacency tables. Call once,
// after construction, before handing the polyhedron to an Octree or
// Intersections.
func (p *Polyhedron) Build() {
	for i, v := range p.Vertices {
		v.index = i
	}
	for i, e := range p.Edges {
		e.index = i
	}

	p.vertexToFace = make([][]*Face, len(p.Vertices))
	p.edgeToFace = make([][2]*Face, len(p.Edges))
	slot := make([]int, len(p.Edges)) // next free slot (0 or 1) per edge

	for i, f := range p.Faces {
		f.index = i
		f.plane = facePlane(f.Verts)
		f.aabb = faceAABB(f.Verts)

		for _, v := range f.Verts {
			p.vertexToFace[v.index] = append(p.vertexToFace[v.index], f)
		}
		for _, e := range f.Edges {
			s := slot[e.index]
			if s < 2 {
				p.edgeToFace[e.index][s] = f
				slot[e.index] = s + 1
			}
		}
	}
}

// facePlane computes a unit-normal plane equation for a vertex ring
// using Newell's method, which is robust for non-triangular and
// slightly non-planar rings.
func facePlane(verts []*Vertex) geom.Plane {
	var normal v3.Vec
	n := len(verts)
	for i := 0; i < n; i++ {
		cur := verts[i].Pos
		next := verts[(i+1)%n].Pos
		normal.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		normal.Y += (cur.Z - next.Z) * (cur.X + next.X)
		normal.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	length := sqrt(normal.X*normal.X + normal.Y*normal.Y + normal.Z*normal.Z)
	if length > 1e-12 {
		normal.X /= length
		normal.Y /= length
		normal.Z /= length
	}
	var offset float64
	if n > 0 {
		c := verts[0].Pos
		offset = normal.X*c.X + normal.Y*c.Y + normal.Z*c.Z
	}
	return geom.Plane{Normal: normal, Offset: offset}
}

// faceAABB computes the axis-aligned bounding box of a vertex ring.
func faceAABB(verts []*Vertex) geom.AABB {
	if len(verts) == 0 {
		return geom.AABB{}
	}
	min, max := verts[0].Pos, verts[0].Pos
	for _, v := range verts[1:] {
		p := v.Pos
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return geom.NewAABB(min, max)
}

// sqrt is Newton's method, matching the dependency-minimal helper the
// manifold kernel backend already uses (pkg/kernel/manifold.sqrt64) for
// the same reason: this package has no other need to import math.
func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 20; i++ {
		z = (z + x/z) / 2
	}
	return z
}

// VertexIndex returns v's stable index into the polyhedron's vertex
// table. Valid only after Build.
func (p *Polyhedron) VertexIndex(v *Vertex) int { return v.index }

// EdgeIndex returns e's stable index into the polyhedron's edge table.
// Valid only after Build.
func (p *Polyhedron) EdgeIndex(e *Edge) int { return e.index }

// FaceIndex returns f's stable index into the polyhedron's face table.
// Valid only after Build. Needed by the intersection store's
// sorted-merge CommonFaces to give faces a deterministic order.
func (p *Polyhedron) FaceIndex(f *Face) int { return f.index }

// FacesOfVertexIndex returns the faces incident on the vertex at
// index i, in stable order.
func (p *Polyhedron) FacesOfVertexIndex(i int) []*Face {
	if i < 0 || i >= len(p.vertexToFace) {
		return nil
	}
	return p.vertexToFace[i]
}

// FacesOfEdgeIndex returns the (at most two) faces bordering the edge
// at index i. A nil entry marks a boundary (non-manifold) edge.
func (p *Polyhedron) FacesOfEdgeIndex(i int) [2]*Face {
	if i < 0 || i >= len(p.edgeToFace) {
		return [2]*Face{}
	}
	return p.edgeToFace[i]
}
