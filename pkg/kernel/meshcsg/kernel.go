// Package meshcsg implements the kernel.Kernel interface directly on top
// of the polyhedron/octree/intersections packages in this directory,
// rather than on an SDF (pkg/kernel/sdfx) or a CGo binding
// (pkg/kernel/manifold). Boolean operations here go through
// FindCandidateIntersections and ClassifyFaces (classify.go) instead of
// a signed-distance evaluation or an external manifold library.
package meshcsg

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/lignin-csg/lignin/pkg/kernel"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/polyhedron"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Solid = (*Solid)(nil)

// Solid wraps a *polyhedron.Polyhedron to implement kernel.Solid.
type Solid struct {
	p *polyhedron.Polyhedron
}

// BoundingBox returns the axis-aligned bounding box of the solid's
// vertices. Empty for a solid with no vertices.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	if len(s.p.Vertices) == 0 {
		return min, max
	}
	lo, hi := s.p.Vertices[0].Pos, s.p.Vertices[0].Pos
	for _, v := range s.p.Vertices[1:] {
		p := v.Pos
		if p.X < lo.X {
			lo.X = p.X
		}
		if p.Y < lo.Y {
			lo.Y = p.Y
		}
		if p.Z < lo.Z {
			lo.Z = p.Z
		}
		if p.X > hi.X {
			hi.X = p.X
		}
		if p.Y > hi.Y {
			hi.Y = p.Y
		}
		if p.Z > hi.Z {
			hi.Z = p.Z
		}
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

// Kernel implements kernel.Kernel directly on the octree/intersection
// core instead of delegating to an SDF or CGo backend.
type Kernel struct{}

// New returns a new Kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) *polyhedron.Polyhedron {
	return s.(*Solid).p
}

func wrap(p *polyhedron.Polyhedron) kernel.Solid {
	return &Solid{p: p}
}

// Box builds an axis-aligned box polyhedron with dimensions x, y, z and
// its minimum corner at the origin, matching the placement convention
// pkg/kernel/sdfx.SdfxKernel.Box documents for the same reason: so that
// a translation places the box's corner, not its center.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	p := polyhedron.New()
	corners := [8]*polyhedron.Vertex{
		p.AddVertex(v3.Vec{X: 0, Y: 0, Z: 0}),
		p.AddVertex(v3.Vec{X: x, Y: 0, Z: 0}),
		p.AddVertex(v3.Vec{X: x, Y: y, Z: 0}),
		p.AddVertex(v3.Vec{X: 0, Y: y, Z: 0}),
		p.AddVertex(v3.Vec{X: 0, Y: 0, Z: z}),
		p.AddVertex(v3.Vec{X: x, Y: 0, Z: z}),
		p.AddVertex(v3.Vec{X: x, Y: y, Z: z}),
		p.AddVertex(v3.Vec{X: 0, Y: y, Z: z}),
	}
	// Each ring is wound so its Newell-method normal points outward.
	rings := [6][4]int{
		{0, 3, 2, 1}, // bottom, normal -Z
		{4, 5, 6, 7}, // top, normal +Z
		{0, 1, 5, 4}, // front, normal -Y
		{1, 2, 6, 5}, // right, normal +X
		{2, 3, 7, 6}, // back, normal +Y
		{3, 0, 4, 7}, // left, normal -X
	}
	addRing(p, corners, rings)
	p.Build()
	return wrap(p)
}

// Cylinder builds a polyhedron approximating a cylinder of the given
// height and radius with segments sides around its circumference,
// centered on the Z axis with its base at z=0. Unlike
// pkg/kernel/sdfx.SdfxKernel.Cylinder, segments cannot be ignored here:
// there is no smooth SDF surface standing in for the sides, so the
// polyhedron is only ever as round as segments makes it.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments < 3 {
		segments = 3
	}
	p := polyhedron.New()

	bottom := make([]*polyhedron.Vertex, segments)
	top := make([]*polyhedron.Vertex, segments)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		x, y := radius*math.Cos(theta), radius*math.Sin(theta)
		bottom[i] = p.AddVertex(v3.Vec{X: x, Y: y, Z: 0})
		top[i] = p.AddVertex(v3.Vec{X: x, Y: y, Z: height})
	}

	bottomRing := make([]*polyhedron.Vertex, segments)
	topRing := make([]*polyhedron.Vertex, segments)
	for i := 0; i < segments; i++ {
		bottomRing[i] = bottom[segments-1-i] // reversed: normal -Z
		topRing[i] = top[i]                  // as built: normal +Z
	}
	addFace(p, bottomRing)
	addFace(p, topRing)

	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		addFace(p, []*polyhedron.Vertex{bottom[i], bottom[j], top[j], top[i]})
	}

	p.Build()
	return wrap(p)
}

// addRing appends the six quad faces named by rings, each indexing into
// corners, to p.
func addRing(p *polyhedron.Polyhedron, corners [8]*polyhedron.Vertex, rings [6][4]int) {
	for _, idx := range rings {
		addFace(p, []*polyhedron.Vertex{corners[idx[0]], corners[idx[1]], corners[idx[2]], corners[idx[3]]})
	}
}

// addFace appends one face bounded by verts to p, building one edge per
// consecutive pair in the ring.
func addFace(p *polyhedron.Polyhedron, verts []*polyhedron.Vertex) *polyhedron.Face {
	edges := make([]*polyhedron.Edge, len(verts))
	for i := range verts {
		edges[i] = p.AddEdge(verts[i], verts[(i+1)%len(verts)])
	}
	return p.AddFace(verts, edges)
}

// boolean runs the shared candidate-intersection/classify pipeline for
// the three boolean operations below, keeping faces of a that satisfy
// keepA and faces of b that satisfy keepB, and merging the result into
// one polyhedron. The merged polyhedron's vertices/edges are not
// welded at the cut: splitting and stitching classified faces along
// the intersection curve is left to a downstream triangulation/
// retessellation step operating on the classified faces this returns.
func boolean(a, b *polyhedron.Polyhedron, keepA, keepB bool) kernel.Solid {
	x := FindCandidateIntersections(a, b)
	keptA := ClassifyFaces(a.Faces, x, b, keepA)
	keptB := ClassifyFaces(b.Faces, x, a, keepB)

	out := polyhedron.New()
	appendFaces(out, keptA)
	appendFaces(out, keptB)
	out.Build()
	return wrap(out)
}

// appendFaces copies each face in faces, and its vertices and edges,
// into dst as new primitives owned by dst.
func appendFaces(dst *polyhedron.Polyhedron, faces []*polyhedron.Face) {
	vertCopy := make(map[*polyhedron.Vertex]*polyhedron.Vertex)
	edgeCopy := make(map[*polyhedron.Edge]*polyhedron.Edge)

	copyVertex := func(v *polyhedron.Vertex) *polyhedron.Vertex {
		if cp, ok := vertCopy[v]; ok {
			return cp
		}
		cp := dst.AddVertex(v.Pos)
		vertCopy[v] = cp
		return cp
	}
	copyEdge := func(e *polyhedron.Edge) *polyhedron.Edge {
		if cp, ok := edgeCopy[e]; ok {
			return cp
		}
		cp := dst.AddEdge(copyVertex(e.V1), copyVertex(e.V2))
		edgeCopy[e] = cp
		return cp
	}

	for _, f := range faces {
		verts := make([]*polyhedron.Vertex, len(f.Vertices()))
		for i, v := range f.Vertices() {
			verts[i] = copyVertex(v)
		}
		edges := make([]*polyhedron.Edge, len(f.EdgesOf()))
		for i, e := range f.EdgesOf() {
			edges[i] = copyEdge(e)
		}
		dst.AddFace(verts, edges)
	}
}

// Union keeps faces of a outside b and faces of b outside a.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return boolean(unwrap(a), unwrap(b), false, false)
}

// Difference keeps faces of a outside b and faces of b inside a
// (the shared boundary, oriented into what's being removed).
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return boolean(unwrap(a), unwrap(b), false, true)
}

// Intersection keeps faces of a inside b and faces of b inside a.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return boolean(unwrap(a), unwrap(b), true, true)
}

// Translate returns a copy of s with every vertex shifted by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return transform(unwrap(s), func(p v3.Vec) v3.Vec {
		return v3.Vec{X: p.X + x, Y: p.Y + y, Z: p.Z + z}
	})
}

// Rotate returns a copy of s rotated by Euler angles (degrees) around
// the X, Y, Z axes in that order, about the origin.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rx, ry, rz := x*math.Pi/180, y*math.Pi/180, z*math.Pi/180
	return transform(unwrap(s), func(p v3.Vec) v3.Vec {
		// Rotate about X.
		y1 := p.Y*math.Cos(rx) - p.Z*math.Sin(rx)
		z1 := p.Y*math.Sin(rx) + p.Z*math.Cos(rx)
		// Rotate about Y.
		x2 := p.X*math.Cos(ry) + z1*math.Sin(ry)
		z2 := -p.X*math.Sin(ry) + z1*math.Cos(ry)
		// Rotate about Z.
		x3 := x2*math.Cos(rz) - y1*math.Sin(rz)
		y3 := x2*math.Sin(rz) + y1*math.Cos(rz)
		return v3.Vec{X: x3, Y: y3, Z: z2}
	})
}

// transform returns a copy of p with f applied to every vertex
// position, preserving topology (and therefore face plane equations,
// recomputed from the moved vertices by Build).
func transform(p *polyhedron.Polyhedron, f func(v3.Vec) v3.Vec) kernel.Solid {
	out := polyhedron.New()
	verts := make([]*polyhedron.Vertex, len(p.Vertices))
	for i, v := range p.Vertices {
		verts[i] = out.AddVertex(f(v.Pos))
	}
	edges := make([]*polyhedron.Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = out.AddEdge(verts[p.VertexIndex(e.V1)], verts[p.VertexIndex(e.V2)])
	}
	for _, face := range p.Faces {
		fVerts := make([]*polyhedron.Vertex, len(face.Vertices()))
		for i, v := range face.Vertices() {
			fVerts[i] = verts[p.VertexIndex(v)]
		}
		fEdges := make([]*polyhedron.Edge, len(face.EdgesOf()))
		for i, e := range face.EdgesOf() {
			fEdges[i] = edges[p.EdgeIndex(e)]
		}
		out.AddFace(fVerts, fEdges)
	}
	out.Build()
	return wrap(out)
}

// ToMesh triangulates s by a simple fan from each face's first vertex,
// which is exact for the convex quads and n-gons Box/Cylinder/the
// boolean operations above produce; a face left non-planar or
// non-convex by a boolean operation would triangulate incorrectly, a
// limitation of this fan approach rather than of the polyhedron it
// triangulates.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	p := unwrap(s)
	if len(p.Faces) == 0 {
		return &kernel.Mesh{}, nil
	}

	var vertices, normals []float32
	var indices []uint32

	for _, f := range p.Faces {
		verts := f.Vertices()
		if len(verts) < 3 {
			return nil, fmt.Errorf("meshcsg: face with %d vertices cannot be triangulated", len(verts))
		}
		n := f.PlaneEqn().Normal
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		base := uint32(len(vertices) / 3)
		for _, v := range verts {
			vertices = append(vertices, float32(v.Pos.X), float32(v.Pos.Y), float32(v.Pos.Z))
			normals = append(normals, nx, ny, nz)
		}
		for i := 1; i+1 < len(verts); i++ {
			indices = append(indices, base, base+uint32(i), base+uint32(i+1))
		}
	}

	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}, nil
}
