package meshcsg

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/geom"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/intersections"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/iobj"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/octree"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/polyhedron"
)

// FindCandidateIntersections builds one octree bounding both a and b,
// bulk-inserts both polyhedra's geometry, and records a vertex-level
// intersection for every pair of faces (one from each polyhedron)
// whose AABBs the octree reports as plausibly overlapping. The octree
// narrows the O(n*m) candidate set down to geometrically plausible
// pairs; the exact point of intersection between two candidate faces
// is an exact-arithmetic predicate this core treats as an external
// collaborator, so here the face centroid stands in for it — good
// enough to drive ClassifyFaces, not a substitute for real segment/
// triangle intersection.
func FindCandidateIntersections(a, b *polyhedron.Polyhedron) *intersections.Intersections {
	x := intersections.New()

	tree := octree.New()
	tree.SetBoundsAABB(combinedBounds(a, b))
	tree.AddVertices(a.Vertices)
	tree.AddEdges(a.Edges)
	tree.AddFaces(a.Faces)
	tree.AddVertices(b.Vertices)
	tree.AddEdges(b.Edges)
	tree.AddFaces(b.Faces)

	for _, fa := range a.Faces {
		box := fa.AABB()
		candidates := tree.FindFacesNearSegment(box.Min, box.Max, nil)
		for _, fb := range candidates {
			if fb.Owner == fa.Owner {
				continue // same-polyhedron face, not a cross-solid candidate
			}
			if !box.IntersectsBox(fb.AABB()) {
				continue
			}
			p := approximateIntersectionPoint(fa, fb)
			x.Record(iobj.FromFace(fa), iobj.FromFace(fb), p)
		}
	}
	return x
}

// combinedBounds returns an AABB enclosing every vertex of both a and b.
func combinedBounds(a, b *polyhedron.Polyhedron) geom.AABB {
	var min, max v3.Vec
	first := true
	grow := func(p v3.Vec) {
		if first {
			min, max = p, p
			first = false
			return
		}
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
	for _, v := range a.Vertices {
		grow(v.Pos)
	}
	for _, v := range b.Vertices {
		grow(v.Pos)
	}
	if first {
		return geom.AABB{}
	}
	return geom.NewAABB(min, max)
}

// approximateIntersectionPoint stands in for the exact-arithmetic
// face/face intersection predicate, which this core treats as an
// external collaborator it does not implement: it records the
// midpoint between the two faces' own centroids, which is sufficient
// to let ClassifyFaces tell "recorded an intersection" apart from "no
// intersection", without claiming geometric exactness.
func approximateIntersectionPoint(fa, fb *polyhedron.Face) *polyhedron.Vertex {
	ca, cb := centroid(fa), centroid(fb)
	mid := v3.Vec{X: 0.5 * (ca.X + cb.X), Y: 0.5 * (ca.Y + cb.Y), Z: 0.5 * (ca.Z + cb.Z)}
	return fa.Owner.AddVertex(mid)
}

func centroid(f *polyhedron.Face) v3.Vec {
	var sum v3.Vec
	verts := f.Vertices()
	for _, v := range verts {
		sum.X += v.Pos.X
		sum.Y += v.Pos.Y
		sum.Z += v.Pos.Z
	}
	n := float64(len(verts))
	if n == 0 {
		return sum
	}
	return v3.Vec{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

// ClassifyFaces splits faces into those that survive a Boolean
// operation against other and those that don't:
//
//   - a face recorded in x as intersecting something is always kept —
//     its exact fate (clipped, split) belongs to the triangulation
//     step this core does not implement.
//   - a face with no recorded intersection is classified by the sign
//     of other's nearest face plane against one of its own vertices:
//     kept if that sign matches keepInside.
//
// This is intentionally the minimum glue exercising the octree and
// intersection store from a Boolean operation — not a full
// reimplementation of Carve's classifier.
func ClassifyFaces(faces []*polyhedron.Face, x *intersections.Intersections, other *polyhedron.Polyhedron, keepInside bool) []*polyhedron.Face {
	var kept []*polyhedron.Face
	for _, f := range faces {
		if hasAnyRecordedIntersection(x, f) {
			kept = append(kept, f)
			continue
		}
		if sampleInside(f, other) == keepInside {
			kept = append(kept, f)
		}
	}
	return kept
}

func hasAnyRecordedIntersection(x *intersections.Intersections, f *polyhedron.Face) bool {
	vs, edges, faces := x.Collect(iobj.FromFace(f))
	return len(vs) > 0 || len(edges) > 0 || len(faces) > 0
}

// sampleInside reports whether f's first vertex lies on the inside of
// the nearest face of other, approximated by the plane of the closest
// face (by centroid distance) rather than an exact point-in-solid
// test.
func sampleInside(f *polyhedron.Face, other *polyhedron.Polyhedron) bool {
	if len(f.Vertices()) == 0 || len(other.Faces) == 0 {
		return false
	}
	p := f.Vertices()[0].Pos

	best := other.Faces[0]
	bestDist := sqDist(centroid(best), p)
	for _, cand := range other.Faces[1:] {
		d := sqDist(centroid(cand), p)
		if d < bestDist {
			bestDist = d
			best = cand
		}
	}
	return best.PlaneEqn().SignedDistance(p) < 0
}

func sqDist(a, b v3.Vec) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}
