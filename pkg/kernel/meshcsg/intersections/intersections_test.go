package intersections

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/iobj"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/polyhedron"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

// triangle builds a single-triangle polyhedron and returns its three
// vertices, three edges (in ring order), and its one face.
func triangle() (*polyhedron.Polyhedron, [3]*polyhedron.Vertex, [3]*polyhedron.Edge, *polyhedron.Face) {
	p := polyhedron.New()
	vs := [3]*polyhedron.Vertex{
		p.AddVertex(vec(0, 0, 0)),
		p.AddVertex(vec(1, 0, 0)),
		p.AddVertex(vec(0, 1, 0)),
	}
	es := [3]*polyhedron.Edge{
		p.AddEdge(vs[0], vs[1]),
		p.AddEdge(vs[1], vs[2]),
		p.AddEdge(vs[2], vs[0]),
	}
	f := p.AddFace(vs[:], es[:])
	p.Build()
	return p, vs, es, f
}

// An empty store reports no intersection.
func TestEmptyStoreIntersectsExactlyFalse(t *testing.T) {
	_, vs, _, _ := triangle()
	x := New()
	if x.IntersectsExactly(iobj.FromVertex(vs[0]), iobj.FromVertex(vs[1])) {
		t.Error("empty store should report no intersection")
	}
}

// Record then query the reverse direction.
func TestRecordIsSymmetric(t *testing.T) {
	p, vs, _, _ := triangle()
	other := p.AddVertex(vec(5, 5, 5))
	p.Build()

	x := New()
	a, b := iobj.FromVertex(vs[0]), iobj.FromVertex(vs[1])
	x.Record(a, b, other)

	if !x.IntersectsExactly(b, a) {
		t.Error("Record(a, b, p) should make IntersectsExactly(b, a) true")
	}
	if !x.IntersectsExactly(a, b) {
		t.Error("Record(a, b, p) should make IntersectsExactly(a, b) true")
	}
}

// Symmetry holds after any sequence of Record calls.
func TestSymmetryAfterMultipleRecords(t *testing.T) {
	p, vs, es, f := triangle()
	pt := p.AddVertex(vec(9, 9, 9))
	p.Build()

	x := New()
	x.Record(iobj.FromVertex(vs[0]), iobj.FromEdge(es[1]), pt)
	x.Record(iobj.FromEdge(es[0]), iobj.FromFace(f), pt)

	pairs := [][2]iobj.IObj{
		{iobj.FromVertex(vs[0]), iobj.FromEdge(es[1])},
		{iobj.FromEdge(es[0]), iobj.FromFace(f)},
	}
	for _, pr := range pairs {
		if x.IntersectsExactly(pr[0], pr[1]) != x.IntersectsExactly(pr[1], pr[0]) {
			t.Errorf("symmetry violated for pair %v", pr)
		}
	}
}

// The store keeps the exact point that was recorded, in both
// directions, and Collect(a) returns the partner b.
func TestPointFidelity(t *testing.T) {
	p, vs, _, _ := triangle()
	point := p.AddVertex(vec(2, 2, 2))
	p.Build()

	x := New()
	a, b := iobj.FromVertex(vs[0]), iobj.FromVertex(vs[1])
	x.Record(a, b, point)

	if x.m[a][b] != point || x.m[b][a] != point {
		t.Errorf("stored points = (%v, %v), want the recorded point both ways", x.m[a][b], x.m[b][a])
	}

	vsFound, _, _ := x.Collect(a)
	if len(vsFound) != 1 || vsFound[0] != vs[1] {
		t.Errorf("Collect(a) vertices = %v, want [vs[1]]", vsFound)
	}
}

// An intersection recorded at an edge's endpoint counts as
// intersecting the edge itself, even though the edge was never
// recorded directly.
func TestIntersectsEdgeViaEndpoint(t *testing.T) {
	p, vs, es, _ := triangle()
	otherFace := p.AddFace([]*polyhedron.Vertex{vs[0], vs[1]}, nil)
	p.Build()

	x := New()
	x.Record(iobj.FromVertex(vs[0]), iobj.FromFace(otherFace), p.Vertices[0])

	if !x.IntersectsEdge(iobj.FromFace(otherFace), es[0]) {
		t.Error("intersection with an endpoint of es[0] should count as intersecting es[0]")
	}
}

func TestIntersectsFaceViaVertexOrEdge(t *testing.T) {
	p, vs, es, f := triangle()
	other := p.AddVertex(vec(4, 4, 4))
	p.Build()

	x := New()
	a := iobj.FromVertex(other)
	x.Record(a, iobj.FromVertex(vs[0]), vs[0])

	if !x.IntersectsFace(a, f) {
		t.Error("intersecting a vertex of f should count as intersecting f")
	}

	x2 := New()
	x2.Record(a, iobj.FromEdge(es[0]), vs[0])
	if !x2.IntersectsFace(a, f) {
		t.Error("intersecting an edge of f should count as intersecting f")
	}
}

func TestEdgesIntersect(t *testing.T) {
	p, vs, es, _ := triangle()
	p2 := polyhedron.New()
	ov0 := p2.AddVertex(vec(0.5, 0.5, 0))
	ov1 := p2.AddVertex(vec(0.5, -0.5, 0))
	oe := p2.AddEdge(ov0, ov1)
	p2.Build()
	p.Build()

	x := New()
	// Record that es[0]'s IObj intersects ov0.
	x.Record(iobj.FromEdge(es[0]), iobj.FromVertex(ov0), vs[0])

	if !x.EdgesIntersect(es[0], oe) {
		t.Error("EdgesIntersect should be true via the edge's own IObj match")
	}
}

func TestCollectRoutesByKind(t *testing.T) {
	p, vs, es, f := triangle()
	pt := p.AddVertex(vec(7, 7, 7))
	p.Build()

	x := New()
	a := iobj.FromVertex(vs[0])
	x.Record(a, iobj.FromVertex(vs[1]), pt)
	x.Record(a, iobj.FromEdge(es[1]), pt)
	x.Record(a, iobj.FromFace(f), pt)

	vsFound, esFound, fsFound := x.Collect(a)
	if len(vsFound) != 1 || len(esFound) != 1 || len(fsFound) != 1 {
		t.Errorf("Collect = %d vertices, %d edges, %d faces; want 1 each", len(vsFound), len(esFound), len(fsFound))
	}
}

// CommonFaces is the set intersection of each vertex's intersected
// faces.
func TestCommonFacesIsSetIntersection(t *testing.T) {
	pa, va, _, _ := triangle()
	_, _, _, fb1 := triangle()
	_, _, _, fb2 := triangle()

	pt := pa.AddVertex(vec(1, 1, 1))
	pa.Build()

	x := New()
	// Both va[0] and va[1] intersect fb1; only va[0] intersects fb2.
	x.Record(iobj.FromVertex(va[0]), iobj.FromFace(fb1), pt)
	x.Record(iobj.FromVertex(va[1]), iobj.FromFace(fb1), pt)
	x.Record(iobj.FromVertex(va[0]), iobj.FromFace(fb2), pt)

	common := x.CommonFaces([]*polyhedron.Vertex{va[0], va[1]})
	if len(common) != 1 || common[0] != fb1 {
		t.Errorf("CommonFaces = %v, want [fb1]", common)
	}
}

func TestCommonFacesEmptyInput(t *testing.T) {
	x := New()
	if got := x.CommonFaces(nil); len(got) != 0 {
		t.Errorf("CommonFaces(nil) = %v, want empty", got)
	}
}

func TestClearForgetsRecords(t *testing.T) {
	p, vs, _, _ := triangle()
	pt := p.AddVertex(vec(1, 1, 1))
	p.Build()

	x := New()
	a, b := iobj.FromVertex(vs[0]), iobj.FromVertex(vs[1])
	x.Record(a, b, pt)
	x.Clear()

	if x.IntersectsExactly(a, b) {
		t.Error("Clear() should forget all records")
	}
}
