package polyhedron

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// buildUnitSquareFace returns a polyhedron with a single quad face in
// the z=0 plane, built.
func buildUnitSquareFace(t *testing.T) (*Polyhedron, *Face) {
	t.Helper()
	p := New()
	v0 := p.AddVertex(v3.Vec{X: 0, Y: 0, Z: 0})
	v1 := p.AddVertex(v3.Vec{X: 1, Y: 0, Z: 0})
	v2 := p.AddVertex(v3.Vec{X: 1, Y: 1, Z: 0})
	v3v := p.AddVertex(v3.Vec{X: 0, Y: 1, Z: 0})

	e0 := p.AddEdge(v0, v1)
	e1 := p.AddEdge(v1, v2)
	e2 := p.AddEdge(v2, v3v)
	e3 := p.AddEdge(v3v, v0)

	f := p.AddFace([]*Vertex{v0, v1, v2, v3v}, []*Edge{e0, e1, e2, e3})
	p.Build()
	return p, f
}

func TestBuildComputesPlane(t *testing.T) {
	_, f := buildUnitSquareFace(t)
	pl := f.PlaneEqn()

	if pl.Normal.Z < 0.99 && pl.Normal.Z > -0.99 {
		t.Fatalf("plane normal = %v, want roughly +/-Z", pl.Normal)
	}
	if pl.SignedDistance(v3.Vec{X: 0.5, Y: 0.5, Z: 0}) > 1e-9 ||
		pl.SignedDistance(v3.Vec{X: 0.5, Y: 0.5, Z: 0}) < -1e-9 {
		t.Errorf("a point on the face should have ~0 signed distance")
	}
}

func TestBuildComputesAABB(t *testing.T) {
	_, f := buildUnitSquareFace(t)
	box := f.AABB()

	if box.Min.X != 0 || box.Min.Y != 0 || box.Max.X != 1 || box.Max.Y != 1 {
		t.Errorf("AABB = %+v, want [0,0,0]-[1,1,0]", box)
	}
}

func TestVertexIndexStable(t *testing.T) {
	p, _ := buildUnitSquareFace(t)
	for i, v := range p.Vertices {
		if got := p.VertexIndex(v); got != i {
			t.Errorf("VertexIndex(vertex %d) = %d, want %d", i, got, i)
		}
	}
}

func TestFacesOfVertexIndex(t *testing.T) {
	p, f := buildUnitSquareFace(t)

	for _, v := range p.Vertices {
		faces := p.FacesOfVertexIndex(p.VertexIndex(v))
		if len(faces) != 1 || faces[0] != f {
			t.Errorf("FacesOfVertexIndex(%d) = %v, want [the one face]", p.VertexIndex(v), faces)
		}
	}
}

func TestFacesOfEdgeIndexBoundary(t *testing.T) {
	p, f := buildUnitSquareFace(t)

	for _, e := range p.Edges {
		faces := p.FacesOfEdgeIndex(p.EdgeIndex(e))
		if faces[0] != f {
			t.Errorf("FacesOfEdgeIndex(%d)[0] = %v, want the face", p.EdgeIndex(e), faces[0])
		}
		if faces[1] != nil {
			t.Errorf("FacesOfEdgeIndex(%d)[1] = %v, want nil (boundary edge)", p.EdgeIndex(e), faces[1])
		}
	}
}

func TestFacesOfEdgeIndexSharedBetweenTwoFaces(t *testing.T) {
	p := New()
	v0 := p.AddVertex(v3.Vec{X: 0, Y: 0, Z: 0})
	v1 := p.AddVertex(v3.Vec{X: 1, Y: 0, Z: 0})
	v2 := p.AddVertex(v3.Vec{X: 1, Y: 1, Z: 0})
	v3v := p.AddVertex(v3.Vec{X: 0, Y: 1, Z: 0})

	shared := p.AddEdge(v0, v2)
	eA1 := p.AddEdge(v0, v1)
	eA2 := p.AddEdge(v1, v2)
	eB1 := p.AddEdge(v2, v3v)
	eB2 := p.AddEdge(v3v, v0)

	fa := p.AddFace([]*Vertex{v0, v1, v2}, []*Edge{eA1, eA2, shared})
	fb := p.AddFace([]*Vertex{v2, v3v, v0}, []*Edge{eB1, eB2, shared})
	p.Build()

	faces := p.FacesOfEdgeIndex(p.EdgeIndex(shared))
	got := map[*Face]bool{faces[0]: true, faces[1]: true}
	if !got[fa] || !got[fb] {
		t.Errorf("FacesOfEdgeIndex(shared) = %v, want {fa, fb}", faces)
	}
}

func TestFacesOfVertexIndexOutOfRange(t *testing.T) {
	p, _ := buildUnitSquareFace(t)
	if got := p.FacesOfVertexIndex(-1); got != nil {
		t.Errorf("FacesOfVertexIndex(-1) = %v, want nil", got)
	}
	if got := p.FacesOfVertexIndex(999); got != nil {
		t.Errorf("FacesOfVertexIndex(999) = %v, want nil", got)
	}
}
