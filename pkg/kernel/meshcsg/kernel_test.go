package meshcsg

import (
	"testing"

	"github.com/lignin-csg/lignin/pkg/kernel"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/polyhedron"
)

func TestKernelBoxBoundingBox(t *testing.T) {
	k := New()
	s := k.Box(2, 3, 4)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{2, 3, 4} {
		t.Errorf("Box max = %v, want [2 3 4]", max)
	}
}

func TestKernelBoxHasSixFaces(t *testing.T) {
	k := New()
	s := k.Box(1, 1, 1).(*Solid)
	if got := len(s.p.Faces); got != 6 {
		t.Errorf("Box face count = %d, want 6", got)
	}
	if got := len(s.p.Vertices); got != 8 {
		t.Errorf("Box vertex count = %d, want 8", got)
	}
}

func TestKernelCylinderFaceCount(t *testing.T) {
	k := New()
	s := k.Cylinder(2, 1, 6).(*Solid)
	// 6 sides + top + bottom.
	if got := len(s.p.Faces); got != 8 {
		t.Errorf("Cylinder face count = %d, want 8", got)
	}
}

func TestKernelCylinderClampsLowSegmentCount(t *testing.T) {
	k := New()
	s := k.Cylinder(1, 1, 1).(*Solid)
	// segments < 3 clamps to 3: 3 sides + top + bottom.
	if got := len(s.p.Faces); got != 5 {
		t.Errorf("Cylinder(segments=1) face count = %d, want 5", got)
	}
}

func TestKernelTranslateMovesVertices(t *testing.T) {
	k := New()
	box := k.Box(1, 1, 1)
	moved := k.Translate(box, 10, 0, 0).(*Solid)
	min, max := moved.BoundingBox()
	if min != [3]float64{10, 0, 0} {
		t.Errorf("translated min = %v, want [10 0 0]", min)
	}
	if max != [3]float64{11, 1, 1} {
		t.Errorf("translated max = %v, want [11 1 1]", max)
	}
}

func TestKernelRotateIdentityAtZero(t *testing.T) {
	k := New()
	box := k.Box(2, 2, 2)
	rotated := k.Rotate(box, 0, 0, 0).(*Solid)
	min, max := rotated.BoundingBox()
	wantMin, wantMax := box.(*Solid).BoundingBox()
	if min != wantMin || max != wantMax {
		t.Errorf("Rotate by 0 degrees changed bounding box: got (%v,%v), want (%v,%v)", min, max, wantMin, wantMax)
	}
}

func TestKernelUnionKeepsVertices(t *testing.T) {
	k := New()
	a := k.Box(2, 2, 2)
	b := k.Translate(k.Box(2, 2, 2), 5, 0, 0)

	u := k.Union(a, b).(*Solid)
	if len(u.p.Vertices) == 0 {
		t.Error("Union of two disjoint boxes should keep vertices from both")
	}
	if len(u.p.Faces) != 12 {
		t.Errorf("Union of two disjoint boxes should keep all 12 faces, got %d", len(u.p.Faces))
	}
}

func TestKernelDifferenceOfDisjointBoxesKeepsA(t *testing.T) {
	k := New()
	a := k.Box(2, 2, 2)
	b := k.Translate(k.Box(2, 2, 2), 10, 0, 0)

	d := k.Difference(a, b).(*Solid)
	if len(d.p.Faces) != 6 {
		t.Errorf("Difference of disjoint boxes should keep only a's 6 faces, got %d", len(d.p.Faces))
	}
}

func TestKernelToMeshTriangulatesQuadFaces(t *testing.T) {
	k := New()
	s := k.Box(1, 1, 1)

	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	// 6 quad faces, fan-triangulated into 2 triangles each.
	if got := m.TriangleCount(); got != 12 {
		t.Errorf("TriangleCount() = %d, want 12", got)
	}
	if got := m.VertexCount(); got != 24 {
		t.Errorf("VertexCount() = %d, want 24 (4 per face * 6 faces, unwelded)", got)
	}
}

func TestKernelToMeshEmptySolid(t *testing.T) {
	k := New()
	empty := &Solid{p: polyhedron.New()}

	m, err := k.ToMesh(empty)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if !m.IsEmpty() {
		t.Error("ToMesh() of an empty polyhedron should return an empty mesh")
	}
}

// Compile-time check that Kernel satisfies kernel.Kernel (also asserted
// in kernel.go; repeated here against the kernel package's own alias to
// catch an import-path mismatch).
var _ kernel.Kernel = New()
