// Package octree implements the adaptive 8-way spatial index described
// in the mesh-CSG core: an Octree indexes the vertices, edges, and
// faces of one or more polyhedra, subdivides lazily while a query is
// in flight, and deduplicates query results with tagepoch.
//
// Grounded directly on carve::csg::Octree in the Carve CSG library
// (original_source/lib/octree.cpp), which this package's split/query
// algorithms mirror line for line.
package octree

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/geom"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/polyhedron"
	"github.com/lignin-csg/lignin/pkg/kernel/meshcsg/tagepoch"
)

// Tunables: compile-time, documented values.
const (
	// SlackFactor enlarges every node's effective AABB around its own
	// centre, so primitives sitting near a cell boundary are comfortably
	// inside despite predicate roundoff.
	SlackFactor = 1.1

	// MaxSplitDepth caps how many levels of lazy subdivision a query may
	// trigger. The reference implementation uses 4.
	MaxSplitDepth = 4

	// EdgeSplitThreshold is the leaf edge-bag size above which a query
	// triggers a split.
	EdgeSplitThreshold = 5

	// FaceSplitThreshold is the leaf face-bag size above which a query
	// triggers a split.
	FaceSplitThreshold = 5

	// PointSplitThreshold is the leaf vertex-bag size above which a
	// query triggers a split.
	PointSplitThreshold = 5
)

// Node is one cell of the octree. A leaf owns its three geometry bags
// directly; a non-leaf node has redistributed its geometry to its eight
// children and keeps empty bags (invariant: IsLeaf() == (children == nil)
// == permission for the bags to be non-empty).
type Node struct {
	min, max v3.Vec
	aabb     geom.AABB // min/max scaled by SlackFactor around the same centre

	parent   *Node
	children [8]*Node // nil unless this node has been split
	isLeaf   bool

	vertices []*polyhedron.Vertex
	edges    []*polyhedron.Edge
	faces    []*polyhedron.Face
}

func newNode(parent *Node, min, max v3.Vec) *Node {
	n := &Node{parent: parent, min: min, max: max, isLeaf: true}
	n.aabb = geom.NewAABB(min, max).Scaled(SlackFactor)
	return n
}

// IsLeaf reports whether the node still owns geometry directly.
func (n *Node) IsLeaf() bool { return n.isLeaf }

// hasGeometry reports whether any of the leaf's three bags is non-empty.
func (n *Node) hasGeometry() bool {
	return len(n.vertices) > 0 || len(n.edges) > 0 || len(n.faces) > 0
}

func mightContainFace(aabb geom.AABB, f *polyhedron.Face) bool {
	return aabb.IntersectsBox(f.AABB())
}

func mightContainEdge(aabb geom.AABB, e *polyhedron.Edge) bool {
	return aabb.IntersectsSegment(e.V1.Pos, e.V2.Pos)
}

func mightContainVertex(aabb geom.AABB, v *polyhedron.Vertex) bool {
	return aabb.ContainsPoint(v.Pos)
}

// split redistributes this leaf's geometry into eight freshly allocated
// children, dividing the node's box at its midpoint, and clears the
// parent bags. A no-op (returns false, i.e. "still a leaf") if the node
// has no geometry — callers must not re-descend into absent children
// after a no-op split; hasGeometry false also implies the bag sizes
// are below every split threshold, so a caller that checks thresholds
// before calling split never re-triggers the no-op.
func (n *Node) split() bool {
	if !n.isLeaf || !n.hasGeometry() {
		return false
	}

	mid := v3.Vec{
		X: 0.5 * (n.min.X + n.max.X),
		Y: 0.5 * (n.min.Y + n.max.Y),
		Z: 0.5 * (n.min.Z + n.max.Z),
	}

	for i := 0; i < 8; i++ {
		cMin, cMax := octant(i, n.min, mid, n.max)
		n.children[i] = newNode(n, cMin, cMax)
	}

	for i := 0; i < 8; i++ {
		c := n.children[i]
		for _, f := range n.faces {
			if mightContainFace(c.aabb, f) {
				c.faces = append(c.faces, f)
			}
		}
		for _, e := range n.edges {
			if mightContainEdge(c.aabb, e) {
				c.edges = append(c.edges, e)
			}
		}
		for _, v := range n.vertices {
			if mightContainVertex(c.aabb, v) {
				c.vertices = append(c.vertices, v)
			}
		}
	}

	n.faces = nil
	n.edges = nil
	n.vertices = nil
	n.isLeaf = false
	return true
}

// octant returns the min/max corners of child i (0-7), where bit 0 of i
// selects the X half, bit 1 the Y half, and bit 2 the Z half.
func octant(i int, min, mid, max v3.Vec) (v3.Vec, v3.Vec) {
	var cMin, cMax v3.Vec
	if i&1 == 0 {
		cMin.X, cMax.X = min.X, mid.X
	} else {
		cMin.X, cMax.X = mid.X, max.X
	}
	if i&2 == 0 {
		cMin.Y, cMax.Y = min.Y, mid.Y
	} else {
		cMin.Y, cMax.Y = mid.Y, max.Y
	}
	if i&4 == 0 {
		cMin.Z, cMax.Z = min.Z, mid.Z
	} else {
		cMin.Z, cMax.Z = mid.Z, max.Z
	}
	return cMin, cMax
}

// Octree is an adaptive spatial index over the vertices, edges, and
// faces of one or more polyhedra. It holds only borrowed references;
// primitive lifetime must strictly outlive the Octree.
type Octree struct {
	root *Node
}

// New returns an empty octree with no root. Queries against it before
// SetBounds silently return no results.
func New() *Octree {
	return &Octree{}
}

// SetBounds destroys any existing tree and creates a root leaf
// spanning exactly [min, max]. The root's own inclusion test still
// uses an AABB enlarged by SlackFactor (see newNode) so primitives
// sitting on the boundary test as inside despite predicate roundoff.
func (o *Octree) SetBounds(min, max v3.Vec) {
	o.root = newNode(nil, min, max)
}

// SetBoundsAABB destroys any existing tree and creates a root leaf
// spanning box, first expanded by SlackFactor around its own centre —
// a deliberate slack so primitives near the outer surface of the
// caller's box are comfortably inside. This mirrors setBounds(AABB) in
// the original carve::csg::Octree, which pre-expands the caller's box
// on top of the per-node enlargement newNode always applies.
func (o *Octree) SetBoundsAABB(box geom.AABB) {
	expanded := box.Scaled(SlackFactor)
	o.SetBounds(expanded.Min, expanded.Max)
}

// AddVertices appends borrowed vertex references into the root's bag.
// No subdivision happens at insert time.
func (o *Octree) AddVertices(vs []*polyhedron.Vertex) {
	if o.root == nil {
		return
	}
	o.root.vertices = append(o.root.vertices, vs...)
}

// AddEdges appends borrowed edge references into the root's bag.
func (o *Octree) AddEdges(es []*polyhedron.Edge) {
	if o.root == nil {
		return
	}
	o.root.edges = append(o.root.edges, es...)
}

// AddFaces appends borrowed face references into the root's bag.
func (o *Octree) AddFaces(fs []*polyhedron.Face) {
	if o.root == nil {
		return
	}
	o.root.faces = append(o.root.faces, fs...)
}

// SplitTree runs a single recursive subdivision pass from the root,
// splitting any node whose edge or face bag holds at least 5 entries,
// down to maxDepth levels. Passing 0 makes this a no-op; lazy splitting
// during queries remains fully functional regardless of what this
// pre-pass does, since every query helper below re-checks thresholds
// and splits on demand anyway.
func (o *Octree) SplitTree(maxDepth int) {
	doSplitEager(maxDepth, o.root)
}

func doSplitEager(maxDepth int, n *Node) {
	if n == nil || maxDepth <= 0 {
		return
	}
	if len(n.edges) < 5 && len(n.faces) < 5 {
		return
	}
	if !n.split() {
		for _, c := range n.children {
			doSplitEager(maxDepth-1, c)
		}
		return
	}
	for _, c := range n.children {
		doSplitEager(maxDepth-1, c)
	}
}

// FindEdgesNearSegment appends every edge whose node bag the segment
// a-b passes through, deduplicated across cells within this query.
func (o *Octree) FindEdgesNearSegment(a, b v3.Vec, out []*polyhedron.Edge) []*polyhedron.Edge {
	tagepoch.Begin()
	return findEdgesSegment(o.root, a, b, 0, out)
}

// FindEdgesNearPoint appends every edge whose node bag contains point
// p, deduplicated across cells within this query.
func (o *Octree) FindEdgesNearPoint(p v3.Vec, out []*polyhedron.Edge) []*polyhedron.Edge {
	tagepoch.Begin()
	return findEdgesPoint(o.root, p, 0, out)
}

// FindFacesNearSegment appends every face whose node bag the segment
// a-b passes through, deduplicated across cells within this query.
func (o *Octree) FindFacesNearSegment(a, b v3.Vec, out []*polyhedron.Face) []*polyhedron.Face {
	tagepoch.Begin()
	return findFacesSegment(o.root, a, b, 0, out)
}

// FindVerticesNearAllowDupes appends every vertex whose node bag
// contains point p. Unlike the other queries, no dedup is applied: a
// vertex that straddles multiple leaves may be emitted more than once.
func (o *Octree) FindVerticesNearAllowDupes(p v3.Vec, out []*polyhedron.Vertex) []*polyhedron.Vertex {
	return findVerticesPoint(o.root, p, 0, out)
}

func findEdgesSegment(n *Node, a, b v3.Vec, depth int, out []*polyhedron.Edge) []*polyhedron.Edge {
	if n == nil || !n.aabb.IntersectsSegment(a, b) {
		return out
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = findEdgesSegment(c, a, b, depth+1, out)
		}
		return out
	}

	if depth < MaxSplitDepth && len(n.edges) > EdgeSplitThreshold {
		if !n.split() {
			for _, c := range n.children {
				out = findEdgesSegment(c, a, b, depth+1, out)
			}
			return out
		}
		for _, c := range n.children {
			out = findEdgesSegment(c, a, b, depth+1, out)
		}
		return out
	}

	for _, e := range n.edges {
		if e.TagOnce() {
			out = append(out, e)
		}
	}
	return out
}

func findEdgesPoint(n *Node, p v3.Vec, depth int, out []*polyhedron.Edge) []*polyhedron.Edge {
	if n == nil || !n.aabb.ContainsPoint(p) {
		return out
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = findEdgesPoint(c, p, depth+1, out)
		}
		return out
	}

	if depth < MaxSplitDepth && len(n.edges) > EdgeSplitThreshold {
		if !n.split() {
			for _, c := range n.children {
				out = findEdgesPoint(c, p, depth+1, out)
			}
			return out
		}
		for _, c := range n.children {
			out = findEdgesPoint(c, p, depth+1, out)
		}
		return out
	}

	for _, e := range n.edges {
		if e.TagOnce() {
			out = append(out, e)
		}
	}
	return out
}

func findFacesSegment(n *Node, a, b v3.Vec, depth int, out []*polyhedron.Face) []*polyhedron.Face {
	if n == nil || !n.aabb.IntersectsSegment(a, b) {
		return out
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = findFacesSegment(c, a, b, depth+1, out)
		}
		return out
	}

	if depth < MaxSplitDepth && len(n.faces) > FaceSplitThreshold {
		if !n.split() {
			for _, c := range n.children {
				out = findFacesSegment(c, a, b, depth+1, out)
			}
			return out
		}
		for _, c := range n.children {
			out = findFacesSegment(c, a, b, depth+1, out)
		}
		return out
	}

	for _, f := range n.faces {
		if f.TagOnce() {
			out = append(out, f)
		}
	}
	return out
}

func findVerticesPoint(n *Node, p v3.Vec, depth int, out []*polyhedron.Vertex) []*polyhedron.Vertex {
	if n == nil || !n.aabb.ContainsPoint(p) {
		return out
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = findVerticesPoint(c, p, depth+1, out)
		}
		return out
	}

	if depth < MaxSplitDepth && len(n.vertices) > PointSplitThreshold {
		if !n.split() {
			for _, c := range n.children {
				out = findVerticesPoint(c, p, depth+1, out)
			}
			return out
		}
		for _, c := range n.children {
			out = findVerticesPoint(c, p, depth+1, out)
		}
		return out
	}

	out = append(out, n.vertices...)
	return out
}
