// Package geom supplies the axis-aligned bounding box and plane
// predicates that the meshcsg octree and classifier treat as an
// external collaborator. It reuses the vector type the sdfx kernel
// backend already depends on (github.com/deadsy/sdfx/vec/v3) instead of
// introducing a parallel one; AABB is a local struct with the same
// Min/Max fields as sdf.Box3, which this package does not import.
package geom

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FrontTolerance is the plane/edge front-of-plane tolerance used by
// InFrontOfPlanePoints and InFrontOfPlaneEdge, in world units.
const FrontTolerance = 0.01

// AABB is an axis-aligned bounding box with a minimum and maximum
// corner. It carries the same Min/Max surface as sdf.Box3, which the
// sdfx kernel backend already reads (see pkg/kernel/sdfx.BoundingBox).
type AABB struct {
	Min, Max v3.Vec
}

// NewAABB returns the box spanning min and max, correcting the corners
// if they were supplied out of order.
func NewAABB(min, max v3.Vec) AABB {
	if min.X > max.X {
		min.X, max.X = max.X, min.X
	}
	if min.Y > max.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	if min.Z > max.Z {
		min.Z, max.Z = max.Z, min.Z
	}
	return AABB{Min: min, Max: max}
}

// NewAABBFromCenterExtent returns the box centred at center with the
// given half-extent along each axis, mirroring
// carve::geom3d::AABB(centre, size) in the original octree.cpp.
func NewAABBFromCenterExtent(center, extent v3.Vec) AABB {
	return AABB{
		Min: v3.Vec{X: center.X - extent.X, Y: center.Y - extent.Y, Z: center.Z - extent.Z},
		Max: v3.Vec{X: center.X + extent.X, Y: center.Y + extent.Y, Z: center.Z + extent.Z},
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() v3.Vec {
	return v3.Vec{
		X: 0.5 * (b.Min.X + b.Max.X),
		Y: 0.5 * (b.Min.Y + b.Max.Y),
		Z: 0.5 * (b.Min.Z + b.Max.Z),
	}
}

// Extent returns the half-size of the box along each axis.
func (b AABB) Extent() v3.Vec {
	return v3.Vec{
		X: 0.5 * (b.Max.X - b.Min.X),
		Y: 0.5 * (b.Max.Y - b.Min.Y),
		Z: 0.5 * (b.Max.Z - b.Min.Z),
	}
}

// Scaled enlarges the box by factor around its own centre. Used by the
// octree for its SlackFactor bounds expansion.
func (b AABB) Scaled(factor float64) AABB {
	c := b.Center()
	e := b.Extent()
	e.X *= factor
	e.Y *= factor
	e.Z *= factor
	return NewAABBFromCenterExtent(c, e)
}

// ContainsPoint reports whether p lies within the box, inclusive of
// its boundary.
func (b AABB) ContainsPoint(p v3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectsBox reports whether b and o overlap (including touching).
func (b AABB) IntersectsBox(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// IntersectsSegment reports whether the segment from a to b crosses or
// touches the box, using the standard slab method.
func (box AABB) IntersectsSegment(a, b v3.Vec) bool {
	d := v3.Vec{X: b.X - a.X, Y: b.Y - a.Y, Z: b.Z - a.Z}

	tMin, tMax := 0.0, 1.0
	if !clipSlab(a.X, d.X, box.Min.X, box.Max.X, &tMin, &tMax) {
		return false
	}
	if !clipSlab(a.Y, d.Y, box.Min.Y, box.Max.Y, &tMin, &tMax) {
		return false
	}
	if !clipSlab(a.Z, d.Z, box.Min.Z, box.Max.Z, &tMin, &tMax) {
		return false
	}
	return tMin <= tMax
}

// clipSlab narrows [tMin, tMax] to the portion of the parametric
// segment origin+t*dir that lies within [lo, hi] along one axis.
// Returns false if the segment cannot intersect the slab at all.
func clipSlab(origin, dir, lo, hi float64, tMin, tMax *float64) bool {
	const eps = 1e-12
	if dir > -eps && dir < eps {
		// Segment is parallel to this axis; it must already lie in the slab.
		return origin >= lo && origin <= hi
	}
	t0 := (lo - origin) / dir
	t1 := (hi - origin) / dir
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 > *tMin {
		*tMin = t0
	}
	if t1 < *tMax {
		*tMax = t1
	}
	return *tMin <= *tMax
}

// Plane is a plane equation in point-normal form: Normal is a unit
// vector and Offset is the signed distance from the origin along it.
type Plane struct {
	Normal v3.Vec
	Offset float64
}

// SignedDistance returns the signed distance from p to the plane along
// its normal: positive on the side the normal points toward.
func (pl Plane) SignedDistance(p v3.Vec) float64 {
	return pl.Normal.X*p.X + pl.Normal.Y*p.Y + pl.Normal.Z*p.Z - pl.Offset
}

// InFrontOfPlanePoints reports whether every point in pts is in front
// of (or within FrontTolerance of) the plane. Grounded on
// carve::csg::Octree::Node::inFrontOfPlane(Plane, Face) in the original
// octree.cpp, which rejects a face as soon as one vertex falls more
// than the tolerance behind the plane.
func InFrontOfPlanePoints(pl Plane, pts []v3.Vec) bool {
	for _, p := range pts {
		if pl.SignedDistance(p) <= -FrontTolerance {
			return false
		}
	}
	return true
}

// InFrontOfPlaneEdge reports whether both endpoints of an edge lie in
// front of (or within FrontTolerance of) the plane. Grounded on
// carve::csg::Octree::Node::inFrontOfPlane(Plane, Edge).
func InFrontOfPlaneEdge(pl Plane, v1, v2 v3.Vec) bool {
	return pl.SignedDistance(v1) > -FrontTolerance && pl.SignedDistance(v2) > -FrontTolerance
}
