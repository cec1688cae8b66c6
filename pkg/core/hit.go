package core

// RayHit is the result of a nearest-hit query against mesh geometry.
// Normal and Triangle are carried for callers that need them even though
// depth reconstruction only consumes Point.
type RayHit struct {
	Hit       bool
	Point     Vec3    // Hit location in mesh-local space
	Normal    Vec3    // Geometric normal in mesh-local space
	T         float64 // Parametric distance along the ray
	Triangle  int     // Index of the triangle hit (-1 on miss)
	FrontFace bool    // Whether the ray struck the front side
}

// Miss returns a RayHit representing no intersection.
func Miss() RayHit {
	return RayHit{Hit: false, Triangle: -1}
}

// SetFaceNormal orients the normal against the incoming ray and records
// which side was struck
func (h *RayHit) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
