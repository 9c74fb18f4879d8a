package utils

import (
	"math"

	"github.com/besuhoff/arena-shooter-go/internal/types"
)

// IsValidStep reports whether every axis delta between from and to is
// strictly smaller than maxStep.
func IsValidStep(from, to types.Vector3, maxStep float64) bool {
	dx := math.Abs(to.X - from.X)
	dy := math.Abs(to.Y - from.Y)
	dz := math.Abs(to.Z - from.Z)
	return dx < maxStep && dy < maxStep && dz < maxStep
}

// Distance between two points
func Distance(p1, p2 types.Vector3) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	dz := p1.Z - p2.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// CheckPointSphereCollision reports whether point lies strictly inside the
// sphere around center.
func CheckPointSphereCollision(point, center types.Vector3, radius float64) bool {
	return Distance(point, center) < radius
}

// RandomInRange maps u in [0,1) onto [-halfExtent, halfExtent).
func RandomInRange(u, halfExtent float64) float64 {
	return u*2*halfExtent - halfExtent
}
