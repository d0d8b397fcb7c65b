package camera

import (
	gomath "math"

	"github.com/Faultbox/xenotech/pkg/math"
)

// OrbitCamera orbits around a center point in a Z-up world.
type OrbitCamera struct {
	Center math.Vec3

	Distance float32
	Pitch    float32 // elevation above the XY plane, radians
	Yaw      float32 // rotation around +Z, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        48,
		Pitch:           0.6,
		Yaw:             0.8,
		MinDistance:     4,
		MaxDistance:     400,
		MinPitch:        -1.4,
		MaxPitch:        1.4,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	return math.Vec3{
		X: c.Center.X + c.Distance*float32(cp*gomath.Cos(float64(c.Yaw))),
		Y: c.Center.Y + c.Distance*float32(cp*gomath.Sin(float64(c.Yaw))),
		Z: c.Center.Z + c.Distance*float32(gomath.Sin(float64(c.Pitch))),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Z: 1})
}

// Snapshot returns the frame camera for the given resolution.
func (c *OrbitCamera) Snapshot(res Resolution) Camera {
	return FromTransform(c.ViewMatrix().Inverse(), res)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = math.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = math.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point. forward and right move in the XY
// plane relative to the current yaw.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01

	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))

	// The camera looks towards -(cos, sin) in the XY plane.
	c.Center.X += (-cos*forward + sin*right) * speed
	c.Center.Y += (-sin*forward - cos*right) * speed
	c.Center.Z += up * speed
}

// FitToBounds centers the camera on an axis-aligned box.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)
	c.Distance = math.Clamp(hi.Sub(lo).Length()*0.9, c.MinDistance, c.MaxDistance)
}
