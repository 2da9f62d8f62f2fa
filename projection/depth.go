package projection

import "math"

// CameraZ is the fixed camera distance used for depth scaling and opacity
// falloff.
const CameraZ = 500.0

// nearOpacityRadius is the |cameraZ-z| distance within which depth opacity
// is fully opaque.
const nearOpacityRadius = 300.0

// farOpacityRadius is the |cameraZ-z| distance beyond which depth opacity
// floors out.
const farOpacityRadius = 800.0

// farOpacityFloor is the minimum depth opacity beyond farOpacityRadius.
const farOpacityFloor = 0.3

// DepthScale returns the scale factor cameraZ/(cameraZ-z) applied to a
// text's on-screen size to simulate perspective size falloff. When the
// divisor is non-positive (z at or beyond the camera), it returns 1 rather
// than blowing up or flipping sign.
func DepthScale(z float64) float64 {
	divisor := CameraZ - z
	if divisor <= 0 {
		return 1
	}
	return CameraZ / divisor
}

// Foreshorten scales a screen-space (x, y) pair by the cosine of the
// text's Y and X rotation respectively, simulating a text plane rotated
// away from the camera growing visually narrower/shorter.
func Foreshorten(x, y, rotYDegrees, rotXDegrees float64) (fx, fy float64) {
	ry := rotYDegrees * math.Pi / 180
	rx := rotXDegrees * math.Pi / 180
	return x * math.Cos(ry), y * math.Cos(rx)
}

// DepthOpacity linearly interpolates from fully opaque within
// nearOpacityRadius of the camera to farOpacityFloor at or beyond
// farOpacityRadius.
func DepthOpacity(z float64) float64 {
	d := math.Abs(CameraZ - z)
	if d <= nearOpacityRadius {
		return 1.0
	}
	if d >= farOpacityRadius {
		return farOpacityFloor
	}
	t := (d - nearOpacityRadius) / (farOpacityRadius - nearOpacityRadius)
	return 1.0 - t*(1.0-farOpacityFloor)
}
