package plane

import (
	"fmt"
	"strconv"
)

// Vector3 is a point or direction in model space
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Plane is a reference plane owned by the document model. The log only
// needs it to have a stable byte form and a stable textual form.
type Plane struct {
	Origin    Vector3 `json:"origin"`
	Primary   Vector3 `json:"primary"`
	Secondary Vector3 `json:"secondary"`
	Tertiary  Vector3 `json:"tertiary"`
}

// XY returns the plane through the origin spanned by the x and y axes
func XY() Plane {
	return Plane{
		Primary:   Vector3{X: 1},
		Secondary: Vector3{Y: 1},
		Tertiary:  Vector3{Z: 1},
	}
}

// YZ returns the plane through the origin spanned by the y and z axes
func YZ() Plane {
	return Plane{
		Primary:   Vector3{Y: 1},
		Secondary: Vector3{Z: 1},
		Tertiary:  Vector3{X: 1},
	}
}

// XZ returns the plane through the origin spanned by the x and z axes
func XZ() Plane {
	return Plane{
		Primary:   Vector3{X: 1},
		Secondary: Vector3{Z: 1},
		Tertiary:  Vector3{Y: -1},
	}
}

// Floats flattens the plane in encoding order
func (p Plane) Floats() [12]float64 {
	return [12]float64{
		p.Origin.X, p.Origin.Y, p.Origin.Z,
		p.Primary.X, p.Primary.Y, p.Primary.Z,
		p.Secondary.X, p.Secondary.Y, p.Secondary.Z,
		p.Tertiary.X, p.Tertiary.Y, p.Tertiary.Z,
	}
}

// FromFloats is the inverse of Floats
func FromFloats(f [12]float64) Plane {
	return Plane{
		Origin:    Vector3{f[0], f[1], f[2]},
		Primary:   Vector3{f[3], f[4], f[5]},
		Secondary: Vector3{f[6], f[7], f[8]},
		Tertiary:  Vector3{f[9], f[10], f[11]},
	}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%s,%s,%s)", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
}

func (p Plane) String() string {
	return fmt.Sprintf("Plane{origin: %s, primary: %s, secondary: %s, tertiary: %s}",
		p.Origin, p.Primary, p.Secondary, p.Tertiary)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
