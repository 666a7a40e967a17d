package ops

import (
	"fmt"
	"math"
	"strconv"

	"evolog/internal/plane"
)

// Sha is a lowercase hex SHA-256 digest
type Sha = string

// Kind tags each operation variant. The numeric values are part of the
// hash encoding and must never be reordered.
type Kind uint8

const (
	KindCreate Kind = iota + 1
	KindDescribe
	KindNewPlane
	KindNewSketch
	KindNewRectangle
	KindNewCircle
	KindNewExtrusion
	KindModifyExtrusionDepth
)

var kindNames = map[Kind]string{
	KindCreate:               "Create",
	KindDescribe:             "Describe",
	KindNewPlane:             "NewPlane",
	KindNewSketch:            "NewSketch",
	KindNewRectangle:         "NewRectangle",
	KindNewCircle:            "NewCircle",
	KindNewExtrusion:         "NewExtrusion",
	KindModifyExtrusionDepth: "ModifyExtrusionDepth",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KindFromString maps a variant name back to its Kind
func KindFromString(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Kinds lists every variant in tag order
func Kinds() []Kind {
	return []Kind{
		KindCreate,
		KindDescribe,
		KindNewPlane,
		KindNewSketch,
		KindNewRectangle,
		KindNewCircle,
		KindNewExtrusion,
		KindModifyExtrusionDepth,
	}
}

// Operation is one document edit. The set of implementations is closed:
// only the variant types in this package satisfy it.
type Operation interface {
	Kind() Kind
	isOperation()
}

// Create marks the root of a history
type Create struct {
	Nonce string `json:"nonce"`
}

// Describe annotates a commit with human text
type Describe struct {
	Description string `json:"description"`
	Commit      Sha    `json:"commit"`
}

// NewPlane introduces a reference plane
type NewPlane struct {
	Name  string      `json:"name"`
	Plane plane.Plane `json:"plane"`
}

// NewSketch introduces a 2D sketch on a named plane
type NewSketch struct {
	Name      string `json:"name"`
	PlaneName string `json:"plane_name"`
	UniqueID  string `json:"unique_id"`
}

// NewRectangle adds a rectangle to a sketch
type NewRectangle struct {
	SketchID string  `json:"sketch_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// NewCircle adds a circle to a sketch
type NewCircle struct {
	SketchID string  `json:"sketch_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
}

// NewExtrusion extrudes a sketch into a solid
type NewExtrusion struct {
	Name     string  `json:"name"`
	UniqueID string  `json:"unique_id"`
	SketchID string  `json:"sketch_id"`
	ClickX   float64 `json:"click_x"`
	ClickY   float64 `json:"click_y"`
	Depth    float64 `json:"depth"`
}

// ModifyExtrusionDepth changes the depth of an existing extrusion
type ModifyExtrusionDepth struct {
	UniqueID string  `json:"unique_id"`
	Depth    float64 `json:"depth"`
}

func (Create) Kind() Kind               { return KindCreate }
func (Describe) Kind() Kind             { return KindDescribe }
func (NewPlane) Kind() Kind             { return KindNewPlane }
func (NewSketch) Kind() Kind            { return KindNewSketch }
func (NewRectangle) Kind() Kind         { return KindNewRectangle }
func (NewCircle) Kind() Kind            { return KindNewCircle }
func (NewExtrusion) Kind() Kind         { return KindNewExtrusion }
func (ModifyExtrusionDepth) Kind() Kind { return KindModifyExtrusionDepth }

func (Create) isOperation()               {}
func (Describe) isOperation()             {}
func (NewPlane) isOperation()             {}
func (NewSketch) isOperation()            {}
func (NewRectangle) isOperation()         {}
func (NewCircle) isOperation()            {}
func (NewExtrusion) isOperation()         {}
func (ModifyExtrusionDepth) isOperation() {}

// Value returns op with pointer variants dereferenced, so *NewPlane and
// NewPlane encode, hash and print the same. A nil pointer panics.
func Value(op Operation) Operation {
	switch o := op.(type) {
	case *Create:
		return *o
	case *Describe:
		return *o
	case *NewPlane:
		return *o
	case *NewSketch:
		return *o
	case *NewRectangle:
		return *o
	case *NewCircle:
		return *o
	case *NewExtrusion:
		return *o
	case *ModifyExtrusionDepth:
		return *o
	}
	return op
}

// PrettyPrint renders a one-line summary of op. It plays no part in hashing.
func PrettyPrint(op Operation) string {
	switch o := Value(op).(type) {
	case Create:
		return fmt.Sprintf("Create: %s", o.Nonce)
	case Describe:
		return fmt.Sprintf("Describe: %s '%s'", o.Commit, o.Description)
	case NewPlane:
		return fmt.Sprintf("NewPlane: '%s'", o.Name)
	case NewSketch:
		return fmt.Sprintf("NewSketch: '%s' on plane '%s'", o.Name, o.PlaneName)
	case NewRectangle:
		return fmt.Sprintf("NewRectangle: %s %s %s %s on '%s'",
			num(o.X), num(o.Y), num(o.Width), num(o.Height), o.SketchID)
	case NewCircle:
		return fmt.Sprintf("NewCircle: (%s,%s) radius: %s on '%s'",
			num(o.X), num(o.Y), num(o.Radius), o.SketchID)
	case NewExtrusion:
		return fmt.Sprintf("NewExtrusion: '%s' on '%s' (%s,%s) depth: %s",
			o.Name, o.SketchID, num(o.ClickX), num(o.ClickY), num(o.Depth))
	case ModifyExtrusionDepth:
		return fmt.Sprintf("ModifyExtrusionDepth: %s to %s", o.UniqueID, num(o.Depth))
	default:
		panic(fmt.Sprintf("ops: unhandled operation %T", op))
	}
}

// num prints the shortest decimal that round-trips, never in exponent form.
// Infinities print as inf and -inf.
func num(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
