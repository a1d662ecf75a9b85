package scene

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Param is one typed, named parameter of a directive. Numeric types keep
// their values in Floats, string and texture types in Strings, and bool in
// Bools. A spectrum may be given either as numbers or as a file name.
type Param struct {
	Type    string
	Name    string
	Floats  []float64
	Strings []string
	Bools   []bool
}

// ParamSet is the ordered parameter list of a directive.
type ParamSet []Param

// paramTypes maps accepted type names to their canonical spelling.
var paramTypes = map[string]string{
	"integer":   "integer",
	"float":     "float",
	"point2":    "point2",
	"vector2":   "vector2",
	"point":     "point3",
	"point3":    "point3",
	"vector":    "vector3",
	"vector3":   "vector3",
	"normal":    "normal",
	"normal3":   "normal",
	"color":     "rgb",
	"rgb":       "rgb",
	"xyz":       "xyz",
	"blackbody": "blackbody",
	"spectrum":  "spectrum",
	"bool":      "bool",
	"string":    "string",
	"texture":   "texture",
}

// tupleSize is the number of values per element for numeric types.
var tupleSize = map[string]int{
	"integer":   1,
	"float":     1,
	"point2":    2,
	"vector2":   2,
	"point3":    3,
	"vector3":   3,
	"normal":    3,
	"rgb":       3,
	"xyz":       3,
	"blackbody": 2,
	"spectrum":  2,
}

// canonicalType returns the canonical spelling of a parameter type.
func canonicalType(t string) (string, bool) {
	c, ok := paramTypes[t]
	return c, ok
}

// isNumeric reports whether values of type t are numbers.
func isNumeric(t string) bool {
	_, ok := tupleSize[t]
	return ok
}

// check validates values against the declared type and trims excess
// numeric values. It returns a warning to report, if any.
func (p *Param) check() (warning string, err error) {
	switch {
	case p.Type == "bool":
		if len(p.Floats) > 0 {
			return "", fmt.Errorf("expected boolean values for parameter %q", p.Name)
		}
		for _, s := range p.Strings {
			switch s {
			case "true":
				p.Bools = append(p.Bools, true)
			case "false":
				p.Bools = append(p.Bools, false)
			default:
				return "", fmt.Errorf("value %q unknown for boolean parameter %q, expected \"true\" or \"false\"", s, p.Name)
			}
		}
		p.Strings = nil
	case p.Type == "string" || p.Type == "texture":
		if len(p.Floats) > 0 {
			return "", fmt.Errorf("expected string values for parameter %q", p.Name)
		}
	case p.Type == "spectrum" && len(p.Strings) > 0:
		if len(p.Floats) > 0 {
			return "", fmt.Errorf("mixed numbers and strings for spectrum parameter %q", p.Name)
		}
	case isNumeric(p.Type):
		if len(p.Strings) > 0 {
			return "", fmt.Errorf("expected numeric values for parameter %q", p.Name)
		}
		if p.Type == "integer" {
			for _, v := range p.Floats {
				if v != math.Trunc(v) {
					return "", fmt.Errorf("non-integer value %g for integer parameter %q", v, p.Name)
				}
			}
		}
		if n := tupleSize[p.Type]; len(p.Floats)%n != 0 {
			p.Floats = p.Floats[:len(p.Floats)-len(p.Floats)%n]
			warning = fmt.Sprintf("excess values given with %s parameter %q, ignoring extra ones", p.Type, p.Name)
		}
	}
	if len(p.Floats) == 0 && len(p.Strings) == 0 && len(p.Bools) == 0 {
		return "", fmt.Errorf("no values provided for parameter %q", p.Name)
	}
	return warning, nil
}

// Find returns the last parameter with the given name, or nil.
func (ps ParamSet) Find(name string) *Param {
	for i := len(ps) - 1; i >= 0; i-- {
		if ps[i].Name == name {
			return &ps[i]
		}
	}
	return nil
}

func (ps ParamSet) findTyped(name string, types ...string) *Param {
	p := ps.Find(name)
	if p == nil {
		return nil
	}
	for _, t := range types {
		if p.Type == t {
			return p
		}
	}
	return nil
}

// Float returns the first value of a float parameter or def.
func (ps ParamSet) Float(name string, def float64) float64 {
	if p := ps.findTyped(name, "float"); p != nil && len(p.Floats) > 0 {
		return p.Floats[0]
	}
	return def
}

// Int returns the first value of an integer parameter or def.
func (ps ParamSet) Int(name string, def int) int {
	if p := ps.findTyped(name, "integer"); p != nil && len(p.Floats) > 0 {
		return int(p.Floats[0])
	}
	return def
}

// Ints returns all values of an integer parameter.
func (ps ParamSet) Ints(name string) []int {
	p := ps.findTyped(name, "integer")
	if p == nil {
		return nil
	}
	out := make([]int, len(p.Floats))
	for i, v := range p.Floats {
		out[i] = int(v)
	}
	return out
}

// Floats returns all values of a float parameter.
func (ps ParamSet) Floats(name string) []float64 {
	if p := ps.findTyped(name, "float"); p != nil {
		return p.Floats
	}
	return nil
}

// String returns the first value of a string parameter or def.
func (ps ParamSet) String(name, def string) string {
	if p := ps.findTyped(name, "string"); p != nil && len(p.Strings) > 0 {
		return p.Strings[0]
	}
	return def
}

// Texture returns the first value of a texture parameter or def.
func (ps ParamSet) Texture(name, def string) string {
	if p := ps.findTyped(name, "texture"); p != nil && len(p.Strings) > 0 {
		return p.Strings[0]
	}
	return def
}

// Bool returns the first value of a bool parameter or def.
func (ps ParamSet) Bool(name string, def bool) bool {
	if p := ps.findTyped(name, "bool"); p != nil && len(p.Bools) > 0 {
		return p.Bools[0]
	}
	return def
}

// Point3s returns the values of a point3 parameter as vectors.
func (ps ParamSet) Point3s(name string) []r3.Vec {
	return triples(ps.findTyped(name, "point3"))
}

// Normals returns the values of a normal parameter as vectors.
func (ps ParamSet) Normals(name string) []r3.Vec {
	return triples(ps.findTyped(name, "normal"))
}

// Point3 returns the first value of a point3 parameter or def.
func (ps ParamSet) Point3(name string, def r3.Vec) r3.Vec {
	if pts := ps.Point3s(name); len(pts) > 0 {
		return pts[0]
	}
	return def
}

func triples(p *Param) []r3.Vec {
	if p == nil {
		return nil
	}
	out := make([]r3.Vec, 0, len(p.Floats)/3)
	for i := 0; i+2 < len(p.Floats); i += 3 {
		out = append(out, r3.Vec{X: p.Floats[i], Y: p.Floats[i+1], Z: p.Floats[i+2]})
	}
	return out
}

// Without returns a copy of ps lacking the named parameters.
func (ps ParamSet) Without(names ...string) ParamSet {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := make(ParamSet, 0, len(ps))
	for _, p := range ps {
		if !drop[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of ps.
func (ps ParamSet) Clone() ParamSet {
	if ps == nil {
		return nil
	}
	out := make(ParamSet, len(ps))
	for i, p := range ps {
		out[i] = Param{
			Type:    p.Type,
			Name:    p.Name,
			Floats:  append([]float64(nil), p.Floats...),
			Strings: append([]string(nil), p.Strings...),
			Bools:   append([]bool(nil), p.Bools...),
		}
	}
	return out
}
