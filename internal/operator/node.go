package operator

import (
	"fmt"
	"strings"
)

// ArgType identifies which field of an Argument holds its value.
type ArgType int

// Argument value kinds.
const (
	ArgInt ArgType = iota
	ArgFloat
	ArgString
	ArgInts
)

// Argument is a named operator attribute.
type Argument struct {
	Name string  // Argument name
	Type ArgType // Which of the value fields is set
	I    int64   // INT value (also bool as 0/1)
	F    float64 // FLOAT value
	S    string  // STRING value
	Ints []int64 // INTS array
}

// Arg builds an Argument from a Go value. Supported values are int, int32,
// int64, bool, float32, float64, string, []int and []int64.
func Arg(name string, value any) Argument {
	a := Argument{Name: name}
	switch v := value.(type) {
	case int:
		a.I = int64(v)
	case int32:
		a.I = int64(v)
	case int64:
		a.I = v
	case bool:
		if v {
			a.I = 1
		}
	case float32:
		a.Type, a.F = ArgFloat, float64(v)
	case float64:
		a.Type, a.F = ArgFloat, v
	case string:
		a.Type, a.S = ArgString, v
	case []int:
		a.Type = ArgInts
		for _, x := range v {
			a.Ints = append(a.Ints, int64(x))
		}
	case []int64:
		a.Type, a.Ints = ArgInts, append([]int64(nil), v...)
	default:
		panic(fmt.Sprintf("operator: unsupported argument type %T for %q", value, name))
	}
	return a
}

// String renders the argument as name=value.
func (a Argument) String() string {
	switch a.Type {
	case ArgFloat:
		return fmt.Sprintf("%s=%g", a.Name, a.F)
	case ArgString:
		return fmt.Sprintf("%s=%q", a.Name, a.S)
	case ArgInts:
		return fmt.Sprintf("%s=%v", a.Name, a.Ints)
	default:
		return fmt.Sprintf("%s=%d", a.Name, a.I)
	}
}

// OperatorDef describes one operator invocation: its type, the blobs it
// reads and writes, and its arguments.
type OperatorDef struct {
	Type    string     // Operator type (e.g., "Add", "Sqrt", "EQ")
	Name    string     // Operator name (optional)
	Inputs  []string   // Input blob names
	Outputs []string   // Output blob names
	Args    []Argument // Operator arguments
}

// Arg returns the named argument.
func (d *OperatorDef) Arg(name string) (Argument, bool) {
	for _, a := range d.Args {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// HasArg reports whether the named argument is set.
func (d *OperatorDef) HasArg(name string) bool {
	_, ok := d.Arg(name)
	return ok
}

// GetArgInt returns an integer argument or default value.
func (d *OperatorDef) GetArgInt(name string, defaultVal int64) int64 {
	if a, ok := d.Arg(name); ok {
		return a.I
	}
	return defaultVal
}

// GetArgFloat returns a float argument or default value.
func (d *OperatorDef) GetArgFloat(name string, defaultVal float64) float64 {
	if a, ok := d.Arg(name); ok {
		if a.Type == ArgInt {
			return float64(a.I)
		}
		return a.F
	}
	return defaultVal
}

// GetArgString returns a string argument or default value.
func (d *OperatorDef) GetArgString(name, defaultVal string) string {
	if a, ok := d.Arg(name); ok {
		return a.S
	}
	return defaultVal
}

// GetArgInts returns an integer array argument.
func (d *OperatorDef) GetArgInts(name string) []int64 {
	if a, ok := d.Arg(name); ok {
		return a.Ints
	}
	return nil
}

// Clone returns a deep copy of the descriptor.
func (d *OperatorDef) Clone() *OperatorDef {
	c := &OperatorDef{
		Type:    d.Type,
		Name:    d.Name,
		Inputs:  append([]string(nil), d.Inputs...),
		Outputs: append([]string(nil), d.Outputs...),
		Args:    make([]Argument, len(d.Args)),
	}
	for i, a := range d.Args {
		a.Ints = append([]int64(nil), a.Ints...)
		c.Args[i] = a
	}
	return c
}

// String renders the descriptor as Type(in, ...) -> (out, ...) [args].
func (d *OperatorDef) String() string {
	var sb strings.Builder
	sb.WriteString(d.Type)
	fmt.Fprintf(&sb, "(%s) -> (%s)", strings.Join(d.Inputs, ", "), strings.Join(d.Outputs, ", "))
	if len(d.Args) > 0 {
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			args[i] = a.String()
		}
		fmt.Fprintf(&sb, " [%s]", strings.Join(args, " "))
	}
	return sb.String()
}

// GradientName returns the conventional gradient blob name for blob.
func GradientName(blob string) string {
	return blob + "_grad"
}
