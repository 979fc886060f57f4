package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"interpagent/internal/pyval"
)

// ParamKind mirrors the four parameter kinds of an interpreter signature.
type ParamKind int

const (
	PositionalOrKeyword ParamKind = iota
	VarPositional
	KeywordOnly
	VarKeyword
)

// JSON schema type names used for parameters. An empty type accepts any value.
const (
	TypeAny     = ""
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

type unsetType struct{}

// Unset is bound for an optional parameter that was not supplied and has no
// default value (e.g. the base of int(), the default of next()).
var Unset any = unsetType{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unsetType)
	return ok
}

// Param is one parameter of a Signature.
type Param struct {
	Name        string
	Kind        ParamKind
	Type        string
	Description string
	Default     any
	HasDefault  bool
	Optional    bool // no default value; bound as Unset when omitted
}

// Arg declares a required positional-or-keyword parameter.
func Arg(name, typ string) Param {
	return Param{Name: name, Type: typ}
}

// Opt declares a positional-or-keyword parameter with a default.
func Opt(name, typ string, def any) Param {
	return Param{Name: name, Type: typ, Default: def, HasDefault: true}
}

// OptUnset declares an optional positional-or-keyword parameter without a
// default value.
func OptUnset(name, typ string) Param {
	return Param{Name: name, Type: typ, Optional: true}
}

// Star declares a var-positional parameter (*args).
func Star(name, typ string) Param {
	return Param{Name: name, Kind: VarPositional, Type: typ}
}

// KwOnly declares a keyword-only parameter with a default.
func KwOnly(name, typ string, def any) Param {
	return Param{Name: name, Kind: KeywordOnly, Type: typ, Default: def, HasDefault: true}
}

// KwOnlyUnset declares a keyword-only parameter without a default value.
func KwOnlyUnset(name, typ string) Param {
	return Param{Name: name, Kind: KeywordOnly, Type: typ, Optional: true}
}

// StarStar declares a var-keyword parameter (**kwargs).
func StarStar(name string) Param {
	return Param{Name: name, Kind: VarKeyword, Type: TypeObject}
}

// WithDoc returns p with a description for its schema property.
func (p Param) WithDoc(desc string) Param {
	p.Description = desc
	return p
}

func (p Param) required() bool {
	return (p.Kind == PositionalOrKeyword || p.Kind == KeywordOnly) && !p.HasDefault && !p.Optional
}

// Signature is an ordered parameter list.
type Signature []Param

// Params builds a Signature.
func Params(ps ...Param) Signature {
	return Signature(ps)
}

func (s Signature) validate() error {
	seen := make(map[string]bool, len(s))
	lastKind := PositionalOrKeyword
	for _, p := range s {
		if p.Name == "" {
			return fmt.Errorf("%w: unnamed parameter", ErrInvalidSignature)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidSignature, p.Name)
		}
		seen[p.Name] = true
		if p.Kind < lastKind || (p.Kind == lastKind && (p.Kind == VarPositional || p.Kind == VarKeyword)) {
			return fmt.Errorf("%w: parameter %q out of order", ErrInvalidSignature, p.Name)
		}
		lastKind = p.Kind
	}
	return nil
}

// String renders the signature, e.g. "(x=0, base=<unset>)" or
// "(iterable, *, key=None, reverse=False)".
func (s Signature) String() string {
	parts := make([]string, 0, len(s)+1)
	starred := false
	for _, p := range s {
		switch p.Kind {
		case VarPositional:
			starred = true
			parts = append(parts, "*"+p.Name)
		case VarKeyword:
			parts = append(parts, "**"+p.Name)
		case KeywordOnly:
			if !starred {
				starred = true
				parts = append(parts, "*")
			}
			parts = append(parts, p.render())
		default:
			parts = append(parts, p.render())
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (p Param) render() string {
	switch {
	case p.HasDefault:
		return p.Name + "=" + pyval.Repr(p.Default)
	case p.Optional:
		return p.Name + "=<unset>"
	default:
		return p.Name
	}
}

// Bind matches named arguments (in call order) against the signature and
// returns one value per parameter. Var-positional parameters accept an
// array under their own name; var-keyword parameters collect every unknown
// name plus an object under their own name.
func (s Signature) Bind(fn string, names []string, values []any) ([]any, error) {
	bound := make([]any, len(s))
	set := make([]bool, len(s))
	varKw := -1
	for i, p := range s {
		switch p.Kind {
		case VarPositional:
			bound[i] = []any{}
			set[i] = true
		case VarKeyword:
			bound[i] = pyval.NewDict()
			set[i] = true
			varKw = i
		}
	}

	for n, name := range names {
		val := values[n]
		i := s.index(name)
		if i < 0 {
			if varKw < 0 {
				return nil, pyval.TypeErrorf("%s() got an unexpected keyword argument '%s'", fn, name)
			}
			if err := bound[varKw].(*pyval.Dict).Set(name, val); err != nil {
				return nil, err
			}
			continue
		}
		switch s[i].Kind {
		case VarPositional:
			items, err := pyval.Iterate(val)
			if err != nil {
				return nil, pyval.TypeErrorf("%s() argument after * must be an iterable, not %s", fn, pyval.TypeName(val))
			}
			bound[i] = append(bound[i].([]any), items...)
		case VarKeyword:
			d, ok := val.(*pyval.Dict)
			if !ok {
				return nil, pyval.TypeErrorf("%s() argument after ** must be a mapping, not %s", fn, pyval.TypeName(val))
			}
			for _, kv := range d.Items() {
				key, ok := kv[0].(string)
				if !ok {
					return nil, pyval.TypeErrorf("keywords must be strings")
				}
				if err := bound[i].(*pyval.Dict).Set(key, kv[1]); err != nil {
					return nil, err
				}
			}
		default:
			bound[i] = val
			set[i] = true
		}
	}
	return s.fill(fn, bound, set)
}

// BindArgs binds positional arguments, the way a direct call f(a, b) would.
func (s Signature) BindArgs(fn string, args []any) ([]any, error) {
	bound := make([]any, len(s))
	set := make([]bool, len(s))
	next := 0
	maxPos, minPos := 0, 0
	for _, p := range s {
		if p.Kind == PositionalOrKeyword {
			maxPos++
			if p.required() {
				minPos++
			}
		}
	}
	for i, p := range s {
		switch p.Kind {
		case PositionalOrKeyword:
			if next < len(args) {
				bound[i] = args[next]
				set[i] = true
				next++
			}
		case VarPositional:
			rest := make([]any, len(args)-next)
			copy(rest, args[next:])
			bound[i] = rest
			set[i] = true
			next = len(args)
		case VarKeyword:
			bound[i] = pyval.NewDict()
			set[i] = true
		}
	}
	if next < len(args) {
		return nil, tooManyPositional(fn, minPos, maxPos, len(args))
	}
	return s.fill(fn, bound, set)
}

func tooManyPositional(fn string, minPos, maxPos, given int) error {
	takes := fmt.Sprintf("%d positional argument", maxPos)
	if minPos != maxPos {
		takes = fmt.Sprintf("from %d to %d positional argument", minPos, maxPos)
	}
	if maxPos != 1 {
		takes += "s"
	}
	verb := "were"
	if given == 1 {
		verb = "was"
	}
	return pyval.TypeErrorf("%s() takes %s but %d %s given", fn, takes, given, verb)
}

func (s Signature) fill(fn string, bound []any, set []bool) ([]any, error) {
	var missingPos, missingKw []string
	for i, p := range s {
		if set[i] {
			continue
		}
		switch {
		case p.HasDefault:
			bound[i] = p.Default
		case p.Optional:
			bound[i] = Unset
		case p.Kind == KeywordOnly:
			missingKw = append(missingKw, p.Name)
		default:
			missingPos = append(missingPos, p.Name)
		}
	}
	if len(missingPos) > 0 {
		return nil, missingError(fn, "positional", missingPos)
	}
	if len(missingKw) > 0 {
		return nil, missingError(fn, "keyword-only", missingKw)
	}
	return bound, nil
}

func missingError(fn, kind string, names []string) error {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	var list string
	switch len(quoted) {
	case 1:
		list = quoted[0]
	case 2:
		list = quoted[0] + " and " + quoted[1]
	default:
		list = strings.Join(quoted[:len(quoted)-1], ", ") + ", and " + quoted[len(quoted)-1]
	}
	noun := "argument"
	if len(names) > 1 {
		noun = "arguments"
	}
	return pyval.TypeErrorf("%s() missing %d required %s %s: %s", fn, len(names), kind, noun, list)
}

func (s Signature) index(name string) int {
	for i, p := range s {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Schema returns the JSON schema of the signature's named-argument form.
func (s Signature) Schema(description string) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:        "object",
		Description: description,
		Properties:  make(map[string]*jsonschema.Schema, len(s)),
		Required:    []string{},
	}
	for _, p := range s {
		prop := &jsonschema.Schema{Description: p.Description}
		switch p.Kind {
		case VarPositional:
			prop.Type = TypeArray
			if p.Type != TypeAny {
				prop.Items = &jsonschema.Schema{Type: p.Type}
			} else {
				prop.Items = &jsonschema.Schema{}
			}
			if prop.Description == "" {
				prop.Description = "positional arguments (*" + p.Name + ")"
			}
		case VarKeyword:
			prop.Type = TypeObject
			if prop.Description == "" {
				prop.Description = "keyword arguments (**" + p.Name + ")"
			}
		default:
			prop.Type = p.Type
			if p.HasDefault {
				if raw, err := json.Marshal(p.Default); err == nil {
					prop.Default = raw
				}
			}
			if p.required() {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		schema.Properties[p.Name] = prop
	}
	return schema
}
