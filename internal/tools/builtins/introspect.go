package builtins

import (
	"sort"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

// idBase offsets identities so they look like addresses.
const idBase = 0x7f0000000000

var objectDunders = []string{
	"__class__", "__delattr__", "__dir__", "__doc__", "__eq__", "__format__",
	"__ge__", "__getattribute__", "__getstate__", "__gt__", "__hash__", "__init__",
	"__init_subclass__", "__le__", "__lt__", "__ne__", "__new__", "__reduce__",
	"__reduce_ex__", "__repr__", "__setattr__", "__sizeof__", "__str__",
	"__subclasshook__",
}

var intMethods = []string{"as_integer_ratio", "bit_count", "bit_length", "conjugate", "from_bytes", "is_integer", "to_bytes"}

var setMethods = []string{
	"add", "clear", "copy", "difference", "difference_update", "discard",
	"intersection", "intersection_update", "isdisjoint", "issubset", "issuperset",
	"pop", "remove", "symmetric_difference", "symmetric_difference_update",
	"union", "update",
}

// methods lists the public methods of each class.
var methods = map[string][]string{
	"int":   intMethods,
	"bool":  intMethods,
	"float": {"as_integer_ratio", "conjugate", "fromhex", "hex", "is_integer"},
	"str": {
		"capitalize", "casefold", "center", "count", "encode", "endswith",
		"expandtabs", "find", "format", "format_map", "index", "isalnum",
		"isalpha", "isascii", "isdecimal", "isdigit", "isidentifier", "islower",
		"isnumeric", "isprintable", "isspace", "istitle", "isupper", "join",
		"ljust", "lower", "lstrip", "maketrans", "partition", "removeprefix",
		"removesuffix", "replace", "rfind", "rindex", "rjust", "rpartition",
		"rsplit", "rstrip", "split", "splitlines", "startswith", "strip",
		"swapcase", "title", "translate", "upper", "zfill",
	},
	"list":      {"append", "clear", "copy", "count", "extend", "index", "insert", "pop", "remove", "reverse", "sort"},
	"tuple":     {"count", "index"},
	"dict":      {"clear", "copy", "fromkeys", "get", "items", "keys", "pop", "popitem", "setdefault", "update", "values"},
	"set":       setMethods,
	"frozenset": {"copy", "difference", "intersection", "isdisjoint", "issubset", "issuperset", "symmetric_difference", "union"},
	"slice":     {"indices"},
	"type":      {"mro"},
}

// builtinTypes are the class names isinstance and issubclass accept by name.
var builtinTypes = map[string]bool{
	"object": true, "int": true, "bool": true, "float": true, "str": true,
	"list": true, "tuple": true, "dict": true, "set": true, "frozenset": true,
	"NoneType": true, "slice": true, "type": true, "function": true,
	"builtin_function_or_method": true,
}

// Type returns the class of obj.
func Type(obj any) (any, error) {
	return pyval.Type{Name: pyval.TypeName(obj)}, nil
}

func isSubclass(sub, sup string) bool {
	return sub == sup || sup == "object" || (sub == "bool" && sup == "int")
}

// classNames flattens a class, a class name, or a list or tuple of those.
func classNames(v any) ([]string, bool) {
	switch x := v.(type) {
	case pyval.Type:
		return []string{x.Name}, true
	case string:
		return []string{x}, builtinTypes[x]
	case []any, pyval.Tuple:
		items, _ := pyval.Iterate(x)
		var out []string
		for _, item := range items {
			names, ok := classNames(item)
			if !ok {
				return nil, false
			}
			out = append(out, names...)
		}
		return out, true
	}
	return nil, false
}

// Isinstance reports whether obj is an instance of a class in classOrTuple.
func Isinstance(obj, classOrTuple any) (any, error) {
	names, ok := classNames(classOrTuple)
	if !ok {
		return nil, pyval.TypeErrorf("isinstance() arg 2 must be a type, a tuple of types, or a union")
	}
	typ := pyval.TypeName(obj)
	for _, n := range names {
		if isSubclass(typ, n) {
			return true, nil
		}
	}
	return false, nil
}

// Issubclass reports whether cls derives from a class in classOrTuple.
func Issubclass(cls, classOrTuple any) (any, error) {
	var sub string
	switch c := cls.(type) {
	case pyval.Type:
		sub = c.Name
	case string:
		if !builtinTypes[c] {
			return nil, pyval.TypeErrorf("issubclass() arg 1 must be a class")
		}
		sub = c
	default:
		return nil, pyval.TypeErrorf("issubclass() arg 1 must be a class")
	}
	names, ok := classNames(classOrTuple)
	if !ok {
		return nil, pyval.TypeErrorf("issubclass() arg 2 must be a class, a tuple of classes, or a union")
	}
	for _, n := range names {
		if isSubclass(sub, n) {
			return true, nil
		}
	}
	return false, nil
}

// Getattr returns the named attribute of obj, or def when it is missing
// and def was supplied.
func (c *Catalog) Getattr(obj, name, def any) (any, error) {
	attr, ok := name.(string)
	if !ok {
		return nil, pyval.TypeErrorf("attribute name must be string, not '%s'", pyval.TypeName(name))
	}
	if v, found := c.lookupAttr(obj, attr); found {
		return v, nil
	}
	if !tools.IsUnset(def) {
		return def, nil
	}
	if t, ok := obj.(pyval.Type); ok {
		return nil, pyval.Errorf(pyval.AttributeError, "type object '%s' has no attribute '%s'", t.Name, attr)
	}
	return nil, pyval.Errorf(pyval.AttributeError, "'%s' object has no attribute '%s'", pyval.TypeName(obj), attr)
}

// Hasattr reports whether obj has the named attribute.
func (c *Catalog) Hasattr(obj, name any) (any, error) {
	attr, ok := name.(string)
	if !ok {
		return nil, pyval.TypeErrorf("attribute name must be string, not '%s'", pyval.TypeName(name))
	}
	_, found := c.lookupAttr(obj, attr)
	return found, nil
}

func (c *Catalog) lookupAttr(obj any, name string) (any, bool) {
	if v, ok := c.dataAttrs(obj)[name]; ok {
		return v, true
	}
	typ := pyval.TypeName(obj)
	if t, ok := obj.(pyval.Type); ok {
		typ = t.Name
	}
	if name == "__class__" {
		return pyval.Type{Name: pyval.TypeName(obj)}, true
	}
	for _, m := range methods[typ] {
		if m == name {
			return pyval.Method{Name: name, Receiver: typ}, true
		}
	}
	for _, m := range objectDunders {
		if m == name {
			return pyval.Method{Name: name, Receiver: typ}, true
		}
	}
	return nil, false
}

// dataAttrs returns the non-method attributes of obj.
func (c *Catalog) dataAttrs(obj any) map[string]any {
	switch v := obj.(type) {
	case float64:
		return map[string]any{"real": v, "imag": 0.0}
	case pyval.Slice:
		return map[string]any{"start": v.Start, "stop": v.Stop, "step": v.Step}
	case pyval.Type:
		return map[string]any{"__name__": v.Name, "__doc__": nil}
	case pyval.Method:
		return map[string]any{"__name__": v.Name, "__doc__": nil}
	case pyval.Function:
		var doc any
		if t := c.reg.Resolve(v.Name); t != nil {
			doc = t.Description
		}
		return map[string]any{"__name__": v.Name, "__doc__": doc}
	}
	if pyval.IsInt(obj) {
		n, _ := pyval.ToBig(obj)
		return map[string]any{"real": pyval.NormInt(n), "imag": int64(0), "numerator": pyval.NormInt(n), "denominator": int64(1)}
	}
	return map[string]any{"__doc__": nil}
}

// Dir lists the attributes of obj, or the catalog scope when obj is
// omitted.
func (c *Catalog) Dir(obj any) (any, error) {
	var names []string
	if tools.IsUnset(obj) {
		names = c.reg.Names()
	} else {
		seen := make(map[string]bool)
		add := func(n string) {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
		for n := range c.dataAttrs(obj) {
			add(n)
		}
		typ := pyval.TypeName(obj)
		if t, ok := obj.(pyval.Type); ok {
			typ = t.Name
		}
		for _, m := range methods[typ] {
			add(m)
		}
		for _, m := range objectDunders {
			add(m)
		}
	}
	sort.Strings(names)
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out, nil
}

// Globals returns the catalog scope as a dict of name to function.
func (c *Catalog) Globals() (any, error) {
	d := pyval.NewDict()
	for _, name := range c.reg.Names() {
		if err := d.Set(name, pyval.Function{Name: name}); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Vars returns the attribute dict of obj; without an argument, the (empty)
// local scope.
func (c *Catalog) Vars(obj any) (any, error) {
	d := pyval.NewDict()
	switch v := obj.(type) {
	case pyval.Function:
		return d, nil
	case pyval.Type:
		for _, m := range methods[v.Name] {
			if err := d.Set(m, pyval.Method{Name: m, Receiver: v.Name}); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
	if tools.IsUnset(obj) {
		return d, nil
	}
	return nil, pyval.TypeErrorf("vars() argument must have __dict__ attribute")
}

// Id returns a distinct identity for each call's argument.
func (c *Catalog) Id(obj any) (any, error) {
	return int64(idBase + c.ids.Add(1)*16), nil
}

// Hash returns the hash of a hashable value.
func Hash(obj any) (any, error) {
	h, err := pyval.Hash(obj)
	if err != nil {
		return nil, err
	}
	return h, nil
}
