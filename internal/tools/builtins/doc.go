// Package builtins implements the primitive catalog: fifty forwarding
// wrappers, w_abs through w_zip, each passing its arguments unchanged to a
// primitive that behaves like the interpreter built-in of the same name.
//
// Primitives are exported (Abs, Divmod, Int, ...) so they can be called
// directly; a wrapper returns exactly what its primitive returns and fails
// with exactly the same *pyval.Error. Primitives that take a callable
// (map, filter, sorted, max, min) resolve it by catalog name through the
// registry. Primitives that would return a lazy iterator return the
// materialized list instead, since no object outlives a tool call.
package builtins
