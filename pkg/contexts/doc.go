// Package contexts provides named context predicates.
//
// A context is a named activation scope. Rules declared inside a context
// block carry the context names, and are active only when every named
// predicate approves them. Predicates are resolved by name from a [Table],
// normally the process-wide [Default] table, which is populated at program
// start and never shrinks.
//
// Predicates may be plain Go functions ([PredicateFunc]) or CEL expressions
// ([Expression]) with access to the variables:
//   - `attribute` (string): The rule's attribute name
//   - `rule` (string): The rule name
//   - `args` (list): The rule's positional arguments
//   - `opts` (dyn): The rule's final argument, usually an options map; `opt` falls back to its default when it is not one
package contexts
