// Package expr provides CEL (Common Expression Language) functionality
// for evaluating expressions against rules and attribute values.
//
// It creates CEL environments with custom functions for:
//   - Identifier checks (isIdentifier, normalize)
//   - Option access (opt)
//
// Callers declare their own variables with [cel.Variable] when creating an
// [Environment]; see the contexts and kinds packages for the variable sets in
// use.
package expr
