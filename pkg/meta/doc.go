// Package meta provides a declarative attribute and rule registry.
//
// An owner creates a [Registry] and declares named attributes on it. Each
// [Attribute] holds an ordered list of [Rule]s, which are named directives
// with positional arguments:
//
//	reg := meta.New("post")
//	_, err := reg.Attribute("title", func(a *meta.Attribute) {
//		a.Emit("presence")
//		a.Emit("length", map[string]any{"max": 80})
//		a.BeginContext("draft", func(a *meta.Attribute) {
//			a.Emit("format", "lowercase")
//		})
//	})
//
// Declaring the same attribute again extends it rather than replacing it.
// Rules declared inside a context block are active only when every named
// predicate in [contexts.Default] approves them.
//
// A registry is projected onto a [Target] with [Registry.Include]. Rule kinds
// contribute behavior through the optional [Compiler] and [TypeSetup]
// capabilities; rules without a kind are metadata only.
//
// Declaration is expected to happen once, during program initialization.
// A [Registry] and its attributes are not safe for concurrent declaration;
// callers must serialize access.
package meta
