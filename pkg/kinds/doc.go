// Package kinds provides built-in rule kinds for [meta] registries.
//
// A kind gives rules of that kind behavior when their registry is included
// into a target. [Validate] compiles rules such as `presence` and `length`
// into a [*Validator] installed on the target:
//
//	reg := meta.New("post")
//	reg.Attribute("title", func(a *meta.Attribute) {
//		a.EmitKind(kinds.Validate, "presence")
//		a.EmitKind(kinds.Validate, "length", map[string]any{"max": 20})
//	})
//
//	host := meta.NewHost("post")
//	host.Include(reg)
//
//	v, _ := kinds.ValidatorFor(host)
//	err := v.Validate(map[string]any{"title": ""})
package kinds
