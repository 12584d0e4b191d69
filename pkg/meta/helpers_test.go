package meta_test

import (
	"fmt"
	"sync/atomic"

	"github.com/macropower/metareg/pkg/contexts"
	"github.com/macropower/metareg/pkg/meta"
)

var toggle atomic.Bool

func init() {
	contexts.MustRegister("meta_test_on", contexts.Always)
	contexts.MustRegister("meta_test_off", contexts.Never)
	contexts.MustRegister("meta_test_toggle", contexts.PredicateFunc(func(contexts.Subject) bool {
		return toggle.Load()
	}))
	contexts.MustRegister("meta_test_length", contexts.PredicateFunc(func(s contexts.Subject) bool {
		return s.RuleName() == "length"
	}))

	toggle.Store(true)
}

// recorder is a target that records applied behavior and type setups.
type recorder struct {
	typeMeta     func() *meta.Registry
	instanceMeta func() *meta.Registry
	applied      []string
	setups       []string
}

func (r *recorder) SetTypeMeta(fn func() *meta.Registry)     { r.typeMeta = fn }
func (r *recorder) SetInstanceMeta(fn func() *meta.Registry) { r.instanceMeta = fn }

// recordKind is a rule kind with both capabilities.
type recordKind struct {
	name      string
	setupErr  error
	noCompile bool
}

func (k *recordKind) KindName() string { return k.name }

func (k *recordKind) Compile(r *meta.Rule) meta.Behavior {
	if k.noCompile {
		return nil
	}

	return func(target meta.Target) error {
		rec, ok := target.(*recorder)
		if !ok {
			return fmt.Errorf("unexpected target %T", target)
		}

		last, _ := r.Last()
		rec.applied = append(rec.applied, fmt.Sprintf("%s:%v", r.Name(), last))

		return nil
	}
}

func (k *recordKind) SetupType(target meta.Target, reg *meta.Registry) error {
	if k.setupErr != nil {
		return k.setupErr
	}

	rec, ok := target.(*recorder)
	if !ok {
		return fmt.Errorf("unexpected target %T", target)
	}

	rec.setups = append(rec.setups, fmt.Sprintf("%s:%d", k.name, len(reg.Rules())))

	return nil
}

// setupOnlyKind implements only [meta.TypeSetup].
type setupOnlyKind struct {
	calls int
}

func (k *setupOnlyKind) KindName() string { return "setup_only" }

func (k *setupOnlyKind) SetupType(meta.Target, *meta.Registry) error {
	k.calls++

	return nil
}

func ruleNames(rules []*meta.Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name()
	}

	return names
}

func emitAll(names ...string) meta.Block {
	return func(a *meta.Attribute) {
		for _, name := range names {
			a.Emit(name)
		}
	}
}
