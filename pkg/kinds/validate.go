package kinds

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/macropower/metareg/pkg/expr"
	"github.com/macropower/metareg/pkg/meta"
)

const (
	pendingKey = "kinds.validate.pending"
	// ValidatorKey is the extension key a [*Validator] is stored under.
	ValidatorKey = "kinds.validate"
)

var (
	ErrNotExtensible = errors.New("target does not support extensions")
	ErrInvalidRule   = errors.New("invalid validation rule")

	valueEnv = expr.MustNewEnvironment(
		cel.Variable("value", cel.DynType),
		cel.Variable("attribute", cel.StringType),
	)

	// Compile-time interface checks.
	_ meta.Compiler  = (*validateKind)(nil)
	_ meta.TypeSetup = (*validateKind)(nil)
)

// Validate is the validation rule kind. Its rules are compiled into checks
// by rule name:
//   - presence: the value is set and not empty
//   - absence: the value is not set
//   - length: strings, lists and maps honor the `min`, `max` and `is` options
//   - format: strings match the regular expression given as first argument
//   - inclusion: the value is one of the arguments
//   - exclusion: the value is none of the arguments
//   - check: the CEL expression given as first argument returns true, with
//     `value` and `attribute` variables
//
// Other rule names are metadata only. Apart from presence and absence,
// checks skip values that are not set.
//
// Including a registry with validation rules installs a [*Validator] on the
// target, which must implement [meta.Extensible].
var Validate meta.Kind = &validateKind{}

type validateKind struct{}

func (*validateKind) KindName() string {
	return "validate"
}

// Compile implements [meta.Compiler].
func (*validateKind) Compile(r *meta.Rule) meta.Behavior {
	c, err := newCheck(r)
	if err == nil && c == nil {
		return nil
	}

	return func(target meta.Target) error {
		if err != nil {
			return err
		}

		ext, ok := target.(meta.Extensible)
		if !ok {
			return fmt.Errorf("%w: %T", ErrNotExtensible, target)
		}

		var pending []*check
		if v, ok := ext.Extension(pendingKey); ok {
			pending, _ = v.([]*check)
		}

		ext.SetExtension(pendingKey, append(pending, c))

		return nil
	}
}

// SetupType implements [meta.TypeSetup]. It collects the checks added by
// the rules' behavior into a [*Validator].
func (*validateKind) SetupType(target meta.Target, r *meta.Registry) error {
	ext, ok := target.(meta.Extensible)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotExtensible, target)
	}

	var pending []*check
	if v, ok := ext.Extension(pendingKey); ok {
		pending, _ = v.([]*check)
	}

	ext.SetExtension(pendingKey, nil)
	ext.SetExtension(ValidatorKey, &Validator{owner: r.Owner(), checks: pending})

	slog.Debug("installed validator",
		slog.String("owner", r.Owner()),
		slog.Int("checks", len(pending)),
	)

	return nil
}

// ValidatorFor returns the [*Validator] installed on target.
func ValidatorFor(target meta.Extensible) (*Validator, bool) {
	v, ok := target.Extension(ValidatorKey)
	if !ok {
		return nil, false
	}

	validator, ok := v.(*Validator)

	return validator, ok
}

// Validator runs the checks compiled from a registry's validation rules.
type Validator struct {
	owner  string
	checks []*check
}

// Len returns the number of checks.
func (v *Validator) Len() int {
	return len(v.checks)
}

// Validate checks values, keyed by attribute name, and returns a
// [Violations] error listing every failed check in rule order.
func (v *Validator) Validate(values map[string]any) error {
	var violations Violations

	for _, c := range v.checks {
		value, present := values[c.attribute]

		msg := c.fn(value, present)
		if msg == "" {
			continue
		}

		violations = append(violations, Violation{
			Attribute: c.attribute,
			Rule:      c.rule,
			Message:   msg,
		})
	}

	if len(violations) == 0 {
		return nil
	}

	return violations
}

// Violation describes a failed check.
type Violation struct {
	Attribute string `json:"attribute"`
	Rule      string `json:"rule"`
	Message   string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s (%s)", v.Attribute, v.Message, v.Rule)
}

// Violations is the error returned by [Validator.Validate].
type Violations []Violation

func (vs Violations) Error() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.String()
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

type check struct {
	fn        func(value any, present bool) string
	attribute string
	rule      string
}

// newCheck compiles r into a check. It returns nil without an error for
// rule names that have no check.
func newCheck(r *meta.Rule) (*check, error) {
	var (
		fn  func(value any, present bool) string
		err error
	)

	switch r.Name() {
	case "presence":
		fn = checkPresence
	case "absence":
		fn = checkAbsence
	case "length":
		fn, err = newLengthCheck(r)
	case "format":
		fn, err = newFormatCheck(r)
	case "inclusion":
		fn = newInclusionCheck(r, true)
	case "exclusion":
		fn = newInclusionCheck(r, false)
	case "check":
		fn, err = newExpressionCheck(r)
	default:
		return nil, nil //nolint:nilnil // Metadata-only rule.
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRule, r, err)
	}

	return &check{fn: fn, attribute: r.AttributeName(), rule: r.Name()}, nil
}

func checkPresence(value any, present bool) string {
	if !present || isEmpty(value) {
		return "must be present"
	}

	return ""
}

func checkAbsence(_ any, present bool) string {
	if present {
		return "must be absent"
	}

	return ""
}

func newLengthCheck(r *meta.Rule) (func(any, bool) string, error) {
	opts, ok := r.Opts().(map[string]any)
	if !ok || len(opts) == 0 {
		return nil, errors.New("length requires min, max or is options")
	}

	bounds := map[string]int{}
	for _, key := range []string{"min", "max", "is"} {
		raw, ok := opts[key]
		if !ok {
			continue
		}

		n, ok := toInt(raw)
		if !ok {
			return nil, fmt.Errorf("length option %q must be an integer, got %T", key, raw)
		}

		bounds[key] = n
	}

	if len(bounds) == 0 {
		return nil, errors.New("length requires min, max or is options")
	}

	return func(value any, present bool) string {
		if !present || value == nil {
			return ""
		}

		n, ok := lengthOf(value)
		if !ok {
			return fmt.Sprintf("has no length (%T)", value)
		}

		if is, ok := bounds["is"]; ok && n != is {
			return fmt.Sprintf("must have length %d", is)
		}

		if minLen, ok := bounds["min"]; ok && n < minLen {
			return fmt.Sprintf("must have length of at least %d", minLen)
		}

		if maxLen, ok := bounds["max"]; ok && n > maxLen {
			return fmt.Sprintf("must have length of at most %d", maxLen)
		}

		return ""
	}, nil
}

func newFormatCheck(r *meta.Rule) (func(any, bool) string, error) {
	args := r.Args()
	if len(args) == 0 {
		return nil, errors.New("format requires a pattern")
	}

	pattern, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("format pattern must be a string, got %T", args[0])
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile format pattern: %w", err)
	}

	return func(value any, present bool) string {
		if !present || value == nil {
			return ""
		}

		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return fmt.Sprintf("must match %s", pattern)
		}

		return ""
	}, nil
}

func newInclusionCheck(r *meta.Rule, include bool) func(any, bool) string {
	allowed := r.Args()
	if len(allowed) == 1 {
		if list, ok := allowed[0].([]any); ok {
			allowed = list
		}
	}

	return func(value any, present bool) string {
		if !present || value == nil {
			return ""
		}

		found := false
		for _, a := range allowed {
			if equalValues(a, value) {
				found = true

				break
			}
		}

		switch {
		case include && !found:
			return fmt.Sprintf("must be one of %v", allowed)
		case !include && found:
			return fmt.Sprintf("must not be one of %v", allowed)
		}

		return ""
	}
}

func newExpressionCheck(r *meta.Rule) (func(any, bool) string, error) {
	args := r.Args()
	if len(args) == 0 {
		return nil, errors.New("check requires a CEL expression")
	}

	expression, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("check expression must be a string, got %T", args[0])
	}

	program, err := valueEnv.Compile(expression)
	if err != nil {
		return nil, err //nolint:wrapcheck // Wrapped by newCheck.
	}

	attribute := r.AttributeName()

	return func(value any, present bool) string {
		if !present || value == nil {
			return ""
		}

		ok, err := expr.EvalBool(program, map[string]any{
			"value":     expr.ConvertToCELValue(value),
			"attribute": attribute,
		})
		if err != nil {
			return fmt.Sprintf("could not be checked: %v", err)
		}

		if !ok {
			return fmt.Sprintf("must satisfy %s", expression)
		}

		return ""
	}, nil
}
