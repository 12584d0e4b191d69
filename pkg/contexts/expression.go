package contexts

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/macropower/metareg/pkg/expr"
)

var subjectEnv = expr.MustNewEnvironment(
	cel.Variable("attribute", cel.StringType),
	cel.Variable("rule", cel.StringType),
	cel.Variable("args", cel.ListType(cel.DynType)),
	cel.Variable("opts", cel.DynType),
)

// ExpressionPredicate is a [Predicate] backed by a compiled CEL expression.
//
// CEL expressions must return a boolean value, for example:
//   - rule in ["presence", "length"] - only presence and length rules
//   - attribute.startsWith("draft_") - only attributes with a draft prefix
//   - size(args) > 0 && opt(opts, "strict", false) - only strict rules with arguments
//
// Evaluation errors and non-boolean results reject the rule.
type ExpressionPredicate struct {
	program    cel.Program
	Expression string
}

// Expression compiles a CEL expression into an [ExpressionPredicate].
func Expression(expression string) (*ExpressionPredicate, error) {
	program, err := subjectEnv.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("context expression %q: %w", expression, err)
	}

	return &ExpressionPredicate{Expression: expression, program: program}, nil
}

// MustExpression calls [Expression] and panics on error.
func MustExpression(expression string) *ExpressionPredicate {
	p, err := Expression(expression)
	if err != nil {
		panic(err)
	}

	return p
}

// ValidFor evaluates the expression against s.
func (p *ExpressionPredicate) ValidFor(s Subject) bool {
	ok, err := expr.EvalBool(p.program, map[string]any{
		"attribute": s.AttributeName(),
		"rule":      s.RuleName(),
		"args":      expr.ConvertToCELValue(s.Args()),
		"opts":      expr.ConvertToCELValue(s.Opts()),
	})
	if err != nil {
		slog.Debug("context expression rejected rule",
			slog.String("expression", p.Expression),
			slog.String("attribute", s.AttributeName()),
			slog.String("rule", s.RuleName()),
			slog.Any("error", err),
		)

		return false
	}

	return ok
}

func (p *ExpressionPredicate) String() string {
	return p.Expression
}
