package contexts_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/metareg/pkg/contexts"
)

type subject struct {
	opts      any
	attribute string
	rule      string
	args      []any
}

func (s subject) AttributeName() string { return s.attribute }
func (s subject) RuleName() string      { return s.rule }
func (s subject) Args() []any           { return s.args }

func (s subject) Opts() any {
	if s.opts == nil {
		return map[string]any{}
	}

	return s.opts
}

func TestTable_Register(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pred    contexts.Predicate
		wantErr error
		name    string
	}{
		"valid": {
			name: "draft",
			pred: contexts.Always,
		},
		"invalid name": {
			name:    "Draft",
			pred:    contexts.Always,
			wantErr: contexts.ErrInvalidName,
		},
		"empty name": {
			name:    "",
			pred:    contexts.Always,
			wantErr: contexts.ErrInvalidName,
		},
		"nil predicate": {
			name:    "draft",
			wantErr: contexts.ErrNilPredicate,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			table := contexts.NewTable()

			err := table.Register(tc.name, tc.pred)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.False(t, table.Has(tc.name))

				return
			}

			require.NoError(t, err)
			assert.True(t, table.Has(tc.name))
		})
	}
}

func TestTable_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	table := contexts.NewTable()
	table.MustRegister("draft", contexts.Always)

	err := table.Register("draft", contexts.Never)
	require.ErrorIs(t, err, contexts.ErrDuplicate)

	// The first registration wins.
	p, err := table.Lookup("draft")
	require.NoError(t, err)
	assert.True(t, p.ValidFor(subject{}))

	assert.Panics(t, func() {
		table.MustRegister("draft", contexts.Always)
	})
}

func TestTable_LookupUnknown(t *testing.T) {
	t.Parallel()

	table := contexts.NewTable()

	p, err := table.Lookup("missing")
	require.ErrorIs(t, err, contexts.ErrUnknownContext)
	assert.Nil(t, p)

	var unknownErr *contexts.UnknownContextError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "missing", unknownErr.Name)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestTable_Names(t *testing.T) {
	t.Parallel()

	table := contexts.NewTable()
	table.MustRegister("published", contexts.Always)
	table.MustRegister("draft", contexts.Always)
	table.MustRegister("admin", contexts.Never)

	assert.Equal(t, []string{"admin", "draft", "published"}, table.Names())
}

func TestTable_ValidFor(t *testing.T) {
	t.Parallel()

	table := contexts.NewTable()
	table.MustRegister("yes", contexts.Always)
	table.MustRegister("no", contexts.Never)
	table.MustRegister("length_only", contexts.PredicateFunc(func(s contexts.Subject) bool {
		return s.RuleName() == "length"
	}))

	tcs := map[string]struct {
		wantErr error
		subject subject
		names   []string
		want    bool
	}{
		"no contexts": {
			names: nil,
			want:  true,
		},
		"all approve": {
			names:   []string{"yes", "length_only"},
			subject: subject{rule: "length"},
			want:    true,
		},
		"one rejects": {
			names:   []string{"yes", "length_only"},
			subject: subject{rule: "presence"},
			want:    false,
		},
		"unknown after rejecting": {
			names:   []string{"no", "missing"},
			wantErr: contexts.ErrUnknownContext,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := table.ValidFor(tc.subject, tc.names...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.False(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTable_ConcurrentLookup(t *testing.T) {
	t.Parallel()

	table := contexts.NewTable()
	table.MustRegister("draft", contexts.Always)

	var wg sync.WaitGroup

	errs := make(chan error, 50)
	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := table.Lookup("draft")
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	require.NoError(t, contexts.Register("contexts_test_default", contexts.Always))
	assert.Panics(t, func() {
		contexts.MustRegister("contexts_test_default", contexts.Always)
	})

	p, err := contexts.Lookup("contexts_test_default")
	require.NoError(t, err)
	assert.True(t, p.ValidFor(subject{}))

	_, err = contexts.Lookup("contexts_test_never_registered")
	assert.True(t, errors.Is(err, contexts.ErrUnknownContext))
}

func TestExpression(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expression string
		subject    subject
		want       bool
	}{
		"rule membership": {
			expression: `rule in ["presence", "length"]`,
			subject:    subject{attribute: "title", rule: "length"},
			want:       true,
		},
		"attribute prefix": {
			expression: `attribute.startsWith("draft_")`,
			subject:    subject{attribute: "title", rule: "length"},
			want:       false,
		},
		"args size": {
			expression: `size(args) == 2`,
			subject:    subject{rule: "length", args: []any{1, 2}},
			want:       true,
		},
		"options lookup": {
			expression: `opt(opts, "strict", false) == true`,
			subject:    subject{rule: "length", opts: map[string]any{"strict": true}},
			want:       true,
		},
		"options default": {
			expression: `opt(opts, "strict", false) == true`,
			subject:    subject{rule: "length"},
			want:       false,
		},
		"options not a map use the default": {
			expression: `opt(opts, "strict", true) == true`,
			subject:    subject{rule: "format", args: []any{"^[a-z]+$"}, opts: "^[a-z]+$"},
			want:       true,
		},
		"non boolean rejects": {
			expression: `rule`,
			subject:    subject{rule: "length"},
			want:       false,
		},
		"evaluation error rejects": {
			expression: `args[3] == 1`,
			subject:    subject{rule: "length"},
			want:       false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := contexts.Expression(tc.expression)
			require.NoError(t, err)
			assert.Equal(t, tc.expression, p.String())
			assert.Equal(t, tc.want, p.ValidFor(tc.subject))
		})
	}
}

func TestExpression_CompileError(t *testing.T) {
	t.Parallel()

	p, err := contexts.Expression(`rule.invalidFunction()`)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "rule.invalidFunction()")

	assert.Panics(t, func() {
		contexts.MustExpression(`)`)
	})
}
