package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/macropower/metareg/api"
	"github.com/macropower/metareg/api/v1beta1/registries"
	"github.com/macropower/metareg/pkg/log"
	"github.com/macropower/metareg/pkg/meta"
)

const (
	OutputTable = "table"
	OutputYAML  = "yaml"

	showExamples = `  # Show the registry found in the current directory or above:
  metareg show

  # Show a registry file as YAML:
  metareg show -f post.yaml -o yaml

  # Re-render whenever the file changes:
  metareg show -f post.yaml --watch`
)

var (
	ErrUnknownOutput = errors.New("unknown output format")

	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	inactiveStyle = cellStyle.Faint(true)
	summaryStyle  = lipgloss.NewStyle().Faint(true)
)

type ShowArgs struct {
	*RootArgs

	Output   string
	Debounce time.Duration
	Watch    bool
}

func NewShowArgs(rootArgs *RootArgs) *ShowArgs {
	return &ShowArgs{
		RootArgs: rootArgs,
	}
}

func (sa *ShowArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sa.Output, "output", "o", OutputTable, "Output format, one of: [table yaml]")
	cmd.Flags().BoolVarP(&sa.Watch, "watch", "w", false,
		"Watch the registry file and show it again on changes; changing a context's expression needs a restart")
	cmd.Flags().DurationVar(&sa.Debounce, "debounce", 100*time.Millisecond, "Time to wait for further changes before reloading")

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{OutputTable, OutputYAML}, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewShowCmd(sa *ShowArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show the attributes and rules of a registry",
		Example: showExamples,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sa.Output != OutputTable && sa.Output != OutputYAML {
				return fmt.Errorf("%w: %q", ErrUnknownOutput, sa.Output)
			}

			path, err := sa.resolveFile()
			if err != nil {
				return err
			}

			if sa.Watch {
				return sa.watch(cmd.Context(), cmd.OutOrStdout(), path)
			}

			return sa.show(cmd.Context(), cmd.OutOrStdout(), path)
		},
	}
	sa.AddFlags(cmd)

	return cmd
}

func (sa *ShowArgs) show(ctx context.Context, w io.Writer, path string) error {
	_, reg, err := sa.loadRegistry(ctx, path)
	if err != nil {
		return err
	}

	views, err := newRuleViews(reg)
	if err != nil {
		return err
	}

	if sa.Output == OutputYAML {
		b, err := api.MarshalYAML(views)
		if err != nil {
			return err //nolint:wrapcheck // Already wrapped.
		}

		_, err = w.Write(b)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		return nil
	}

	mustN(fmt.Fprintln(w, renderTable(views)))
	mustN(fmt.Fprintln(w, summaryStyle.Render(summary(reg, views))))

	return nil
}

// watch shows the registry, then shows it again after each change to the
// file until ctx is done. Load errors are logged and watching continues.
func (sa *ShowArgs) watch(ctx context.Context, w io.Writer, path string) error {
	logger := log.WithContext(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}

	defer func() {
		err := watcher.Close()
		if err != nil {
			logger.Error("close watcher", slog.Any("error", err))
		}
	}()

	// Editors often replace files instead of writing them, so watch the
	// directory and filter by name.
	err = watcher.Add(filepath.Dir(absPath))
	if err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	reload := func() {
		err := sa.show(ctx, w, absPath)
		switch {
		case errors.Is(err, registries.ErrContextConflict):
			// Contexts stay registered for the life of the process.
			logger.Error("context changed while watching, restart to apply it",
				slog.String("path", absPath),
				slog.Any("error", err),
			)
		case err != nil:
			logger.Error("show registry", slog.String("path", absPath), slog.Any("error", err))
		}
	}

	reload()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != absPath {
				continue
			}
			if !evt.Has(fsnotify.Create | fsnotify.Write | fsnotify.Rename) {
				continue
			}

			logger.Debug("registry file changed", slog.String("path", absPath), slog.String("op", evt.Op.String()))

			if timer == nil {
				timer = time.NewTimer(sa.Debounce)
			} else {
				timer.Reset(sa.Debounce)
			}

			timerC = timer.C

		case <-timerC:
			timerC = nil

			mustN(fmt.Fprintln(w))
			reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Error("watch registry file", slog.Any("error", err))
		}
	}
}

// ruleView is the printable form of a rule.
type ruleView struct {
	Kind      string   `json:"kind,omitempty"`
	Attribute string   `json:"attribute"`
	Rule      string   `json:"rule"`
	Args      []any    `json:"args,omitempty"`
	Contexts  []string `json:"contexts,omitempty"`
	Active    bool     `json:"active"`
}

func newRuleViews(reg *meta.Registry) ([]ruleView, error) {
	return newRuleViewsFrom(reg.Rules())
}

func newRuleViewsFrom(rules []*meta.Rule) ([]ruleView, error) {
	views := make([]ruleView, 0, len(rules))

	for _, r := range rules {
		active, err := r.IsActive()
		if err != nil {
			return nil, err //nolint:wrapcheck // Includes the rule.
		}

		v := ruleView{
			Attribute: r.AttributeName(),
			Rule:      r.Name(),
			Args:      r.Args(),
			Contexts:  r.Contexts(),
			Active:    active,
		}
		if k := r.Kind(); k != nil {
			v.Kind = k.KindName()
		}

		views = append(views, v)
	}

	return views, nil
}

func renderTable(views []ruleView) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ATTRIBUTE", "RULE", "KIND", "ARGS", "CONTEXTS", "ACTIVE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(views) && !views[row].Active:
				return inactiveStyle
			}

			return cellStyle
		})

	for _, v := range views {
		args := make([]string, len(v.Args))
		for i, arg := range v.Args {
			args[i] = fmt.Sprintf("%v", arg)
		}

		active := "yes"
		if !v.Active {
			active = "no"
		}

		t.Row(
			v.Attribute,
			v.Rule,
			v.Kind,
			strings.Join(args, ", "),
			strings.Join(v.Contexts, " > "),
			active,
		)
	}

	return t.String()
}

func summary(reg *meta.Registry, views []ruleView) string {
	active := 0
	for _, v := range views {
		if v.Active {
			active++
		}
	}

	attrs := reg.Attributes().Len()

	return fmt.Sprintf("%s: %s %s, %s %s (%s active)",
		reg.Owner(),
		humanize.Comma(int64(attrs)), english.PluralWord(attrs, "attribute", ""),
		humanize.Comma(int64(len(views))), english.PluralWord(len(views), "rule", ""),
		humanize.Comma(int64(active)),
	)
}
