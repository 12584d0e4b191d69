package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/metareg/api"
)

type LookupArgs struct {
	*RootArgs

	Output string
}

func NewLookupArgs(rootArgs *RootArgs) *LookupArgs {
	return &LookupArgs{
		RootArgs: rootArgs,
	}
}

func (la *LookupArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&la.Output, "output", "o", OutputTable, "Output format, one of: [table yaml]")
}

func NewLookupCmd(la *LookupArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup RULE...",
		Short: "Print the rules with any of the given names, in declaration order",
		Example: `  # Find all presence and length rules:
  metareg lookup presence length`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if la.Output != OutputTable && la.Output != OutputYAML {
				return fmt.Errorf("%w: %q", ErrUnknownOutput, la.Output)
			}

			path, err := la.resolveFile()
			if err != nil {
				return err
			}

			_, reg, err := la.loadRegistry(cmd.Context(), path)
			if err != nil {
				return err
			}

			views, err := newRuleViewsFrom(reg.Lookup(args...))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if la.Output == OutputYAML {
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

			if len(views) == 0 {
				mustN(fmt.Fprintln(w, summaryStyle.Render("no matching rules")))

				return nil
			}

			mustN(fmt.Fprintln(w, renderTable(views)))

			return nil
		},
	}
	la.AddFlags(cmd)

	return cmd
}
