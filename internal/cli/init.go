package cli

import (
	"github.com/spf13/cobra"

	"github.com/macropower/metareg/api/v1beta1/registries"
)

type InitArgs struct {
	*RootArgs

	Force bool
}

func NewInitArgs(rootArgs *RootArgs) *InitArgs {
	return &InitArgs{
		RootArgs: rootArgs,
	}
}

func (ia *InitArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&ia.Force, "force", false, "Back up and replace an existing file")
}

func NewInitCmd(ia *InitArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write an example registry file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := defaultFileNames[0]
			switch {
			case len(args) > 0:
				path = args[0]
			case ia.File != "":
				path = ia.File
			}

			return registries.WriteDefault(path, ia.Force) //nolint:wrapcheck // Already wrapped.
		},
	}
	ia.AddFlags(cmd)

	return cmd
}
