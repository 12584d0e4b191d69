package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/metareg/pkg/log"
	"github.com/macropower/metareg/pkg/version"
)

const (
	cmdName = "metareg"
	cmdDesc = `Inspect, query and check declarative attribute rule registries.`
)

// defaultFileNames are searched for, walking up from the working directory,
// when no registry file is given.
var defaultFileNames = []string{"metareg.yaml", ".metareg.yaml"}

type RootArgs struct {
	LogLevel  string
	LogFormat string
	File      string
	Color     string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVarP(&ra.File, "file", "f", "", fmt.Sprintf("Registry file, default is the first of %v found upwards", defaultFileNames))
	cmd.PersistentFlags().
		StringVar(&ra.Color, "color", "auto", "Colorize output, one of: [auto always never]")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("color",
		cobra.FixedCompletions([]string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkPersistentFlagFilename("file", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark file flag: %w", err))
	}
}

// UseColor reports whether output written to f should be styled.
func (ra *RootArgs) UseColor(f *os.File) bool {
	switch ra.Color {
	case "always":
		return true
	case "never":
		return false
	}

	return f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int.
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging(args),
	}

	args.AddFlags(cmd)

	cmd.AddCommand(
		NewShowCmd(NewShowArgs(args)),
		NewLookupCmd(NewLookupArgs(args)),
		NewCheckCmd(NewCheckArgs(args)),
		NewSchemaCmd(),
		NewInitCmd(NewInitArgs(args)),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logger, err := log.Setup(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		logger.Debug("starting",
			slog.String("command", cmd.CommandPath()),
			slog.Any("build", version.LogValue()),
		)

		cmd.SetContext(log.NewContext(cmd.Context(), logger))

		return nil
	}
}
