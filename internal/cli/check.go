package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/metareg/api"
	"github.com/macropower/metareg/pkg/kinds"
	"github.com/macropower/metareg/pkg/meta"
	"github.com/macropower/metareg/pkg/yaml"
)

var ErrNoValidator = errors.New("registry has no validation rules")

type CheckArgs struct {
	*RootArgs
}

func NewCheckArgs(rootArgs *RootArgs) *CheckArgs {
	return &CheckArgs{
		RootArgs: rootArgs,
	}
}

func NewCheckCmd(ca *CheckArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check VALUES",
		Short: "Check a YAML mapping of attribute values against the registry's validation rules",
		Example: `  # Check values from a file:
  metareg check post.values.yaml

  # Check values from stdin:
  echo 'title: Hello' | metareg check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ca.resolveFile()
			if err != nil {
				return err
			}

			_, reg, err := ca.loadRegistry(cmd.Context(), path)
			if err != nil {
				return err
			}

			values, err := readValues(cmd.InOrStdin(), args[0], ca.UseColor(os.Stderr))
			if err != nil {
				return err
			}

			_, span := tracer.Start(cmd.Context(), "check", trace.WithAttributes(
				attribute.String("owner", reg.Owner()),
				attribute.Int("values", len(values)),
			))
			defer span.End()

			host := meta.NewHost(reg.Owner())

			err = host.Include(reg)
			if err != nil {
				return fmt.Errorf("include registry: %w", err)
			}

			validator, ok := kinds.ValidatorFor(host)
			if !ok {
				return fmt.Errorf("%w: %s", ErrNoValidator, path)
			}

			err = validator.Validate(values)
			if err != nil {
				span.SetStatus(codes.Error, "validation failed")

				return err //nolint:wrapcheck // Violations are rendered by the error handler.
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(fmt.Sprintf(
				"%s: %s %s passed",
				reg.Owner(),
				humanize.Comma(int64(validator.Len())),
				english.PluralWord(validator.Len(), "check", ""),
			))))

			return nil
		},
	}

	return cmd
}

// readValues decodes a YAML mapping of attribute values from path, or from
// stdin if path is "-".
func readValues(stdin io.Reader, path string, color bool) (map[string]any, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = api.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read values: %w", err)
		}
	}

	values := map[string]any{}

	err = yaml.Unmarshal(data, &values)
	if err != nil {
		return nil, yaml.NewErrorWrapper(yaml.WithSource(data), yaml.WithColor(color)).Wrap(err)
	}

	return values, nil
}
