package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/metareg/internal/cli"
)

func TestBindEnvVars(t *testing.T) {
	tcs := map[string]struct {
		envVars       map[string]string
		wantLogLevel  string
		wantLogFormat string
		wantFile      string
		args          []string
	}{
		"environment variables are bound when no args provided": {
			envVars: map[string]string{
				"METAREG_LOG_LEVEL":  "debug",
				"METAREG_LOG_FORMAT": "json",
				"METAREG_FILE":       "post.yaml",
			},
			args:          []string{},
			wantLogLevel:  "debug",
			wantLogFormat: "json",
			wantFile:      "post.yaml",
		},
		"command line args take precedence over environment variables": {
			envVars: map[string]string{
				"METAREG_LOG_LEVEL":  "debug",
				"METAREG_LOG_FORMAT": "json",
			},
			args:          []string{"--log-level", "error", "--log-format", "text", "-f", "comment.yaml"},
			wantLogLevel:  "error",
			wantLogFormat: "text",
			wantFile:      "comment.yaml",
		},
		"partial environment variable override": {
			envVars: map[string]string{
				"METAREG_LOG_LEVEL": "warn",
			},
			args:          []string{"--log-format", "json"},
			wantLogLevel:  "warn",
			wantLogFormat: "json",
		},
		"no environment variables uses defaults": {
			envVars:       map[string]string{},
			args:          []string{},
			wantLogLevel:  "info",
			wantLogFormat: "text",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for key, val := range tc.envVars {
				t.Setenv(key, val)
			}

			cmd := cli.NewRootCmd()

			err := cmd.ParseFlags(tc.args)
			require.NoError(t, err)

			logLevel, err := cmd.Flags().GetString("log-level")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogLevel, logLevel)

			logFormat, err := cmd.Flags().GetString("log-format")
			require.NoError(t, err)
			assert.Equal(t, tc.wantLogFormat, logFormat)

			file, err := cmd.Flags().GetString("file")
			require.NoError(t, err)
			assert.Equal(t, tc.wantFile, file)
		})
	}
}

func TestBindEnvVars_Subcommands(t *testing.T) {
	t.Setenv("METAREG_OUTPUT", "yaml")

	cmd := cli.NewRootCmd()

	show, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)

	output, err := show.Flags().GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "yaml", output)
}

func TestEnvironmentVariableUsageUpdate(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCmd()

	logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Contains(t, logLevelFlag.Usage, "$METAREG_LOG_LEVEL")

	fileFlag := cmd.PersistentFlags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Contains(t, fileFlag.Usage, "$METAREG_FILE")

	show, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)

	watchFlag := show.Flags().Lookup("watch")
	require.NotNil(t, watchFlag)
	assert.Contains(t, watchFlag.Usage, "$METAREG_WATCH")
}
